package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/task"
	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T) (*Server, *task.Manager) {
	t.Helper()
	manager, err := task.Open(task.OpenOptions{StateDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open manager: %v", err)
	}
	server, err := NewServer(ServerOptions{Manager: manager, Logger: zerolog.New(io.Discard)})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server, manager
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	response := httptest.NewRecorder()
	handler.ServeHTTP(response, request)
	return response
}

func decodeResponse[T any](t *testing.T, response *httptest.ResponseRecorder) T {
	t.Helper()
	var payload T
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestNewServerRequiresManager(t *testing.T) {
	if _, err := NewServer(ServerOptions{}); err == nil {
		t.Fatal("expected error without manager")
	}
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	response := doRequest(t, server.Handler(), http.MethodGet, "/healthz", "")
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}
	if got := decodeResponse[healthResponse](t, response); got.Status != "ok" {
		t.Fatalf("unexpected health %+v", got)
	}
}

func TestTodosUpdateAndShow(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	body := `{"task_id":"task-1","todos":[{"content":"A","status":"completed"},{"content":"B","status":"pending","children":[{"content":"B1","status":"pending"}]}],"reason":"plan"}`
	response := doRequest(t, handler, http.MethodPost, "/todos/update", body)
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.Code, response.Body.String())
	}
	updated := decodeResponse[UpdateResponse](t, response)
	if updated.Revision == "" || updated.List.TotalCount != 3 || updated.List.CompletedCount != 1 {
		t.Fatalf("unexpected update %+v", updated)
	}

	response = doRequest(t, handler, http.MethodPost, "/todos/show", `{"task_id":"task-1"}`)
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.Code, response.Body.String())
	}
	shown := decodeResponse[ShowResponse](t, response)
	if shown.Revision != updated.Revision || shown.Reason != "plan" || len(shown.List.Items) != 2 {
		t.Fatalf("unexpected show %+v", shown)
	}
}

func TestTodosUpdateValidationError(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"task_id":"task-1","todos":[{"title":"old","done":false}]}`
	response := doRequest(t, server.Handler(), http.MethodPost, "/todos/update", body)
	if response.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.Code)
	}
	payload := decodeResponse[errorResponse](t, response)
	if !strings.Contains(payload.Error, "todos[0].title") || !strings.Contains(payload.Error, "todos[0].done") {
		t.Fatalf("expected every issue reported, got %q", payload.Error)
	}
}

func TestTodosUpdateMissingTodos(t *testing.T) {
	server, _ := newTestServer(t)

	response := doRequest(t, server.Handler(), http.MethodPost, "/todos/update", `{"task_id":"task-1"}`)
	if response.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.Code)
	}
	if payload := decodeResponse[errorResponse](t, response); !strings.Contains(payload.Error, "todos is required") {
		t.Fatalf("unexpected error %q", payload.Error)
	}
}

func TestTodosShowUnknownTask(t *testing.T) {
	server, _ := newTestServer(t)

	response := doRequest(t, server.Handler(), http.MethodPost, "/todos/show", `{"task_id":"nope"}`)
	if response.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", response.Code)
	}
}

func TestRejectsUnknownFieldsAndMethods(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	response := doRequest(t, handler, http.MethodPost, "/sections", `{"task":"x"}`)
	if response.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", response.Code)
	}

	response = doRequest(t, handler, http.MethodGet, "/sections", "")
	if response.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", response.Code)
	}

	response = doRequest(t, handler, http.MethodGet, "/nowhere", "")
	if response.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", response.Code)
	}
}

func TestTaskInputAndSections(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.Handler()

	response := doRequest(t, handler, http.MethodPost, "/tasks/input", `{"task_id":"task-1","input":"Do it <reminder>gently</reminder>"}`)
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.Code, response.Body.String())
	}
	if input := decodeResponse[InputResponse](t, response); input.Reminder != "gently" {
		t.Fatalf("unexpected reminder %+v", input)
	}

	response = doRequest(t, handler, http.MethodPost, "/sections", `{"task_id":"task-1"}`)
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}
	sections := decodeResponse[section.Sections](t, response)
	if sections.Reminder != section.Reminder("gently") || sections.Todos != "" {
		t.Fatalf("unexpected sections %+v", sections)
	}
}

func TestReminderExtract(t *testing.T) {
	server, _ := newTestServer(t)

	response := doRequest(t, server.Handler(), http.MethodPost, "/reminder/extract", `{"text":"<reminder> </reminder>"}`)
	if response.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.Code)
	}
	payload := decodeResponse[ReminderResponse](t, response)
	if !payload.Found || payload.Reminder != "" || payload.Section != "" {
		t.Fatalf("expected found but empty reminder, got %+v", payload)
	}
}

func TestRecoverHandlerReturnsJSON(t *testing.T) {
	server, _ := newTestServer(t)
	handler := server.recoverHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	response := doRequest(t, handler, http.MethodGet, "/", "")
	if response.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", response.Code)
	}
	if payload := decodeResponse[errorResponse](t, response); payload.Error != "internal server error" {
		t.Fatalf("unexpected error %q", payload.Error)
	}
}

func TestClientRoundTrip(t *testing.T) {
	server, _ := newTestServer(t)
	httpServer := httptest.NewServer(server.Handler())
	defer httpServer.Close()

	client := NewClient(httpServer.URL)
	ctx := context.Background()

	if err := client.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
	if _, err := client.SetInput(ctx, "task-1", "<reminder>keep it small</reminder>"); err != nil {
		t.Fatalf("set input: %v", err)
	}
	todos := []map[string]any{{"content": "Remote item", "status": "in_progress"}}
	updated, err := client.UpdateTodos(ctx, "task-1", todos, "remote")
	if err != nil {
		t.Fatalf("update todos: %v", err)
	}
	if updated.List.TotalCount != 1 {
		t.Fatalf("unexpected update %+v", updated)
	}

	sections, err := client.Sections(ctx, "task-1")
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	if !strings.Contains(sections.Reminder, "keep it small") || !strings.Contains(sections.Todos, "| 1 | Remote item | In Progress |") {
		t.Fatalf("unexpected sections %+v", sections)
	}

	extracted, err := client.ExtractReminder(ctx, "a <reminder>b</reminder>")
	if err != nil || extracted.Reminder != "b" {
		t.Fatalf("unexpected extract %+v, %v", extracted, err)
	}

	_, err = client.ShowTodos(ctx, "missing")
	if !errors.Is(err, task.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	_, err = client.UpdateTodos(ctx, "task-1", []map[string]any{{"content": ""}}, "")
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/sections", bytes.NewReader([]byte(`{"task_id":"a"} {"task_id":"b"}`)))
	var payload taskRequest
	if err := decodeJSON(httptest.NewRecorder(), request, &payload); err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestServeContextStops(t *testing.T) {
	server, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := server.ServeContext(ctx, "127.0.0.1:0"); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
