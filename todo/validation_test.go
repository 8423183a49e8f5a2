package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseUpdate_Valid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"bare array", `[{"id":"1","content":"创建 a.txt","status":"in_progress"}]`, 1},
		{"wrapper", `{"items":[{"content":"a","status":"pending"},{"content":"b","status":"completed"}]}`, 2},
		{"empty array", `[]`, 0},
		{"numeric id", `[{"id":1,"content":"a","status":"pending"}]`, 1},
		{"extra fields ignored", `[{"content":"a","status":"pending","activeForm":"doing a"}]`, 1},
		{"null children", `[{"content":"a","status":"pending","children":null}]`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseUpdate([]byte(tt.payload), Limits{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if items == nil {
				t.Fatalf("expected non-nil items")
			}
			if len(items) != tt.want {
				t.Fatalf("expected %d items, got %d", tt.want, len(items))
			}
		})
	}
}

func TestParseUpdate_Nested(t *testing.T) {
	payload := `[
		{"id":"1","content":"build","status":"in_progress","children":[
			{"id":"1.1","content":"parser","status":"completed"},
			{"id":"1.2","content":"renderer","status":"pending","children":[
				{"id":"1.2.1","content":"escaping","status":"pending"}
			]}
		]}
	]`
	items, err := ParseUpdate([]byte(payload), Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := items[0].Children[1].Children[0].ID; got != "1.2.1" {
		t.Fatalf("expected nested id 1.2.1, got %q", got)
	}
	if got := items[0].Status; got != StatusInProgress {
		t.Fatalf("expected in_progress, got %q", got)
	}
}

func TestParseUpdate_NumericIDKeepsForm(t *testing.T) {
	items, err := ParseUpdate([]byte(`[{"id":12,"content":"a","status":"pending"}]`), Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ID != "12" {
		t.Fatalf("expected id 12, got %q", items[0].ID)
	}
}

func TestParseUpdate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantErr  error
		wantPath string
	}{
		{"empty payload", ``, ErrMissingTodos, "todos"},
		{"null payload", `null`, ErrMissingTodos, "todos"},
		{"malformed json", `[{`, ErrInvalidShape, "todos"},
		{"string payload", `"todo"`, ErrInvalidShape, "todos"},
		{"concatenated lists", `[{"content":"a","status":"pending"}][{"content":"b","status":"pending","done":true}]`, ErrInvalidShape, "todos"},
		{"trailing garbage", `[{"content":"a","status":"pending"}] junk`, ErrInvalidShape, "todos"},
		{"object without items", `{"todos":[]}`, ErrInvalidShape, "todos"},
		{"items not array", `{"items":{}}`, ErrInvalidShape, "todos"},
		{"non-object item", `["write tests"]`, ErrInvalidItem, "todos[0]"},
		{"missing status", `[{"content":"a"}]`, ErrMissingStatus, "todos[0].status"},
		{"null status", `[{"content":"a","status":null}]`, ErrMissingStatus, "todos[0].status"},
		{"unknown status", `[{"content":"a","status":"done"}]`, ErrInvalidStatus, "todos[0].status"},
		{"display status", `[{"content":"a","status":"In Progress"}]`, ErrInvalidStatus, "todos[0].status"},
		{"numeric status", `[{"content":"a","status":1}]`, ErrInvalidStatus, "todos[0].status"},
		{"missing content", `[{"status":"pending"}]`, ErrEmptyContent, "todos[0].content"},
		{"blank content", `[{"content":"  ","status":"pending"}]`, ErrEmptyContent, "todos[0].content"},
		{"legacy done", `[{"content":"a","status":"pending","done":false}]`, ErrLegacyField, "todos[0].done"},
		{"legacy title", `[{"title":"a","content":"a","status":"pending"}]`, ErrLegacyField, "todos[0].title"},
		{"legacy nested", `{"items":[{"content":"a","status":"pending","children":[{"content":"b","status":"pending","done":true}]}]}`, ErrLegacyField, "todos.items[0].children[0].done"},
		{"bad id", `[{"id":true,"content":"a","status":"pending"}]`, ErrInvalidID, "todos[0].id"},
		{"bad children", `[{"content":"a","status":"pending","children":"b"}]`, ErrInvalidChildren, "todos[0].children"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseUpdate([]byte(tt.payload), Limits{})
			if err == nil {
				t.Fatalf("expected error, got items %+v", items)
			}
			if items != nil {
				t.Fatalf("expected no items on rejection, got %+v", items)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			found := false
			for _, issue := range validationErr.Issues {
				if issue.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected an issue at %q, got %v", tt.wantPath, err)
			}
		})
	}
}

func TestParseUpdate_ReportsEveryIssue(t *testing.T) {
	payload := `[{"content":"","status":"pending"},{"content":"b","status":"nope"},{"title":"c","status":"pending","content":"c"}]`
	_, err := ParseUpdate([]byte(payload), Limits{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(validationErr.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(validationErr.Issues), err)
	}
	for _, want := range []error{ErrEmptyContent, ErrInvalidStatus, ErrLegacyField} {
		if !errors.Is(err, want) {
			t.Errorf("expected error to match %v", want)
		}
	}
	if !strings.HasPrefix(err.Error(), "invalid todo list: ") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestParseUpdate_InvalidStatusListsValidValues(t *testing.T) {
	_, err := ParseUpdate([]byte(`[{"content":"a","status":"done"}]`), Limits{})
	if err == nil || !strings.Contains(err.Error(), "pending, in_progress, completed") {
		t.Fatalf("expected valid statuses in message, got %v", err)
	}
}

func TestDecodeUpdate_Limits(t *testing.T) {
	deep := map[string]any{"content": "leaf", "status": "pending"}
	for i := 0; i < 3; i++ {
		deep = map[string]any{"content": fmt.Sprintf("level %d", i), "status": "pending", "children": []any{deep}}
	}
	tree := []any{deep}

	if _, err := DecodeUpdate(tree, Limits{MaxDepth: 4}); err != nil {
		t.Fatalf("depth 4 should be accepted: %v", err)
	}
	if _, err := DecodeUpdate(tree, Limits{MaxDepth: 3}); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}

	wide := make([]any, 0, 5)
	for i := 0; i < 5; i++ {
		wide = append(wide, map[string]any{"content": "x", "status": "pending"})
	}
	if _, err := DecodeUpdate(wide, Limits{MaxItems: 5}); err != nil {
		t.Fatalf("5 items should be accepted: %v", err)
	}
	_, err := DecodeUpdate(wide, Limits{MaxItems: 4})
	if !errors.Is(err, ErrTooManyItems) {
		t.Fatalf("expected ErrTooManyItems, got %v", err)
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Issues) != 1 {
		t.Fatalf("expected a single size issue, got %v", validationErr.Issues)
	}
}

func TestDecodeUpdate_CapsReportedIssues(t *testing.T) {
	entries := make([]any, 0, 50)
	for i := 0; i < 50; i++ {
		entries = append(entries, map[string]any{"content": "", "status": "pending"})
	}
	_, err := DecodeUpdate(entries, Limits{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(validationErr.Issues) != maxReportedIssues {
		t.Fatalf("expected %d issues, got %d", maxReportedIssues, len(validationErr.Issues))
	}
}

func TestDecodeUpdate_TypedInput(t *testing.T) {
	items, err := DecodeUpdate([]Item{{ID: "1", Content: "a", Status: StatusPending}}, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Content != "a" {
		t.Fatalf("unexpected items %+v", items)
	}

	if _, err := DecodeUpdate(List{Items: []Item{{Content: "a", Status: StatusPending}}}, Limits{}); err != nil {
		t.Fatalf("wrapper should be accepted: %v", err)
	}

	done := true
	if _, err := DecodeUpdate([]Item{{Content: "a", Status: StatusPending, Done: &done}}, Limits{}); !errors.Is(err, ErrLegacyField) {
		t.Fatalf("expected ErrLegacyField for typed legacy item, got %v", err)
	}
	if _, err := DecodeUpdate([]Item{{Content: "a"}}, Limits{}); !errors.Is(err, ErrMissingStatus) {
		t.Fatalf("expected ErrMissingStatus for typed item without status, got %v", err)
	}
}

func TestDecodeUpdate_YAMLStyleValues(t *testing.T) {
	raw := map[string]any{
		"items": []any{
			map[string]any{"id": 1, "content": "a", "status": "pending"},
		},
	}
	items, err := DecodeUpdate(raw, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].ID != "1" {
		t.Fatalf("expected id 1, got %q", items[0].ID)
	}
}

func TestDecodeUpdate_Nil(t *testing.T) {
	if _, err := DecodeUpdate(nil, Limits{}); !errors.Is(err, ErrMissingTodos) {
		t.Fatalf("expected ErrMissingTodos, got %v", err)
	}
}

func TestDecodeUpdate_RawTrailingData(t *testing.T) {
	for _, payload := range []string{
		`[{"content":"a","status":"pending"}] junk`,
		`[{"content":"a","status":"pending"}] {"items":[]}`,
	} {
		items, err := DecodeUpdate(json.RawMessage(payload), Limits{})
		if !errors.Is(err, ErrInvalidShape) {
			t.Fatalf("DecodeUpdate(%s): expected ErrInvalidShape, got items %+v err %v", payload, items, err)
		}
	}

	items, err := DecodeUpdate(json.RawMessage("[{\"content\":\"a\",\"status\":\"pending\"}]\n  \n"), Limits{})
	if err != nil || len(items) != 1 {
		t.Fatalf("expected trailing whitespace to be accepted, got %+v, %v", items, err)
	}
}
