package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/task"
)

var (
	// ErrServer wraps error messages returned by the server.
	ErrServer = errors.New("taskprompt server error")

	// ErrInvalidRequest wraps rejections such as invalid todo lists.
	ErrInvalidRequest = errors.New("invalid request")
)

// Client calls task RPCs.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given address or URL.
func NewClient(addr string) *Client {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, client: &http.Client{}}
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	return nil
}

// UpdateTodos replaces a task's todo list. todos is sent as JSON.
func (c *Client) UpdateTodos(ctx context.Context, taskID string, todos any, reason string) (UpdateResponse, error) {
	encoded, err := json.Marshal(todos)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("encode todos: %w", err)
	}
	var response UpdateResponse
	err = c.post(ctx, "/todos/update", todosUpdateRequest{TaskID: taskID, Todos: encoded, Reason: reason}, &response)
	return response, err
}

// ShowTodos returns a task's stored todo list.
func (c *Client) ShowTodos(ctx context.Context, taskID string) (ShowResponse, error) {
	var response ShowResponse
	err := c.post(ctx, "/todos/show", taskRequest{TaskID: taskID}, &response)
	return response, err
}

// SetInput records task input text.
func (c *Client) SetInput(ctx context.Context, taskID, input string) (InputResponse, error) {
	var response InputResponse
	err := c.post(ctx, "/tasks/input", taskInputRequest{TaskID: taskID, Input: input}, &response)
	return response, err
}

// Sections renders a task's prompt sections.
func (c *Client) Sections(ctx context.Context, taskID string) (section.Sections, error) {
	var response section.Sections
	err := c.post(ctx, "/sections", taskRequest{TaskID: taskID}, &response)
	return response, err
}

// ExtractReminder extracts reminders from text on the server.
func (c *Client) ExtractReminder(ctx context.Context, text string) (ReminderResponse, error) {
	var response ReminderResponse
	err := c.post(ctx, "/reminder/extract", reminderExtractRequest{Text: text}, &response)
	return response, err
}

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorResponse maps server errors back to sentinels callers can check
// with errors.Is.
func readErrorResponse(resp *http.Response) error {
	message := resp.Status
	var payload errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		if strings.Contains(message, task.ErrTaskNotFound.Error()) {
			return fmt.Errorf("%w: %s", task.ErrTaskNotFound, message)
		}
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, message)
	}
	return fmt.Errorf("%w: %s", ErrServer, message)
}
