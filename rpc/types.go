package rpc

import (
	"encoding/json"

	"github.com/amonks/taskprompt/todo"
)

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type taskRequest struct {
	TaskID string `json:"task_id"`
}

type todosUpdateRequest struct {
	TaskID string          `json:"task_id"`
	Todos  json.RawMessage `json:"todos"`
	Reason string          `json:"reason,omitempty"`
}

type taskInputRequest struct {
	TaskID string `json:"task_id"`
	Input  string `json:"input"`
}

type reminderExtractRequest struct {
	Text string `json:"text"`
}

// UpdateResponse describes an accepted todo update.
type UpdateResponse struct {
	TaskID   string    `json:"task_id"`
	Revision string    `json:"revision"`
	Previous string    `json:"previous,omitempty"`
	List     todo.List `json:"list"`
}

// ShowResponse is a stored todo list.
type ShowResponse struct {
	TaskID   string    `json:"task_id"`
	Revision string    `json:"revision,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	List     todo.List `json:"list"`
}

// InputResponse reports the reminders found in recorded task input.
type InputResponse struct {
	TaskID   string `json:"task_id"`
	Reminder string `json:"reminder"`
}

// ReminderResponse is the result of extracting reminders from text.
type ReminderResponse struct {
	Reminder string `json:"reminder"`
	Found    bool   `json:"found"`
	Section  string `json:"section"`
}
