// Package state manages the shared taskprompt state file.
//
// The state file (~/.local/state/taskprompt/state.json) stores the current
// input text and todo tree for every task. All access is serialized through
// file locking so the CLI, the MCP server and the RPC server can share it.
package state

import (
	"encoding/json"
	"time"
)

// MaxHistory is the number of revisions kept per task.
const MaxHistory = 20

// State represents the persisted state file.
type State struct {
	Tasks map[string]Task `json:"tasks"`
}

// Task stores what is known about one task.
type Task struct {
	ID string `json:"id"`

	// Input is the raw task text as submitted, reminder tags included.
	Input string `json:"input,omitempty"`

	// Todos holds the current todo tree exactly as stored. Older files may hold
	// a {items, completedCount, totalCount} wrapper or done/title items, so it
	// is kept raw and normalized on read.
	Todos json.RawMessage `json:"todos,omitempty"`

	// Reason is the reason given with the latest todo update.
	Reason string `json:"reason,omitempty"`

	// Revision identifies the latest todo update.
	Revision string `json:"revision,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// History lists recent todo updates, oldest first.
	History []Revision `json:"history,omitempty"`
}

// Revision records one accepted todo update.
type Revision struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
}

// AppendHistory adds rev to the task history, dropping the oldest entries
// beyond MaxHistory.
func (t *Task) AppendHistory(rev Revision) {
	t.History = append(t.History, rev)
	if extra := len(t.History) - MaxHistory; extra > 0 {
		t.History = append([]Revision(nil), t.History[extra:]...)
	}
}
