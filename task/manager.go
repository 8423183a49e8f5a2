// Package task keeps per-task reminder input and todo lists and renders their
// prompt sections.
//
// State lives in the shared state file (see internal/state), so the CLI, the
// MCP tool server and the RPC server all see the same tasks. Todo updates are
// validated before the state lock is taken; a rejected update never touches
// the stored tree.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/amonks/taskprompt/internal/paths"
	"github.com/amonks/taskprompt/internal/state"
	internalstrings "github.com/amonks/taskprompt/internal/strings"
	"github.com/amonks/taskprompt/reminder"
	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/todo"
	"github.com/google/uuid"
)

var (
	// ErrTaskNotFound is returned when a task has never been recorded.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmptyTaskID is returned when a task id is blank.
	ErrEmptyTaskID = errors.New("task id is required")
)

// OpenOptions configures the task manager.
type OpenOptions struct {
	// StateDir overrides the state directory.
	StateDir string

	// Limits bounds accepted todo trees. Zero values use defaults.
	Limits todo.Limits

	// Logger receives update and render events. Defaults to a no-op logger.
	Logger Logger

	// Now overrides the clock.
	Now func() time.Time

	// NewRevision overrides revision id generation.
	NewRevision func() string
}

// Manager reads and writes task state.
type Manager struct {
	store       *state.Store
	limits      todo.Limits
	logger      Logger
	now         func() time.Time
	newRevision func() string
}

// Task is a stored task with its todo tree normalized.
type Task struct {
	ID        string
	Input     string
	Todos     []todo.Item
	Reason    string
	Revision  string
	CreatedAt time.Time
	UpdatedAt time.Time
	History   []state.Revision
}

// Reminder returns the reminder text extracted from the task input.
func (t Task) Reminder() string {
	return reminder.Extract(t.Input)
}

// Summary returns the todo list with counts.
func (t Task) Summary() todo.List {
	return todo.Summarize(t.Todos)
}

// UpdateResult describes an accepted todo update.
type UpdateResult struct {
	TaskID   string
	Revision string
	// Previous is the revision that was replaced, "" for the first update.
	Previous string
	Summary  todo.List
}

// Open creates a task manager.
func Open(opts OpenOptions) (*Manager, error) {
	dir := opts.StateDir
	if internalstrings.IsBlank(dir) {
		defaultDir, err := paths.DefaultStateDir()
		if err != nil {
			return nil, err
		}
		dir = defaultDir
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	newRevision := opts.NewRevision
	if newRevision == nil {
		newRevision = uuid.NewString
	}

	return &Manager{
		store:       state.NewStore(dir),
		limits:      opts.Limits,
		logger:      logger,
		now:         now,
		newRevision: newRevision,
	}, nil
}

// StatePath returns the state file the manager reads and writes.
func (m *Manager) StatePath() string {
	return m.store.Path()
}

// Limits returns the todo limits enforced by UpdateTodos.
func (m *Manager) Limits() todo.Limits {
	return m.limits
}

// SetInput records the raw task text. Reminders are extracted from it on
// every read.
func (m *Manager) SetInput(taskID, text string) (Task, error) {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return Task{}, err
	}

	var stored state.Task
	err = m.store.Update(func(st *state.State) error {
		record := m.record(st, taskID)
		record.Input = text
		record.UpdatedAt = m.now()
		st.Tasks[taskID] = record
		stored = record
		return nil
	})
	if err != nil {
		return Task{}, fmt.Errorf("set input for %s: %w", taskID, err)
	}
	return fromRecord(stored), nil
}

// UpdateTodos validates raw and replaces the task's todo tree with it.
//
// raw is a decoded JSON or YAML value (or a typed []todo.Item / todo.List).
// Invalid input returns a *todo.ValidationError and leaves the stored tree
// and revision unchanged.
func (m *Manager) UpdateTodos(taskID string, raw any, reason string) (UpdateResult, error) {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return UpdateResult{}, err
	}
	reason = internalstrings.NormalizeWhitespace(reason)

	items, err := todo.DecodeUpdate(raw, m.limits)
	if err != nil {
		m.logger.TodoRejected(TodoRejectedLog{TaskID: taskID, Reason: reason, Err: err})
		return UpdateResult{}, fmt.Errorf("update todos for %s: %w", taskID, err)
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("encode todos: %w", err)
	}

	summary := todo.Summarize(items)
	result := UpdateResult{TaskID: taskID, Summary: summary}
	err = m.store.Update(func(st *state.State) error {
		record := m.record(st, taskID)
		now := m.now()
		result.Previous = record.Revision
		result.Revision = m.newRevision()

		record.Todos = encoded
		record.Reason = reason
		record.Revision = result.Revision
		record.UpdatedAt = now
		record.AppendHistory(state.Revision{
			ID:        result.Revision,
			Reason:    reason,
			At:        now,
			Total:     summary.TotalCount,
			Completed: summary.CompletedCount,
		})
		st.Tasks[taskID] = record
		return nil
	})
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update todos for %s: %w", taskID, err)
	}

	m.logger.TodoUpdate(TodoUpdateLog{
		TaskID:   taskID,
		Revision: result.Revision,
		Reason:   reason,
		Summary:  summary,
	})
	return result, nil
}

// Task returns a stored task.
func (m *Manager) Task(taskID string) (Task, error) {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return Task{}, err
	}
	st, err := m.store.Load()
	if err != nil {
		return Task{}, err
	}
	record, ok := st.Tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return fromRecord(record), nil
}

// List returns all tasks, most recently updated first.
func (m *Manager) List() ([]Task, error) {
	st, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(st.Tasks))
	for _, record := range st.Tasks {
		tasks = append(tasks, fromRecord(record))
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].UpdatedAt.Equal(tasks[j].UpdatedAt) {
			return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// Clear forgets a task.
func (m *Manager) Clear(taskID string) error {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return err
	}
	return m.store.Update(func(st *state.State) error {
		if _, ok := st.Tasks[taskID]; !ok {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		delete(st.Tasks, taskID)
		return nil
	})
}

// Sections renders the reminder and todo sections for a task. A task that
// has not been recorded renders as empty sections.
func (m *Manager) Sections(taskID string) (section.Sections, error) {
	taskID, err := normalizeTaskID(taskID)
	if err != nil {
		return section.Sections{}, err
	}
	st, err := m.store.Load()
	if err != nil {
		return section.Sections{}, err
	}
	record := st.Tasks[taskID]
	sections := section.Render(record.Input, record.Todos)
	m.logger.Sections(SectionsLog{TaskID: taskID, Sections: sections})
	return sections, nil
}

func (m *Manager) record(st *state.State, taskID string) state.Task {
	record, ok := st.Tasks[taskID]
	if !ok {
		now := m.now()
		record = state.Task{ID: taskID, CreatedAt: now, UpdatedAt: now}
	}
	return record
}

func fromRecord(record state.Task) Task {
	return Task{
		ID:        record.ID,
		Input:     record.Input,
		Todos:     todo.Normalize(record.Todos),
		Reason:    record.Reason,
		Revision:  record.Revision,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		History:   record.History,
	}
}

func normalizeTaskID(taskID string) (string, error) {
	taskID = internalstrings.TrimSpace(taskID)
	if taskID == "" {
		return "", ErrEmptyTaskID
	}
	return taskID, nil
}
