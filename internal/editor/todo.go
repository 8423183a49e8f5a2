package editor

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/amonks/taskprompt/todo"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEditCancelled is returned when the edited buffer holds no list.
	ErrEditCancelled = errors.New("edit cancelled: no todo list")

	// ErrUnchanged is returned when the editor saved the buffer untouched.
	ErrUnchanged = errors.New("todo list unchanged")
)

const editHeader = `# Edit the todo list, then save and quit.
# Each item needs content and a status: pending, in_progress, or completed.
# Nest subtasks under children. Delete everything to cancel.
`

// editItem is the YAML form of a todo item. Legacy title/done fields are
// rewritten as content/status so the saved list passes validation.
type editItem struct {
	ID       string     `yaml:"id,omitempty"`
	Content  string     `yaml:"content"`
	Status   string     `yaml:"status"`
	Children []editItem `yaml:"children,omitempty"`
}

func toEditItems(items []todo.Item) []editItem {
	out := make([]editItem, 0, len(items))
	for _, item := range items {
		status := item.Status
		switch {
		case item.IsCompleted():
			status = todo.StatusCompleted
		case !status.IsValid():
			status = todo.StatusPending
		}
		content := item.DisplayContent()
		if content == "" {
			content = item.Content
		}
		out = append(out, editItem{
			ID:       item.ID,
			Content:  content,
			Status:   string(status),
			Children: toEditItems(item.Children),
		})
	}
	return out
}

// RenderTodoYAML renders items as the commented YAML buffer shown in the
// editor.
func RenderTodoYAML(items []todo.Item) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(editHeader)
	if len(items) == 0 {
		buf.WriteString("[]\n")
		return buf.String(), nil
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toEditItems(items)); err != nil {
		return "", fmt.Errorf("render todo list: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render todo list: %w", err)
	}
	return buf.String(), nil
}

// ParseTodoYAML decodes an edited buffer into the generic form
// todo.DecodeUpdate validates. A buffer with only comments is a cancel.
func ParseTodoYAML(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if raw == nil {
		return nil, ErrEditCancelled
	}
	return raw, nil
}

// EditTodos opens items in the editor and returns the edited list, still
// unvalidated.
func EditTodos(items []todo.Item) (any, error) {
	content, err := RenderTodoYAML(items)
	if err != nil {
		return nil, err
	}

	file, err := os.CreateTemp("", "tp-todos-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(path); err != nil {
		return nil, err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}
	if string(edited) == content {
		return nil, ErrUnchanged
	}
	return ParseTodoYAML(edited)
}
