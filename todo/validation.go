package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amonks/taskprompt/internal/validation"
)

var (
	// ErrMissingTodos is returned when an update carries no todo list.
	ErrMissingTodos = errors.New("todos is required")

	// ErrInvalidShape is returned when the todo list is neither an array of
	// items nor an object with an items array.
	ErrInvalidShape = errors.New("todos must be an array of items or an object with an items array")

	// ErrInvalidItem is returned when an entry in the list is not an object.
	ErrInvalidItem = errors.New("todo item must be an object")

	// ErrEmptyContent is returned when an item has no content.
	ErrEmptyContent = errors.New("content must be a non-empty string")

	// ErrMissingStatus is returned when an item has no status.
	ErrMissingStatus = errors.New("status is required")

	// ErrInvalidStatus is returned when an item's status is not a known value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrLegacyField is returned when an item uses a field from the older
	// done/title schema.
	ErrLegacyField = errors.New("legacy field is not allowed")

	// ErrInvalidID is returned when an item's id is not a string or number.
	ErrInvalidID = errors.New("id must be a string")

	// ErrInvalidChildren is returned when children is not an array.
	ErrInvalidChildren = errors.New("children must be an array")

	// ErrTooDeep is returned when the tree nests deeper than Limits.MaxDepth.
	ErrTooDeep = errors.New("todo tree exceeds maximum depth")

	// ErrTooManyItems is returned when the tree holds more than Limits.MaxItems.
	ErrTooManyItems = errors.New("todo tree exceeds maximum item count")
)

// Default tree limits.
const (
	DefaultMaxDepth = 8
	DefaultMaxItems = 500
)

// maxReportedIssues caps how many problems a single ValidationError lists.
const maxReportedIssues = 20

var legacyFields = []string{"done", "title"}

// Limits bounds the size of an accepted todo tree. Zero fields use defaults.
type Limits struct {
	// MaxDepth is the number of nesting levels allowed; top-level items are
	// level 1.
	MaxDepth int

	// MaxItems is the total number of items allowed across the tree.
	MaxItems int
}

// DefaultLimits returns the limits applied when none are configured.
func DefaultLimits() Limits {
	return Limits{MaxDepth: DefaultMaxDepth, MaxItems: DefaultMaxItems}
}

func (l Limits) withDefaults() Limits {
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	if l.MaxItems <= 0 {
		l.MaxItems = DefaultMaxItems
	}
	return l
}

// Issue is one problem found while validating a todo tree.
type Issue struct {
	// Path locates the offending value, e.g. "todos[0].children[1].status".
	Path string
	Err  error
}

func (i Issue) Error() string {
	if i.Path == "" {
		return i.Err.Error()
	}
	return i.Path + ": " + i.Err.Error()
}

func (i Issue) Unwrap() error {
	return i.Err
}

// ValidationError rejects a whole todo update. errors.Is matches any of the
// sentinel errors behind its issues.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Error())
	}
	return "invalid todo list: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		errs = append(errs, issue)
	}
	return errs
}

// ParseUpdate decodes a JSON todo list and validates it with DecodeUpdate.
func ParseUpdate(data []byte, limits Limits) ([]Item, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, rejection("todos", ErrMissingTodos)
	}
	raw, err := decodeNumbers(data)
	if err != nil {
		return nil, rejection("todos", fmt.Errorf("%w: %v", ErrInvalidShape, err))
	}
	return DecodeUpdate(raw, limits)
}

// DecodeUpdate validates a proposed todo list and returns it in canonical form.
//
// raw is a decoded JSON or YAML value: either a sequence of items or an object
// with an items sequence. Typed values ([]Item, List) are accepted too. Every
// item at every depth must have a non-empty content and one of the three
// statuses, and must not carry done or title. Any problem rejects the whole
// list with a *ValidationError; nothing is partially accepted.
func DecodeUpdate(raw any, limits Limits) ([]Item, error) {
	if raw == nil {
		return nil, rejection("todos", ErrMissingTodos)
	}
	raw, err := generic(raw)
	if err != nil {
		return nil, rejection("todos", fmt.Errorf("%w: %v", ErrInvalidShape, err))
	}
	if raw == nil {
		return nil, rejection("todos", ErrMissingTodos)
	}

	var entries []any
	path := "todos"
	switch ShapeOf(raw) {
	case ShapeArray:
		entries = raw.([]any)
	case ShapeWrapper:
		entries = raw.(map[string]any)["items"].([]any)
		path = "todos.items"
	default:
		return nil, rejection("todos", ErrInvalidShape)
	}

	v := validator{limits: limits.withDefaults()}
	items := v.items(entries, path, 1)
	if len(v.issues) > 0 {
		return nil, &ValidationError{Issues: v.issues}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func rejection(path string, err error) error {
	return &ValidationError{Issues: []Issue{{Path: path, Err: err}}}
}

// generic turns typed values into the decoded-JSON form the validator walks.
func generic(raw any) (any, error) {
	var data []byte
	switch value := raw.(type) {
	case []any, map[string]any:
		return raw, nil
	case json.RawMessage:
		data = value
	case []byte:
		data = value
	default:
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		data = encoded
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return decodeNumbers(data)
}

func decodeNumbers(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, err
	}
	// A second value would otherwise be dropped unvalidated.
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the todo list")
	}
	return decoded, nil
}

type validator struct {
	limits Limits
	count  int
	full   bool
	issues []Issue
}

func (v *validator) report(path string, err error) {
	if len(v.issues) >= maxReportedIssues {
		return
	}
	v.issues = append(v.issues, Issue{Path: path, Err: err})
}

func (v *validator) items(entries []any, path string, depth int) []Item {
	items := make([]Item, 0, len(entries))
	for i, entry := range entries {
		if v.full {
			return nil
		}
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		v.count++
		if v.count > v.limits.MaxItems {
			v.full = true
			v.report("todos", fmt.Errorf("%w: more than %d items", ErrTooManyItems, v.limits.MaxItems))
			return nil
		}
		if item, ok := v.item(entry, itemPath, depth); ok {
			items = append(items, item)
		}
	}
	return items
}

func (v *validator) item(entry any, path string, depth int) (Item, bool) {
	fields, ok := entry.(map[string]any)
	if !ok {
		v.report(path, ErrInvalidItem)
		return Item{}, false
	}
	if depth > v.limits.MaxDepth {
		v.report(path, fmt.Errorf("%w: more than %d levels", ErrTooDeep, v.limits.MaxDepth))
		return Item{}, false
	}

	valid := true
	for _, field := range legacyFields {
		if _, present := fields[field]; present {
			v.report(path+"."+field, fmt.Errorf("%w: %q (use content and status)", ErrLegacyField, field))
			valid = false
		}
	}

	var item Item
	if rawID, present := fields["id"]; present && rawID != nil {
		id := scalarString(rawID)
		if id == "" {
			if _, isString := rawID.(string); !isString {
				v.report(path+".id", ErrInvalidID)
				valid = false
			}
		}
		item.ID = id
	}

	content, _ := fields["content"].(string)
	if strings.TrimSpace(content) == "" {
		v.report(path+".content", ErrEmptyContent)
		valid = false
	}
	item.Content = content

	rawStatus, present := fields["status"]
	if !present || rawStatus == nil {
		v.report(path+".status", ErrMissingStatus)
		valid = false
	} else {
		status, _ := rawStatus.(string)
		if !Status(status).IsValid() {
			v.report(path+".status", validation.FormatInvalidValueError(ErrInvalidStatus, rawStatus, ValidStatuses()))
			valid = false
		}
		item.Status = Status(status)
	}

	if rawChildren, present := fields["children"]; present && rawChildren != nil {
		children, ok := rawChildren.([]any)
		if !ok {
			v.report(path+".children", ErrInvalidChildren)
			valid = false
		} else if len(children) > 0 {
			item.Children = v.items(children, path+".children", depth+1)
		}
	}

	return item, valid
}
