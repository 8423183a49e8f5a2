// Package todo defines the hierarchical todo list an agent keeps for a task.
//
// A todo list is a tree of items, each with a three-state status. The whole
// tree is replaced on every update; there is no incremental patching.
//
// Two paths read todo data:
//   - DecodeUpdate and ParseUpdate are strict. They validate a proposed tree
//     and reject it as a whole if anything is wrong, including fields from the
//     older two-state schema (done, title).
//   - Normalize is lenient. It accepts every shape older data may have been
//     stored in and never fails, so rendering always has something to work with.
package todo

// Status represents the state of a todo item.
type Status string

const (
	// StatusPending indicates the item has not been started.
	StatusPending Status = "pending"

	// StatusInProgress indicates the item is being worked on.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the item is finished.
	StatusCompleted Status = "completed"
)

// ValidStatuses returns all valid status values.
func ValidStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable status label. Unknown statuses are
// returned unchanged.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Item is one node of a todo tree.
type Item struct {
	// ID is an optional identifier, typically hierarchical ("1", "1.2").
	ID string `json:"id,omitempty"`

	// Content describes the work.
	Content string `json:"content"`

	// Status is the current state of the item.
	Status Status `json:"status,omitempty"`

	// Children are the item's subtasks, in order.
	Children []Item `json:"children,omitempty"`

	// Title is the description field of the older schema. It is only ever
	// populated when reading stored data. A present title wins over content
	// even when empty.
	Title *string `json:"title,omitempty"`

	// Done is the completion flag of the older schema. It is only ever
	// populated when reading stored data.
	Done *bool `json:"done,omitempty"`
}

// DisplayContent returns the text shown for the item, preferring the legacy
// title whenever the field is present.
func (item Item) DisplayContent() string {
	if item.Title != nil {
		return *item.Title
	}
	return item.Content
}

// DisplayStatus returns the status label shown for the item.
func (item Item) DisplayStatus() string {
	if item.Status != "" {
		return item.Status.DisplayName()
	}
	if item.Done != nil && *item.Done {
		return StatusCompleted.DisplayName()
	}
	return StatusPending.DisplayName()
}

// IsCompleted reports whether the item counts as finished.
func (item Item) IsCompleted() bool {
	if item.Status != "" {
		return item.Status == StatusCompleted
	}
	return item.Done != nil && *item.Done
}

// List is the wrapper shape todo lists were stored in before bare arrays.
type List struct {
	Items          []Item `json:"items"`
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
}
