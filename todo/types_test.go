package todo

import "testing"

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusPending, true},
		{StatusInProgress, true},
		{StatusCompleted, true},
		{Status("done"), false},
		{Status("In Progress"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.valid {
				t.Errorf("Status(%q).IsValid() = %v, want %v", tt.status, got, tt.valid)
			}
		})
	}
}

func TestStatus_DisplayName(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "Pending"},
		{StatusInProgress, "In Progress"},
		{StatusCompleted, "Completed"},
		{Status("blocked"), "blocked"},
	}

	for _, tt := range tests {
		if got := tt.status.DisplayName(); got != tt.want {
			t.Errorf("Status(%q).DisplayName() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestItem_DisplayContent(t *testing.T) {
	if got := (Item{Title: ptr("legacy"), Content: "new"}).DisplayContent(); got != "legacy" {
		t.Errorf("expected title to win, got %q", got)
	}
	if got := (Item{Title: ptr(""), Content: "new"}).DisplayContent(); got != "" {
		t.Errorf("expected a present empty title to win, got %q", got)
	}
	if got := (Item{Content: "new"}).DisplayContent(); got != "new" {
		t.Errorf("expected content, got %q", got)
	}
	if got := (Item{}).DisplayContent(); got != "" {
		t.Errorf("expected empty content, got %q", got)
	}
}

func TestItem_DisplayStatus(t *testing.T) {
	done := true
	notDone := false
	tests := []struct {
		name string
		item Item
		want string
	}{
		{"status wins over done", Item{Status: StatusInProgress, Done: &done}, "In Progress"},
		{"unknown status passes through", Item{Status: "blocked"}, "blocked"},
		{"legacy done", Item{Done: &done}, "Completed"},
		{"legacy not done", Item{Done: &notDone}, "Pending"},
		{"nothing set", Item{}, "Pending"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.DisplayStatus(); got != tt.want {
				t.Errorf("DisplayStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestItem_IsCompleted(t *testing.T) {
	done := true
	if !(Item{Status: StatusCompleted}).IsCompleted() {
		t.Error("completed status should count as completed")
	}
	if (Item{Status: StatusPending, Done: &done}).IsCompleted() {
		t.Error("status should take precedence over legacy done")
	}
	if !(Item{Done: &done}).IsCompleted() {
		t.Error("legacy done should count as completed")
	}
}

func ptr[T any](value T) *T {
	return &value
}
