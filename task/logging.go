package task

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amonks/taskprompt/internal/ui"
	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/todo"
	"github.com/charmbracelet/lipgloss"
)

// Logger captures task events.
type Logger interface {
	TodoUpdate(TodoUpdateLog)
	TodoRejected(TodoRejectedLog)
	Sections(SectionsLog)
}

// TodoUpdateLog captures an accepted todo update.
type TodoUpdateLog struct {
	TaskID   string
	Revision string
	Reason   string
	Summary  todo.List
}

// TodoRejectedLog captures a rejected todo update.
type TodoRejectedLog struct {
	TaskID string
	Reason string
	Err    error
}

// SectionsLog captures rendered prompt sections.
type SectionsLog struct {
	TaskID   string
	Sections section.Sections
}

type noopLogger struct{}

func (noopLogger) TodoUpdate(TodoUpdateLog)     {}
func (noopLogger) TodoRejected(TodoRejectedLog) {}
func (noopLogger) Sections(SectionsLog)         {}

// ConsoleLogger writes formatted log output.
type ConsoleLogger struct {
	writer      io.Writer
	headerStyle lipgloss.Style
	errorStyle  lipgloss.Style
	started     bool
}

// NewConsoleLogger builds a styled logger for interactive output.
func NewConsoleLogger(writer io.Writer) *ConsoleLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleLogger{
		writer:      writer,
		headerStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		errorStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
	}
}

// TodoUpdate logs an accepted update.
func (logger *ConsoleLogger) TodoUpdate(entry TodoUpdateLog) {
	if logger == nil {
		return
	}
	label := fmt.Sprintf("Todo list updated for %s:", entry.TaskID)
	lines := []string{
		formatLogLabel(logger.headerStyle.Render(label), documentIndent),
		formatLogBody(fmt.Sprintf("revision %s, %d of %d completed",
			entry.Revision, entry.Summary.CompletedCount, entry.Summary.TotalCount), subdocumentIndent, false),
	}
	if strings.TrimSpace(entry.Reason) != "" {
		lines = append(lines, formatLogBody(entry.Reason, subdocumentIndent, true))
	}
	if len(entry.Summary.Items) > 0 {
		lines = append(lines, formatLogBody(formatItemTable(entry.Summary.Items), subdocumentIndent, false))
	}
	logger.writeBlock(lines...)
}

// TodoRejected logs a rejected update with every validation issue.
func (logger *ConsoleLogger) TodoRejected(entry TodoRejectedLog) {
	if logger == nil {
		return
	}
	label := fmt.Sprintf("Todo update rejected for %s:", entry.TaskID)
	body := "-"
	if entry.Err != nil {
		body = entry.Err.Error()
		var validationErr *todo.ValidationError
		if errors.As(entry.Err, &validationErr) {
			issues := make([]string, 0, len(validationErr.Issues))
			for _, issue := range validationErr.Issues {
				issues = append(issues, "- "+issue.Error())
			}
			body = strings.Join(issues, "\n")
		}
	}
	logger.writeBlock(
		formatLogLabel(logger.errorStyle.Render(label), documentIndent),
		formatLogBody(body, subdocumentIndent, false),
	)
}

// Sections logs rendered sections.
func (logger *ConsoleLogger) Sections(entry SectionsLog) {
	if logger == nil {
		return
	}
	label := fmt.Sprintf("Prompt sections for %s:", entry.TaskID)
	body := strings.TrimSpace(strings.Join([]string{entry.Sections.Reminder, entry.Sections.Todos}, "\n\n"))
	logger.writeBlock(
		formatLogLabel(logger.headerStyle.Render(label), documentIndent),
		formatLogBody(body, subdocumentIndent, false),
	)
}

func (logger *ConsoleLogger) writeBlock(lines ...string) {
	if len(lines) == 0 {
		return
	}
	if logger.started {
		fmt.Fprintln(logger.writer)
	}
	logger.started = true
	for _, line := range lines {
		fmt.Fprintln(logger.writer, line)
	}
}

func normalizeLogBody(value string) string {
	value = strings.TrimRight(value, "\r\n")
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatLogLabel(label string, indent int) string {
	if strings.TrimSpace(label) == "" {
		return ""
	}
	return IndentBlock(label, indent)
}

func formatLogBody(body string, indent int, wrap bool) string {
	body = normalizeLogBody(body)
	if wrap {
		return ReflowIndentedText(body, lineWidth, indent)
	}
	return IndentBlock(body, indent)
}

func formatItemTable(items []todo.Item) string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			ui.TruncateTableCell(item.DisplayContent()),
			item.DisplayStatus(),
		})
	}
	return strings.TrimRight(ui.FormatTable([]string{"#", "Content", "Status"}, rows), "\n")
}
