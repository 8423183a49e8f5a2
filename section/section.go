// Package section renders reminders and todo lists as markdown prompt
// sections.
//
// Every renderer returns "" when there is nothing to show, so a prompt
// assembler can call them unconditionally. Renderers never fail; malformed
// input degrades to an omitted section.
package section

import (
	"strconv"
	"strings"

	"github.com/amonks/taskprompt/reminder"
	"github.com/amonks/taskprompt/todo"
)

// Delimiter opens and closes every section.
const Delimiter = "===="

// Headers and fixed sentences. The wording is part of the prompt the model
// reads; change it deliberately.
const (
	ReminderHeader      = "USER REMINDERS"
	ReminderExplanation = "The user has asked you to keep the following reminders in mind for the whole task. Follow them unless they conflict with a direct instruction."

	TodoHeader      = "REMINDERS"
	TodoExplanation = "Below is your current list of reminders for this task. Keep them updated as you progress."
	TodoUpdateNote  = "IMPORTANT: When task status changes, remember to call the `update_todo_list` tool to update your progress."

	todoTableHeader    = "| # | Content | Status |"
	todoTableSeparator = "|---|---------|--------|"
)

// Sections holds both rendered blocks for a task.
type Sections struct {
	Reminder string `json:"reminder"`
	Todos    string `json:"todos"`
}

// Empty reports whether both sections are omitted.
func (s Sections) Empty() bool {
	return s.Reminder == "" && s.Todos == ""
}

// Render extracts reminders from taskText and renders both sections.
func Render(taskText string, todos any) Sections {
	return Sections{
		Reminder: Reminder(reminder.Extract(taskText)),
		Todos:    Todos(todos),
	}
}

// Reminder renders extracted reminder text. Blank text yields "".
func Reminder(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := []string{
		Delimiter,
		"",
		ReminderHeader,
		"",
		ReminderExplanation,
		"",
		text,
		"",
		Delimiter,
	}
	return strings.Join(lines, "\n")
}

// Todos renders a todo list as a markdown table.
//
// input may be any shape todo.Normalize accepts. Only top-level items become
// rows; children are not flattened into the table. An empty or unrecognized
// list yields "".
func Todos(input any) string {
	items := todo.Normalize(input)
	if len(items) == 0 {
		return ""
	}

	lines := make([]string, 0, len(items)+10)
	lines = append(lines,
		Delimiter,
		"",
		TodoHeader,
		"",
		TodoExplanation,
		"",
		todoTableHeader,
		todoTableSeparator,
	)
	for i, item := range items {
		lines = append(lines, "| "+strconv.Itoa(i+1)+" | "+EscapeCell(item.DisplayContent())+" | "+item.DisplayStatus()+" |")
	}
	lines = append(lines, "", TodoUpdateNote, "")
	return strings.Join(lines, "\n")
}

// EscapeCell escapes text for a markdown table cell. Backslashes are escaped
// before pipes so the inserted escapes are not escaped again.
func EscapeCell(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, "|", `\|`)
}
