// Package prompt assembles the model prompt for a task from its input text
// and rendered sections.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	internalstrings "github.com/amonks/taskprompt/internal/strings"
	"github.com/amonks/taskprompt/reminder"
	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/todo"
)

const (
	promptOverrideDir        = ".taskprompt/templates"
	sectionsTemplateName     = "sections.tmpl"
	DefaultTemplateName      = "prompt-task.tmpl"
	SectionsOnlyTemplateName = "prompt-sections.tmpl"
	StatusTemplateName       = "prompt-status.tmpl"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

var blankRuns = regexp.MustCompile(`\n{3,}`)

// PromptData supplies values for prompt templates.
type PromptData struct {
	TaskID          string
	Input           string
	Reminders       string
	ReminderSection string
	TodoSection     string
	Todos           todo.List
}

// NewPromptData builds template data for a task.
func NewPromptData(taskID, input string, items []todo.Item) PromptData {
	reminders := reminder.Extract(input)
	return PromptData{
		TaskID:          taskID,
		Input:           internalstrings.TrimTrailingWhitespace(input),
		Reminders:       reminders,
		ReminderSection: section.Reminder(reminders),
		TodoSection:     section.Todos(items),
		Todos:           todo.Summarize(items),
	}
}

// LoadPrompt loads a prompt template for the repo, preferring an override in
// .taskprompt/templates.
func LoadPrompt(repoPath, name string) (string, error) {
	if internalstrings.IsBlank(name) {
		return "", fmt.Errorf("prompt name is required")
	}

	if repoPath != "" {
		overridePath := filepath.Join(repoPath, promptOverrideDir, name)
		if data, err := os.ReadFile(overridePath); err == nil {
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt override: %w", err)
		}
	}

	return readDefaultPromptTemplate(name)
}

// RenderPrompt renders the prompt with provided data. Omitted sections leave
// no stray blank lines behind.
func RenderPrompt(repoPath, contents string, data PromptData) (string, error) {
	sectionsTemplate, err := LoadPrompt(repoPath, sectionsTemplateName)
	if err != nil {
		return "", fmt.Errorf("load sections template: %w", err)
	}

	tmpl, err := template.New("prompt").
		Option("missingkey=error").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		Parse(sectionsTemplate)
	if err != nil {
		return "", fmt.Errorf("parse sections template: %w", err)
	}

	tmpl, err = tmpl.Parse(contents)
	if err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}

	masked, unmask := maskText(data)
	var out bytes.Buffer
	if err := tmpl.Execute(&out, masked); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return unmask.Replace(normalizePrompt(out.String())), nil
}

// maskText swaps the text fields for placeholders while rendering, so blank
// line cleanup only touches the template's own seams. Leading and trailing
// newlines stay outside the placeholder and are cleaned with the seams.
func maskText(data PromptData) (PromptData, *strings.Replacer) {
	var pairs []string
	mask := func(value *string) {
		text := internalstrings.NormalizeNewlines(*value)
		core := strings.Trim(text, "\n")
		if core == "" {
			return
		}
		start := strings.Index(text, core)
		token := fmt.Sprintf("\x00text-%d\x00", len(pairs)/2)
		pairs = append(pairs, token, core)
		*value = text[:start] + token + text[start+len(core):]
	}
	mask(&data.Input)
	mask(&data.Reminders)
	mask(&data.ReminderSection)
	mask(&data.TodoSection)
	return data, strings.NewReplacer(pairs...)
}

// Render loads the named template for the repo and renders it.
func Render(repoPath, name string, data PromptData) (string, error) {
	if internalstrings.IsBlank(name) {
		name = DefaultTemplateName
	}
	contents, err := LoadPrompt(repoPath, name)
	if err != nil {
		return "", err
	}
	return RenderPrompt(repoPath, contents, data)
}

func normalizePrompt(value string) string {
	value = internalstrings.NormalizeNewlines(value)
	value = blankRuns.ReplaceAllString(value, "\n\n")
	value = internalstrings.TrimTrailingWhitespace(value)
	for len(value) > 0 && value[0] == '\n' {
		value = value[1:]
	}
	if value == "" {
		return ""
	}
	return value + "\n"
}

func readDefaultPromptTemplate(name string) (string, error) {
	data, err := defaultTemplates.ReadFile(path.Join("templates", name))
	if err != nil {
		return "", fmt.Errorf("read default prompt %q: %w", name, err)
	}
	return string(data), nil
}
