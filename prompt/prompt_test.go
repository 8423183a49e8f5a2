package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/todo"
)

func TestLoadPrompt_UsesOverride(t *testing.T) {
	repoPath := t.TempDir()
	overrideDir := filepath.Join(repoPath, ".taskprompt", "templates")
	if err := os.MkdirAll(overrideDir, 0o755); err != nil {
		t.Fatalf("create override dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(overrideDir, DefaultTemplateName), []byte("custom {{.TaskID}}"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	contents, err := LoadPrompt(repoPath, DefaultTemplateName)
	if err != nil {
		t.Fatalf("load prompt: %v", err)
	}
	if contents != "custom {{.TaskID}}" {
		t.Fatalf("expected override contents, got %q", contents)
	}
}

func TestLoadPrompt_UsesEmbeddedDefault(t *testing.T) {
	contents, err := LoadPrompt(t.TempDir(), DefaultTemplateName)
	if err != nil {
		t.Fatalf("load prompt: %v", err)
	}
	if !strings.Contains(contents, `{{template "sections" .}}`) {
		t.Fatalf("expected default template, got %q", contents)
	}
}

func TestLoadPrompt_RequiresName(t *testing.T) {
	if _, err := LoadPrompt("", " "); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := LoadPrompt("", "missing.tmpl"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRenderPrompt_IncludesBothSections(t *testing.T) {
	items := []todo.Item{{Content: "Write tests", Status: todo.StatusInProgress}}
	data := NewPromptData("task-1", "Fix the bug <reminder>run go test</reminder>\n", items)

	out, err := Render("", DefaultTemplateName, data)
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}

	expected := "Fix the bug <reminder>run go test</reminder>\n\n" +
		section.Reminder("run go test") + "\n\n" +
		strings.TrimRight(section.Todos(items), "\n") + "\n"
	if out != expected {
		t.Fatalf("unexpected prompt:\n%s\nwant:\n%s", out, expected)
	}
}

func TestRenderPrompt_OmitsEmptySections(t *testing.T) {
	data := NewPromptData("task-1", "Just do it", nil)

	out, err := Render("", "", data)
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	if out != "Just do it\n" {
		t.Fatalf("expected bare input, got %q", out)
	}
}

func TestRenderPrompt_KeepsBlankLinesInsideInput(t *testing.T) {
	input := "\n\nStep one.\n\n\n\nStep two.\n<reminder>keep\n\n\n\nspacing</reminder>\n\n\n"
	data := NewPromptData("task-1", input, nil)

	out, err := Render("", DefaultTemplateName, data)
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}

	expected := "Step one.\n\n\n\nStep two.\n<reminder>keep\n\n\n\nspacing</reminder>\n\n" +
		section.Reminder("keep\n\n\n\nspacing") + "\n"
	if out != expected {
		t.Fatalf("unexpected prompt:\n%q\nwant:\n%q", out, expected)
	}
}

func TestRenderPrompt_SectionsOnlyEmpty(t *testing.T) {
	out, err := Render("", SectionsOnlyTemplateName, NewPromptData("task-1", "", nil))
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty prompt, got %q", out)
	}
}

func TestRenderPrompt_SectionsOnlyReminder(t *testing.T) {
	out, err := Render("", SectionsOnlyTemplateName, NewPromptData("task-1", "<reminder>x</reminder>", nil))
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	if out != section.Reminder("x")+"\n" {
		t.Fatalf("unexpected prompt %q", out)
	}
}

func TestRenderPrompt_StatusTemplate(t *testing.T) {
	items := []todo.Item{
		{Content: "Plan", Status: todo.StatusCompleted},
		{Content: "Build", Status: todo.StatusPending},
	}

	out, err := Render("", StatusTemplateName, NewPromptData("task-1", "", items))
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	checks := []string{
		"Task task-1: 1 of 2 todos completed.",
		"1. [Completed] Plan",
		"2. [Pending] Build",
		"| 2 | Build | Pending |",
	}
	for _, check := range checks {
		if !strings.Contains(out, check) {
			t.Fatalf("expected %q in %q", check, out)
		}
	}
}

func TestRenderPrompt_OverrideSectionsPartial(t *testing.T) {
	repoPath := t.TempDir()
	overrideDir := filepath.Join(repoPath, ".taskprompt", "templates")
	if err := os.MkdirAll(overrideDir, 0o755); err != nil {
		t.Fatalf("create override dir: %v", err)
	}
	partial := `{{define "sections"}}[{{.Reminders}}]{{end}}`
	if err := os.WriteFile(filepath.Join(overrideDir, "sections.tmpl"), []byte(partial), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	out, err := Render(repoPath, DefaultTemplateName, NewPromptData("task-1", "do <reminder>a</reminder>", nil))
	if err != nil {
		t.Fatalf("render prompt: %v", err)
	}
	if out != "do <reminder>a</reminder>\n[a]\n" {
		t.Fatalf("unexpected prompt %q", out)
	}
}

func TestRenderPrompt_ParseError(t *testing.T) {
	if _, err := RenderPrompt("", "{{.Missing", PromptData{}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaultPromptTemplateInfo(t *testing.T) {
	info, err := DefaultPromptTemplateInfo()
	if err != nil {
		t.Fatalf("template info: %v", err)
	}
	if len(info) != 4 {
		t.Fatalf("expected 4 templates, got %d", len(info))
	}
	for _, entry := range info {
		if strings.TrimSpace(entry.Contents) == "" {
			t.Fatalf("expected contents for %s", entry.Name)
		}
		if len(entry.Variables) == 0 {
			t.Fatalf("expected variables for %s", entry.Name)
		}
	}
	if OverridePath(DefaultTemplateName) != filepath.Join(".taskprompt", "templates", DefaultTemplateName) {
		t.Fatalf("unexpected override path %q", OverridePath(DefaultTemplateName))
	}
}
