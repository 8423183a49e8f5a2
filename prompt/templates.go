package prompt

import "path/filepath"

// TemplateVariable documents a template variable and its Go type.
type TemplateVariable struct {
	Name string
	Type string
}

// TemplateInfo documents a default prompt template.
type TemplateInfo struct {
	Name      string
	Contents  string
	Variables []TemplateVariable
}

// OverridePath returns the override location for a template name.
func OverridePath(name string) string {
	return filepath.Join(promptOverrideDir, name)
}

// DefaultPromptTemplateInfo lists the bundled prompt templates.
func DefaultPromptTemplateInfo() ([]TemplateInfo, error) {
	variables := templateVariables()
	names := []string{
		DefaultTemplateName,
		SectionsOnlyTemplateName,
		StatusTemplateName,
		sectionsTemplateName,
	}
	info := make([]TemplateInfo, 0, len(names))
	for _, name := range names {
		contents, err := readDefaultPromptTemplate(name)
		if err != nil {
			return nil, err
		}
		info = append(info, TemplateInfo{
			Name:      name,
			Contents:  contents,
			Variables: variables,
		})
	}
	return info, nil
}

func templateVariables() []TemplateVariable {
	return []TemplateVariable{
		{Name: "TaskID", Type: "string"},
		{Name: "Input", Type: "string"},
		{Name: "Reminders", Type: "string"},
		{Name: "ReminderSection", Type: "string"},
		{Name: "TodoSection", Type: "string"},
		{Name: "Todos", Type: "todo.List"},
	}
}
