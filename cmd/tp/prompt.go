package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amonks/taskprompt/prompt"
	"github.com/amonks/taskprompt/task"
	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Assemble model prompts from task state",
}

var promptRenderCmd = &cobra.Command{
	Use:   "render <task>",
	Short: "Render the prompt for a task",
	Long: `Render the prompt for a task from its recorded input and todo list.

Templates are read from .taskprompt/templates in the project root when present,
otherwise the bundled defaults are used. The template defaults to
prompt.template from taskprompt.toml, then prompt-task.tmpl.`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptRender,
}

var promptTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List prompt templates and their variables",
	Args:  cobra.NoArgs,
	RunE:  runPromptTemplates,
}

var (
	promptRenderTemplate string
	promptTemplatesFull  bool
)

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.AddCommand(promptRenderCmd, promptTemplatesCmd)

	promptRenderCmd.Flags().StringVarP(&promptRenderTemplate, "template", "t", "", "Template name to render")
	promptTemplatesCmd.Flags().BoolVar(&promptTemplatesFull, "full", false, "Print template contents")
}

func runPromptRender(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	stored, err := manager.Task(args[0])
	if errors.Is(err, task.ErrTaskNotFound) {
		stored = task.Task{ID: strings.TrimSpace(args[0])}
	} else if err != nil {
		return err
	}

	repoPath, err := getRepoPath()
	if err != nil {
		return err
	}
	name := promptRenderTemplate
	if name == "" {
		name = appConfig.Prompt.Template
	}

	rendered, err := prompt.Render(repoPath, name, prompt.NewPromptData(stored.ID, stored.Input, stored.Todos))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func runPromptTemplates(cmd *cobra.Command, args []string) error {
	info, err := prompt.DefaultPromptTemplateInfo()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, entry := range info {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (override: %s)\n", entry.Name, prompt.OverridePath(entry.Name))
		if promptTemplatesFull {
			printBlock(out, indentLines(entry.Contents, "    "))
		}
	}
	if len(info) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Variables:")
		for _, variable := range info[0].Variables {
			fmt.Fprintf(out, "    .%s %s\n", variable.Name, variable.Type)
		}
	}
	return nil
}
