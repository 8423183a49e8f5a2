package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/amonks/taskprompt/section"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Record task input and render its prompt sections",
}

var taskInputCmd = &cobra.Command{
	Use:   "input <task> [file]",
	Short: "Record the task text that reminders are extracted from",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runTaskInput,
}

var taskSectionsCmd = &cobra.Command{
	Use:   "sections <task>",
	Short: "Print the reminder and todo sections for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskSections,
}

var taskSectionsJSON bool

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskInputCmd, taskSectionsCmd)

	taskSectionsCmd.Flags().BoolVar(&taskSectionsJSON, "json", false, "Output as JSON")
}

func runTaskInput(cmd *cobra.Command, args []string) error {
	text, err := readInputArg(args[1:], cmd.InOrStdin())
	if err != nil {
		return err
	}
	backend, err := openBackend()
	if err != nil {
		return err
	}
	result, err := backend.SetInput(commandContext(cmd), args[0], text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded input for %s\n", result.TaskID)
	if result.Reminder != "" {
		fmt.Fprintln(out, "Reminders:")
		printBlock(out, indentLines(result.Reminder, "    "))
	}
	return nil
}

func runTaskSections(cmd *cobra.Command, args []string) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	sections, err := backend.Sections(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	if taskSectionsJSON {
		return encodeJSON(cmd.OutOrStdout(), sections)
	}
	printSections(cmd.OutOrStdout(), sections)
	return nil
}

// printSections prints the non-empty sections separated by a blank line.
func printSections(w io.Writer, sections section.Sections) {
	var parts []string
	for _, part := range []string{sections.Reminder, sections.Todos} {
		if part = strings.TrimRight(part, "\n"); part != "" {
			parts = append(parts, part)
		}
	}
	printBlock(w, strings.Join(parts, "\n\n"))
}

func indentLines(value, prefix string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
