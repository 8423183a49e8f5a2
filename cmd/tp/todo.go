package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/amonks/taskprompt/internal/editor"
	"github.com/amonks/taskprompt/internal/ids"
	"github.com/amonks/taskprompt/internal/markdown"
	"github.com/amonks/taskprompt/internal/state"
	"github.com/amonks/taskprompt/internal/ui"
	"github.com/amonks/taskprompt/rpc"
	"github.com/amonks/taskprompt/section"
	"github.com/amonks/taskprompt/task"
	"github.com/amonks/taskprompt/todo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage per-task todo lists",
}

// todo update
var todoUpdateCmd = &cobra.Command{
	Use:   "update <task>",
	Short: "Replace a task's todo list",
	Long: `Replace a task's todo list.

The list is read from --file or stdin. It is either an array of items or an
object with an "items" array. Each item needs "content" and "status" (pending,
in_progress, completed) and may carry "id" and nested "children". Files ending
in .yaml or .yml are read as YAML; everything else is JSON unless --format says
otherwise. An invalid list is rejected as a whole with every problem listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runTodoUpdate,
}

var (
	todoUpdateFile   string
	todoUpdateFormat string
	todoUpdateReason string
	todoUpdateJSON   bool
)

// todo show
var todoShowCmd = &cobra.Command{
	Use:   "show <task>",
	Short: "Show a task's todo list as its prompt section",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoShow,
}

var (
	todoShowJSON   bool
	todoShowPretty bool
)

// todo tree
var todoTreeCmd = &cobra.Command{
	Use:   "tree <task>",
	Short: "Show a task's todo list with nested items",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoTree,
}

// todo history
var todoHistoryCmd = &cobra.Command{
	Use:   "history <task>",
	Short: "Show recent todo updates for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoHistory,
}

var todoHistoryJSON bool

// todo list
var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with todo lists",
	Args:  cobra.NoArgs,
	RunE:  runTodoList,
}

var todoListJSON bool

// todo clear
var todoClearCmd = &cobra.Command{
	Use:   "clear <task>",
	Short: "Forget a task's input and todo list",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoClear,
}

// todo edit
var todoEditCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Edit a task's todo list in $EDITOR",
	Long: `Edit a task's todo list in $EDITOR.

The list opens as YAML. Saving replaces the stored list after the same
validation todo update applies; deleting everything cancels.`,
	Args: cobra.ExactArgs(1),
	RunE: runTodoEdit,
}

var todoEditReason string

// todo watch
var todoWatchCmd = &cobra.Command{
	Use:   "watch <task>",
	Short: "Print a task's prompt sections whenever they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoWatch,
}

func init() {
	rootCmd.AddCommand(todoCmd)
	todoCmd.AddCommand(todoUpdateCmd, todoEditCmd, todoShowCmd, todoTreeCmd, todoHistoryCmd, todoListCmd, todoClearCmd, todoWatchCmd)

	addReasonFlagAliases(todoUpdateCmd)
	todoUpdateCmd.Flags().StringVarP(&todoUpdateFile, "file", "f", "", "Read the list from this file instead of stdin")
	todoUpdateCmd.Flags().StringVar(&todoUpdateFormat, "format", "", "Payload format (json, yaml); default from the file extension")
	todoUpdateCmd.Flags().StringVarP(&todoUpdateReason, "reason", "r", "", "Why the list changed")
	todoUpdateCmd.Flags().BoolVar(&todoUpdateJSON, "json", false, "Output as JSON")

	addReasonFlagAliases(todoEditCmd)
	todoEditCmd.Flags().StringVarP(&todoEditReason, "reason", "r", "", "Why the list changed")

	todoShowCmd.Flags().BoolVar(&todoShowJSON, "json", false, "Output the list with counts as JSON")
	todoShowCmd.Flags().BoolVar(&todoShowPretty, "pretty", false, "Render the section as formatted markdown")

	todoHistoryCmd.Flags().BoolVar(&todoHistoryJSON, "json", false, "Output as JSON")

	todoListCmd.Flags().BoolVar(&todoListJSON, "json", false, "Output as JSON")
}

func runTodoUpdate(cmd *cobra.Command, args []string) error {
	data, err := readTodoPayload(todoUpdateFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	format, err := payloadFormat(todoUpdateFormat, todoUpdateFile)
	if err != nil {
		return err
	}
	raw, err := decodeTodoPayload(data, format)
	if err != nil {
		return err
	}

	backend, err := openBackend()
	if err != nil {
		return err
	}
	result, err := backend.UpdateTodos(commandContext(cmd), args[0], raw, todoUpdateReason)
	if err != nil {
		return err
	}

	if todoUpdateJSON {
		return encodeJSON(cmd.OutOrStdout(), result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %d of %d completed (revision %s)\n",
		result.TaskID, result.List.CompletedCount, result.List.TotalCount, result.Revision)
	return nil
}

func readTodoPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func payloadFormat(format, path string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "json", "yaml":
		return format, nil
	case "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("unknown payload format %q (valid: json, yaml)", format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "json", nil
	}
}

// decodeTodoPayload decodes the payload without judging its shape; the todo
// validator reports shape problems with paths.
func decodeTodoPayload(data []byte, format string) (any, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	if format == "yaml" {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML todo list: %w", err)
		}
		return raw, nil
	}
	return json.RawMessage(data), nil
}

func runTodoEdit(cmd *cobra.Command, args []string) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	current, err := backend.ShowTodos(ctx, args[0])
	if err != nil && !errors.Is(err, task.ErrTaskNotFound) {
		return err
	}

	raw, err := editor.EditTodos(current.List.Items)
	switch {
	case errors.Is(err, editor.ErrUnchanged):
		fmt.Fprintf(cmd.OutOrStdout(), "No changes to %s.\n", strings.TrimSpace(args[0]))
		return nil
	case errors.Is(err, editor.ErrEditCancelled):
		fmt.Fprintln(cmd.OutOrStdout(), "Edit cancelled.")
		return nil
	case err != nil:
		return err
	}

	result, err := backend.UpdateTodos(ctx, args[0], raw, todoEditReason)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %d of %d completed (revision %s)\n",
		result.TaskID, result.List.CompletedCount, result.List.TotalCount, result.Revision)
	return nil
}

func runTodoShow(cmd *cobra.Command, args []string) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	result, err := backend.ShowTodos(commandContext(cmd), args[0])
	if errors.Is(err, task.ErrTaskNotFound) {
		result = rpc.ShowResponse{TaskID: strings.TrimSpace(args[0]), List: todo.Summarize(nil)}
	} else if err != nil {
		return err
	}

	if todoShowJSON {
		return encodeJSON(cmd.OutOrStdout(), result.List)
	}

	rendered := section.Todos(result.List.Items)
	if rendered == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "No todos for %s.\n", result.TaskID)
		return nil
	}
	if todoShowPretty {
		width := ui.TerminalWidth(os.Stdout, 80)
		rendered = string(markdown.Render(width, 0, []byte(rendered)))
	}
	printBlock(cmd.OutOrStdout(), rendered)
	return nil
}

func runTodoTree(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	stored, err := manager.Task(args[0])
	if err != nil {
		return err
	}
	summary := stored.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%d/%d completed)\n", stored.ID, summary.CompletedCount, summary.TotalCount)
	printTodoTree(cmd.OutOrStdout(), stored.Todos, "")
	return nil
}

func runTodoHistory(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	stored, err := manager.Task(args[0])
	if err != nil {
		return err
	}

	// Newest first.
	history := make([]state.Revision, 0, len(stored.History))
	for i := len(stored.History) - 1; i >= 0; i-- {
		history = append(history, stored.History[i])
	}

	if todoHistoryJSON {
		return encodeJSON(cmd.OutOrStdout(), history)
	}
	if len(history) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No todo updates for %s.\n", stored.ID)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), formatHistoryTable(history, time.Now()))
	return nil
}

func formatHistoryTable(history []state.Revision, now time.Time) string {
	revisions := make([]string, 0, len(history))
	for _, rev := range history {
		revisions = append(revisions, rev.ID)
	}
	shortRevisions := ids.Abbreviate(revisions, ids.DefaultMinLength)

	builder := ui.NewTableBuilder([]string{"REVISION", "DONE", "TOTAL", "WHEN", "REASON"}, len(history))
	for _, rev := range history {
		reason := rev.Reason
		if reason == "" {
			reason = "-"
		}
		builder.AddRow([]string{
			shortRevisions[rev.ID],
			strconv.Itoa(rev.Completed),
			strconv.Itoa(rev.Total),
			ui.FormatTimeAgo(rev.At, now),
			ui.TruncateTableCell(reason),
		})
	}
	return builder.String()
}

type todoListEntry struct {
	TaskID         string    `json:"task_id"`
	CompletedCount int       `json:"completedCount"`
	TotalCount     int       `json:"totalCount"`
	HasReminder    bool      `json:"hasReminder"`
	Revision       string    `json:"revision,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func runTodoList(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	tasks, err := manager.List()
	if err != nil {
		return err
	}

	entries := make([]todoListEntry, 0, len(tasks))
	for _, stored := range tasks {
		summary := stored.Summary()
		entries = append(entries, todoListEntry{
			TaskID:         stored.ID,
			CompletedCount: summary.CompletedCount,
			TotalCount:     summary.TotalCount,
			HasReminder:    stored.Reminder() != "",
			Revision:       stored.Revision,
			UpdatedAt:      stored.UpdatedAt,
		})
	}

	if todoListJSON {
		return encodeJSON(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), formatTodoListTable(entries, time.Now()))
	return nil
}

func formatTodoListTable(entries []todoListEntry, now time.Time) string {
	revisions := make([]string, 0, len(entries))
	for _, entry := range entries {
		revisions = append(revisions, entry.Revision)
	}
	shortRevisions := ids.Abbreviate(revisions, ids.DefaultMinLength)

	builder := ui.NewTableBuilder([]string{"TASK", "DONE", "TOTAL", "REMINDER", "REVISION", "UPDATED"}, len(entries))
	for _, entry := range entries {
		reminder := "no"
		if entry.HasReminder {
			reminder = "yes"
		}
		revision := shortRevisions[entry.Revision]
		if revision == "" {
			revision = "-"
		}
		builder.AddRow([]string{
			ui.TruncateTableCell(entry.TaskID),
			strconv.Itoa(entry.CompletedCount),
			strconv.Itoa(entry.TotalCount),
			reminder,
			revision,
			ui.FormatTimeAgo(entry.UpdatedAt, now),
		})
	}
	return builder.String()
}

func runTodoClear(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	if err := manager.Clear(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", strings.TrimSpace(args[0]))
	return nil
}

func runTodoWatch(cmd *cobra.Command, args []string) error {
	manager, err := openManager()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	first := true
	return manager.Watch(ctx, args[0], func(sections section.Sections) error {
		out := cmd.OutOrStdout()
		if !first {
			fmt.Fprintln(out)
		}
		first = false
		if sections.Empty() {
			fmt.Fprintf(out, "No sections for %s.\n", strings.TrimSpace(args[0]))
			return nil
		}
		printSections(out, sections)
		return nil
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
