package main

import (
	"fmt"

	"github.com/amonks/taskprompt/internal/ui"
	"github.com/amonks/taskprompt/reminder"
	"github.com/amonks/taskprompt/section"
	"github.com/spf13/cobra"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder",
	Short: "Extract <reminder> tags from text",
}

var reminderExtractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the reminder text found in a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReminderExtract,
}

var reminderCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Exit 0 when the input contains a reminder tag, 1 otherwise",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReminderCheck,
}

var reminderTagsCmd = &cobra.Command{
	Use:   "tags [file]",
	Short: "List every reminder tag with its byte offsets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReminderTags,
}

var reminderRenderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Print the USER REMINDERS section for a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReminderRender,
}

var reminderTagsJSON bool

func init() {
	rootCmd.AddCommand(reminderCmd)
	reminderCmd.AddCommand(reminderExtractCmd, reminderCheckCmd, reminderTagsCmd, reminderRenderCmd)

	reminderTagsCmd.Flags().BoolVar(&reminderTagsJSON, "json", false, "Output as JSON")
}

func runReminderExtract(cmd *cobra.Command, args []string) error {
	text, err := readInputArg(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	printBlock(cmd.OutOrStdout(), reminder.Extract(text))
	return nil
}

func runReminderCheck(cmd *cobra.Command, args []string) error {
	text, err := readInputArg(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if !reminder.Has(text) {
		cmd.SilenceErrors = true
		return exitError{code: 1}
	}
	return nil
}

type reminderTagJSON struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Content string `json:"content"`
}

func runReminderTags(cmd *cobra.Command, args []string) error {
	text, err := readInputArg(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	tags := reminder.Tags(text)

	if reminderTagsJSON {
		out := make([]reminderTagJSON, 0, len(tags))
		for _, tag := range tags {
			out = append(out, reminderTagJSON{Start: tag.Start, End: tag.End, Content: tag.Content})
		}
		return encodeJSON(cmd.OutOrStdout(), out)
	}

	if len(tags) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No reminder tags found.")
		return nil
	}
	builder := ui.NewTableBuilder([]string{"START", "END", "CONTENT"}, len(tags))
	for _, tag := range tags {
		builder.AddRow([]string{
			fmt.Sprintf("%d", tag.Start),
			fmt.Sprintf("%d", tag.End),
			ui.TruncateTableCell(tag.Content),
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), builder.String())
	return nil
}

func runReminderRender(cmd *cobra.Command, args []string) error {
	text, err := readInputArg(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	printBlock(cmd.OutOrStdout(), section.Render(text, nil).Reminder)
	return nil
}
