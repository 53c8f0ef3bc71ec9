package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"matrixtask/recurrence"
	"matrixtask/task"
)

var previewCmd = &cobra.Command{
	Use:   "preview <template-id>",
	Short: "Show a template's upcoming occurrence dates",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().IntP("count", "n", 5, "number of occurrences to show")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tpl, err := s.GetTask(args[0])
	if err != nil {
		return err
	}
	if !tpl.IsRecurring() {
		return fmt.Errorf("task %s is not a recurring template", tpl.ID)
	}

	start := tpl.CreatedAt
	if tpl.DueDate != nil {
		start = *tpl.DueDate
	}

	count, _ := cmd.Flags().GetInt("count")
	engine := recurrence.NewEngine(nil)
	preview, err := engine.NextOccurrences(start, *tpl.Recurrence, count, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", tpl.Title, recurrence.Describe(*tpl.Recurrence))
	if len(preview.Dates) == 0 {
		fmt.Println("no upcoming occurrences")
		return nil
	}
	for _, d := range preview.Dates {
		fmt.Printf("  %s (%s)\n", d.Format("2006-01-02"), d.Weekday())
	}
	if total, ok := preview.TotalPossible.Get(); ok {
		fmt.Printf("%d occurrences total\n", total)
	} else if preview.HasMore {
		fmt.Println("no limit")
	}
	return printPausedHint(tpl)
}

func printPausedHint(tpl *task.Task) error {
	if tpl.Paused {
		fmt.Println("note: template is paused; no instances will be generated")
	}
	return nil
}
