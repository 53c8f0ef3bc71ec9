package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"matrixtask/recurrence"
	"matrixtask/store"
	"matrixtask/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE:    runList,
}

func init() {
	listCmd.Flags().String("type", "", "filter by type (standard, template, instance, subtask)")
	listCmd.Flags().String("quadrant", "", "filter by quadrant")
	listCmd.Flags().String("parent", "", "filter by parent task id")
	listCmd.Flags().Bool("completed", false, "include completed tasks")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	filter := &store.Filter{}
	if typeStr, _ := cmd.Flags().GetString("type"); typeStr != "" {
		filter.Types = []task.Type{task.Type(typeStr)}
	}
	filter.ParentID, _ = cmd.Flags().GetString("parent")

	tasks, err := s.ListTasks(filter)
	if err != nil {
		return err
	}

	quadrant, _ := cmd.Flags().GetString("quadrant")
	includeCompleted, _ := cmd.Flags().GetBool("completed")

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})

	for _, t := range tasks {
		if quadrant != "" && t.Quadrant != task.Quadrant(quadrant) {
			continue
		}
		if t.Completed && !includeCompleted {
			continue
		}
		fmt.Println(formatTask(t))
	}
	return nil
}

func formatTask(t *task.Task) string {
	var sb strings.Builder
	mark := " "
	if t.Completed {
		mark = "x"
	}
	shortID := t.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	fmt.Fprintf(&sb, "[%s] %-9s %s  %s", mark, t.Type, shortID, t.Title)
	if t.Quadrant != "" {
		fmt.Fprintf(&sb, "  (%s)", t.Quadrant)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&sb, "  due %s", t.DueDate.Format("2006-01-02"))
	}
	if t.IsRecurring() {
		fmt.Fprintf(&sb, "  [%s]", recurrence.Describe(*t.Recurrence))
		if t.Paused {
			sb.WriteString(" (paused)")
		}
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&sb, "  #%s", strings.Join(t.Tags, " #"))
	}
	return sb.String()
}
