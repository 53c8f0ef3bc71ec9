package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"matrixtask/recurrence"
	"matrixtask/task"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task or a recurring template",
	Long: `Adds a standard task, or a recurring template when --every is given.
Subtasks passed with --subtask are attached to the new task.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("desc", "", "task description")
	addCmd.Flags().String("quadrant", string(task.QuadrantSchedule), "matrix quadrant (do, schedule, delegate, eliminate)")
	addCmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	addCmd.Flags().StringSlice("person", nil, "assigned person (repeatable)")
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().Bool("star", false, "star the task")
	addCmd.Flags().StringSlice("subtask", nil, "subtask title (repeatable)")

	addCmd.Flags().String("every", "", "recurrence pattern (day, week, month, year)")
	addCmd.Flags().Int("interval", 1, "recurrence interval")
	addCmd.Flags().StringSlice("on", nil, "weekly: weekday names (mon..sun, repeatable)")
	addCmd.Flags().Int("day-of-month", 0, "monthly/yearly: day of month (1-31)")
	addCmd.Flags().Int("week-of-month", -1, "monthly/yearly: week of month (1-5, 0 for last)")
	addCmd.Flags().String("weekday", "", "monthly/yearly: weekday for --week-of-month")
	addCmd.Flags().Int("month", 0, "yearly: month of year (1-12)")
	addCmd.Flags().String("until", "", "end date (YYYY-MM-DD)")
	addCmd.Flags().Int("count", 0, "end after N occurrences")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	t := task.New(args[0])
	t.Description, _ = cmd.Flags().GetString("desc")
	t.Tags, _ = cmd.Flags().GetStringSlice("tag")
	t.People, _ = cmd.Flags().GetStringSlice("person")
	t.Starred, _ = cmd.Flags().GetBool("star")

	quadrant, _ := cmd.Flags().GetString("quadrant")
	t.Quadrant = task.Quadrant(quadrant)

	if dueStr, _ := cmd.Flags().GetString("due"); dueStr != "" {
		due, err := time.ParseInLocation("2006-01-02", dueStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", dueStr)
		}
		t.DueDate = &due
	}

	if every, _ := cmd.Flags().GetString("every"); every != "" {
		rule, err := ruleFromFlags(cmd, every)
		if err != nil {
			return err
		}
		t.Type = task.TypeTemplate
		t.Recurrence = rule
	}

	if err := t.Validate(); err != nil {
		return err
	}
	id, err := s.CreateTask(t)
	if err != nil {
		return err
	}

	subtasks, _ := cmd.Flags().GetStringSlice("subtask")
	for i, title := range subtasks {
		sub := &task.Task{
			Title:    title,
			Type:     task.TypeSubtask,
			ParentID: id,
			Order:    i + 1,
		}
		if _, err := s.CreateTask(sub); err != nil {
			return fmt.Errorf("create subtask %q: %w", title, err)
		}
	}

	if t.Type == task.TypeTemplate {
		fmt.Printf("created template %s (%s)\n", id, recurrence.Describe(*t.Recurrence))
	} else {
		fmt.Printf("created task %s\n", id)
	}
	return nil
}

func ruleFromFlags(cmd *cobra.Command, every string) (*recurrence.Rule, error) {
	interval, _ := cmd.Flags().GetInt("interval")
	rule := &recurrence.Rule{Interval: interval}

	switch strings.ToLower(every) {
	case "day", "daily":
		rule.Pattern = recurrence.PatternDaily
	case "week", "weekly":
		rule.Pattern = recurrence.PatternWeekly
	case "month", "monthly":
		rule.Pattern = recurrence.PatternMonthly
	case "year", "yearly":
		rule.Pattern = recurrence.PatternYearly
	default:
		return nil, fmt.Errorf("unknown pattern %q: expected day, week, month or year", every)
	}

	if days, _ := cmd.Flags().GetStringSlice("on"); len(days) > 0 {
		for _, name := range days {
			d, err := parseWeekday(name)
			if err != nil {
				return nil, err
			}
			rule.DaysOfWeek = append(rule.DaysOfWeek, d)
		}
	}

	if day, _ := cmd.Flags().GetInt("day-of-month"); day > 0 {
		rule.SetDayOfMonth(day)
	}
	if week, _ := cmd.Flags().GetInt("week-of-month"); week >= 0 {
		name, _ := cmd.Flags().GetString("weekday")
		if name == "" {
			return nil, fmt.Errorf("--week-of-month requires --weekday")
		}
		d, err := parseWeekday(name)
		if err != nil {
			return nil, err
		}
		rule.SetNthWeekday(week, d)
	}
	if month, _ := cmd.Flags().GetInt("month"); month > 0 {
		m := time.Month(month)
		rule.MonthOfYear = &m
	}

	if untilStr, _ := cmd.Flags().GetString("until"); untilStr != "" {
		until, err := time.ParseInLocation("2006-01-02", untilStr, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", untilStr)
		}
		rule.EndDate = &until
	}
	if count, _ := cmd.Flags().GetInt("count"); count > 0 {
		rule.EndAfterOccurrences = count
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	key := strings.ToLower(name)
	if len(key) > 3 {
		key = key[:3]
	}
	d, ok := weekdayNames[key]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return d, nil
}
