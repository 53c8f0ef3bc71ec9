package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/spf13/cobra"

	"matrixtask/ics"
	"matrixtask/store"
	"matrixtask/task"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recurring templates as an iCalendar feed",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	templates, err := s.ListTasks(&store.Filter{Types: []task.Type{task.TypeTemplate}})
	if err != nil {
		return err
	}

	cal, err := ics.ExportTemplates(templates, time.Now())
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := ical.NewEncoder(out).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}
