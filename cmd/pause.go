package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <template-id>",
	Short: "Suspend instance generation for a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return setPaused(args[0], true)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <template-id>",
	Short: "Resume instance generation for a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return setPaused(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}

func setPaused(id string, paused bool) error {
	s, _, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tpl, err := s.GetTask(id)
	if err != nil {
		return err
	}
	if !tpl.IsRecurring() {
		return fmt.Errorf("task %s is not a recurring template", id)
	}
	tpl.Paused = paused
	if err := s.UpdateTask(tpl); err != nil {
		return err
	}
	if paused {
		fmt.Printf("paused %s\n", id)
	} else {
		fmt.Printf("resumed %s\n", id)
	}
	return nil
}
