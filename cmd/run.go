package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"matrixtask/generator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the recurring-instance generator until interrupted",
	RunE:  runRun,
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a single generation pass and exit",
	RunE:  runTick,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tickCmd)
}

func runRun(_ *cobra.Command, _ []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	gen := generator.New(generator.Config{
		Store:        s,
		Logger:       newLogger(cfg),
		PollInterval: cfg.PollInterval(),
	})
	gen.Start()
	defer gen.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

func runTick(_ *cobra.Command, _ []string) error {
	s, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	gen := generator.New(generator.Config{
		Store:  s,
		Logger: newLogger(cfg),
	})
	created, err := gen.RunOnce()
	if err != nil {
		return err
	}
	fmt.Printf("created %d instance(s)\n", created)
	return nil
}
