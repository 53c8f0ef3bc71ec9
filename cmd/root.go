// Package cmd implements the matrixtask CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"matrixtask/internal/config"
	"matrixtask/store"
	"matrixtask/store/sqlite"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagConfig string
	flagDB     string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "matrixtask",
	Short: "Personal task manager with recurring templates",
	Long: `matrixtask manages tasks on an urgency/importance matrix and generates
instances of recurring templates on a polling cycle.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultConfigFileName, "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to task database (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress log output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrCreate(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	return cfg, nil
}

func openStore() (store.Store, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	s, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	return s, cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	if flagQuiet {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}
