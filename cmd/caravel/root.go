package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yairfalse/caravel/config"
)

var (
	version  = "0.1.0"
	cfgPath  string
	logLevel string

	rootCmd = &cobra.Command{
		Use:   "caravel",
		Short: "Multi-tenant Azure resource inventory",
		Long: `Caravel - Multi-tenant Azure resource inventory

Caravel discovers cloud resources across every subscription of every
tenant on a schedule, normalizes them into one canonical inventory
record, and persists one object per resource for downstream compliance
and search tooling.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "caravel.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.SetVersionTemplate(`Caravel {{.Version}} - Multi-tenant Azure resource inventory
`)
}

// loadConfig loads the config file and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)

	return cfg, nil
}
