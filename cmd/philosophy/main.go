package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/use-agent/philosophy/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags override the matching configuration values when set.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "philosophy",
		Short:         "Follow first links on Wikipedia until you reach Philosophy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (overrides PHILO_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "json, text or pretty")

	root.AddCommand(newRunCmd(&g), newServeCmd(&g))
	return root
}

// loadConfig builds the configuration and applies global flag overrides.
func loadConfig(g *globalFlags) (*config.Config, error) {
	if g.configPath != "" {
		if err := os.Setenv("PHILO_CONFIG", g.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	return cfg, nil
}
