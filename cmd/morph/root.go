package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vcrobe/morph/config"
	"github.com/vcrobe/morph/console"
)

var rootCmd = &cobra.Command{
	Use:   "morph",
	Short: "morph renders store-driven HTML templates into a page",
	Long: `morph loads an HTML page, a set of data stores and the components that
render them, then reconciles every component into its mount in place.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to morph.yaml (default $"+config.EnvVar+")")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

// setup loads the configuration named by the flags and installs the logger.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	flagPath, _ := cmd.Flags().GetString("config")
	path, err := config.ResolvePath(flagPath)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	levelName := cfg.LogLevel
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		levelName = override
	}
	level, err := console.ParseLevel(levelName)
	if err != nil {
		return nil, nil, err
	}
	logger := console.New(level)
	console.SetLogger(logger)
	return cfg, logger, nil
}
