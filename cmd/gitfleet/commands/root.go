package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gitfleet/gitfleet/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitfleet",
		Short: "gitfleet - bulk actions over many git repositories",
		Long: `gitfleet resolves a set of git repositories, clones each into an
isolated working directory, runs a command against every working copy,
optionally runs a second finalization command afterwards, and cleans up.

It is built for bulk repository maintenance: running a script, a build,
a linter, or a migration across a whole fleet of repositories in one go.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logger, err := telemetry.NewLogger(loggingConfig()); err == nil {
				log.Logger = logger.Zerolog()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit structured JSON logs instead of console output")

	rootCmd.AddCommand(newRunCommand())

	return rootCmd
}

// loggingConfig maps the persistent flags and the LOG_LEVEL variable
// onto the configuration the process logger is built from.
func loggingConfig() telemetry.LoggingConfig {
	cfg := telemetry.DefaultConfig().Logging
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = level
	}
	if verbose {
		cfg.Level = "debug"
	}
	if jsonOutput {
		cfg.Format = "json"
	}
	return cfg
}
