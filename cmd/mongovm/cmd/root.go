package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/mongovm/internal/logger"
	"github.com/oshokin/mongovm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel is the textual log level applied before any command runs.
	logLevel string

	// rootCmd represents the base command managing server versions.
	rootCmd = &cobra.Command{
		Use:   "mongovm",
		Short: "Manage installed versions of the database server",
		Long: "mongovm discovers available server releases from the remote source index, " +
			"builds a chosen version from source, installs each build into its own " +
			"store directory and switches which installed version is active on the " +
			"system execution path.",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}
)

// Execute runs the mongovm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// commandContext builds a context cancelled by termination signals,
// so interrupted fetches and builds stop cleanly.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}
