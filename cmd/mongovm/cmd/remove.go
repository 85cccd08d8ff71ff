package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/mongovm/internal/logger"
	"github.com/oshokin/mongovm/internal/semver"
)

// removeCmd deletes one or more installed versions from the store.
// Removing a version that was never installed is a no-op success,
// so the command is safely repeatable.
var removeCmd = &cobra.Command{
	Use:     "remove <version>...",
	Aliases: []string{"rm"},
	Short:   "Remove one or more installed versions",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := commandContext()
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}

		for _, literal := range args {
			v, err := semver.Parse(literal)
			if err != nil {
				return err
			}

			if err = a.store.Remove(v); err != nil {
				return err
			}

			logger.InfoKV(ctx, "Removed version", "version", v.String())
		}

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(removeCmd)
}
