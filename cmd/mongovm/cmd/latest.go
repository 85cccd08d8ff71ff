package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// latestCmd prints the newest version on the remote index.
	latestCmd = &cobra.Command{
		Use:   "latest",
		Short: "Print the latest available version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			v, err := a.catalog.Latest(ctx)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v.String())

			return nil
		},
	}

	// stableCmd prints the newest stable (even-minor) version on the remote index.
	stableCmd = &cobra.Command{
		Use:   "stable",
		Short: "Print the latest stable version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			v, err := a.catalog.LatestStable(ctx)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v.String())

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(latestCmd, stableCmd)
}
