package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mongovm/internal/semver"
)

var (
	// useCmd switches the active version to an already-installed one.
	useCmd = &cobra.Command{
		Use:   "use <version>",
		Short: "Switch the active version",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			v, err := semver.Parse(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			return a.manager.Activate(ctx, v)
		},
	}

	// currentCmd prints the version the live binary reports.
	currentCmd = &cobra.Command{
		Use:   "current",
		Short: "Print the currently active version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			v, ok, err := a.manager.Current(ctx)
			if err != nil {
				return err
			}

			if !ok {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "none")
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v.String())

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(useCmd, currentCmd)
}
