package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/mongovm/internal/semver"
)

var (
	// stableOnly restricts ls-remote to stable series.
	stableOnly bool

	// lsCmd lists installed versions, marking the active one.
	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "List installed versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			installed, err := a.store.List()
			if err != nil {
				return err
			}

			active, hasActive, err := a.manager.Current(ctx)
			if err != nil {
				return err
			}

			for _, v := range installed {
				marker := "  "
				if hasActive && v.Equal(active) {
					marker = "* "
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), marker+v.String())
			}

			return nil
		},
	}

	// lsRemoteCmd lists versions available on the remote index,
	// annotated with local install state.
	lsRemoteCmd = &cobra.Command{
		Use:   "ls-remote",
		Short: "List versions available on the remote index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			available, err := a.catalog.List(ctx)
			if err != nil {
				return err
			}

			installed, err := a.store.List()
			if err != nil {
				return err
			}

			installedSet := make(map[string]struct{}, len(installed))
			for _, v := range installed {
				installedSet[v.String()] = struct{}{}
			}

			active, hasActive, err := a.manager.Current(ctx)
			if err != nil {
				return err
			}

			for _, v := range available {
				if stableOnly && !v.IsStable() {
					continue
				}

				line := v.String()

				switch {
				case hasActive && v.Equal(active):
					line += " (active)"
				case hasInstall(installedSet, v):
					line += " (installed)"
				}

				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}
)

// hasInstall checks the installed set by canonical literal.
func hasInstall(installed map[string]struct{}, v semver.Version) bool {
	_, found := installed[v.String()]

	return found
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	lsRemoteCmd.Flags().BoolVar(&stableOnly, "stable", false, "show only stable (even-minor) releases")

	rootCmd.AddCommand(lsCmd, lsRemoteCmd)
}
