package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/mongovm/internal/semver"
	"github.com/oshokin/mongovm/internal/store"
	"github.com/oshokin/mongovm/internal/toolchain"
)

var (
	// binCmd prints the binaries directory of an installed version.
	binCmd = &cobra.Command{
		Use:   "bin <version>",
		Short: "Print the install path of a version's binaries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.Parse(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			path, err := a.store.BinPath(v)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	// execCmd runs a binary from a specific installed version without
	// switching the active one.
	execCmd = &cobra.Command{
		Use:   "exec <version> <binary> [args...]",
		Short: "Run a binary from a specific installed version",
		Args:  cobra.MinimumNArgs(2),
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

			path, err := a.manager.ExecPath(v, args[1])
			if err != nil {
				return err
			}

			_, err = a.runner.Run(ctx, path, args[2:], toolchain.RunOptions{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
			})

			return err
		},
	}

	// configCmd prints the build options recorded for an installed version.
	configCmd = &cobra.Command{
		Use:   "config <version>",
		Short: "Print the build options a version was installed with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.Parse(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			if !a.store.Has(v) {
				return &store.NotInstalledError{Version: v}
			}

			options, found, err := a.store.ConfigOf(v)
			if err != nil {
				return err
			}

			if !found {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no recorded build options")
				return nil
			}

			for _, option := range options {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), option)
			}

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	execCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(binCmd, execCmd, configCmd)
}
