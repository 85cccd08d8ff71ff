package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// buildOptions are passed verbatim to the build toolchain.
	buildOptions []string

	// installCmd builds and activates a version resolved from the remote index.
	installCmd = &cobra.Command{
		Use:   "install <version|latest|stable>",
		Short: "Download, build and activate a server version",
		Long: "Resolve the target against the remote index (symbolic targets " +
			"\"latest\" and \"stable\" pick the newest matching release), download " +
			"its source archive, build it and switch it active. Installing an " +
			"already-built version skips the build and only activates it.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			return a.installer.Install(ctx, args[0], buildOptions)
		},
	}

	// installLocalCmd installs from a source archive already on disk.
	installLocalCmd = &cobra.Command{
		Use:   "install-local <archive>",
		Short: "Build and activate a version from a local source archive",
		Long: "Install from a source tarball on disk instead of the remote index. " +
			"The version is inferred from the archive filename.",
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			a, err := newApp()
			if err != nil {
				return err
			}

			return a.installer.InstallLocal(ctx, args[0], buildOptions)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, c := range []*cobra.Command{installCmd, installLocalCmd} {
		c.Flags().StringArrayVar(&buildOptions, "option", nil,
			"build option passed through to the toolchain (repeatable)")
	}

	rootCmd.AddCommand(installCmd, installLocalCmd)
}
