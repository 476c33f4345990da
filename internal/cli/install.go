package cli

import (
	"fmt"
	"io"

	"github.com/7HR4IZ3/acode-cli/internal/archive"
	"github.com/7HR4IZ3/acode-cli/internal/build"
	"github.com/7HR4IZ3/acode-cli/internal/installer"
	"github.com/7HR4IZ3/acode-cli/internal/pathutil"
	"github.com/spf13/cobra"
)

var (
	installWatch  bool
	installConfig string
	installSimple bool
)

var installCmd = &cobra.Command{
	Use:   "install <path>",
	Short: "Install an extension",
	Long: `Build the extension at <path>, package it into dist.zip and ask Acode to install it.

By default the bundler runs once before packaging. --watch keeps rebuilding and
reinstalling on every change until interrupted. --simple skips the bundler and
only packages the files already on disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installWatch, "watch", "w", false, "Watch the folder for changes and reinstall the plugin on change")
	installCmd.Flags().StringVarP(&installConfig, "config", "c", "", "Path to the bundler config file")
	installCmd.Flags().BoolVarP(&installSimple, "simple", "s", false, "Only zip the necessary files, skip the bundler")
	installCmd.MarkFlagsMutuallyExclusive("simple", "watch")
	installCmd.MarkFlagsMutuallyExclusive("simple", "config")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	root, err := pathutil.Resolve(args[0])
	if err != nil {
		return fmt.Errorf("invalid path provided %q: %w", args[0], err)
	}

	var configPath string
	if installConfig != "" {
		configPath, err = pathutil.Resolve(installConfig)
		if err != nil {
			return fmt.Errorf("%w: config %q: %v", build.ErrConfiguration, installConfig, err)
		}
	}

	var runner installer.Runner
	if !installSimple {
		var progress io.Writer
		if verbose {
			progress = cmd.ErrOrStderr()
		}
		o, err := newRunner(settings, logger, progress)
		if err != nil {
			return err
		}
		runner = o
	}

	inst := installer.New(archive.NewBuilder(logger), newActivator(settings, logger), runner, logger)
	return inst.Install(cmd.Context(), root, installer.Options{
		Simple:     installSimple,
		Watch:      installWatch,
		ConfigPath: configPath,
	})
}
