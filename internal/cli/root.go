package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/7HR4IZ3/acode-cli/internal/branding"
	"github.com/7HR4IZ3/acode-cli/internal/config"
	"github.com/7HR4IZ3/acode-cli/internal/logging"
	"github.com/7HR4IZ3/acode-cli/internal/supervisor"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	verbose         bool
	configFile      string
	terminalBackend string
	startLSP        bool
)

var (
	settings config.Settings
	logger   logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " [file]",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` opens files and folders in the Acode editor, starts the terminal
and language servers Acode connects to, and packages and installs Acode plugins.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Set verbose mode")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "Read settings from this file instead of "+config.FilePath())

	rootCmd.Flags().StringVarP(&terminalBackend, "terminal", "t", "", "Start and manage a terminal server: acodex (default) or acode")
	rootCmd.Flags().Lookup("terminal").NoOptDefVal = string(supervisor.BackendAcodeX)
	rootCmd.Flags().BoolVarP(&startLSP, "start-lsp", "l", false, "Start the acode language server")
}

// setup loads configuration and builds the logger every command uses.
func setup(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		if err := config.LoadFrom(configFile); err != nil {
			return err
		}
	} else {
		config.Load()
	}
	settings = config.Current()
	logger = logging.New(logging.Options{
		Verbose: verbose,
		Format:  settings.LogFormat,
		Prefix:  branding.DisplayName(),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	return nil
}

// Execute runs the root command with build info injected via ldflags.
// SIGINT and SIGTERM cancel the command context, which stops watch mode and
// supervised servers.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:])
}

// execute runs the command tree and logs the returned error once, unless
// the component that produced it already did.
func execute(ctx context.Context, args []string) error {
	logger = nil
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil || logging.IsReported(err) {
		return err
	}

	log := logger
	if log == nil {
		// Flag parsing failed before setup ran.
		log = logging.New(logging.Options{
			Prefix: branding.DisplayName(),
			Stdout: rootCmd.OutOrStdout(),
			Stderr: rootCmd.ErrOrStderr(),
		})
	}
	log.Error(err.Error())
	return err
}
