package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/7HR4IZ3/acode-cli/internal/activation"
	"github.com/7HR4IZ3/acode-cli/internal/logging"
	"github.com/7HR4IZ3/acode-cli/internal/pathutil"
	"github.com/7HR4IZ3/acode-cli/internal/supervisor"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long supervised servers get to exit on Ctrl-C.
const shutdownTimeout = 5 * time.Second

var openCmd = &cobra.Command{
	Use:   "open <file-or-folder>",
	Short: "Open a file or folder in Acode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openPath(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}

// runRoot starts the requested servers, then opens the file argument or
// just wakes the app, and finally blocks while the servers run.
func runRoot(cmd *cobra.Command, args []string) error {
	args = terminalFromArgs(cmd, args)
	if len(args) == 0 && terminalBackend == "" && !startLSP {
		return cmd.Help()
	}
	ctx := cmd.Context()

	var sup *supervisor.Supervisor
	if terminalBackend != "" || startLSP {
		s, err := startBackends(ctx)
		if err != nil {
			return err
		}
		sup = s
	}

	var err error
	if len(args) == 1 {
		err = openPath(ctx, args[0])
	} else {
		_, err = newActivator(settings, logger).Start(ctx)
	}
	if sup == nil {
		return err
	}

	// The servers keep running even when the app could not be reached.
	if err != nil && !logging.IsReported(err) {
		logger.Error(err.Error())
		err = logging.Reported(err)
	}
	waitBackends(ctx, sup)
	return err
}

// terminalFromArgs lets "--terminal <backend>" name the backend with a
// separate word. pflag only binds an optional value written as
// "--terminal=<backend>", so the word arrives as the file argument instead.
// It is taken as the backend when the flag holds its no-value default and the
// word is a known backend name. Supervise rejects a backend of the wrong kind.
func terminalFromArgs(cmd *cobra.Command, args []string) []string {
	f := cmd.Flags().Lookup("terminal")
	if f == nil || !f.Changed || terminalBackend != f.NoOptDefVal || len(args) != 1 {
		return args
	}
	b, ok := supervisor.ParseBackend(args[0])
	if !ok {
		return args
	}
	terminalBackend = string(b)
	return nil
}

// openPath resolves p and asks the app to open it as a file or folder.
func openPath(ctx context.Context, p string) error {
	req, err := openRequest(p)
	if err != nil {
		return err
	}
	if req.Action == activation.ActionOpenFile {
		logger.Debug("Opening file: " + req.Payload)
	} else {
		logger.Debug("Opening folder: " + req.Payload)
	}
	_, err = newActivator(settings, logger).Activate(ctx, req)
	return err
}

// openRequest builds the open-file or open-folder request for p.
func openRequest(p string) (activation.Request, error) {
	resolved, err := pathutil.Resolve(p)
	if err != nil {
		return activation.Request{}, fmt.Errorf("invalid path provided %q: %w", p, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return activation.Request{}, fmt.Errorf("invalid path provided %q: %w", p, pathutil.ErrNotFound)
	}
	action := activation.ActionOpenFile
	if info.IsDir() {
		action = activation.ActionOpenFolder
	}
	return activation.Request{Action: action, Payload: resolved}, nil
}

// startBackends starts the terminal server and/or language server. When the
// second one fails the first is stopped again.
func startBackends(ctx context.Context) (*supervisor.Supervisor, error) {
	sup, err := newSupervisor(settings, logger)
	if err != nil {
		return nil, err
	}

	// Children outlive a cancelled command context until Shutdown stops them.
	base := context.WithoutCancel(ctx)

	if terminalBackend != "" {
		if _, err := sup.Supervise(base, supervisor.KindTerminal, terminalBackend); err != nil {
			return nil, err
		}
	}
	if startLSP {
		if _, err := sup.Supervise(base, supervisor.KindLanguageServer, ""); err != nil {
			shutdownBackends(sup)
			return nil, err
		}
	}
	return sup, nil
}

// waitBackends blocks until every server exits or ctx is cancelled, in which
// case the servers are shut down.
func waitBackends(ctx context.Context, sup *supervisor.Supervisor) {
	done := make(chan struct{})
	go func() {
		// Exit errors were already logged by the supervisor.
		_ = sup.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Info("Stopping servers...")
		shutdownBackends(sup)
	}
}

func shutdownBackends(sup *supervisor.Supervisor) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sup.Shutdown(ctx); err != nil {
		logger.Warn("Servers did not stop in time", "error", err)
	}
}
