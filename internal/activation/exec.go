package activation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/7HR4IZ3/acode-cli/internal/platform"
)

// WakeResult is what a wake attempt reported.
type WakeResult struct {
	ExitCode int
	Output   string
}

// Waker starts the app's main activity for one package.
type Waker interface {
	// Wake returns an error only when the attempt could not be made at all.
	// A non-zero exit is reported through WakeResult.
	Wake(ctx context.Context, pkg string) (WakeResult, error)
}

// Opener hands a URI to whatever handles it on the host.
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// ExecWaker runs the Android activity manager.
type ExecWaker struct {
	Host     platform.Host
	Activity string
	// Command replaces the discovered "am" binary; the subcommand and
	// component are appended to it.
	Command []string
	Env     []string
}

// Wake runs "am start-activity <pkg>/<activity>" and captures its output.
func (w *ExecWaker) Wake(ctx context.Context, pkg string) (WakeResult, error) {
	argv, err := w.argv(pkg)
	if err != nil {
		return WakeResult{}, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(w.Env) > 0 {
		cmd.Env = append(os.Environ(), w.Env...)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err = cmd.Run()
	res := WakeResult{Output: strings.TrimSpace(out.String())}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("running %s: %w", argv[0], err)
	}
	return res, nil
}

func (w *ExecWaker) argv(pkg string) ([]string, error) {
	if len(w.Command) > 0 {
		return append(append([]string{}, w.Command...), "start-activity", platform.ComponentName(pkg, w.Activity)), nil
	}
	return w.Host.WakerCommand(pkg, w.Activity)
}

// ExecOpener opens URIs with the platform opener.
type ExecOpener struct {
	Host platform.Host
	// Configured is a user-chosen opener command line; empty means discover.
	Configured string
	// Command replaces discovery entirely; the URI is appended to it.
	Command []string
	Env     []string
}

// Open launches the opener and returns once it is running. Its exit status
// and the app's handling of the URI are not observed; only a failure to
// launch is an error.
func (o *ExecOpener) Open(ctx context.Context, uri string) error {
	argv := o.Command
	if len(argv) == 0 {
		var err error
		argv, err = o.Host.OpenerCommand(o.Configured)
		if err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Not bound to ctx: the opener may outlive this process.
	cmd := exec.Command(argv[0], append(append([]string{}, argv[1:]...), uri)...)
	if len(o.Env) > 0 {
		cmd.Env = append(os.Environ(), o.Env...)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s for %s: %w", argv[0], uri, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
