package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/7HR4IZ3/acode-cli/internal/activation"
	"github.com/7HR4IZ3/acode-cli/internal/archive"
	"github.com/7HR4IZ3/acode-cli/internal/build"
	"github.com/7HR4IZ3/acode-cli/internal/logging"
)

// Packager builds the extension archive.
type Packager interface {
	Build(root string) (*archive.Archive, error)
}

// Activator hands a request to the app.
type Activator interface {
	Activate(ctx context.Context, req activation.Request) (activation.Outcome, error)
}

// Runner compiles the extension and calls deliver after each successful
// build. *build.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, root string, opts build.Options, deliver build.DeliverFunc) error
}

// Options selects the install mode.
type Options struct {
	// Simple skips the bundler and packages what is already on disk.
	Simple bool
	// Watch keeps rebuilding and reinstalling on every change.
	Watch bool
	// ConfigPath is an explicit bundler config.
	ConfigPath string
}

// Installer runs the install pipeline.
type Installer struct {
	Packager  Packager
	Activator Activator
	// Runner is only needed when Simple is false.
	Runner Runner
	Log    logging.Logger
}

// New returns an Installer.
func New(p Packager, a Activator, r Runner, log logging.Logger) *Installer {
	if log == nil {
		log = logging.Discard()
	}
	return &Installer{Packager: p, Activator: a, Runner: r, Log: log}
}

// Install installs the extension at root, which must already be resolved.
// In watch mode it returns only when ctx ends.
func (i *Installer) Install(ctx context.Context, root string, opts Options) error {
	i.Log.Debug("Installing extension from path", "path", root)

	deliver := func(ctx context.Context) error {
		return i.Deliver(ctx, root)
	}
	if opts.Simple {
		return deliver(ctx)
	}
	if i.Runner == nil {
		return fmt.Errorf("%w: no bundler configured", build.ErrConfiguration)
	}
	return i.Runner.Run(ctx, root, build.Options{Watch: opts.Watch, ConfigPath: opts.ConfigPath}, deliver)
}

// Deliver packages root and asks the app to install the archive.
func (i *Installer) Deliver(ctx context.Context, root string) error {
	a, err := i.Packager.Build(root)
	if err != nil {
		return fmt.Errorf("packaging %s: %w", root, err)
	}

	archivePath, err := filepath.Abs(a.OutputPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", a.OutputPath, err)
	}

	req := activation.Request{Action: activation.ActionInstall, Payload: archivePath}
	if _, err := i.Activator.Activate(ctx, req); err != nil {
		return fmt.Errorf("installing %s: %w", archivePath, err)
	}
	if a.Plugin != nil {
		i.Log.Info("Install request sent", "id", a.Plugin.ID, "version", a.Plugin.Version)
	} else {
		i.Log.Info("Install request sent", "archive", archivePath)
	}
	return nil
}
