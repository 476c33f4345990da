package cli

import (
	"context"
	"io"

	"github.com/7HR4IZ3/acode-cli/internal/activation"
	"github.com/7HR4IZ3/acode-cli/internal/build"
	"github.com/7HR4IZ3/acode-cli/internal/config"
	"github.com/7HR4IZ3/acode-cli/internal/logging"
	"github.com/7HR4IZ3/acode-cli/internal/platform"
	"github.com/7HR4IZ3/acode-cli/internal/supervisor"
)

// activator is the part of *activation.Activator the commands use.
type activator interface {
	Activate(ctx context.Context, req activation.Request) (activation.Outcome, error)
	Start(ctx context.Context) (activation.Outcome, error)
}

// Factories are variables so tests can swap in fakes.
var (
	newActivator  = defaultActivator
	newSupervisor = defaultSupervisor
	newRunner     = defaultRunner
)

func defaultActivator(s config.Settings, log logging.Logger) activator {
	host := platform.Detect()
	a := activation.New(
		&activation.ExecWaker{Host: host, Activity: s.Activity},
		&activation.ExecOpener{Host: host, Configured: s.Opener},
		log,
	)
	if s.PrimaryPackage != "" {
		a.PrimaryPackage = s.PrimaryPackage
	}
	if s.SecondaryPackage != "" {
		a.SecondaryPackage = s.SecondaryPackage
	}
	a.GracePeriod = s.GracePeriod
	return a
}

func defaultSupervisor(s config.Settings, log logging.Logger) (*supervisor.Supervisor, error) {
	overrides, err := supervisor.ParseOverrides(s.BackendCommands)
	if err != nil {
		return nil, err
	}
	sup := supervisor.New(log)
	sup.Overrides = overrides
	return sup, nil
}

// defaultRunner builds the orchestrator for the configured bundler. Bundler
// progress output is shown only in verbose mode.
func defaultRunner(s config.Settings, log logging.Logger, progress io.Writer) (*build.Orchestrator, error) {
	b, err := build.NewBundler(s.Bundler)
	if err != nil {
		return nil, err
	}
	if wb, ok := b.(*build.WebpackBundler); ok && progress != nil {
		wb.Stderr = progress
	}
	o := build.New(b, log)
	o.Debounce = s.Debounce
	return o, nil
}
