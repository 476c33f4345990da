package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/7HR4IZ3/acode-cli/internal/logging"
)

// DefaultDebounce is the quiet window between a file change and the rebuild
// it triggers.
const DefaultDebounce = 300 * time.Millisecond

// DeliverFunc is called once for every successful compilation.
type DeliverFunc func(ctx context.Context) error

// Options selects the execution mode.
type Options struct {
	Watch bool
	// ConfigPath is an explicit bundler config; empty means look it up in the root.
	ConfigPath string
}

// Orchestrator runs a Bundler in one-shot or watch mode.
type Orchestrator struct {
	Bundler  Bundler
	Log      logging.Logger
	Debounce time.Duration

	// NewWatcher creates the change source for watch mode; defaults to NewFSWatcher.
	NewWatcher func(root string) (Watcher, error)
	// OnResult, when set, observes every Result in the order produced.
	OnResult func(Result)
}

// New returns an Orchestrator with the default debounce and watcher.
func New(b Bundler, log logging.Logger) *Orchestrator {
	if log == nil {
		log = logging.Discard()
	}
	return &Orchestrator{
		Bundler:    b,
		Log:        log,
		Debounce:   DefaultDebounce,
		NewWatcher: NewFSWatcher,
	}
}

// Run compiles root and calls deliver after every successful compilation.
//
// In one-shot mode it returns the build failure, the delivery error, or nil.
// In watch mode it keeps rebuilding until ctx is cancelled; individual build
// and delivery failures are logged and watching continues. The bundler is
// closed before Run returns in both modes.
func (o *Orchestrator) Run(ctx context.Context, root string, opts Options, deliver DeliverFunc) error {
	configPath, err := ResolveConfig(root, opts.ConfigPath)
	if err != nil {
		o.Log.Error("Cannot load build configuration", "error", err)
		return logging.Reported(err)
	}
	o.Log.Debug("Using build configuration", "config", configPath)

	defer func() {
		if err := o.Bundler.Close(); err != nil {
			o.Log.Warn("Releasing bundler failed", "error", err)
		}
	}()

	job := Job{Root: root, ConfigPath: configPath, Watch: opts.Watch}
	if !opts.Watch {
		return o.once(ctx, job, deliver)
	}
	return o.watch(ctx, job, deliver)
}

// once runs a single compilation and delivers on success.
func (o *Orchestrator) once(ctx context.Context, job Job, deliver DeliverFunc) error {
	res := o.compile(ctx, job)
	if res.Status != StatusSuccess {
		return logging.Reported(res.Err())
	}
	return deliver(ctx)
}

// watch rebuilds after each debounced burst of file changes.
func (o *Orchestrator) watch(ctx context.Context, job Job, deliver DeliverFunc) error {
	newWatcher := o.NewWatcher
	if newWatcher == nil {
		newWatcher = NewFSWatcher
	}
	w, err := newWatcher(job.Root)
	if err != nil {
		o.Log.Error("Cannot watch extension", "root", job.Root, "error", err)
		return logging.Reported(fmt.Errorf("%w: %v", ErrConfiguration, err))
	}
	defer w.Close()

	debounce := o.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	o.rebuild(ctx, job, deliver)

	var fire <-chan time.Time
	events, errs := w.Events(), w.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-events:
			if !ok {
				return nil
			}
			o.Log.Debug("Change detected", "path", name)
			fire = time.After(debounce)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			o.Log.Warn("File watcher error", "error", err)
		case <-fire:
			fire = nil
			o.rebuild(ctx, job, deliver)
		}
	}
}

// rebuild handles one watch-mode compilation; failures never stop watching.
func (o *Orchestrator) rebuild(ctx context.Context, job Job, deliver DeliverFunc) {
	res := o.compile(ctx, job)
	if res.Status == StatusSuccess {
		if err := deliver(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.Log.Error("Delivery failed", "error", err)
		}
	}
	o.emit(Result{Status: StatusWatching})
	o.Log.Info("Watching for changes...")
}

// compile runs the bundler, classifies the outcome and renders it.
func (o *Orchestrator) compile(ctx context.Context, job Job) Result {
	o.Log.Info("Building extension", "root", job.Root)
	stats, err := o.Bundler.Build(ctx, job)
	res := Classify(stats, err)
	o.report(res)
	o.emit(res)
	return res
}

// report renders a Result: warnings to the warning channel, errors to the
// error channel and the summary to the standard channel.
func (o *Orchestrator) report(res Result) {
	for _, w := range res.Warnings {
		o.Log.Warn(w.String())
	}
	if f := res.Failure; f != nil {
		if f.Cause != nil {
			o.Log.Error("Bundler failed", "error", f.Cause)
			if f.Details != "" {
				o.Log.Error(f.Details)
			}
		}
		for _, e := range f.Errors {
			o.Log.Error(e.String())
			if e.Details != "" {
				o.Log.Error(e.Details)
			}
		}
	}
	if res.Summary != "" {
		o.Log.Info("Build finished", "status", res.Status, "summary", res.Summary)
	} else {
		o.Log.Info("Build finished", "status", res.Status)
	}
}

func (o *Orchestrator) emit(res Result) {
	if o.OnResult != nil {
		o.OnResult(res)
	}
}
