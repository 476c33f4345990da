package activation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/7HR4IZ3/acode-cli/internal/branding"
	"github.com/7HR4IZ3/acode-cli/internal/logging"
)

// ErrUnreachable is returned when the app cannot be woken under either
// package or the URI cannot be dispatched.
var ErrUnreachable = errors.New("acode app unreachable")

// DefaultGracePeriod is the wait after a cold start before the handoff.
const DefaultGracePeriod = 5 * time.Second

// foregroundMarker appears in the activity manager's output when the app
// was already running and has only been brought to the front.
const foregroundMarker = "brought to the front"

// Outcome describes a completed activation.
type Outcome struct {
	// Package is the package that answered the wake.
	Package string
	// Attempts counts wake attempts, 1 or 2.
	Attempts int
	// ColdStart is true when the grace period was applied.
	ColdStart bool
	// URI is empty for a wake-only start.
	URI string
}

// Activator runs the wake and handoff tiers.
type Activator struct {
	Waker  Waker
	Opener Opener
	Log    logging.Logger

	PrimaryPackage   string
	SecondaryPackage string
	GracePeriod      time.Duration
	// Sleep waits for d or until ctx ends.
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns an Activator with the branded package ids and the default
// grace period.
func New(w Waker, o Opener, log logging.Logger) *Activator {
	if log == nil {
		log = logging.Discard()
	}
	return &Activator{
		Waker:            w,
		Opener:           o,
		Log:              log,
		PrimaryPackage:   branding.PrimaryPackage(),
		SecondaryPackage: branding.SecondaryPackage(),
		GracePeriod:      DefaultGracePeriod,
		Sleep:            sleep,
	}
}

// Activate wakes the app and then opens the request URI. A failed wake
// never reaches the handoff.
func (a *Activator) Activate(ctx context.Context, req Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	out, err := a.wake(ctx)
	if err != nil {
		return out, err
	}

	if out.ColdStart && a.GracePeriod > 0 {
		a.Log.Info("Waiting for Acode to start", "delay", a.GracePeriod)
		if err := a.sleep(ctx, a.GracePeriod); err != nil {
			return out, err
		}
	}

	out.URI = req.URI()
	a.Log.Debug("Opening URI", "uri", out.URI)
	if err := a.Opener.Open(ctx, out.URI); err != nil {
		return out, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return out, nil
}

// Start only wakes the app.
func (a *Activator) Start(ctx context.Context) (Outcome, error) {
	return a.wake(ctx)
}

type wakeState int

const (
	attemptPrimary wakeState = iota
	attemptSecondary
	wakeFailed
)

// wake runs the AttemptPrimary -> AttemptSecondary -> Failed state machine.
func (a *Activator) wake(ctx context.Context) (Outcome, error) {
	var (
		out  Outcome
		errs []error
	)
	state := attemptPrimary
	for {
		var pkg string
		switch state {
		case attemptPrimary:
			pkg = a.PrimaryPackage
		case attemptSecondary:
			pkg = a.SecondaryPackage
		case wakeFailed:
			return out, fmt.Errorf("%w: %w", ErrUnreachable, errors.Join(errs...))
		}

		out.Attempts++
		cold, err := a.attempt(ctx, pkg)
		if err == nil {
			out.Package = pkg
			out.ColdStart = cold
			a.Log.Debug("Acode is awake", "package", pkg, "cold_start", cold)
			return out, nil
		}
		a.Log.Debug("Wake attempt failed", "package", pkg, "error", err)
		errs = append(errs, err)

		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		if state == attemptPrimary && a.SecondaryPackage != "" && a.SecondaryPackage != a.PrimaryPackage {
			state = attemptSecondary
		} else {
			state = wakeFailed
		}
	}
}

// attempt wakes one package. Exit status 0 counts as a cold start; a
// non-zero exit is still a success when the app was only brought to the front.
func (a *Activator) attempt(ctx context.Context, pkg string) (cold bool, err error) {
	res, err := a.Waker.Wake(ctx, pkg)
	if err != nil {
		return false, fmt.Errorf("%s: %w", pkg, err)
	}
	if res.ExitCode == 0 {
		return true, nil
	}
	if strings.Contains(res.Output, foregroundMarker) {
		return false, nil
	}
	if res.Output != "" {
		return false, fmt.Errorf("%s: exit status %d: %s", pkg, res.ExitCode, res.Output)
	}
	return false, fmt.Errorf("%s: exit status %d", pkg, res.ExitCode)
}

func (a *Activator) sleep(ctx context.Context, d time.Duration) error {
	if a.Sleep != nil {
		return a.Sleep(ctx, d)
	}
	return sleep(ctx, d)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
