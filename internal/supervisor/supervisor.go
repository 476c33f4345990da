package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/7HR4IZ3/acode-cli/internal/logging"
	"github.com/google/uuid"
)

// ErrSpawn is returned when a resolved backend command cannot be started.
var ErrSpawn = errors.New("spawn failed")

// DefaultStopTimeout is how long Stop waits after the interrupt before the
// child is killed.
const DefaultStopTimeout = 3 * time.Second

// maxLine bounds a single forwarded output line.
const maxLine = 1024 * 1024

// Supervisor spawns backends and keeps a registry of their handles. The zero
// value is not usable; call New.
type Supervisor struct {
	Log logging.Logger
	// Overrides replace the default command of a backend.
	Overrides map[Backend][]string
	// Env is appended to the inherited environment of every child.
	Env []string
	// StopTimeout bounds the graceful part of Stop and Shutdown.
	StopTimeout time.Duration

	mu      sync.Mutex
	handles map[uuid.UUID]*Handle
	order   []uuid.UUID
}

// New returns an empty Supervisor.
func New(log logging.Logger) *Supervisor {
	if log == nil {
		log = logging.Discard()
	}
	return &Supervisor{
		Log:         log,
		StopTimeout: DefaultStopTimeout,
		handles:     make(map[uuid.UUID]*Handle),
	}
}

// Supervise starts the backend called name for kind and returns its handle
// as soon as the process is running. Output is forwarded until the child
// exits. Cancelling ctx stops the child.
func (s *Supervisor) Supervise(ctx context.Context, kind Kind, name string) (*Handle, error) {
	spec, err := Lookup(kind, name, s.Overrides)
	if err != nil {
		return nil, err
	}

	label := kind.title()
	cmdline := strings.Join(spec.Command, " ")
	log := s.Log.With("backend", string(spec.Backend))
	log.Info(fmt.Sprintf("Starting %s for %s (%q).", label, spec.Backend, cmdline))

	h := newHandle(spec)
	ctx, cancel := context.WithCancel(ctx)
	h.stop = cancel

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	cmd.WaitDelay = s.stopTimeout()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, s.spawnFailed(log, h, label, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, s.spawnFailed(log, h, label, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, s.spawnFailed(log, h, label, err)
	}
	h.Started = time.Now()
	h.running(cmd.Process.Pid)
	s.register(h)
	log.Info(fmt.Sprintf("%s for %s started.", label, spec.Backend), "pid", cmd.Process.Pid)

	go func() {
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			forward(stdout, spec.Backend, log.Info, log.Warn)
		}()
		go func() {
			defer wg.Done()
			forward(stderr, spec.Backend, log.Warn, log.Warn)
		}()
		wg.Wait()

		waitErr := cmd.Wait()
		switch {
		case ctx.Err() != nil:
			log.Info(fmt.Sprintf("%s for %s stopped.", label, spec.Backend))
			waitErr = nil
		case waitErr != nil:
			log.Warn(fmt.Sprintf("%s for %s exited.", label, spec.Backend), "error", waitErr)
		default:
			log.Info(fmt.Sprintf("%s for %s exited.", label, spec.Backend))
		}
		h.finish(StateStopped, waitErr)
	}()

	return h, nil
}

// spawnFailed records and logs the failed-to-spawn state.
func (s *Supervisor) spawnFailed(log logging.Logger, h *Handle, label string, err error) error {
	h.finish(StateFailed, err)
	log.Error(fmt.Sprintf("Failed to start %s for %s.", label, h.Spec.Backend), "error", err)
	return logging.Reported(fmt.Errorf("%w: %s: %v", ErrSpawn, h.Spec.Backend, err))
}

func (s *Supervisor) register(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles[h.ID] = h
	s.order = append(s.order, h.ID)
}

func (s *Supervisor) stopTimeout() time.Duration {
	if s.StopTimeout > 0 {
		return s.StopTimeout
	}
	return DefaultStopTimeout
}

// Get returns the handle registered under id.
func (s *Supervisor) Get(id uuid.UUID) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	return h, ok
}

// Handles returns every registered handle in start order.
func (s *Supervisor) Handles() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Handle, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.handles[id])
	}
	return out
}

// Wait blocks until every registered child has exited and joins their exit
// errors.
func (s *Supervisor) Wait() error {
	var errs []error
	for _, h := range s.Handles() {
		if err := h.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Spec.Backend, err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown stops every running child and waits for them to exit or for ctx
// to end, whichever comes first.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	handles := s.Handles()
	for _, h := range handles {
		if h.State() == StateRunning {
			s.Log.Debug("Stopping backend", "backend", string(h.Spec.Backend), "id", h.ID.String())
		}
		h.Stop()
	}
	for _, h := range handles {
		select {
		case <-h.Done():
		case <-ctx.Done():
			return fmt.Errorf("shutting down backends: %w", ctx.Err())
		}
	}
	return nil
}

// forward logs every line read from r, prefixed with the backend name, until
// r is exhausted. Lines longer than maxLine are cut, with a warning, and
// reading continues with the next line.
func forward(r io.Reader, b Backend, emit, warn func(msg string, args ...any)) {
	br := bufio.NewReaderSize(r, 64*1024)
	var (
		line      []byte
		truncated bool
	)
	flush := func() {
		if truncated {
			warn(fmt.Sprintf("(%s): output line truncated", b), "limit", maxLine)
		}
		if text := strings.TrimRight(string(line), "\r"); text != "" {
			emit(fmt.Sprintf("(%s): %s", b, text))
		}
		line = line[:0]
		truncated = false
	}

	for {
		chunk, isPrefix, err := br.ReadLine()
		if len(chunk) > 0 && !truncated {
			if room := maxLine - len(line); len(chunk) > room {
				line = append(line, chunk[:room]...)
				truncated = true
			} else {
				line = append(line, chunk...)
			}
		}
		if err != nil {
			if len(line) > 0 || truncated {
				flush()
			}
			return
		}
		if !isPrefix {
			flush()
		}
	}
}

// interrupt asks p to exit. Windows has no interrupt signal for child
// processes, so it is killed outright there.
func interrupt(p *os.Process) error {
	if runtime.GOOS == "windows" {
		return p.Kill()
	}
	return p.Signal(os.Interrupt)
}
