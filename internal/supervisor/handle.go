package supervisor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a supervised process.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateStopped
	// StateFailed means the process could not be spawned.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle owns one supervised child process.
type Handle struct {
	ID      uuid.UUID
	Spec    Spec
	Started time.Time

	mu    sync.Mutex
	state State
	pid   int
	err   error

	stop func()
	done chan struct{}
}

func newHandle(spec Spec) *Handle {
	return &Handle{
		ID:    uuid.New(),
		Spec:  spec,
		state: StateStarting,
		done:  make(chan struct{}),
		stop:  func() {},
	}
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// PID returns the child's process id, or 0 before it is running.
func (h *Handle) PID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pid
}

// Err returns the spawn or exit error. It is nil while the child runs and
// after a clean exit.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Done is closed once the child has exited or failed to spawn.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the child exits and returns its exit error.
func (h *Handle) Wait() error {
	<-h.done
	return h.Err()
}

// Stop asks the child to exit. It does not wait.
func (h *Handle) Stop() { h.stop() }

func (h *Handle) running(pid int) {
	h.mu.Lock()
	h.state = StateRunning
	h.pid = pid
	h.mu.Unlock()
}

// finish records the terminal state and releases waiters.
func (h *Handle) finish(state State, err error) {
	h.mu.Lock()
	h.state = state
	h.err = err
	h.mu.Unlock()
	close(h.done)
}
