package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var (
	// ErrNoOpener is returned when no URI opener can be found on PATH.
	ErrNoOpener = errors.New("no URI opener available")
	// ErrNoWaker is returned when the activity manager is not on PATH.
	ErrNoWaker = errors.New("activity manager (am) not available")
)

// Host describes the running platform. Fields are injectable for tests.
type Host struct {
	GOOS     string
	LookPath func(file string) (string, error)
	Getenv   func(key string) string
}

// Detect returns the Host for the current process.
func Detect() Host {
	return Host{
		GOOS:     runtime.GOOS,
		LookPath: exec.LookPath,
		Getenv:   os.Getenv,
	}
}

// IsTermux reports whether the CLI runs inside the Termux app.
func (h Host) IsTermux() bool {
	getenv := h.getenv()
	if getenv("TERMUX_VERSION") != "" {
		return true
	}
	return strings.Contains(getenv("PREFIX"), "com.termux")
}

// openerCandidates lists the URI openers to try, in order.
func (h Host) openerCandidates() [][]string {
	var out [][]string
	if h.IsTermux() {
		out = append(out, []string{"termux-open-url"})
	}
	switch h.GOOS {
	case "darwin":
		out = append(out, []string{"open"})
	case "windows":
		out = append(out, []string{"rundll32", "url.dll,FileProtocolHandler"})
	default:
		out = append(out, []string{"xdg-open"})
	}
	return out
}

// OpenerCommand returns the argv prefix used to open a URI; the URI is
// appended as the last argument. A configured command takes precedence and
// is split on whitespace.
func (h Host) OpenerCommand(configured string) ([]string, error) {
	if fields := strings.Fields(configured); len(fields) > 0 {
		bin, err := h.lookPath()(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: configured opener %s: %v", ErrNoOpener, fields[0], err)
		}
		return append([]string{bin}, fields[1:]...), nil
	}

	var tried []string
	for _, argv := range h.openerCandidates() {
		tried = append(tried, argv[0])
		if bin, err := h.lookPath()(argv[0]); err == nil {
			return append([]string{bin}, argv[1:]...), nil
		}
	}
	return nil, fmt.Errorf("%w on %s (tried %s)", ErrNoOpener, h.GOOS, strings.Join(tried, ", "))
}

// WakerCommand returns the argv that brings pkg's activity to the front.
func (h Host) WakerCommand(pkg, activity string) ([]string, error) {
	bin, err := h.lookPath()("am")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoWaker, err)
	}
	return []string{bin, "start-activity", ComponentName(pkg, activity)}, nil
}

// ComponentName joins a package and activity the way the activity manager
// expects. A leading "." makes the activity relative to the package.
func ComponentName(pkg, activity string) string {
	if activity == "" {
		activity = ".MainActivity"
	}
	return pkg + "/" + activity
}

func (h Host) lookPath() func(string) (string, error) {
	if h.LookPath != nil {
		return h.LookPath
	}
	return exec.LookPath
}

func (h Host) getenv() func(string) string {
	if h.Getenv != nil {
		return h.Getenv
	}
	return os.Getenv
}
