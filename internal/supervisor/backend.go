package supervisor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/7HR4IZ3/acode-cli/internal/pathutil"
)

// ErrUnknownBackend is returned for a backend name that is not in the table
// or that does not serve the requested kind.
var ErrUnknownBackend = errors.New("unknown backend")

// Kind classifies a supervised server.
type Kind int

const (
	KindTerminal Kind = iota
	KindLanguageServer
)

func (k Kind) String() string {
	switch k {
	case KindTerminal:
		return "terminal server"
	case KindLanguageServer:
		return "language server"
	default:
		return "unknown"
	}
}

// title is the capitalised form used at the start of log lines.
func (k Kind) title() string {
	switch k {
	case KindTerminal:
		return "Terminal server"
	case KindLanguageServer:
		return "Language server"
	default:
		return "Server"
	}
}

// Backend names a supported helper server.
type Backend string

const (
	BackendAcodeX  Backend = "acodex"
	BackendAcode   Backend = "acode"
	BackendAcodeLS Backend = "acode-ls"
)

// Spec is everything needed to start a backend.
type Spec struct {
	Kind    Kind
	Backend Backend
	// Command is argv; "~" in any element is expanded when the spec is resolved.
	Command []string
}

// backendTable maps each backend to its default invocation.
var backendTable = map[Backend]Spec{
	BackendAcodeX: {
		Kind:    KindTerminal,
		Backend: BackendAcodeX,
		Command: []string{"acodeX-server"},
	},
	BackendAcode: {
		Kind:    KindTerminal,
		Backend: BackendAcode,
		Command: []string{"node", "~/termServer/index.js"},
	},
	BackendAcodeLS: {
		Kind:    KindLanguageServer,
		Backend: BackendAcodeLS,
		Command: []string{"acode-ls"},
	},
}

// AllBackends returns every supported backend name, sorted.
func AllBackends() []Backend {
	out := make([]Backend, 0, len(backendTable))
	for b := range backendTable {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseBackend converts a string to a Backend, returning false if invalid.
func ParseBackend(s string) (Backend, bool) {
	switch s {
	case "acodex":
		return BackendAcodeX, true
	case "acode":
		return BackendAcode, true
	case "acode-ls":
		return BackendAcodeLS, true
	default:
		return "", false
	}
}

// DefaultBackend is used when a kind is requested without a name.
func DefaultBackend(kind Kind) Backend {
	if kind == KindLanguageServer {
		return BackendAcodeLS
	}
	return BackendAcodeX
}

// Lookup resolves name to a Spec for kind. An empty name selects
// DefaultBackend. Overrides replace the default command of known backends.
func Lookup(kind Kind, name string, overrides map[Backend][]string) (Spec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = string(DefaultBackend(kind))
	}
	b, ok := ParseBackend(name)
	if !ok {
		return Spec{}, fmt.Errorf("%w %q: supported backends are %q", ErrUnknownBackend, name, AllBackends())
	}
	spec := backendTable[b]
	if spec.Kind != kind {
		return Spec{}, fmt.Errorf("%w %q: %s is not a %s", ErrUnknownBackend, name, b, kind)
	}

	argv := spec.Command
	if o := overrides[b]; len(o) > 0 {
		argv = o
	}
	spec.Command = make([]string, len(argv))
	for i, a := range argv {
		spec.Command[i] = pathutil.ExpandHome(a)
	}
	return spec, nil
}

// ParseOverrides converts configured command lines, keyed by backend name,
// into argv overrides. Commands are split on whitespace.
func ParseOverrides(commands map[string]string) (map[Backend][]string, error) {
	out := make(map[Backend][]string, len(commands))
	for name, line := range commands {
		b, ok := ParseBackend(name)
		if !ok {
			return nil, fmt.Errorf("%w %q in configuration", ErrUnknownBackend, name)
		}
		argv := strings.Fields(line)
		if len(argv) == 0 {
			continue
		}
		out[b] = argv
	}
	return out, nil
}
