package supervisor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBackend(t *testing.T) {
	for _, b := range AllBackends() {
		got, ok := ParseBackend(string(b))
		if !ok || got != b {
			t.Errorf("ParseBackend(%q) = %q, %v", b, got, ok)
		}
	}
	if _, ok := ParseBackend("zsh"); ok {
		t.Error("ParseBackend(zsh) succeeded")
	}
}

func TestLookup(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name      string
		kind      Kind
		backend   string
		overrides map[Backend][]string
		want      []string
		wantErr   error
	}{
		{name: "acodex", kind: KindTerminal, backend: "acodex", want: []string{"acodeX-server"}},
		{name: "default terminal", kind: KindTerminal, backend: "", want: []string{"acodeX-server"}},
		{name: "acode expands home", kind: KindTerminal, backend: "acode", want: []string{"node", filepath.Join(home, "termServer", "index.js")}},
		{name: "language server", kind: KindLanguageServer, backend: "", want: []string{"acode-ls"}},
		{
			name:      "override",
			kind:      KindTerminal,
			backend:   "acodex",
			overrides: map[Backend][]string{BackendAcodeX: {"~/bin/acodeX-server", "--port", "8767"}},
			want:      []string{filepath.Join(home, "bin", "acodeX-server"), "--port", "8767"},
		},
		{name: "unknown", kind: KindTerminal, backend: "bash", wantErr: ErrUnknownBackend},
		{name: "wrong kind", kind: KindTerminal, backend: "acode-ls", wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Lookup(tt.kind, tt.backend, tt.overrides)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if diff := cmp.Diff(tt.want, spec.Command); diff != "" {
				t.Errorf("command mismatch (-want +got):\n%s", diff)
			}
			if spec.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", spec.Kind, tt.kind)
			}
		})
	}
}

func TestLookup_DoesNotMutateTable(t *testing.T) {
	if _, err := Lookup(KindTerminal, "acode", nil); err != nil {
		t.Fatal(err)
	}
	if got := backendTable[BackendAcode].Command[1]; got != "~/termServer/index.js" {
		t.Errorf("table entry rewritten to %q", got)
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides(map[string]string{
		"acodex":   "/opt/acodeX-server --port 9000",
		"acode-ls": "  ",
	})
	if err != nil {
		t.Fatalf("ParseOverrides: %v", err)
	}
	want := map[Backend][]string{BackendAcodeX: {"/opt/acodeX-server", "--port", "9000"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseOverrides(map[string]string{"fish": "fish"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}
}
