package activation

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// TestHelperProcess stands in for "am" and the URI opener.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) > 0 {
		args = args[1:]
	}

	switch os.Getenv("HELPER_MODE") {
	case "am":
		if len(args) != 2 || args[0] != "start-activity" {
			fmt.Fprintf(os.Stderr, "bad args %q\n", args)
			os.Exit(2)
		}
		switch {
		case strings.HasPrefix(args[1], "com.foxdebug.acodefree/"):
			fmt.Println("Warning: Activity not started, its current task has been brought to the front")
			os.Exit(1)
		case strings.HasPrefix(args[1], "com.foxdebug.acode/"):
			fmt.Printf("Starting: Intent { cmp=%s }\n", args[1])
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Error: Activity class {%s} does not exist.\n", args[1])
			os.Exit(1)
		}
	case "open":
		if out := os.Getenv("HELPER_OUT"); out != "" {
			_ = os.WriteFile(out, []byte(strings.Join(args, "\n")), 0644)
		}
		os.Exit(0)
	case "open-fail":
		if out := os.Getenv("HELPER_OUT"); out != "" {
			_ = os.WriteFile(out, []byte("ran"), 0644)
		}
		fmt.Fprintln(os.Stderr, "no handler for scheme")
		os.Exit(4)
	}
	os.Exit(5)
}

func helperCommand() []string {
	return []string{os.Args[0], "-test.run=TestHelperProcess", "--"}
}

func TestExecWaker(t *testing.T) {
	w := &ExecWaker{
		Activity: ".MainActivity",
		Command:  helperCommand(),
		Env:      []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=am"},
	}

	tests := []struct {
		pkg      string
		wantCode int
		wantOut  string
	}{
		{"com.foxdebug.acode", 0, "Starting: Intent { cmp=com.foxdebug.acode/.MainActivity }"},
		{"com.foxdebug.acodefree", 1, "brought to the front"},
		{"com.example.missing", 1, "does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			res, err := w.Wake(context.Background(), tt.pkg)
			if err != nil {
				t.Fatalf("Wake: %v", err)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if !strings.Contains(res.Output, tt.wantOut) {
				t.Errorf("Output = %q, want it to contain %q", res.Output, tt.wantOut)
			}
		})
	}
}

func TestExecWaker_NotStartable(t *testing.T) {
	w := &ExecWaker{Command: []string{"acode-test-no-such-am"}}
	if _, err := w.Wake(context.Background(), "com.foxdebug.acode"); err == nil {
		t.Fatal("Wake with a missing binary succeeded")
	}
}

func TestExecOpener(t *testing.T) {
	out := t.TempDir() + "/args"
	o := &ExecOpener{
		Command: helperCommand(),
		Env:     []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=open", "HELPER_OUT=" + out},
	}
	uri := "acode://cli/open-file/%2Fsdcard%2Fa%20b.js"
	if err := o.Open(context.Background(), uri); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := waitFile(t, out)
	if string(got) != uri {
		t.Errorf("opener received %q, want %q", got, uri)
	}
}

// A URI without a handler is not detected: the opener exiting non-zero
// after launch still counts as dispatched.
func TestExecOpener_ExitStatusIgnored(t *testing.T) {
	out := t.TempDir() + "/ran"
	o := &ExecOpener{
		Command: helperCommand(),
		Env:     []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=open-fail", "HELPER_OUT=" + out},
	}
	if err := o.Open(context.Background(), "acode://cli/enable/x"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	waitFile(t, out)
}

func TestExecOpener_LaunchFailure(t *testing.T) {
	o := &ExecOpener{Command: []string{"acode-test-no-such-opener"}}
	err := o.Open(context.Background(), "acode://cli/enable/x")
	if err == nil || !strings.Contains(err.Error(), "acode-test-no-such-opener") {
		t.Fatalf("err = %v, want launch failure naming the opener", err)
	}
}

// Activate succeeds once the opener is running, whatever it exits with.
func TestActivator_OpenerExitStatusIgnored(t *testing.T) {
	tr := &trace{}
	a := newTestActivator(&fakeWaker{tr: tr, results: map[string]WakeResult{"com.foxdebug.acode": {ExitCode: 1, Output: "brought to the front"}}}, nil, tr)
	out := t.TempDir() + "/ran"
	a.Opener = &ExecOpener{
		Command: helperCommand(),
		Env:     []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=open-fail", "HELPER_OUT=" + out},
	}
	if _, err := a.Activate(context.Background(), Request{Action: ActionEnable, Payload: "x"}); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	waitFile(t, out)
}

// waitFile polls for a file written by a detached helper process.
func waitFile(t *testing.T, path string) []byte {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			return data
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s not written by helper", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Wake classification end to end: the primary package answers with a cold
// start and the free edition is never tried.
func TestActivator_WithExecWaker(t *testing.T) {
	tr := &trace{}
	a := newTestActivator(nil, &fakeOpener{tr: tr}, tr)
	a.Waker = &ExecWaker{
		Activity: ".MainActivity",
		Command:  helperCommand(),
		Env:      []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=am"},
	}
	a.PrimaryPackage = "com.example.missing"

	out, err := a.Activate(context.Background(), Request{Action: ActionEnable, Payload: "my.plugin"})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if out.Attempts != 2 || out.Package != "com.foxdebug.acodefree" || out.ColdStart {
		t.Errorf("Outcome = %+v, want warm start on the second attempt", out)
	}
}
