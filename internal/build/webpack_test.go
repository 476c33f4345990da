package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestHelperProcess stands in for the webpack CLI. It is only active when
// re-executed by helperBundler.
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
	case "ok":
		cwd, _ := os.Getwd()
		fmt.Println("webpack 5.90.0 compiled")
		fmt.Printf(`{"hash":%q,"time":12,"errors":[],"warnings":[{"message":%q}]}`+"\n",
			os.Getenv("NODE_ENV"), filepath.Base(cwd)+" "+strings.Join(args, " "))
		os.Exit(0)
	case "errors":
		fmt.Println(`{"errors":[{"message":"Module not found","moduleName":"./main.js"}],"warnings":[]}`)
		os.Exit(1)
	case "crash":
		fmt.Fprintln(os.Stderr, "TypeError: cannot read config")
		os.Exit(2)
	case "garbage":
		fmt.Println("this is not json")
		os.Exit(0)
	}
	os.Exit(3)
}

func helperBundler(mode string) *WebpackBundler {
	return &WebpackBundler{
		Command: []string{os.Args[0], "-test.run=TestHelperProcess", "--"},
		Env:     []string{"GO_WANT_HELPER_PROCESS=1", "HELPER_MODE=" + mode, "NODE_ENV=test"},
	}
}

func helperJob(t *testing.T) Job {
	t.Helper()
	root := t.TempDir()
	return Job{Root: root, ConfigPath: filepath.Join(root, "webpack.config.js")}
}

func TestWebpackBundler_Success(t *testing.T) {
	job := helperJob(t)

	stats, err := helperBundler("ok").Build(context.Background(), job)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Hash != "test" {
		t.Errorf("Hash = %q, want NODE_ENV passed through as %q", stats.Hash, "test")
	}
	want := []Diagnostic{{Message: filepath.Base(job.Root) + " --config " + job.ConfigPath + " --json"}}
	if diff := cmp.Diff(want, stats.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
	if len(stats.Errors) != 0 {
		t.Errorf("Errors = %v, want none", stats.Errors)
	}
}

func TestWebpackBundler_CompilationErrors(t *testing.T) {
	stats, err := helperBundler("errors").Build(context.Background(), helperJob(t))
	if err != nil {
		t.Fatalf("Build: %v (a failing compilation must still yield stats)", err)
	}
	if len(stats.Errors) != 1 || stats.Errors[0].Module != "./main.js" {
		t.Errorf("Errors = %+v", stats.Errors)
	}
}

func TestWebpackBundler_Crash(t *testing.T) {
	_, err := helperBundler("crash").Build(context.Background(), helperJob(t))
	var be *BundlerError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BundlerError", err)
	}
	if !strings.Contains(be.Error(), "code 2") {
		t.Errorf("Error() = %q, want exit code", be.Error())
	}
	if be.Details != "TypeError: cannot read config" {
		t.Errorf("Details = %q", be.Details)
	}
}

func TestWebpackBundler_UnreadableOutput(t *testing.T) {
	_, err := helperBundler("garbage").Build(context.Background(), helperJob(t))
	var be *BundlerError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want *BundlerError", err)
	}
}

func TestWebpackBundler_MissingLauncher(t *testing.T) {
	b := &WebpackBundler{Command: []string{"acode-test-no-such-launcher"}}
	_, err := b.Build(context.Background(), helperJob(t))
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestBuildEnv(t *testing.T) {
	tests := []struct {
		name  string
		base  []string
		watch bool
		extra []string
		want  string
	}{
		{name: "one-shot", base: []string{"PATH=/bin"}, want: "NODE_ENV=production"},
		{name: "watch", base: []string{"PATH=/bin"}, watch: true, want: "NODE_ENV=development"},
		{name: "inherited", base: []string{"NODE_ENV=staging"}, want: "NODE_ENV=staging"},
		{name: "extra wins", base: []string{"NODE_ENV=staging"}, extra: []string{"NODE_ENV=ci"}, want: "NODE_ENV=ci"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := buildEnv(tt.base, Job{Watch: tt.watch}, tt.extra)
			var got []string
			for _, kv := range env {
				if strings.HasPrefix(kv, "NODE_ENV=") {
					got = append(got, kv)
				}
			}
			if diff := cmp.Diff([]string{tt.want}, got); diff != "" {
				t.Errorf("NODE_ENV mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStats_SkipsBanner(t *testing.T) {
	stats, err := parseStats([]byte("npm notice\n{\"hash\":\"h\",\"errors\":[],\"warnings\":[]}"))
	if err != nil {
		t.Fatalf("parseStats: %v", err)
	}
	if stats.Hash != "h" {
		t.Errorf("Hash = %q", stats.Hash)
	}
	if _, err := parseStats([]byte("nothing here")); err == nil {
		t.Error("parseStats without JSON succeeded")
	}
}
