//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // HOME for the run
	BinDir  string // fake platform tools, first on PATH
	LogDir  string // where the fake tools record their arguments
}

// setupTestEnv sandboxes HOME and puts fake am, URI opener and server
// binaries first on PATH. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake platform tools are shell scripts")
	}

	env := &testEnv{
		HomeDir: t.TempDir(),
		BinDir:  t.TempDir(),
		LogDir:  t.TempDir(),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("PATH", env.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("TERMUX_VERSION", "")
	t.Setenv("PREFIX", "")
	t.Setenv("FAKE_LOG_DIR", env.LogDir)

	opener := `#!/bin/sh
echo "$1" >> "$FAKE_LOG_DIR/opener.log"
`
	for _, name := range []string{"xdg-open", "open", "termux-open-url"} {
		writeScript(t, env.BinDir, name, opener)
	}
	env.fakeAm(t, "")
	return env
}

// fakeAm installs an activity manager that records its arguments. Packages
// listed in failing report a missing activity and exit 1.
func (e *testEnv) fakeAm(t *testing.T, failing ...string) {
	t.Helper()
	var cases strings.Builder
	for _, pkg := range failing {
		if pkg == "" {
			continue
		}
		cases.WriteString("  " + pkg + "/*) echo \"Error: Activity class {$2} does not exist.\"; exit 1 ;;\n")
	}
	writeScript(t, e.BinDir, "am", `#!/bin/sh
echo "$@" >> "$FAKE_LOG_DIR/am.log"
case "$2" in
`+cases.String()+`esac
echo "Starting: Intent { cmp=$2 }"
`)
}

// readLog returns the non-empty lines a fake tool recorded.
func (e *testEnv) readLog(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.LogDir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// waitLog polls until a fake tool has recorded at least n lines. URI openers
// are launched detached, so they may still be running when the CLI returns.
func (e *testEnv) waitLog(t *testing.T, name string, n int) []string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		lines := e.readLog(t, name)
		if len(lines) >= n || time.Now().After(deadline) {
			return lines
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func writeScript(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0755); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// setupExtension creates a plugin source tree and returns its resolved root.
func setupExtension(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "main.js"), "console.log('main')\n")
	writeFile(t, filepath.Join(root, "icon.png"), "\x89PNG\r\n")
	writeFile(t, filepath.Join(root, "plugin.json"), `{
  "id": "acode.plugin.integration",
  "name": "Integration",
  "version": "0.1.0",
  "main": "main.js",
  "readme": "readme.md",
  "icon": "icon.png"
}
`)
	writeFile(t, filepath.Join(root, "readme.md"), "# Integration\n")
	writeFile(t, filepath.Join(root, "webpack.config.js"), "module.exports = {};\n")
	return root
}
