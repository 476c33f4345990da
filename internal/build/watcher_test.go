package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIgnoredPath(t *testing.T) {
	root := filepath.Join("home", "dev", "node_modules", "my-plugin")
	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "src", "main.js"), false},
		{filepath.Join(root, "plugin.json"), false},
		{filepath.Join(root, "dist.zip"), true},
		{filepath.Join(root, ".dist.zip-123456"), true},
		{filepath.Join(root, "dist", "main.js"), true},
		{filepath.Join(root, "node_modules", "lodash", "index.js"), true},
		{filepath.Join(root, ".git", "HEAD"), true},
	}
	for _, tt := range tests {
		if got := ignoredPath(root, tt.path); got != tt.want {
			t.Errorf("ignoredPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFSWatcher_ReportsSourceChanges(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src", "dist"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewFSWatcher(root)
	if err != nil {
		t.Fatalf("NewFSWatcher: %v", err)
	}
	defer w.Close()

	// Output written by the build must not be reported.
	if err := os.WriteFile(filepath.Join(root, "dist", "main.js"), []byte("out"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "dist.zip"), []byte("zip"), 0644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(root, "src", "main.js")
	if err := os.WriteFile(src, []byte("console.log(1)"), 0644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Events():
			if strings.HasPrefix(name, filepath.Join(root, "dist")) {
				t.Fatalf("build output reported: %s", name)
			}
			if name == src {
				return
			}
		case err := <-w.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-timeout:
			t.Fatal("no event for source change")
		}
	}
}

func TestFSWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := NewFSWatcher(root)
	if err != nil {
		t.Fatalf("NewFSWatcher: %v", err)
	}
	defer w.Close()

	dir := filepath.Join(root, "lib")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, dir)

	file := filepath.Join(dir, "util.js")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, w, file)
}

func waitEvent(t *testing.T, w Watcher, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Events():
			if name == want {
				return
			}
		case <-timeout:
			t.Fatalf("no event for %s", want)
		}
	}
}
