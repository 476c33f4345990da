// Package pathutil canonicalizes user-supplied paths.
package pathutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is the single failure signal for any path that cannot be resolved.
var ErrNotFound = errors.New("path not found")

// Resolve returns the absolute, symlink-free form of path. Any lookup failure
// is reported as ErrNotFound; the underlying error is not exposed.
func Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrNotFound
	}

	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", ErrNotFound
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", ErrNotFound
	}
	return real, nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
