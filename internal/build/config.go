package build

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigCandidates are the conventional bundler config names looked up in an
// extension root, in order.
var ConfigCandidates = []string{
	"webpack.config.js",
	"webpack.config.mjs",
	"webpack.config.cjs",
	"webpack.config.ts",
}

// ResolveConfig returns the bundler config to use for root. An explicit path
// must exist and be a regular file; otherwise the first conventional name
// found in root is used. The file content belongs to the bundler and is not
// parsed here.
func ResolveConfig(root, explicit string) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: config %s not found", ErrConfiguration, explicit)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: config %s is a directory", ErrConfiguration, explicit)
		}
		return explicit, nil
	}

	for _, name := range ConfigCandidates {
		p := filepath.Join(root, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no bundler config in %s (looked for %v)", ErrConfiguration, root, ConfigCandidates)
}
