package build

import (
	"context"
	"fmt"
)

// Job describes one compilation request.
type Job struct {
	Root       string
	ConfigPath string
	// Watch is true when the compilation is part of a watch session.
	Watch bool
}

// Bundler compiles an extension. Implementations must be safe to call
// repeatedly; Close releases whatever they hold between builds.
type Bundler interface {
	Build(ctx context.Context, job Job) (*Stats, error)
	Close() error
}

// Supported bundler identifiers.
const (
	BundlerWebpack = "webpack"
)

// NewBundler returns the Bundler registered under name.
func NewBundler(name string) (Bundler, error) {
	switch name {
	case BundlerWebpack, "":
		return &WebpackBundler{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown bundler %q: supported bundlers are %q", ErrConfiguration, name, BundlerWebpack)
	}
}
