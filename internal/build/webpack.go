package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// WebpackBundler runs the webpack CLI with --json and reads the compilation
// stats from its stdout.
type WebpackBundler struct {
	// Command overrides the launcher; defaults to "npx webpack".
	Command []string
	// Env is appended to the inherited environment.
	Env []string
	// Stderr receives webpack's progress output; defaults to io.Discard.
	Stderr io.Writer
}

// Build runs a single webpack compilation.
func (w *WebpackBundler) Build(ctx context.Context, job Job) (*Stats, error) {
	argv, err := w.command()
	if err != nil {
		return nil, err
	}

	args := append(append([]string{}, argv[1:]...), "--config", job.ConfigPath, "--json")
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Dir = job.Root
	cmd.Env = buildEnv(os.Environ(), job, w.Env)

	stderr := w.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	runErr := cmd.Run()

	// webpack exits 1 when the compilation has errors but still prints stats.
	stats, parseErr := parseStats(stdoutBuf.Bytes())
	if parseErr == nil {
		return stats, nil
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &BundlerError{
				Err:     fmt.Errorf("webpack exited with code %d", exitErr.ExitCode()),
				Details: strings.TrimSpace(stderrBuf.String()),
			}
		}
		return nil, &BundlerError{Err: fmt.Errorf("running webpack: %w", runErr)}
	}
	return nil, &BundlerError{
		Err:     fmt.Errorf("reading webpack stats: %w", parseErr),
		Details: strings.TrimSpace(stderrBuf.String()),
	}
}

// Close is a no-op: every Build runs its own process.
func (w *WebpackBundler) Close() error { return nil }

// command resolves the launcher, verifying that it is on PATH.
func (w *WebpackBundler) command() ([]string, error) {
	argv := w.Command
	if len(argv) == 0 {
		argv = []string{"npx", "webpack"}
	}
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: webpack requires %s: %v", ErrConfiguration, argv[0], err)
	}
	return append([]string{bin}, argv[1:]...), nil
}

// parseStats decodes the stats JSON, skipping any banner text printed before it.
func parseStats(out []byte) (*Stats, error) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return nil, errors.New("no JSON stats in output")
	}
	var stats Stats
	if err := json.Unmarshal(out[start:], &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// buildEnv sets NODE_ENV for the mode unless the caller already chose one.
func buildEnv(base []string, job Job, extra []string) []string {
	env := append([]string(nil), base...)
	mode := "production"
	if job.Watch {
		mode = "development"
	}
	if !hasEnv(env, "NODE_ENV") {
		env = setEnv(env, "NODE_ENV", mode)
	}
	for _, kv := range extra {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			env = setEnv(env, key, value)
		}
	}
	return env
}

func hasEnv(env []string, key string) bool {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
