package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status tags a Result.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	// StatusWatching is reported after a watch-mode rebuild has been handled
	// and the orchestrator is waiting for the next change.
	StatusWatching
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusWatching:
		return "watching"
	default:
		return "unknown"
	}
}

var (
	// ErrConfiguration is returned when the bundler configuration cannot be
	// located or the bundler itself is not available.
	ErrConfiguration = errors.New("build configuration error")
	// ErrBuildFailed is matched by every *FailureError.
	ErrBuildFailed = errors.New("build failed")
)

// Diagnostic is a single bundler warning or error.
type Diagnostic struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Module  string `json:"moduleName,omitempty"`
}

// UnmarshalJSON accepts both object diagnostics and the plain strings older
// bundler versions emit.
func (d *Diagnostic) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Message = s
		return nil
	}
	type plain Diagnostic
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Diagnostic(p)
	return nil
}

func (d Diagnostic) String() string {
	if d.Module != "" {
		return d.Module + ": " + d.Message
	}
	return d.Message
}

// Stats is what a bundler reports after one compilation.
type Stats struct {
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
	Hash     string       `json:"hash,omitempty"`
	// TimeMS is the compilation time in milliseconds.
	TimeMS int64 `json:"time,omitempty"`
}

// Summary renders a one-line description of the compilation.
func (s *Stats) Summary() string {
	parts := []string{fmt.Sprintf("%d error(s), %d warning(s)", len(s.Errors), len(s.Warnings))}
	if s.Hash != "" {
		parts = append(parts, "hash "+s.Hash)
	}
	if s.TimeMS > 0 {
		parts = append(parts, fmt.Sprintf("%dms", s.TimeMS))
	}
	return strings.Join(parts, ", ")
}

// BundlerError is a failure of the bundler itself rather than of the code it
// compiled: it could not start, crashed, or produced unreadable output.
type BundlerError struct {
	Err     error
	Details string
}

func (e *BundlerError) Error() string {
	return "bundler: " + e.Err.Error()
}

func (e *BundlerError) Unwrap() error { return e.Err }

// FailureError describes a failed compilation.
type FailureError struct {
	// Cause is set when the bundler itself failed.
	Cause   error
	Details string
	Errors  []Diagnostic
}

func (e *FailureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrBuildFailed, e.Cause)
	}
	return fmt.Sprintf("%s with %d error(s)", ErrBuildFailed, len(e.Errors))
}

func (e *FailureError) Unwrap() error { return ErrBuildFailed }

// Result is the classified outcome of one compilation.
type Result struct {
	Status   Status
	Warnings []Diagnostic
	Failure  *FailureError
	Summary  string
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Classify turns a bundler outcome into a Result. A bundler-level error wins
// over diagnostics; otherwise any error diagnostic fails the build and
// warnings alone do not.
func Classify(stats *Stats, err error) Result {
	if err != nil {
		f := &FailureError{Cause: err}
		var be *BundlerError
		if errors.As(err, &be) {
			f.Details = be.Details
		}
		return Result{Status: StatusFailure, Failure: f}
	}
	if stats == nil {
		stats = &Stats{}
	}
	r := Result{Warnings: stats.Warnings, Summary: stats.Summary()}
	if len(stats.Errors) > 0 {
		r.Status = StatusFailure
		r.Failure = &FailureError{Errors: stats.Errors}
		return r
	}
	r.Status = StatusSuccess
	return r
}
