// Package logging provides the leveled Logger every component receives by
// injection. The default implementation writes "[Acode CLI] message key=value"
// lines through log/slog, sending warnings and errors to stderr.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Logger is the leveled logging collaborator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Options configures New.
type Options struct {
	Verbose bool
	// Format is "text" (default) or "json".
	Format string
	Prefix string
	Stdout io.Writer
	Stderr io.Writer
}

type slogLogger struct {
	l *slog.Logger
}

// New creates a Logger. It does not set the global slog default.
func New(opts Options) Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(opts.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = &consoleHandler{
			level:  level,
			prefix: opts.Prefix,
			out:    opts.Stdout,
			err:    opts.Stderr,
			mu:     &sync.Mutex{},
		}
	}
	return &slogLogger{l: slog.New(handler)}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// consoleHandler renders records for humans: no timestamp, no level for
// info lines, and warn/error routed to the error stream.
type consoleHandler struct {
	level  slog.Level
	prefix string
	attrs  []slog.Attr
	out    io.Writer
	err    io.Writer
	mu     *sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	if h.prefix != "" {
		b.WriteString("[" + h.prefix + "] ")
	}
	switch {
	case r.Level >= slog.LevelError:
		b.WriteString("error: ")
	case r.Level >= slog.LevelWarn:
		b.WriteString("warning: ")
	case r.Level < slog.LevelInfo:
		b.WriteString("debug: ")
	}
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) {
		if a.Equal(slog.Attr{}) {
			return
		}
		fmt.Fprintf(&b, " %s=%s", a.Key, quote(a.Value.String()))
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(a)
		return true
	})
	b.WriteByte('\n')

	w := h.out
	if r.Level >= slog.LevelWarn {
		w = h.err
	}
	if w == nil {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup is not used by this CLI; groups are flattened.
func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
