package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Level names recorded by Recorder.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Entry is a single recorded log call.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// String renders the entry as "msg k=v ...".
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	for i := 0; i+1 < len(e.Args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Args[i], e.Args[i+1])
	}
	return b.String()
}

// Recorder is an in-memory Logger for tests. It is safe for concurrent use.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	with    []any
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) record(level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append(append([]any{}, r.with...), args...)
	*r.entries = append(*r.entries, Entry{Level: level, Msg: msg, Args: all})
}

func (r *Recorder) Debug(msg string, args ...any) { r.record(LevelDebug, msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.record(LevelInfo, msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.record(LevelWarn, msg, args) }
func (r *Recorder) Error(msg string, args ...any) { r.record(LevelError, msg, args) }

// With returns a Recorder sharing the same entry list.
func (r *Recorder) With(args ...any) Logger {
	return &Recorder{mu: r.mu, entries: r.entries, with: append(append([]any{}, r.with...), args...)}
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), *r.entries...)
}

// ByLevel returns the recorded entries at the given level.
func (r *Recorder) ByLevel(level string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any entry's rendered text contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, e := range r.Entries() {
		if strings.Contains(e.String(), substr) {
			return true
		}
	}
	return false
}
