package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/mvaldez/orinup/internal/ports"
)

// tailLimit bounds how much command output a trace entry retains.
const tailLimit = 4096

// TraceEntry records one external command invocation during a run.
type TraceEntry struct {
	Command    string
	Args       []string
	Dir        string
	ExitCode   int
	StdoutTail string
	StderrTail string
	Err        error
}

// Trace is the append-only command log of a single run. Single writer (the
// executor runs steps strictly sequentially); the mutex only guards against
// readers polling progress.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
}

// NewTrace creates an empty command trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Append records a command invocation.
func (t *Trace) Append(entry TraceEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entry)
}

// Len returns the number of recorded invocations.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Entries returns a copy of all recorded invocations.
func (t *Trace) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	entries := make([]TraceEntry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// LastSince returns the most recent entry appended at or after index mark,
// or false if none was.
func (t *Trace) LastSince(mark int) (TraceEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if mark >= len(t.entries) {
		return TraceEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// Tail truncates s to the trailing tailLimit bytes, cutting at a line
// boundary where possible.
func Tail(s string) string {
	if len(s) <= tailLimit {
		return s
	}
	s = s[len(s)-tailLimit:]
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && idx < len(s)-1 {
		return s[idx+1:]
	}
	return s
}

// TracingRunner wraps a CommandRunner and records every invocation into a
// Trace. Steps constructed with a TracingRunner feed exit codes and output
// tails into their ExecutionResults without any extra plumbing.
type TracingRunner struct {
	inner ports.CommandRunner
	trace *Trace
}

// NewTracingRunner creates a runner that records into trace.
func NewTracingRunner(inner ports.CommandRunner, trace *Trace) *TracingRunner {
	return &TracingRunner{inner: inner, trace: trace}
}

// Run executes a command and records the invocation.
func (r *TracingRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	return r.RunIn(ctx, "", command, args...)
}

// RunIn executes a command in dir and records the invocation.
func (r *TracingRunner) RunIn(ctx context.Context, dir string, command string, args ...string) (ports.CommandResult, error) {
	result, err := r.inner.RunIn(ctx, dir, command, args...)

	r.trace.Append(TraceEntry{
		Command:    command,
		Args:       args,
		Dir:        dir,
		ExitCode:   result.ExitCode,
		StdoutTail: Tail(result.Stdout),
		StderrTail: Tail(result.Stderr),
		Err:        err,
	})

	return result, err
}

// Ensure TracingRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*TracingRunner)(nil)
