package pipeline

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// RunState represents a provisioning run's lifecycle state.
type RunState string

const (
	// RunStatePending indicates the run has not started.
	RunStatePending RunState = "pending"
	// RunStateProbing indicates the environment probe is in progress.
	RunStateProbing RunState = "probing"
	// RunStateExecuting indicates pipeline steps are running.
	RunStateExecuting RunState = "executing"
	// RunStateManifesting indicates the manifest is being written.
	RunStateManifesting RunState = "manifesting"
	// RunStateSucceeded indicates the run finished without fatal failure.
	RunStateSucceeded RunState = "succeeded"
	// RunStateFailed indicates a fatal failure ended the run.
	RunStateFailed RunState = "failed"
)

// Event types for the run lifecycle machine.
const (
	EventBegin        = "BEGIN"
	EventProbeDone    = "PROBE_DONE"
	EventStepsDone    = "STEPS_DONE"
	EventManifestDone = "MANIFEST_DONE"
	EventFail         = "FAIL"
)

// LifecycleContext holds the runtime context of the lifecycle machine.
type LifecycleContext struct {
	LastError error
	ExitCode  int
}

// Lifecycle tracks a provisioning run through its phases. The terminal
// failure state remembers which phase failed, which determines the
// process exit code.
type Lifecycle struct {
	mu     sync.Mutex
	interp *statekit.Interpreter[LifecycleContext]
	ctx    LifecycleContext
}

// NewLifecycle builds and starts the run lifecycle machine.
func NewLifecycle() (*Lifecycle, error) {
	l := &Lifecycle{}

	machine, err := statekit.NewMachine[LifecycleContext]("orinup-run").
		WithInitial(statekit.StateID(RunStatePending)).
		WithContext(l.ctx).
		WithAction("recordFailure", func(_ *LifecycleContext, event statekit.Event) {
			payload, ok := event.Payload.(map[string]interface{})
			if !ok {
				return
			}
			l.mu.Lock()
			defer l.mu.Unlock()
			if err, ok := payload["error"].(error); ok {
				l.ctx.LastError = err
			}
			if code, ok := payload["exit_code"].(int); ok {
				l.ctx.ExitCode = code
			}
		}).
		State(statekit.StateID(RunStatePending)).
		On(EventBegin).Target(statekit.StateID(RunStateProbing)).Done().
		State(statekit.StateID(RunStateProbing)).
		On(EventProbeDone).Target(statekit.StateID(RunStateExecuting)).
		On(EventFail).Target(statekit.StateID(RunStateFailed)).Done().
		State(statekit.StateID(RunStateExecuting)).
		On(EventStepsDone).Target(statekit.StateID(RunStateManifesting)).
		On(EventFail).Target(statekit.StateID(RunStateFailed)).Done().
		State(statekit.StateID(RunStateManifesting)).
		On(EventManifestDone).Target(statekit.StateID(RunStateSucceeded)).
		On(EventFail).Target(statekit.StateID(RunStateFailed)).Done().
		State(statekit.StateID(RunStateSucceeded)).Done().
		State(statekit.StateID(RunStateFailed)).
		OnEntry("recordFailure").Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build run lifecycle: %w", err)
	}

	l.interp = statekit.NewInterpreter(machine)
	l.interp.Start()
	return l, nil
}

// Begin moves the run from pending to probing.
func (l *Lifecycle) Begin() {
	l.interp.Send(statekit.Event{Type: EventBegin})
}

// ProbeDone moves the run from probing to executing.
func (l *Lifecycle) ProbeDone() {
	l.interp.Send(statekit.Event{Type: EventProbeDone})
}

// StepsDone moves the run from executing to manifesting.
func (l *Lifecycle) StepsDone() {
	l.interp.Send(statekit.Event{Type: EventStepsDone})
}

// ManifestDone moves the run to succeeded.
func (l *Lifecycle) ManifestDone() {
	l.interp.Send(statekit.Event{Type: EventManifestDone})
}

// Fail moves the run to failed, recording the cause and the
// phase-partitioned exit code.
func (l *Lifecycle) Fail(err error, exitCode int) {
	l.interp.Send(statekit.Event{
		Type: EventFail,
		Payload: map[string]interface{}{
			"error":     err,
			"exit_code": exitCode,
		},
	})
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() RunState {
	return RunState(l.interp.State().Value)
}

// ExitCode returns the recorded exit code: zero unless the run failed.
func (l *Lifecycle) ExitCode() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx.ExitCode
}

// LastError returns the recorded failure cause, or nil.
func (l *Lifecycle) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx.LastError
}

// Stop shuts down the lifecycle interpreter.
func (l *Lifecycle) Stop() {
	l.interp.Stop()
}
