package pipeline

import "time"

// ExecutionResult records the outcome of one step in one run. Results are
// appended to the run log as they are produced and never mutated afterwards.
type ExecutionResult struct {
	stepID     StepID
	status     StepStatus
	err        error
	start      time.Time
	end        time.Time
	exitCode   int
	stdoutTail string
	stderrTail string
	attempts   int
}

// NewExecutionResult creates a result with the given status and error.
func NewExecutionResult(stepID StepID, status StepStatus, err error) ExecutionResult {
	return ExecutionResult{
		stepID:   stepID,
		status:   status,
		err:      err,
		attempts: 1,
	}
}

// StepID returns the step this result belongs to.
func (r ExecutionResult) StepID() StepID {
	return r.stepID
}

// Status returns the terminal status of the step.
func (r ExecutionResult) Status() StepStatus {
	return r.status
}

// Err returns the failure cause, or nil.
func (r ExecutionResult) Err() error {
	return r.err
}

// Start returns when the step began running.
func (r ExecutionResult) Start() time.Time {
	return r.start
}

// End returns when the step reached a terminal status.
func (r ExecutionResult) End() time.Time {
	return r.end
}

// Duration returns how long the step ran.
func (r ExecutionResult) Duration() time.Duration {
	if r.start.IsZero() || r.end.IsZero() {
		return 0
	}
	return r.end.Sub(r.start)
}

// ExitCode returns the exit code of the step's last external command.
func (r ExecutionResult) ExitCode() int {
	return r.exitCode
}

// StdoutTail returns the trailing stdout of the step's last command.
func (r ExecutionResult) StdoutTail() string {
	return r.stdoutTail
}

// StderrTail returns the trailing stderr of the step's last command.
func (r ExecutionResult) StderrTail() string {
	return r.stderrTail
}

// Attempts returns how many times the action ran (2 after a retry).
func (r ExecutionResult) Attempts() int {
	return r.attempts
}

// Success returns true if the step succeeded or was skipped.
func (r ExecutionResult) Success() bool {
	return r.status == StatusSucceeded || r.status == StatusSkipped
}

// WithTimes returns a copy with start and end times set.
func (r ExecutionResult) WithTimes(start, end time.Time) ExecutionResult {
	r.start = start
	r.end = end
	return r
}

// WithCommandOutcome returns a copy with exit code and output tails set.
func (r ExecutionResult) WithCommandOutcome(exitCode int, stdoutTail, stderrTail string) ExecutionResult {
	r.exitCode = exitCode
	r.stdoutTail = stdoutTail
	r.stderrTail = stderrTail
	return r
}

// WithAttempts returns a copy with the attempt count set.
func (r ExecutionResult) WithAttempts(attempts int) ExecutionResult {
	r.attempts = attempts
	return r
}

// RunStatus is the overall outcome of a pipeline run.
type RunStatus string

const (
	// RunSucceeded means no fatal step failed.
	RunSucceeded RunStatus = "succeeded"
	// RunFailed means at least one fatal step failed.
	RunFailed RunStatus = "failed"
	// RunAborted means the run was cancelled between steps.
	RunAborted RunStatus = "aborted"
)

// RunResult aggregates the outcome of a whole pipeline run.
type RunResult struct {
	Results     []ExecutionResult
	Status      RunStatus
	FailedSteps []StepID
	// ExitCode is the phase-partitioned process exit code: zero on
	// success, otherwise the failing phase's code.
	ExitCode int
}

// Succeeded returns true if no fatal step failed.
func (r RunResult) Succeeded() bool {
	return r.Status == RunSucceeded
}
