package pipeline

// StepStatus represents the current state of a step within a run.
// A step moves Pending -> Running -> {Succeeded, Failed, Skipped}.
type StepStatus string

const (
	// StatusPending indicates the step has not started yet.
	StatusPending StepStatus = "pending"
	// StatusRunning indicates the step's action is executing.
	StatusRunning StepStatus = "running"
	// StatusSucceeded indicates the action exited zero and the postcondition holds.
	StatusSucceeded StepStatus = "succeeded"
	// StatusFailed indicates a non-zero exit, or a postcondition that does
	// not hold after a zero exit (the silent-failure class).
	StatusFailed StepStatus = "failed"
	// StatusSkipped indicates an optional step whose precondition was false.
	StatusSkipped StepStatus = "skipped"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusSkipped:
		return true
	case StatusPending, StatusRunning:
		return false
	}
	return false
}
