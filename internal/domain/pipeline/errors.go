package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSilentFailure marks the silent-failure class: the action exited zero
// but the postcondition does not hold.
var ErrSilentFailure = errors.New("postcondition does not hold after successful action")

// Error codes for step execution.
const (
	ErrCodePreconditionFailed  = "PRECONDITION_FAILED"
	ErrCodeApplyFailed         = "APPLY_FAILED"
	ErrCodePostconditionFailed = "POSTCONDITION_FAILED"
	ErrCodeSilentFailure       = "SILENT_FAILURE"
	ErrCodeAborted             = "ABORTED"
)

// StepError is a user-facing step failure with an actionable suggestion.
// Every field-mutating method returns a copy; a StepError never changes
// after it is handed out.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepID     string // Step ID if applicable
	Phase      Phase  // Phase the step belongs to
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.StepID != "" {
		b.WriteString(fmt.Sprintf("\n  Step: %s", e.StepID))
	}
	if e.Phase != "" {
		b.WriteString(fmt.Sprintf("\n  Phase: %s", e.Phase))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}

	return b.String()
}

// NewStepError creates a new StepError with the given code and message.
func NewStepError(code, message string) *StepError {
	return &StepError{
		Code:    code,
		Message: message,
	}
}

// WithStepID returns a new StepError with step ID set.
func (e *StepError) WithStepID(stepID string) *StepError {
	c := *e
	c.StepID = stepID
	return &c
}

// WithPhase returns a new StepError with the phase set.
func (e *StepError) WithPhase(phase Phase) *StepError {
	c := *e
	c.Phase = phase
	return &c
}

// WithSuggestion returns a new StepError with suggestion set.
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a new StepError wrapping another error.
func (e *StepError) WithUnderlying(err error) *StepError {
	c := *e
	c.Underlying = err
	return &c
}

// NewApplyFailedError creates an error for step apply failure.
func NewApplyFailedError(stepID StepID, phase Phase, err error) *StepError {
	return &StepError{
		Code:       ErrCodeApplyFailed,
		Message:    "step action failed",
		StepID:     stepID.String(),
		Phase:      phase,
		Suggestion: "Check the step's command output in the run log, then re-run; completed steps are no-ops.",
		Underlying: err,
	}
}

// NewSilentFailureError creates an error for a zero-exit action whose
// postcondition does not hold.
func NewSilentFailureError(stepID StepID, phase Phase) *StepError {
	return &StepError{
		Code:       ErrCodeSilentFailure,
		Message:    "action reported success but the expected end-state is missing",
		StepID:     stepID.String(),
		Phase:      phase,
		Suggestion: "The external tool likely failed without a non-zero exit. Inspect its output in the run log.",
		Underlying: ErrSilentFailure,
	}
}

// NewPreconditionError creates an error for a precondition check failure.
func NewPreconditionError(stepID StepID, phase Phase, err error) *StepError {
	return &StepError{
		Code:       ErrCodePreconditionFailed,
		Message:    "could not evaluate step precondition",
		StepID:     stepID.String(),
		Phase:      phase,
		Suggestion: "A probe command failed. Run 'orinup doctor' to check the environment.",
		Underlying: err,
	}
}

// NewPostconditionError creates an error for a postcondition check failure.
func NewPostconditionError(stepID StepID, phase Phase, err error) *StepError {
	return &StepError{
		Code:       ErrCodePostconditionFailed,
		Message:    "could not evaluate step postcondition",
		StepID:     stepID.String(),
		Phase:      phase,
		Suggestion: "A verification command failed. Run 'orinup doctor' to check the environment.",
		Underlying: err,
	}
}
