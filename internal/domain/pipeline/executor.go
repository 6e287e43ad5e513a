package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/mvaldez/orinup/internal/ports"
)

// maxAttempts bounds the retry budget: one retry for retryable steps.
const maxAttempts = 2

// Executor runs registered steps strictly in order. System mutations never
// race each other; the only suspension points are external process exits.
type Executor struct {
	dryRun bool
	trace  *Trace
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// WithDryRun returns an Executor that evaluates preconditions without
// applying any action.
func (e *Executor) WithDryRun(dryRun bool) *Executor {
	c := *e
	c.dryRun = dryRun
	return &c
}

// WithTrace returns an Executor that harvests exit codes and output tails
// from the given command trace.
func (e *Executor) WithTrace(trace *Trace) *Executor {
	c := *e
	c.trace = trace
	return &c
}

// WithLogger returns an Executor that logs step transitions.
func (e *Executor) WithLogger(logger ports.Logger) *Executor {
	c := *e
	c.logger = logger
	return &c
}

// Execute runs all registered steps in registration order.
//
// A run can be aborted between steps (never mid-step) by cancelling ctx.
// The per-run scratch directory is released on the way out regardless of
// abort or failure, unless keep-temp is set; diagnostic logs are the
// caller's and are never touched here.
func (e *Executor) Execute(ctx context.Context, registry *Registry, runCtx RunContext) RunResult {
	runCtx = runCtx.WithDryRun(e.dryRun)
	if e.trace != nil {
		runCtx = runCtx.WithTrace(e.trace)
	}

	if runCtx.ScratchDir() == "" {
		if scratch, err := os.MkdirTemp("", "orinup-scratch-"); err == nil {
			runCtx = runCtx.WithScratchDir(scratch)
		}
	}
	if !runCtx.KeepTemp() && runCtx.ScratchDir() != "" {
		defer func() { _ = os.RemoveAll(runCtx.ScratchDir()) }()
	}

	result := RunResult{
		Results:  make([]ExecutionResult, 0, registry.Len()),
		Status:   RunSucceeded,
		ExitCode: ExitSuccess,
	}

	for _, step := range registry.Ordered() {
		select {
		case <-ctx.Done():
			result.Status = RunAborted
			result.ExitCode = ExitPreflightFailed
			return result
		default:
		}

		stepResult := e.executeStep(step, runCtx)
		result.Results = append(result.Results, stepResult)

		if stepResult.Status() != StatusFailed {
			continue
		}

		result.FailedSteps = append(result.FailedSteps, step.ID())
		if step.Policy().Fatal {
			result.Status = RunFailed
			result.ExitCode = step.Phase().ExitCode()
			return result
		}
	}

	return result
}

// executeStep drives one step through its state machine:
// pending -> running -> {succeeded, failed, skipped}.
func (e *Executor) executeStep(step Step, runCtx RunContext) ExecutionResult {
	id := step.ID()
	policy := step.Policy()

	needed, err := step.Precondition(runCtx)
	if err != nil {
		return NewExecutionResult(id, StatusFailed, NewPreconditionError(id, step.Phase(), err))
	}

	if !needed {
		if policy.Optional {
			e.logStep(runCtx, id, "skipped (precondition not met)")
			return NewExecutionResult(id, StatusSkipped, nil)
		}

		// Required step with nothing to do: trust the postcondition. If
		// it already holds the step converged on a previous run.
		holds, postErr := step.Postcondition(runCtx)
		if postErr != nil {
			return NewExecutionResult(id, StatusFailed, NewPostconditionError(id, step.Phase(), postErr))
		}
		if holds {
			e.logStep(runCtx, id, "already satisfied")
			return NewExecutionResult(id, StatusSucceeded, nil)
		}
		// Precondition and postcondition disagree; run the action.
	}

	if runCtx.DryRun() {
		e.logStep(runCtx, id, "would apply (dry run)")
		return NewExecutionResult(id, StatusSkipped, nil)
	}

	start := time.Now()
	stepResult := e.runAction(step, runCtx)
	stepResult = stepResult.WithTimes(start, time.Now())
	return stepResult
}

// runAction applies the step, spending the retry budget on failure.
func (e *Executor) runAction(step Step, runCtx RunContext) ExecutionResult {
	id := step.ID()
	policy := step.Policy()

	budget := 1
	if policy.Retryable {
		budget = maxAttempts
	}

	var stepResult ExecutionResult
	for attempt := 1; attempt <= budget; attempt++ {
		mark := 0
		if t := runCtx.Trace(); t != nil {
			mark = t.Len()
		}

		e.logStep(runCtx, id, "running")
		stepResult = e.attempt(step, runCtx)
		stepResult = stepResult.WithAttempts(attempt)

		if t := runCtx.Trace(); t != nil {
			if entry, ok := t.LastSince(mark); ok {
				stepResult = stepResult.WithCommandOutcome(entry.ExitCode, entry.StdoutTail, entry.StderrTail)
			}
		}

		if stepResult.Status() != StatusFailed {
			return stepResult
		}
		if attempt < budget {
			e.logStep(runCtx, id, "failed, retrying once")
		}
	}

	return stepResult
}

// attempt runs Apply once and re-checks the postcondition.
func (e *Executor) attempt(step Step, runCtx RunContext) ExecutionResult {
	id := step.ID()

	if err := step.Apply(runCtx); err != nil {
		return NewExecutionResult(id, StatusFailed, NewApplyFailedError(id, step.Phase(), err))
	}

	holds, err := step.Postcondition(runCtx)
	if err != nil {
		return NewExecutionResult(id, StatusFailed, NewPostconditionError(id, step.Phase(), err))
	}
	if !holds {
		// Zero exit but the end-state is missing: the silent-failure
		// class, reported distinctly from process failure.
		return NewExecutionResult(id, StatusFailed, NewSilentFailureError(id, step.Phase()))
	}

	return NewExecutionResult(id, StatusSucceeded, nil)
}

func (e *Executor) logStep(runCtx RunContext, id StepID, msg string) {
	if e.logger == nil {
		return
	}
	e.logger.Debug(runCtx.Context(), msg, ports.F("step", id.String()))
}
