package pipeline

import (
	"context"
	"errors"
	"testing"
)

// fakeStep is a configurable step for executor tests.
type fakeStep struct {
	id         StepID
	phase      Phase
	policy     Policy
	preFn      func(RunContext) (bool, error)
	applyFn    func(RunContext) error
	postFn     func(RunContext) (bool, error)
	applyCalls int
}

func newFakeStep(id string) *fakeStep {
	return &fakeStep{
		id:      MustNewStepID(id),
		phase:   PhaseInstall,
		preFn:   func(RunContext) (bool, error) { return true, nil },
		applyFn: func(RunContext) error { return nil },
		postFn:  func(RunContext) (bool, error) { return true, nil },
	}
}

func (s *fakeStep) ID() StepID          { return s.id }
func (s *fakeStep) Description() string { return "fake step" }
func (s *fakeStep) Phase() Phase        { return s.phase }
func (s *fakeStep) Policy() Policy      { return s.policy }

func (s *fakeStep) Precondition(ctx RunContext) (bool, error) { return s.preFn(ctx) }

func (s *fakeStep) Apply(ctx RunContext) error {
	s.applyCalls++
	return s.applyFn(ctx)
}

func (s *fakeStep) Postcondition(ctx RunContext) (bool, error) { return s.postFn(ctx) }

func registryWith(t *testing.T, steps ...Step) *Registry {
	t.Helper()
	registry := NewRegistry()
	if err := registry.RegisterAll(steps); err != nil {
		t.Fatalf("RegisterAll() error = %v", err)
	}
	return registry
}

func TestExecutor_EmptyRegistry(t *testing.T) {
	executor := NewExecutor()

	result := executor.Execute(context.Background(), NewRegistry(), NewRunContext(context.Background()))

	if len(result.Results) != 0 {
		t.Errorf("results len = %d, want 0", len(result.Results))
	}
	if !result.Succeeded() {
		t.Error("empty run should succeed")
	}
	if result.ExitCode != ExitSuccess {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
}

func TestExecutor_SingleStep_Applies(t *testing.T) {
	step := newFakeStep("apt:install:git")
	applied := false
	step.applyFn = func(RunContext) error {
		applied = true
		return nil
	}

	result := NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if !applied {
		t.Error("step was not applied")
	}
	if got := result.Results[0].Status(); got != StatusSucceeded {
		t.Errorf("status = %s, want succeeded", got)
	}
}

func TestExecutor_FatalFailureHaltsPipeline(t *testing.T) {
	failing := newFakeStep("qt:build:sources")
	failing.phase = PhaseBuild
	failing.policy = Policy{Fatal: true}
	failing.applyFn = func(RunContext) error { return errors.New("make exited 2") }

	sentinel := newFakeStep("qt:install:sources")
	sentinel.applyFn = func(RunContext) error {
		t.Fatal("sentinel step must never execute after a fatal failure")
		return nil
	}

	result := NewExecutor().Execute(context.Background(), registryWith(t, failing, sentinel), NewRunContext(context.Background()))

	if result.Succeeded() {
		t.Error("run with fatal failure should not succeed")
	}
	if len(result.Results) != 1 {
		t.Errorf("results len = %d, want 1 (sentinel never ran)", len(result.Results))
	}
	if result.ExitCode != ExitBuildFailed {
		t.Errorf("ExitCode = %d, want %d", result.ExitCode, ExitBuildFailed)
	}
}

func TestExecutor_NonFatalFailureContinues(t *testing.T) {
	first := newFakeStep("apt:install:curl")
	failing := newFakeStep("desktop:pin:chromium")
	failing.applyFn = func(RunContext) error { return errors.New("gsettings failed") }
	third := newFakeStep("desktop:font:monospace")

	result := NewExecutor().Execute(context.Background(), registryWith(t, first, failing, third), NewRunContext(context.Background()))

	if len(result.Results) != 3 {
		t.Fatalf("results len = %d, want 3", len(result.Results))
	}
	if !result.Succeeded() {
		t.Error("run should succeed when only a non-fatal step failed")
	}
	if got := result.Results[1].Status(); got != StatusFailed {
		t.Errorf("step 2 status = %s, want failed", got)
	}
	if got := result.Results[2].Status(); got != StatusSucceeded {
		t.Errorf("step 3 status = %s, want succeeded", got)
	}
	if len(result.FailedSteps) != 1 || !result.FailedSteps[0].Equals(failing.id) {
		t.Errorf("FailedSteps = %v, want [%s]", result.FailedSteps, failing.id)
	}
}

func TestExecutor_RetryableStepRetriesOnce(t *testing.T) {
	step := newFakeStep("qt:fetch:sources")
	step.phase = PhaseFetch
	step.policy = Policy{Retryable: true}
	step.applyFn = func(RunContext) error {
		if step.applyCalls == 1 {
			return errors.New("timeout")
		}
		return nil
	}

	result := NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if step.applyCalls != 2 {
		t.Errorf("applyCalls = %d, want 2", step.applyCalls)
	}
	stepResult := result.Results[0]
	if stepResult.Status() != StatusSucceeded {
		t.Errorf("status = %s, want succeeded after retry", stepResult.Status())
	}
	if stepResult.Attempts() != 2 {
		t.Errorf("Attempts() = %d, want 2", stepResult.Attempts())
	}
}

func TestExecutor_RetryBudgetExhausted(t *testing.T) {
	step := newFakeStep("qt:fetch:sources")
	step.policy = Policy{Retryable: true}
	step.applyFn = func(RunContext) error { return errors.New("always fails") }

	NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if step.applyCalls != 2 {
		t.Errorf("applyCalls = %d, want exactly 2 (one retry)", step.applyCalls)
	}
}

func TestExecutor_NonRetryableStepRunsOnce(t *testing.T) {
	step := newFakeStep("qt:configure:sources")
	step.applyFn = func(RunContext) error { return errors.New("rejected") }

	NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if step.applyCalls != 1 {
		t.Errorf("applyCalls = %d, want 1", step.applyCalls)
	}
}

func TestExecutor_SilentFailure(t *testing.T) {
	step := newFakeStep("pip:remove:stock-binding")
	step.applyFn = func(RunContext) error { return nil }
	step.postFn = func(RunContext) (bool, error) { return false, nil }

	result := NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	stepResult := result.Results[0]
	if stepResult.Status() != StatusFailed {
		t.Fatalf("status = %s, want failed", stepResult.Status())
	}
	if !errors.Is(stepResult.Err(), ErrSilentFailure) {
		t.Errorf("error = %v, want ErrSilentFailure in chain", stepResult.Err())
	}
}

func TestExecutor_OptionalStepSkipped(t *testing.T) {
	step := newFakeStep("desktop:pin:cursor")
	step.policy = Policy{Optional: true}
	step.preFn = func(RunContext) (bool, error) { return false, nil }

	result := NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if got := result.Results[0].Status(); got != StatusSkipped {
		t.Errorf("status = %s, want skipped", got)
	}
	if step.applyCalls != 0 {
		t.Error("skipped step must not apply")
	}
}

func TestExecutor_IdempotentReRunConverges(t *testing.T) {
	// A step that becomes satisfied after its first apply, mimicking an
	// already-provisioned host on the second run.
	satisfied := false
	step := newFakeStep("apt:install:build-essential")
	step.preFn = func(RunContext) (bool, error) { return !satisfied, nil }
	step.applyFn = func(RunContext) error {
		satisfied = true
		return nil
	}
	step.postFn = func(RunContext) (bool, error) { return satisfied, nil }

	executor := NewExecutor()

	first := executor.Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))
	second := executor.Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if !first.Succeeded() || !second.Succeeded() {
		t.Fatal("both runs should succeed")
	}
	if step.applyCalls != 1 {
		t.Errorf("applyCalls = %d, want 1 (second run is a no-op)", step.applyCalls)
	}
	if got := second.Results[0].Status(); got != StatusSucceeded {
		t.Errorf("second-run status = %s, want succeeded", got)
	}
}

func TestExecutor_PreconditionErrorFails(t *testing.T) {
	step := newFakeStep("system:resize:zram")
	step.preFn = func(RunContext) (bool, error) { return false, errors.New("probe failed") }

	result := NewExecutor().Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if got := result.Results[0].Status(); got != StatusFailed {
		t.Errorf("status = %s, want failed", got)
	}
	if step.applyCalls != 0 {
		t.Error("apply must not run when the precondition errors")
	}
}

func TestExecutor_DryRunAppliesNothing(t *testing.T) {
	step := newFakeStep("apt:install:git")

	executor := NewExecutor().WithDryRun(true)
	result := executor.Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	if step.applyCalls != 0 {
		t.Error("dry run must not apply")
	}
	if got := result.Results[0].Status(); got != StatusSkipped {
		t.Errorf("status = %s, want skipped", got)
	}
}

func TestExecutor_AbortBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	first := newFakeStep("apt:install:git")
	first.applyFn = func(RunContext) error {
		cancel() // abort takes effect before the next step
		return nil
	}
	second := newFakeStep("apt:install:curl")

	result := NewExecutor().Execute(ctx, registryWith(t, first, second), NewRunContext(ctx))

	if result.Status != RunAborted {
		t.Errorf("status = %s, want aborted", result.Status)
	}
	if len(result.Results) != 1 {
		t.Errorf("results len = %d, want 1", len(result.Results))
	}
	if second.applyCalls != 0 {
		t.Error("step after abort must not run")
	}
}

func TestExecutor_HarvestsCommandOutcome(t *testing.T) {
	trace := NewTrace()
	step := newFakeStep("qt:build:sources")
	step.applyFn = func(ctx RunContext) error {
		ctx.Trace().Append(TraceEntry{
			Command:    "make",
			Args:       []string{"-j1"},
			ExitCode:   2,
			StderrTail: "recipe for target 'all' failed",
		})
		return errors.New("make exited 2")
	}

	executor := NewExecutor().WithTrace(trace)
	result := executor.Execute(context.Background(), registryWith(t, step), NewRunContext(context.Background()))

	stepResult := result.Results[0]
	if stepResult.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", stepResult.ExitCode())
	}
	if stepResult.StderrTail() == "" {
		t.Error("StderrTail() should carry the command's stderr")
	}
}
