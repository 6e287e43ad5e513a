// Package pipeline provides the provisioning pipeline core: steps, the
// ordered registry, the sequential executor, and the run lifecycle.
package pipeline

// Policy carries the failure-handling metadata of a step.
type Policy struct {
	// Retryable steps get at most one retry after a failed attempt.
	// Only idempotent actions (e.g., a flaky download) should set this.
	Retryable bool

	// Fatal steps abort the whole pipeline on failure; no further steps run.
	Fatal bool

	// Optional steps are skipped, not failed, when their precondition is false.
	Optional bool
}

// Step represents a named, idempotent unit of provisioning work.
// Steps are immutable during a run.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Description returns a short human-readable summary of the step.
	Description() string

	// Phase returns the provisioning phase this step belongs to.
	Phase() Phase

	// Policy returns the failure-handling metadata for this step.
	Policy() Policy

	// Precondition reports whether the step's action needs to run.
	// Returning false means the desired state is already met (or, for
	// optional steps, that the step does not apply on this host).
	Precondition(ctx RunContext) (bool, error)

	// Apply executes the step's action. It must be idempotent: running it
	// twice converges to the same end-state without error.
	Apply(ctx RunContext) error

	// Postcondition re-checks the step's intended end-state. It must be
	// valid to call independent of Apply having just run.
	Postcondition(ctx RunContext) (bool, error)
}
