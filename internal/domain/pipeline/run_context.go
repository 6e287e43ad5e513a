package pipeline

import "context"

// RunContext provides context for step execution. It is a value type; steps
// never mutate it, which keeps cross-step state explicit (the trace and the
// result log are the only shared structures, both append-only).
type RunContext struct {
	ctx        context.Context
	dryRun     bool
	jobs       int
	keepTemp   bool
	scratchDir string
	trace      *Trace
}

// NewRunContext creates a new RunContext with the given context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{
		ctx:  ctx,
		jobs: 1,
	}
}

// Context returns the underlying context.Context.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// DryRun returns whether this is a dry-run execution.
func (r RunContext) DryRun() bool {
	return r.dryRun
}

// WithDryRun returns a new RunContext with the dry-run flag set.
func (r RunContext) WithDryRun(dryRun bool) RunContext {
	newCtx := r
	newCtx.dryRun = dryRun
	return newCtx
}

// Jobs returns the parallelism level for compute-heavy steps.
// Defaults to 1 to avoid out-of-memory failures on constrained hardware.
func (r RunContext) Jobs() int {
	if r.jobs < 1 {
		return 1
	}
	return r.jobs
}

// WithJobs returns a new RunContext with the parallelism level set.
func (r RunContext) WithJobs(jobs int) RunContext {
	newCtx := r
	newCtx.jobs = jobs
	return newCtx
}

// KeepTemp returns whether scratch directories are retained after the run.
func (r RunContext) KeepTemp() bool {
	return r.keepTemp
}

// WithKeepTemp returns a new RunContext with the keep-temp flag set.
func (r RunContext) WithKeepTemp(keep bool) RunContext {
	newCtx := r
	newCtx.keepTemp = keep
	return newCtx
}

// ScratchDir returns the per-run scratch directory for downloads and
// staging trees. Empty until the executor assigns one.
func (r RunContext) ScratchDir() string {
	return r.scratchDir
}

// WithScratchDir returns a new RunContext with the scratch directory set.
func (r RunContext) WithScratchDir(dir string) RunContext {
	newCtx := r
	newCtx.scratchDir = dir
	return newCtx
}

// Trace returns the command trace for this run, or nil if tracing is off.
func (r RunContext) Trace() *Trace {
	return r.trace
}

// WithTrace returns a new RunContext with the command trace attached.
func (r RunContext) WithTrace(trace *Trace) RunContext {
	newCtx := r
	newCtx.trace = trace
	return newCtx
}
