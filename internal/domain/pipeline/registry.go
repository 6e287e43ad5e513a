package pipeline

import (
	"errors"
	"fmt"
)

// ErrDuplicateStep is returned when a step name is registered twice.
var ErrDuplicateStep = errors.New("duplicate step")

// Registry holds the ordered list of steps for a run. Registration order is
// the execution order; there is no implicit reordering or dependency graph.
type Registry struct {
	steps []Step
	index map[string]Step
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]Step),
	}
}

// Register appends a step. Fails with ErrDuplicateStep if a step with the
// same ID is already present.
func (r *Registry) Register(step Step) error {
	id := step.ID().String()
	if _, exists := r.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStep, id)
	}
	r.index[id] = step
	r.steps = append(r.steps, step)
	return nil
}

// RegisterAll registers steps in order, stopping at the first duplicate.
func (r *Registry) RegisterAll(steps []Step) error {
	for _, step := range steps {
		if err := r.Register(step); err != nil {
			return err
		}
	}
	return nil
}

// Ordered returns the steps in registration order.
func (r *Registry) Ordered() []Step {
	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// Get returns the step with the given ID.
func (r *Registry) Get(id StepID) (Step, bool) {
	step, ok := r.index[id.String()]
	return step, ok
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	return len(r.steps)
}
