package pipeline

import "github.com/mvaldez/orinup/internal/domain/config"

// Provider turns its config section into executable steps. Providers
// return their steps in execution order; the registry preserves it.
type Provider interface {
	// Name returns the provider name, matching its config section.
	Name() string

	// Steps compiles the provider's config section into steps. A provider
	// with nothing to do returns nil, nil.
	Steps(cfg config.RunConfig) ([]Step, error)
}
