package apt

import (
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
)

// Provider compiles the apt config section into installation steps.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new apt Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "apt"
}

// Steps transforms the apt config section into executable steps.
// The whole provider is skipped when --skip-deps is set.
func (p *Provider) Steps(cfg config.RunConfig) ([]pipeline.Step, error) {
	if cfg.SkipDeps() {
		return nil, nil
	}

	section := cfg.Section("apt")
	if section == nil {
		return nil, nil
	}

	parsed, err := ParseConfig(section)
	if err != nil {
		return nil, err
	}

	steps := make([]pipeline.Step, 0, len(parsed.Packages))
	for _, pkg := range parsed.Packages {
		steps = append(steps, NewPackageStep(pkg, p.runner))
	}
	return steps, nil
}

// Ensure Provider implements pipeline.Provider.
var _ pipeline.Provider = (*Provider)(nil)
