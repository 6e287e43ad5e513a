package pip

import (
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
)

// Provider compiles the pip config section into install/remove steps.
type Provider struct {
	runner ports.CommandRunner
}

// NewProvider creates a new pip Provider.
func NewProvider(runner ports.CommandRunner) *Provider {
	return &Provider{runner: runner}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "pip"
}

// Steps transforms the pip config section into executable steps.
// Removals run before installs so a conflicting prebuilt wheel is gone
// before anything depends on the fresh state. Skipped with --skip-deps.
func (p *Provider) Steps(cfg config.RunConfig) ([]pipeline.Step, error) {
	if cfg.SkipDeps() {
		return nil, nil
	}

	section := cfg.Section("pip")
	if section == nil {
		return nil, nil
	}

	parsed, err := ParseConfig(section)
	if err != nil {
		return nil, err
	}

	steps := make([]pipeline.Step, 0, len(parsed.Remove)+len(parsed.Packages))
	for _, name := range parsed.Remove {
		steps = append(steps, NewRemoveStep(name, p.runner))
	}
	for _, pkg := range parsed.Packages {
		steps = append(steps, NewInstallStep(pkg, p.runner))
	}
	return steps, nil
}

// Ensure Provider implements pipeline.Provider.
var _ pipeline.Provider = (*Provider)(nil)
