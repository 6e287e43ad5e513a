package system

import (
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
)

// Provider compiles the system config section into tuning steps.
type Provider struct {
	fs ports.FileSystem
}

// NewProvider creates a new system Provider.
func NewProvider(fs ports.FileSystem) *Provider {
	return &Provider{fs: fs}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "system"
}

// Steps transforms the system config section into executable steps.
func (p *Provider) Steps(cfg config.RunConfig) ([]pipeline.Step, error) {
	section := cfg.Section("system")
	if section == nil {
		return nil, nil
	}

	parsed, err := ParseConfig(section)
	if err != nil {
		return nil, err
	}

	var steps []pipeline.Step
	if parsed.SwapMB > 0 {
		steps = append(steps, NewSwapSizeStep(parsed.SwapMB, parsed.ZramConfig, p.fs))
	}
	return steps, nil
}

// Ensure Provider implements pipeline.Provider.
var _ pipeline.Provider = (*Provider)(nil)
