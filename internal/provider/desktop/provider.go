package desktop

import (
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
)

// Provider compiles the desktop config section into dock and font steps.
type Provider struct {
	runner     ports.CommandRunner
	fs         ports.FileSystem
	hasSession bool
}

// NewProvider creates a new desktop Provider. hasSession comes from the
// environment probe; without a desktop session every step is skipped.
func NewProvider(runner ports.CommandRunner, fs ports.FileSystem, hasSession bool) *Provider {
	return &Provider{
		runner:     runner,
		fs:         fs,
		hasSession: hasSession,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "desktop"
}

// Steps transforms the desktop config section into executable steps.
func (p *Provider) Steps(cfg config.RunConfig) ([]pipeline.Step, error) {
	section := cfg.Section("desktop")
	if section == nil {
		return nil, nil
	}

	parsed, err := ParseConfig(section)
	if err != nil {
		return nil, err
	}

	var steps []pipeline.Step
	for _, entry := range parsed.Pins {
		steps = append(steps, NewDockPinStep(entry, parsed.ApplicationsDir, p.runner, p.fs, p.hasSession))
	}
	if parsed.MonospaceFont != "" {
		steps = append(steps, NewFontStep(parsed.MonospaceFont, p.runner, p.hasSession))
	}
	if parsed.AlacrittyFont != "" {
		steps = append(steps, NewAlacrittyFontStep(
			parsed.AlacrittyFont, parsed.AlacrittyFontSize, parsed.AlacrittyConfig, p.fs, p.hasSession))
	}
	return steps, nil
}

// Ensure Provider implements pipeline.Provider.
var _ pipeline.Provider = (*Provider)(nil)
