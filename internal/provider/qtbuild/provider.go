package qtbuild

import (
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/fetch"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/domain/probe"
	"github.com/mvaldez/orinup/internal/domain/validate"
	"github.com/mvaldez/orinup/internal/ports"
)

// Provider compiles the qtbuild config section into the five-step
// fetch → configure → build → install → verify pipeline.
type Provider struct {
	runner ports.CommandRunner
	fs     ports.FileSystem
	sys    probe.SystemReader
}

// NewProvider creates a new qtbuild Provider.
func NewProvider(runner ports.CommandRunner, fs ports.FileSystem, sys probe.SystemReader) *Provider {
	return &Provider{runner: runner, fs: fs, sys: sys}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "qtbuild"
}

// Steps transforms the qtbuild config section into the build pipeline.
// The section requires a pinned target version; building "whatever pip
// resolves today" defeats reproducibility.
func (p *Provider) Steps(cfg config.RunConfig) ([]pipeline.Step, error) {
	section := cfg.Section("qtbuild")
	if section == nil {
		return nil, nil
	}

	parsed, err := ParseConfig(section)
	if err != nil {
		return nil, err
	}

	if cfg.TargetVersion() == "" {
		return nil, &config.UserError{
			Code:       config.ErrCodeValidationFailed,
			Message:    "qtbuild requires a pinned version",
			Context:    "target_version",
			Suggestion: "Set target_version in the config file or pass --target-version",
		}
	}

	primary := fetch.NewPipDownloadMethod(p.runner)
	if cfg.IndexURL() != "" {
		primary = primary.WithIndexURL(cfg.IndexURL())
	}
	fetcher := fetch.NewFetcher(primary, fetch.NewIndexMethod(cfg.IndexURL()))

	return []pipeline.Step{
		NewFetchSourceStep(parsed.Package, cfg.TargetVersion(), parsed.CoreModule, fetcher, p.runner, p.fs),
		NewConfigureStep(parsed.Package, parsed.CoreModule, parsed.ExcludedModules, parsed.ConfigureFlags, p.runner, p.fs),
		NewBuildStep(parsed.Package, parsed.CoreModule, parsed.LowMemoryMB, p.runner, p.fs, p.sys),
		NewInstallStep(parsed.Package, parsed.CoreModule, p.runner),
		NewVerifyStep(parsed.Package, parsed.CoreModule, parsed.ExcludedModules, p.runner, validate.NewValidator()),
	}, nil
}

// Ensure Provider implements pipeline.Provider.
var _ pipeline.Provider = (*Provider)(nil)
