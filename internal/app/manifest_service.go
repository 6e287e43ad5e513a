package app

import (
	"context"
	"fmt"

	"github.com/mvaldez/orinup/internal/domain/manifest"
	"github.com/mvaldez/orinup/internal/ports"
)

// WriteManifest walks the install root and saves a checksummed manifest,
// independent of any provisioning run.
func (p *Provisioner) WriteManifest(ctx context.Context, root, path string) (*manifest.Manifest, error) {
	m, err := manifest.NewWriter(p.fs).Write(root, manifest.PipelineSucceeded)
	if err != nil {
		return nil, err
	}

	if err := p.repo.Save(ctx, ports.ExpandPath(path), m); err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}
	return m, nil
}

// VerifyManifest loads a saved manifest and reports drift against the
// current state of its install root.
func (p *Provisioner) VerifyManifest(ctx context.Context, path string) (*manifest.Manifest, manifest.DriftReport, error) {
	m, err := p.repo.Load(ctx, ports.ExpandPath(path))
	if err != nil {
		return nil, manifest.DriftReport{}, err
	}

	report, err := manifest.NewWriter(p.fs).Verify(m)
	if err != nil {
		return m, manifest.DriftReport{}, err
	}
	return m, report, nil
}
