// Package manifeststore provides adapters for manifest persistence.
package manifeststore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvaldez/orinup/internal/domain/manifest"
	"gopkg.in/yaml.v3"
)

// YAMLRepository persists manifests as YAML files.
type YAMLRepository struct{}

// NewYAMLRepository creates a new YAML-based manifest repository.
func NewYAMLRepository() *YAMLRepository {
	return &YAMLRepository{}
}

// Load reads a manifest from the given path.
func (r *YAMLRepository) Load(_ context.Context, path string) (*manifest.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, manifest.ErrManifestNotFound
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var dto manifest.ManifestDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("%w: %w", manifest.ErrManifestCorrupt, err)
	}

	return manifest.ManifestFromDTO(dto)
}

// Save writes a manifest to the given path.
func (r *YAMLRepository) Save(_ context.Context, path string, m *manifest.Manifest) error {
	dto := manifest.ManifestToDTO(m)

	data, err := yaml.Marshal(&dto)
	if err != nil {
		return fmt.Errorf("%w: %w", manifest.ErrSaveFailed, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", manifest.ErrSaveFailed, err)
	}

	// Write atomically by writing to temp file first
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", manifest.ErrSaveFailed, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %w", manifest.ErrSaveFailed, err)
	}

	return nil
}

// Exists returns true if a manifest exists at the given path.
func (r *YAMLRepository) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Ensure YAMLRepository implements manifest.Repository.
var _ manifest.Repository = (*YAMLRepository)(nil)
