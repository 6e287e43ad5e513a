package manifest

import "context"

// Repository persists manifests.
type Repository interface {
	// Load reads a manifest from the given path.
	// Returns ErrManifestNotFound if no manifest exists there.
	Load(ctx context.Context, path string) (*Manifest, error)

	// Save writes a manifest to the given path atomically.
	Save(ctx context.Context, path string, m *Manifest) error

	// Exists returns true if a manifest exists at the given path.
	Exists(ctx context.Context, path string) bool
}
