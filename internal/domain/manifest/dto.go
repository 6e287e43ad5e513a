package manifest

import (
	"fmt"
	"time"
)

// ManifestDTO is the serialization form of a Manifest.
type ManifestDTO struct {
	Version        int            `yaml:"version"`
	CreatedAt      string         `yaml:"created_at"`
	PipelineStatus string         `yaml:"pipeline_status"`
	Root           string         `yaml:"root"`
	Files          []FileEntryDTO `yaml:"files"`
	Integrity      string         `yaml:"integrity"`
}

// FileEntryDTO is the serialization form of a FileEntry.
type FileEntryDTO struct {
	Path     string `yaml:"path"`
	Checksum string `yaml:"checksum"`
	Size     int64  `yaml:"size"`
}

// ManifestToDTO converts a Manifest to its serialization form.
func ManifestToDTO(m *Manifest) ManifestDTO {
	files := make([]FileEntryDTO, 0, m.EntryCount())
	for _, e := range m.Entries() {
		files = append(files, FileEntryDTO{
			Path:     e.RelativePath,
			Checksum: e.Checksum.String(),
			Size:     e.Size,
		})
	}

	return ManifestDTO{
		Version:        m.Version(),
		CreatedAt:      m.CreatedAt().Format(time.RFC3339),
		PipelineStatus: string(m.Status()),
		Root:           m.Root(),
		Files:          files,
		Integrity:      m.Integrity().String(),
	}
}

// ManifestFromDTO reconstructs a Manifest from its serialization form.
// The stored integrity must match the recomputed one; a mismatch means
// the file was edited after it was written.
func ManifestFromDTO(dto ManifestDTO) (*Manifest, error) {
	createdAt, err := time.Parse(time.RFC3339, dto.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad created_at: %w", ErrManifestCorrupt, err)
	}

	entries := make([]FileEntry, 0, len(dto.Files))
	for _, f := range dto.Files {
		checksum, err := ParseIntegrity(f.Checksum)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %s: %w", ErrManifestCorrupt, f.Path, err)
		}
		entries = append(entries, FileEntry{
			RelativePath: f.Path,
			Checksum:     checksum,
			Size:         f.Size,
		})
	}

	m := NewManifest(createdAt, PipelineStatus(dto.PipelineStatus), dto.Root, entries)

	if dto.Integrity != "" && dto.Integrity != m.Integrity().String() {
		return nil, fmt.Errorf("%w: integrity mismatch", ErrManifestCorrupt)
	}

	return m, nil
}
