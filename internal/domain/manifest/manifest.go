package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// Manifest errors.
var (
	ErrRootNotFound      = errors.New("manifest root does not exist")
	ErrNothingToManifest = errors.New("manifest root contains no files")
	ErrManifestNotFound  = errors.New("manifest not found")
	ErrManifestCorrupt   = errors.New("manifest is corrupt")
	ErrSaveFailed        = errors.New("failed to save manifest")
)

// PipelineStatus is the overall outcome recorded in the manifest.
type PipelineStatus string

// Pipeline statuses.
const (
	PipelineSucceeded PipelineStatus = "succeeded"
	PipelineFailed    PipelineStatus = "failed"
)

// FileEntry records one installed file. Entries are sorted by relative
// path so manifest content is independent of traversal order.
type FileEntry struct {
	RelativePath string
	Checksum     Integrity
	Size         int64
}

// Manifest is an immutable record of an installed artifact tree.
type Manifest struct {
	version   int
	createdAt time.Time
	status    PipelineStatus
	root      string
	entries   []FileEntry
	integrity Integrity
}

// NewManifest creates a manifest from sorted entries. The self-integrity
// is computed over the canonical entry listing, so two manifests of the
// same tree always carry the same integrity.
func NewManifest(createdAt time.Time, status PipelineStatus, root string, entries []FileEntry) *Manifest {
	sorted := make([]FileEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RelativePath < sorted[j].RelativePath
	})

	return &Manifest{
		version:   ManifestVersion,
		createdAt: createdAt.UTC(),
		status:    status,
		root:      root,
		entries:   sorted,
		integrity: IntegrityFromData(AlgorithmSHA256, canonicalEntries(sorted)),
	}
}

// Version returns the manifest format version.
func (m *Manifest) Version() int {
	return m.version
}

// CreatedAt returns the manifest creation time in UTC.
func (m *Manifest) CreatedAt() time.Time {
	return m.createdAt
}

// Status returns the recorded pipeline outcome.
func (m *Manifest) Status() PipelineStatus {
	return m.status
}

// Root returns the manifested tree root.
func (m *Manifest) Root() string {
	return m.root
}

// Entries returns a copy of the file entries, sorted by relative path.
func (m *Manifest) Entries() []FileEntry {
	entries := make([]FileEntry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// EntryCount returns the number of manifested files.
func (m *Manifest) EntryCount() int {
	return len(m.entries)
}

// Entry returns the entry for a relative path.
func (m *Manifest) Entry(relativePath string) (FileEntry, bool) {
	idx := sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].RelativePath >= relativePath
	})
	if idx < len(m.entries) && m.entries[idx].RelativePath == relativePath {
		return m.entries[idx], true
	}
	return FileEntry{}, false
}

// Integrity returns the checksum of the manifest content itself.
func (m *Manifest) Integrity() Integrity {
	return m.integrity
}

// VerifySelf recomputes the self-integrity and reports whether the
// stored value still matches. A mismatch means the manifest was
// tampered with after it was written.
func (m *Manifest) VerifySelf() bool {
	return m.integrity.Verify(canonicalEntries(m.entries))
}

// canonicalEntries renders entries in the fixed form the self-integrity
// is computed over: one "path\x00checksum\x00size\n" record per file.
func canonicalEntries(entries []FileEntry) []byte {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\x00%s\x00%d\n", e.RelativePath, e.Checksum.String(), e.Size)
	}
	return []byte(b.String())
}
