package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mvaldez/orinup/internal/ports"
)

// Writer builds manifests by walking an installed artifact tree.
type Writer struct {
	fs  ports.FileSystem
	now func() time.Time
}

// NewWriter creates a manifest writer over the given filesystem.
func NewWriter(fs ports.FileSystem) *Writer {
	return &Writer{fs: fs, now: time.Now}
}

// WithClock returns a copy using the given clock. Tests use a fixed
// clock so manifest output is byte-identical across runs.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	clone := *w
	clone.now = now
	return &clone
}

// Write walks root, hashes every regular file, and returns the
// resulting manifest. Entries are sorted by slash-separated relative
// path. Returns ErrRootNotFound if root does not exist and
// ErrNothingToManifest if the tree holds no regular files.
func (w *Writer) Write(root string, status PipelineStatus) (*Manifest, error) {
	root = ports.ExpandPath(root)

	if !w.fs.Exists(root) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	if !w.fs.IsDir(root) {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, root)
	}

	var entries []FileEntry
	err := w.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}

		hash, err := w.fs.FileHash(path)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", path, err)
		}
		checksum, err := NewIntegrity(AlgorithmSHA256, hash)
		if err != nil {
			return fmt.Errorf("checksum for %s: %w", path, err)
		}

		entries = append(entries, FileEntry{
			RelativePath: filepath.ToSlash(rel),
			Checksum:     checksum,
			Size:         info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToManifest, root)
	}

	return NewManifest(w.now(), status, root, entries), nil
}

// DriftReport describes the differences between a manifest and the
// tree it was written from.
type DriftReport struct {
	// Missing lists manifested paths no longer present on disk.
	Missing []string
	// Modified lists manifested paths whose content changed.
	Modified []string
	// Added lists on-disk paths the manifest does not know.
	Added []string
}

// Clean reports whether the tree still matches the manifest exactly.
func (r DriftReport) Clean() bool {
	return len(r.Missing) == 0 && len(r.Modified) == 0 && len(r.Added) == 0
}

// Verify re-walks the manifested tree and reports drift against the
// manifest. The manifest is not modified.
func (w *Writer) Verify(m *Manifest) (DriftReport, error) {
	current, err := w.Write(m.Root(), m.Status())
	if err != nil {
		return DriftReport{}, err
	}

	var report DriftReport
	for _, want := range m.Entries() {
		got, ok := current.Entry(want.RelativePath)
		if !ok {
			report.Missing = append(report.Missing, want.RelativePath)
			continue
		}
		if got.Checksum.String() != want.Checksum.String() || got.Size != want.Size {
			report.Modified = append(report.Modified, want.RelativePath)
		}
	}
	for _, got := range current.Entries() {
		if _, ok := m.Entry(got.RelativePath); !ok {
			report.Added = append(report.Added, got.RelativePath)
		}
	}

	sort.Strings(report.Missing)
	sort.Strings(report.Modified)
	sort.Strings(report.Added)
	return report, nil
}
