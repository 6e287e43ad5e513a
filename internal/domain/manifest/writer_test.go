package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/orinup/internal/adapters/filesystem"
	"github.com/mvaldez/orinup/internal/domain/manifest"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func TestWriter_Write(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"bin/designer":            "#!/bin/sh\n",
		"lib/libQt5Core.so.5":     "core",
		"lib/libQt5Widgets.so.5":  "widgets",
		"share/doc/qt5/README.md": "docs",
	})

	writer := manifest.NewWriter(filesystem.NewRealFileSystem()).WithClock(fixedClock)
	m, err := writer.Write(root, manifest.PipelineSucceeded)

	require.NoError(t, err)
	assert.Equal(t, 4, m.EntryCount())
	assert.Equal(t, manifest.PipelineSucceeded, m.Status())
	assert.True(t, m.VerifySelf())

	// Entries come back sorted by relative path regardless of
	// filesystem traversal order.
	entries := m.Entries()
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].RelativePath, entries[i].RelativePath)
	}

	entry, ok := m.Entry("lib/libQt5Core.so.5")
	require.True(t, ok)
	assert.Equal(t, int64(len("core")), entry.Size)
	assert.Equal(t, "sha256", entry.Checksum.Algorithm())
}

func TestWriter_Write_MissingRoot(t *testing.T) {
	t.Parallel()

	writer := manifest.NewWriter(filesystem.NewRealFileSystem())
	_, err := writer.Write(filepath.Join(t.TempDir(), "nope"), manifest.PipelineSucceeded)

	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrRootNotFound)
}

func TestWriter_Write_EmptyTree(t *testing.T) {
	t.Parallel()

	writer := manifest.NewWriter(filesystem.NewRealFileSystem())
	_, err := writer.Write(t.TempDir(), manifest.PipelineSucceeded)

	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrNothingToManifest)
}

func TestWriter_Determinism(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.txt":     "alpha",
		"b/c.txt":   "gamma",
		"b/d/e.txt": "epsilon",
	})

	writer := manifest.NewWriter(filesystem.NewRealFileSystem()).WithClock(fixedClock)

	first, err := writer.Write(root, manifest.PipelineSucceeded)
	require.NoError(t, err)
	second, err := writer.Write(root, manifest.PipelineSucceeded)
	require.NoError(t, err)

	assert.Equal(t, manifest.ManifestToDTO(first), manifest.ManifestToDTO(second))
	assert.Equal(t, first.Integrity().String(), second.Integrity().String())
}

func TestWriter_Verify_Clean(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.txt": "alpha"})
	writer := manifest.NewWriter(filesystem.NewRealFileSystem()).WithClock(fixedClock)

	m, err := writer.Write(root, manifest.PipelineSucceeded)
	require.NoError(t, err)

	report, err := writer.Verify(m)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestWriter_Verify_ReportsDrift(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"keep.txt":   "same",
		"modify.txt": "before",
		"remove.txt": "going away",
	})
	writer := manifest.NewWriter(filesystem.NewRealFileSystem()).WithClock(fixedClock)

	m, err := writer.Write(root, manifest.PipelineSucceeded)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "modify.txt"), []byte("after"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(root, "remove.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("surprise"), 0o644))

	report, err := writer.Verify(m)
	require.NoError(t, err)

	assert.False(t, report.Clean())
	assert.Equal(t, []string{"remove.txt"}, report.Missing)
	assert.Equal(t, []string{"modify.txt"}, report.Modified)
	assert.Equal(t, []string{"new.txt"}, report.Added)
}

func TestManifestDTO_RoundTrip(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.txt": "alpha", "b.txt": "beta"})
	writer := manifest.NewWriter(filesystem.NewRealFileSystem()).WithClock(fixedClock)

	original, err := writer.Write(root, manifest.PipelineSucceeded)
	require.NoError(t, err)

	restored, err := manifest.ManifestFromDTO(manifest.ManifestToDTO(original))
	require.NoError(t, err)

	assert.Equal(t, original.Entries(), restored.Entries())
	assert.Equal(t, original.Integrity(), restored.Integrity())
	assert.True(t, restored.VerifySelf())
}

func TestManifestFromDTO_TamperedEntryDetected(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.txt": "alpha"})
	writer := manifest.NewWriter(filesystem.NewRealFileSystem()).WithClock(fixedClock)

	m, err := writer.Write(root, manifest.PipelineSucceeded)
	require.NoError(t, err)

	dto := manifest.ManifestToDTO(m)
	dto.Files[0].Size = 9999

	_, err = manifest.ManifestFromDTO(dto)
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrManifestCorrupt)
}
