package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/mvaldez/orinup/internal/ports"
)

// PipDownloadMethod fetches a source distribution through `pip download`.
// This is the primary strategy: pip resolves the version against the
// configured index and verifies its own hashes.
type PipDownloadMethod struct {
	runner   ports.CommandRunner
	pipBin   string
	indexURL string
}

// NewPipDownloadMethod creates a pip-based fetch method.
func NewPipDownloadMethod(runner ports.CommandRunner) *PipDownloadMethod {
	return &PipDownloadMethod{
		runner: runner,
		pipBin: "pip3",
	}
}

// WithIndexURL overrides the package index endpoint.
func (m *PipDownloadMethod) WithIndexURL(url string) *PipDownloadMethod {
	c := *m
	c.indexURL = url
	return &c
}

// Name returns the method identifier.
func (m *PipDownloadMethod) Name() string {
	return "pip-download"
}

// Fetch downloads the package's sdist into destDir.
func (m *PipDownloadMethod) Fetch(ctx context.Context, req Request, destDir string) (Artifact, error) {
	args := []string{
		"download",
		fmt.Sprintf("%s==%s", req.Package, req.Version),
		"--no-deps",
		"--no-binary", ":all:",
		"-d", destDir,
	}
	if m.indexURL != "" {
		args = append(args, "--index-url", m.indexURL)
	}

	result, err := m.runner.Run(ctx, m.pipBin, args...)
	if err != nil {
		return Artifact{}, fmt.Errorf("pip download: %w", err)
	}
	if !result.Success() {
		return Artifact{}, fmt.Errorf("pip download exited %d: %s", result.ExitCode, result.Stderr)
	}

	path, size, err := findDownload(destDir, req)
	if err != nil {
		return Artifact{}, err
	}

	checksum, err := ChecksumFile(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to checksum download: %w", err)
	}

	return Artifact{
		LocalPath: path,
		SizeBytes: size,
		Checksum:  checksum,
		Method:    m.Name(),
	}, nil
}

// findDownload locates the downloaded file in destDir.
func findDownload(destDir string, req Request) (string, int64, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list download dir: %w", err)
	}

	pattern := req.FilePattern
	if pattern == "" {
		pattern = regexp.QuoteMeta(req.Package)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return "", 0, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !re.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", 0, err
		}
		return filepath.Join(destDir, entry.Name()), info.Size(), nil
	}

	return "", 0, fmt.Errorf("pip reported success but no file matching %q found in %s", pattern, destDir)
}

// Ensure PipDownloadMethod implements Method.
var _ Method = (*PipDownloadMethod)(nil)
