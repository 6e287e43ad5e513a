package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// DefaultIndexURL is the default package registry metadata endpoint.
const DefaultIndexURL = "https://pypi.org/pypi"

// IndexMethod resolves a source URL against a package registry's metadata
// API and downloads it directly. This is the fallback when pip itself
// cannot resolve the pinned version.
type IndexMethod struct {
	indexURL   string
	httpClient *http.Client
	userAgent  string
}

// NewIndexMethod creates an index-resolution fetch method.
func NewIndexMethod(indexURL string) *IndexMethod {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	return &IndexMethod{
		indexURL: indexURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: "orinup/1.0",
	}
}

// Name returns the method identifier.
func (m *IndexMethod) Name() string {
	return "index-resolve"
}

// releaseFile is one downloadable file in the registry metadata.
type releaseFile struct {
	Filename      string `json:"filename"`
	URL           string `json:"url"`
	PackageType   string `json:"packagetype"`
	PythonVersion string `json:"python_version"`
}

// releaseMetadata is the registry's per-version metadata document.
type releaseMetadata struct {
	URLs []releaseFile `json:"urls"`
}

// Fetch resolves the sdist URL for the pinned version and downloads it.
func (m *IndexMethod) Fetch(ctx context.Context, req Request, destDir string) (Artifact, error) {
	metaURL := fmt.Sprintf("%s/%s/%s/json", strings.TrimSuffix(m.indexURL, "/"), req.Package, req.Version)

	meta, err := m.fetchMetadata(ctx, metaURL)
	if err != nil {
		return Artifact{}, err
	}

	var source *releaseFile
	for i := range meta.URLs {
		if meta.URLs[i].PackageType == "sdist" {
			source = &meta.URLs[i]
			break
		}
	}
	if source == nil {
		return Artifact{}, fmt.Errorf("no source distribution listed for %s %s", req.Package, req.Version)
	}

	localPath := filepath.Join(destDir, path.Base(source.Filename))
	size, err := m.download(ctx, source.URL, localPath)
	if err != nil {
		return Artifact{}, err
	}

	checksum, err := ChecksumFile(localPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to checksum download: %w", err)
	}

	return Artifact{
		SourceURL: source.URL,
		LocalPath: localPath,
		SizeBytes: size,
		Checksum:  checksum,
		Method:    m.Name(),
	}, nil
}

// fetchMetadata retrieves and parses the registry metadata document.
func (m *IndexMethod) fetchMetadata(ctx context.Context, url string) (*releaseMetadata, error) {
	data, err := m.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index metadata: %w", err)
	}

	var meta releaseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse index metadata: %w", err)
	}
	return &meta, nil
}

// download streams url into localPath and returns the byte count.
func (m *IndexMethod) download(ctx context.Context, url, localPath string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed: HTTP %d for %s", resp.StatusCode, url)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = out.Close() }()

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = os.Remove(localPath)
		return 0, fmt.Errorf("download interrupted: %w", err)
	}
	return size, nil
}

// get performs a GET request and returns the response body.
func (m *IndexMethod) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", m.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// Ensure IndexMethod implements Method.
var _ Method = (*IndexMethod)(nil)
