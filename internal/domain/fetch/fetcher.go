package fetch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Fetch errors.
var (
	ErrFetchFailed       = errors.New("fetch failed")
	ErrArtifactIntegrity = errors.New("artifact integrity check failed")
)

// DefaultTimeout bounds a single fetch attempt.
const DefaultTimeout = 5 * time.Minute

// Request describes what to fetch.
type Request struct {
	// Package is the upstream package name (e.g., "pyqt5").
	Package string
	// Version is the exact target version.
	Version string
	// FilePattern is a regexp the downloaded filename must match.
	FilePattern string
	// Timeout bounds each attempt (default: DefaultTimeout).
	Timeout time.Duration
}

// Method is one strategy for resolving and downloading an artifact.
type Method interface {
	// Name identifies the method in logs and attempt records.
	Name() string

	// Fetch downloads the requested artifact into destDir.
	Fetch(ctx context.Context, req Request, destDir string) (Artifact, error)
}

// Attempt records one method's outcome for diagnostics.
type Attempt struct {
	Method   string
	Err      error
	Duration time.Duration
}

// Result carries the artifact and the full attempt history, including the
// failed primary attempt when the fallback produced the artifact.
type Result struct {
	Artifact Artifact
	Attempts []Attempt
}

// FetchError reports that every method failed, carrying each failure reason.
type FetchError struct {
	Attempts []Attempt
}

// Error formats the failure reasons of all attempts.
func (e *FetchError) Error() string {
	msg := ErrFetchFailed.Error()
	for _, a := range e.Attempts {
		msg += fmt.Sprintf("; %s: %v", a.Method, a.Err)
	}
	return msg
}

// Unwrap lets errors.Is match ErrFetchFailed.
func (e *FetchError) Unwrap() error {
	return ErrFetchFailed
}

// Fetcher tries a primary method, then a fallback. This consolidates the
// "package-index download, else direct URL resolution" pattern into one
// parameterized contract.
type Fetcher struct {
	primary  Method
	fallback Method
}

// NewFetcher creates a Fetcher. fallback may be nil.
func NewFetcher(primary, fallback Method) *Fetcher {
	return &Fetcher{primary: primary, fallback: fallback}
}

// Fetch attempts the primary method bounded by the request timeout; on
// error it tries the fallback. The returned Result records every attempt.
// Fails with *FetchError when all methods fail, or ErrArtifactIntegrity
// when a download completes but fails verification.
func (f *Fetcher) Fetch(ctx context.Context, req Request, destDir string) (Result, error) {
	if req.Timeout <= 0 {
		req.Timeout = DefaultTimeout
	}

	result := Result{}
	methods := []Method{f.primary}
	if f.fallback != nil {
		methods = append(methods, f.fallback)
	}

	for _, method := range methods {
		artifact, attempt := f.attempt(ctx, method, req, destDir)
		result.Attempts = append(result.Attempts, attempt)

		if attempt.Err != nil {
			continue
		}

		if err := verify(artifact, req); err != nil {
			return result, err
		}

		result.Artifact = artifact
		return result, nil
	}

	return result, &FetchError{Attempts: result.Attempts}
}

// attempt runs one method under the request timeout.
func (f *Fetcher) attempt(ctx context.Context, method Method, req Request, destDir string) (Artifact, Attempt) {
	attemptCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	start := time.Now()
	artifact, err := method.Fetch(attemptCtx, req, destDir)
	return artifact, Attempt{
		Method:   method.Name(),
		Err:      err,
		Duration: time.Since(start),
	}
}

// verify checks the artifact is non-empty and its filename matches the
// expected pattern.
func verify(artifact Artifact, req Request) error {
	if artifact.SizeBytes == 0 {
		return fmt.Errorf("%w: %s is empty", ErrArtifactIntegrity, artifact.LocalPath)
	}

	if req.FilePattern == "" {
		return nil
	}
	pattern, err := regexp.Compile(req.FilePattern)
	if err != nil {
		return fmt.Errorf("invalid file pattern %q: %w", req.FilePattern, err)
	}
	if !pattern.MatchString(artifact.LocalPath) {
		return fmt.Errorf("%w: %s does not match expected pattern %s",
			ErrArtifactIntegrity, artifact.LocalPath, req.FilePattern)
	}
	return nil
}
