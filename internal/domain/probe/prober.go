package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/mvaldez/orinup/internal/ports"
)

// Probe errors.
var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrVersionTooOld     = errors.New("tool version below minimum")
)

// versionPattern extracts the first dotted version token from --version output.
var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Tool describes an executable the prober should look for.
type Tool struct {
	Name string
	// VersionArgs invokes the tool so it prints its version
	// (default: --version).
	VersionArgs []string
	// MinVersion is a semver floor ("1.16"); empty means any version.
	MinVersion string
}

// Prober inspects the host. It is read-only: probing never mutates system
// state.
type Prober struct {
	runner ports.CommandRunner
	sys    SystemReader
	tools  []Tool
}

// NewProber creates a Prober that looks for the given tools.
func NewProber(runner ports.CommandRunner, tools []Tool) *Prober {
	return &Prober{
		runner: runner,
		sys:    RealSystemReader{},
		tools:  tools,
	}
}

// WithSystemReader returns a Prober using the given system reader.
// Tests substitute a fake to control memory and disk readings.
func (p *Prober) WithSystemReader(sys SystemReader) *Prober {
	c := *p
	c.sys = sys
	return &c
}

// Probe captures a snapshot of the host: tool presence and versions,
// available memory, and free disk space under workRoot.
func (p *Prober) Probe(ctx context.Context, workRoot string) (*Snapshot, error) {
	snapshot := &Snapshot{
		ToolVersions: make(map[string]string),
		Flags:        make(map[string]bool),
	}

	for _, tool := range p.tools {
		if _, err := exec.LookPath(tool.Name); err != nil {
			continue
		}
		snapshot.ToolVersions[tool.Name] = p.toolVersion(ctx, tool)
	}

	memMB, err := p.sys.AvailableMemoryMB()
	if err != nil {
		return nil, fmt.Errorf("failed to read available memory: %w", err)
	}
	snapshot.AvailableMemoryMB = memMB

	diskMB, err := p.sys.DiskFreeMB(workRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk space: %w", err)
	}
	snapshot.DiskFreeMB = diskMB

	snapshot.Flags["desktop-session"] = p.sys.HasDesktopSession()
	snapshot.Flags["jetson-board"] = p.sys.IsJetsonBoard()

	return snapshot, nil
}

// ReprobeMemory returns a fresh available-memory reading. Compile-class
// steps call this right before running make.
func (p *Prober) ReprobeMemory() (int64, error) {
	return p.sys.AvailableMemoryMB()
}

// Require fails with ErrMissingDependency if the tool is absent from the
// snapshot, or ErrVersionTooOld if it is older than the tool's floor.
func (p *Prober) Require(snapshot *Snapshot, name string) error {
	version, ok := snapshot.ToolVersions[name]
	if !ok {
		return fmt.Errorf("%w: %s not found on PATH", ErrMissingDependency, name)
	}

	for _, tool := range p.tools {
		if tool.Name != name || tool.MinVersion == "" {
			continue
		}
		if version == "" {
			// Present but version unknown; accept it rather than
			// block on an unparseable banner.
			return nil
		}
		if semver.Compare(canonical(version), canonical(tool.MinVersion)) < 0 {
			return fmt.Errorf("%w: %s %s < %s", ErrVersionTooOld, name, version, tool.MinVersion)
		}
	}

	return nil
}

// toolVersion runs the tool's version invocation and extracts a version token.
func (p *Prober) toolVersion(ctx context.Context, tool Tool) string {
	args := tool.VersionArgs
	if len(args) == 0 {
		args = []string{"--version"}
	}

	result, err := p.runner.Run(ctx, tool.Name, args...)
	if err != nil || !result.Success() {
		return ""
	}

	out := result.Stdout
	if strings.TrimSpace(out) == "" {
		out = result.Stderr
	}
	return versionPattern.FindString(out)
}

// canonical normalizes a dotted version to the semver package's format.
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
