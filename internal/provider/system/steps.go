package system

import (
	"fmt"
	"strings"

	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
)

const sizeKey = "SIZE="

// SwapSizeStep rewrites the zram swap size. The new size takes effect
// after the zram service restarts, typically at the next boot; the
// current build still benefits on re-runs.
type SwapSizeStep struct {
	swapMB     int
	configPath string
	id         pipeline.StepID
	fs         ports.FileSystem
}

// NewSwapSizeStep creates a new SwapSizeStep.
func NewSwapSizeStep(swapMB int, configPath string, fs ports.FileSystem) *SwapSizeStep {
	return &SwapSizeStep{
		swapMB:     swapMB,
		configPath: configPath,
		id:         pipeline.MustNewStepID("system:swap:resize"),
		fs:         fs,
	}
}

// ID returns the step identifier.
func (s *SwapSizeStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *SwapSizeStep) Description() string {
	return fmt.Sprintf("Size zram swap to %d MB (effective after service restart)", s.swapMB)
}

// Phase returns the provisioning phase.
func (s *SwapSizeStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata. Swap tuning helps the
// build but its absence doesn't doom it, so failures don't abort.
func (s *SwapSizeStep) Policy() pipeline.Policy {
	return pipeline.Policy{}
}

// Precondition reports whether the config still needs rewriting.
func (s *SwapSizeStep) Precondition(_ pipeline.RunContext) (bool, error) {
	current, err := s.currentSize()
	if err != nil {
		return false, err
	}
	return current != s.desiredValue(), nil
}

// Apply rewrites the size line, preserving the rest of the file.
func (s *SwapSizeStep) Apply(_ pipeline.RunContext) error {
	data, err := s.fs.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.configPath, err)
	}

	lines := strings.Split(string(data), "\n")
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), sizeKey) {
			lines[i] = sizeKey + s.desiredValue()
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, sizeKey+s.desiredValue())
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return s.fs.WriteFile(s.configPath, []byte(out), 0o644)
}

// Postcondition reports whether the config carries the desired size.
func (s *SwapSizeStep) Postcondition(_ pipeline.RunContext) (bool, error) {
	current, err := s.currentSize()
	if err != nil {
		return false, err
	}
	return current == s.desiredValue(), nil
}

func (s *SwapSizeStep) desiredValue() string {
	return fmt.Sprintf("%dM", s.swapMB)
}

// currentSize reads the SIZE value out of the config file. An absent
// line reads as unset.
func (s *SwapSizeStep) currentSize() (string, error) {
	data, err := s.fs.ReadFile(s.configPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.configPath, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, sizeKey) {
			return strings.TrimPrefix(trimmed, sizeKey), nil
		}
	}
	return "", nil
}

// Ensure SwapSizeStep implements pipeline.Step.
var _ pipeline.Step = (*SwapSizeStep)(nil)
