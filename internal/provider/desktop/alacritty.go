package desktop

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/validation"
)

// AlacrittyFontStep writes the font stanza into the terminal emulator's
// TOML config, preserving unrelated settings already in the file.
type AlacrittyFontStep struct {
	family     string
	size       float64
	targetPath string
	id         pipeline.StepID
	fs         ports.FileSystem
	hasSession bool
}

// NewAlacrittyFontStep creates a new AlacrittyFontStep.
func NewAlacrittyFontStep(family string, size float64, targetPath string, fs ports.FileSystem, hasSession bool) *AlacrittyFontStep {
	if size <= 0 {
		size = defaultFontSizePt
	}
	return &AlacrittyFontStep{
		family:     family,
		size:       size,
		targetPath: ports.ExpandPath(targetPath),
		id:         pipeline.MustNewStepID("desktop:font:alacritty"),
		fs:         fs,
		hasSession: hasSession,
	}
}

// ID returns the step identifier.
func (s *AlacrittyFontStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *AlacrittyFontStep) Description() string {
	return fmt.Sprintf("Set Alacritty font to %s %.0f", s.family, s.size)
}

// Phase returns the provisioning phase.
func (s *AlacrittyFontStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata.
func (s *AlacrittyFontStep) Policy() pipeline.Policy {
	return pipeline.Policy{Optional: true}
}

// Precondition reports whether the font stanza still needs writing.
func (s *AlacrittyFontStep) Precondition(_ pipeline.RunContext) (bool, error) {
	if !s.hasSession {
		return false, nil
	}
	family, size, err := s.currentFont()
	if err != nil {
		return false, err
	}
	return family != s.family || size != s.size, nil
}

// Apply merges the font stanza into the existing config.
func (s *AlacrittyFontStep) Apply(_ pipeline.RunContext) error {
	if err := validation.ValidateFontName(s.family); err != nil {
		return fmt.Errorf("invalid font: %w", err)
	}

	existing := make(map[string]interface{})
	if s.fs.Exists(s.targetPath) {
		content, err := s.fs.ReadFile(s.targetPath)
		if err == nil {
			_ = toml.Unmarshal(content, &existing)
		}
	}

	existing["font"] = map[string]interface{}{
		"normal": map[string]interface{}{
			"family": s.family,
		},
		"size": s.size,
	}

	output, err := toml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.targetPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return s.fs.WriteFile(s.targetPath, output, 0o644)
}

// Postcondition reports whether the font stanza is in place.
func (s *AlacrittyFontStep) Postcondition(_ pipeline.RunContext) (bool, error) {
	family, size, err := s.currentFont()
	if err != nil {
		return false, err
	}
	return family == s.family && size == s.size, nil
}

// currentFont reads the configured font out of the TOML file. A missing
// or unparsable file reads as unset.
func (s *AlacrittyFontStep) currentFont() (string, float64, error) {
	if !s.fs.Exists(s.targetPath) {
		return "", 0, nil
	}

	content, err := s.fs.ReadFile(s.targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, nil
		}
		return "", 0, err
	}

	var parsed struct {
		Font struct {
			Normal struct {
				Family string `toml:"family"`
			} `toml:"normal"`
			Size float64 `toml:"size"`
		} `toml:"font"`
	}
	if err := toml.Unmarshal(content, &parsed); err != nil {
		return "", 0, nil
	}
	return parsed.Font.Normal.Family, parsed.Font.Size, nil
}

// Ensure AlacrittyFontStep implements pipeline.Step.
var _ pipeline.Step = (*AlacrittyFontStep)(nil)
