package desktop

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/validation"
)

// DockPinStep pins one application launcher to the dock by appending
// its .desktop entry to the favorites list. Re-pinning an already
// pinned application is a no-op.
type DockPinStep struct {
	entry      string
	appsDir    string
	id         pipeline.StepID
	runner     ports.CommandRunner
	fs         ports.FileSystem
	hasSession bool
}

// NewDockPinStep creates a new DockPinStep.
func NewDockPinStep(entry, appsDir string, runner ports.CommandRunner, fs ports.FileSystem, hasSession bool) *DockPinStep {
	return &DockPinStep{
		entry:      entry,
		appsDir:    appsDir,
		id:         pipeline.MustNewStepID("desktop:pin:" + entry),
		runner:     runner,
		fs:         fs,
		hasSession: hasSession,
	}
}

// ID returns the step identifier.
func (s *DockPinStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *DockPinStep) Description() string {
	return fmt.Sprintf("Pin %s to the dock", s.entry)
}

// Phase returns the provisioning phase.
func (s *DockPinStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata. Desktop tweaks are
// cosmetic; a headless host skips them and a failure never aborts the
// build.
func (s *DockPinStep) Policy() pipeline.Policy {
	return pipeline.Policy{Optional: true}
}

// Precondition reports whether the entry still needs pinning. Without a
// desktop session the step does not apply.
func (s *DockPinStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	if !s.hasSession {
		return false, nil
	}
	favorites, err := s.favorites(ctx)
	if err != nil {
		return false, err
	}
	return !containsApp(favorites, s.entry), nil
}

// Apply validates the launcher file and appends the entry to the
// favorites list.
func (s *DockPinStep) Apply(ctx pipeline.RunContext) error {
	if err := validation.ValidateDesktopEntry(s.entry); err != nil {
		return fmt.Errorf("invalid desktop entry: %w", err)
	}
	if err := s.validateLauncher(); err != nil {
		return err
	}

	favorites, err := s.favorites(ctx)
	if err != nil {
		return err
	}
	if containsApp(favorites, s.entry) {
		return nil
	}
	favorites = append(favorites, s.entry)

	result, err := s.runner.Run(ctx.Context(), "gsettings", "set", shellSchema, favoritesKey, formatAppList(favorites))
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("gsettings set %s failed: %s", favoritesKey, result.Stderr)
	}
	return nil
}

// Postcondition reports whether the entry is pinned.
func (s *DockPinStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	favorites, err := s.favorites(ctx)
	if err != nil {
		return false, err
	}
	return containsApp(favorites, s.entry), nil
}

func (s *DockPinStep) favorites(ctx pipeline.RunContext) ([]string, error) {
	result, err := s.runner.Run(ctx.Context(), "gsettings", "get", shellSchema, favoritesKey)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, fmt.Errorf("gsettings get %s failed: %s", favoritesKey, result.Stderr)
	}
	return parseAppList(result.Stdout), nil
}

// validateLauncher checks the .desktop file exists and is a well-formed
// launcher before pinning a dead entry.
func (s *DockPinStep) validateLauncher() error {
	path := filepath.Join(s.appsDir, s.entry)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("launcher %s not readable: %w", path, err)
	}

	file, err := ini.Load(data)
	if err != nil {
		return fmt.Errorf("launcher %s is not a valid desktop entry: %w", path, err)
	}

	section := file.Section("Desktop Entry")
	if !section.HasKey("Exec") {
		return fmt.Errorf("launcher %s has no Exec line", path)
	}
	return nil
}

// FontStep sets the desktop interface monospace font.
type FontStep struct {
	font       string
	id         pipeline.StepID
	runner     ports.CommandRunner
	hasSession bool
}

// NewFontStep creates a new FontStep. font carries the size suffix,
// e.g. "DejaVu Sans Mono 11".
func NewFontStep(font string, runner ports.CommandRunner, hasSession bool) *FontStep {
	return &FontStep{
		font:       font,
		id:         pipeline.MustNewStepID("desktop:font:monospace"),
		runner:     runner,
		hasSession: hasSession,
	}
}

// ID returns the step identifier.
func (s *FontStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *FontStep) Description() string {
	return fmt.Sprintf("Set monospace font to %s", s.font)
}

// Phase returns the provisioning phase.
func (s *FontStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata.
func (s *FontStep) Policy() pipeline.Policy {
	return pipeline.Policy{Optional: true}
}

// Precondition reports whether the font still needs setting.
func (s *FontStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	if !s.hasSession {
		return false, nil
	}
	current, err := s.current(ctx)
	if err != nil {
		return false, err
	}
	return current != s.font, nil
}

// Apply sets the font.
func (s *FontStep) Apply(ctx pipeline.RunContext) error {
	if err := validation.ValidateFontName(s.font); err != nil {
		return fmt.Errorf("invalid font: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "gsettings", "set", interfaceSchema, monospaceFontKey, s.font)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("gsettings set %s failed: %s", monospaceFontKey, result.Stderr)
	}
	return nil
}

// Postcondition reports whether the font is set.
func (s *FontStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	current, err := s.current(ctx)
	if err != nil {
		return false, err
	}
	return current == s.font, nil
}

func (s *FontStep) current(ctx pipeline.RunContext) (string, error) {
	result, err := s.runner.Run(ctx.Context(), "gsettings", "get", interfaceSchema, monospaceFontKey)
	if err != nil {
		return "", err
	}
	if !result.Success() {
		return "", fmt.Errorf("gsettings get %s failed: %s", monospaceFontKey, result.Stderr)
	}
	return strings.Trim(strings.TrimSpace(result.Stdout), "'\""), nil
}

var (
	_ pipeline.Step = (*DockPinStep)(nil)
	_ pipeline.Step = (*FontStep)(nil)
)
