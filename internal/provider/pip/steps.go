package pip

import (
	"fmt"
	"strings"

	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/validation"
)

// InstallStep installs one pip package for the invoking user.
type InstallStep struct {
	pkg    string
	name   string
	id     pipeline.StepID
	runner ports.CommandRunner
}

// NewInstallStep creates a new InstallStep. pkg may carry a version
// specifier, e.g. "sip==4.19.25".
func NewInstallStep(pkg string, runner ports.CommandRunner) *InstallStep {
	name := baseName(pkg)
	return &InstallStep{
		pkg:    pkg,
		name:   name,
		id:     pipeline.MustNewStepID("pip:install:" + name),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *InstallStep) Description() string {
	return fmt.Sprintf("Install pip package %s", s.pkg)
}

// Phase returns the provisioning phase.
func (s *InstallStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata.
func (s *InstallStep) Policy() pipeline.Policy {
	return pipeline.Policy{Retryable: true, Fatal: true}
}

// Precondition reports whether the package still needs installing.
func (s *InstallStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := installed(ctx, s.runner, s.name)
	if err != nil {
		return false, err
	}
	return !installed, nil
}

// Apply installs the package with --user, never touching the system
// site-packages.
func (s *InstallStep) Apply(ctx pipeline.RunContext) error {
	if err := validation.ValidatePipPackage(s.pkg); err != nil {
		return fmt.Errorf("invalid pip package: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "pip3", "install", "--user", s.pkg)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("pip3 install %s failed: %s", s.pkg, result.Stderr)
	}
	return nil
}

// Postcondition reports whether the package is installed.
func (s *InstallStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	return installed(ctx, s.runner, s.name)
}

// RemoveStep uninstalls one pip package. Used to clear prebuilt wheels
// that would shadow the from-source build.
type RemoveStep struct {
	name   string
	id     pipeline.StepID
	runner ports.CommandRunner
}

// NewRemoveStep creates a new RemoveStep.
func NewRemoveStep(name string, runner ports.CommandRunner) *RemoveStep {
	return &RemoveStep{
		name:   name,
		id:     pipeline.MustNewStepID("pip:remove:" + name),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *RemoveStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *RemoveStep) Description() string {
	return fmt.Sprintf("Remove pip package %s", s.name)
}

// Phase returns the provisioning phase.
func (s *RemoveStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata.
func (s *RemoveStep) Policy() pipeline.Policy {
	return pipeline.Policy{Fatal: true}
}

// Precondition reports whether the package is present and needs removing.
func (s *RemoveStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	return installed(ctx, s.runner, s.name)
}

// Apply uninstalls the package.
func (s *RemoveStep) Apply(ctx pipeline.RunContext) error {
	if err := validation.ValidatePipPackage(s.name); err != nil {
		return fmt.Errorf("invalid pip package: %w", err)
	}

	result, err := s.runner.Run(ctx.Context(), "pip3", "uninstall", "-y", s.name)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("pip3 uninstall %s failed: %s", s.name, result.Stderr)
	}
	return nil
}

// Postcondition reports whether the package is gone.
func (s *RemoveStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	present, err := installed(ctx, s.runner, s.name)
	if err != nil {
		return false, err
	}
	return !present, nil
}

// installed asks pip whether a package is present. pip3 show exits
// non-zero for unknown packages.
func installed(ctx pipeline.RunContext, runner ports.CommandRunner, name string) (bool, error) {
	result, err := runner.Run(ctx.Context(), "pip3", "show", name)
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

// baseName strips a version specifier from a pip requirement.
func baseName(pkg string) string {
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<"} {
		if idx := strings.Index(pkg, sep); idx >= 0 {
			return pkg[:idx]
		}
	}
	return pkg
}

var (
	_ pipeline.Step = (*InstallStep)(nil)
	_ pipeline.Step = (*RemoveStep)(nil)
)
