package apt

import (
	"fmt"
	"strings"

	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/validation"
)

// PackageStep installs one apt package. The step is convergent: an
// already-installed package is detected by the precondition and the
// action never runs.
type PackageStep struct {
	pkg    Package
	id     pipeline.StepID
	runner ports.CommandRunner
}

// NewPackageStep creates a new PackageStep.
func NewPackageStep(pkg Package, runner ports.CommandRunner) *PackageStep {
	id := pipeline.MustNewStepID("apt:install:" + pkg.Name)
	return &PackageStep{
		pkg:    pkg,
		id:     id,
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *PackageStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *PackageStep) Description() string {
	return fmt.Sprintf("Install apt package %s", s.pkg.FullName())
}

// Phase returns the provisioning phase.
func (s *PackageStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata. Dependency installs
// over the network are worth one retry; a missing build dependency
// makes the rest of the pipeline pointless, so failures are fatal.
func (s *PackageStep) Policy() pipeline.Policy {
	return pipeline.Policy{Retryable: true, Fatal: true}
}

// Precondition reports whether the package still needs installing.
func (s *PackageStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := s.installed(ctx)
	if err != nil {
		return false, err
	}
	return !installed, nil
}

// Apply installs the package.
func (s *PackageStep) Apply(ctx pipeline.RunContext) error {
	if err := validation.ValidatePackageName(s.pkg.Name); err != nil {
		return fmt.Errorf("invalid package name: %w", err)
	}

	pkgSpec := s.pkg.Name
	if s.pkg.Version != "" {
		if err := validation.ValidatePackageName(s.pkg.Version); err != nil {
			return fmt.Errorf("invalid package version: %w", err)
		}
		pkgSpec = s.pkg.FullName()
	}

	result, err := s.runner.Run(ctx.Context(), "sudo", "apt-get", "install", "-y", pkgSpec)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("apt-get install %s failed: %s", pkgSpec, result.Stderr)
	}
	return nil
}

// Postcondition reports whether the package is installed.
func (s *PackageStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	return s.installed(ctx)
}

func (s *PackageStep) installed(ctx pipeline.RunContext) (bool, error) {
	result, err := s.runner.Run(ctx.Context(), "dpkg-query", "-W",
		"-f=${Package}\t${Version}\t${db:Status-Status}\n", s.pkg.Name)
	if err != nil {
		return false, err
	}

	// dpkg-query exits 1 when the package is unknown
	if !result.Success() {
		return false, nil
	}
	return strings.Contains(result.Stdout, "installed"), nil
}

// Ensure PackageStep implements pipeline.Step.
var _ pipeline.Step = (*PackageStep)(nil)
