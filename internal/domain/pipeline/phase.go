package pipeline

// Phase classifies a step into a provisioning phase. Phases partition
// failure exit codes so calling automation can branch on which phase failed
// without parsing log text.
type Phase string

const (
	// PhasePreflight covers environment probing and dependency checks.
	PhasePreflight Phase = "preflight"
	// PhaseFetch covers external artifact resolution and download.
	PhaseFetch Phase = "fetch"
	// PhaseConfigure covers toolchain configuration of a source tree.
	PhaseConfigure Phase = "configure"
	// PhaseBuild covers compilation.
	PhaseBuild Phase = "build"
	// PhaseInstall covers package installs and system mutations.
	PhaseInstall Phase = "install"
	// PhaseValidate covers post-build validation checks.
	PhaseValidate Phase = "validate"
)

// Process exit codes, one per failure phase. Zero means success.
const (
	ExitSuccess         = 0
	ExitPreflightFailed = 10
	ExitFetchFailed     = 15
	ExitConfigureFailed = 20
	ExitBuildFailed     = 30
	ExitInstallFailed   = 40
	ExitValidateFailed  = 50
)

// ExitCode returns the process exit code for a failure in this phase.
func (p Phase) ExitCode() int {
	switch p {
	case PhasePreflight:
		return ExitPreflightFailed
	case PhaseFetch:
		return ExitFetchFailed
	case PhaseConfigure:
		return ExitConfigureFailed
	case PhaseBuild:
		return ExitBuildFailed
	case PhaseInstall:
		return ExitInstallFailed
	case PhaseValidate:
		return ExitValidateFailed
	}
	return ExitInstallFailed
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}
