package qtbuild

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mvaldez/orinup/internal/domain/fetch"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/domain/probe"
	"github.com/mvaldez/orinup/internal/domain/validate"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/validation"
)

// configureEntry is the upstream build entry point inside the sdist.
const configureEntry = "configure.py"

// sourceDir is where the sdist gets unpacked, under the run scratch dir.
func sourceDir(ctx pipeline.RunContext) string {
	return filepath.Join(ctx.ScratchDir(), "src")
}

// FetchSourceStep downloads the source archive and unpacks it into the
// scratch directory.
type FetchSourceStep struct {
	pkg        string
	version    string
	coreModule string
	id         pipeline.StepID
	fetcher    *fetch.Fetcher
	runner     ports.CommandRunner
	fs         ports.FileSystem
}

// NewFetchSourceStep creates a new FetchSourceStep.
func NewFetchSourceStep(pkg, version, coreModule string, fetcher *fetch.Fetcher, runner ports.CommandRunner, fs ports.FileSystem) *FetchSourceStep {
	return &FetchSourceStep{
		pkg:        pkg,
		version:    version,
		coreModule: coreModule,
		id:         pipeline.MustNewStepID("qtbuild:fetch:" + pkg),
		fetcher:    fetcher,
		runner:     runner,
		fs:         fs,
	}
}

// ID returns the step identifier.
func (s *FetchSourceStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *FetchSourceStep) Description() string {
	return fmt.Sprintf("Fetch %s %s source archive", s.pkg, s.version)
}

// Phase returns the provisioning phase.
func (s *FetchSourceStep) Phase() pipeline.Phase {
	return pipeline.PhaseFetch
}

// Policy returns the failure-handling metadata. Downloads are retried;
// without a source tree nothing downstream can run.
func (s *FetchSourceStep) Policy() pipeline.Policy {
	return pipeline.Policy{Retryable: true, Fatal: true}
}

// Precondition reports whether the source tree still needs fetching. On an
// already-provisioned host the core module imports, and the whole
// fetch/configure/build chain stays untouched; the scratch directory is
// per-run and says nothing about install state.
func (s *FetchSourceStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	if installed {
		return false, nil
	}
	return !s.fs.Exists(filepath.Join(sourceDir(ctx), configureEntry)), nil
}

// Apply downloads the sdist and unpacks it into the source directory.
func (s *FetchSourceStep) Apply(ctx pipeline.RunContext) error {
	src := sourceDir(ctx)
	if err := s.fs.MkdirAll(src, 0o755); err != nil {
		return fmt.Errorf("failed to create source dir: %w", err)
	}

	result, err := s.fetcher.Fetch(ctx.Context(), fetch.Request{
		Package:     s.pkg,
		Version:     s.version,
		FilePattern: fmt.Sprintf(`(?i)%s.*\.tar\.gz$`, s.pkg),
	}, ctx.ScratchDir())
	if err != nil {
		return err
	}

	unpack, err := s.runner.Run(ctx.Context(), "tar",
		"-xzf", result.Artifact.LocalPath,
		"-C", src,
		"--strip-components=1")
	if err != nil {
		return err
	}
	if !unpack.Success() {
		return fmt.Errorf("failed to unpack %s: %s", result.Artifact.LocalPath, unpack.Stderr)
	}
	return nil
}

// Postcondition reports whether the unpacked tree carries the configure
// entry point, or the binding is already installed.
func (s *FetchSourceStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	if installed {
		return true, nil
	}
	return s.fs.Exists(filepath.Join(sourceDir(ctx), configureEntry)), nil
}

// ConfigureStep runs the upstream configure entry point with the excluded
// feature modules disabled.
type ConfigureStep struct {
	pkg        string
	coreModule string
	excluded   []string
	flags      []string
	id         pipeline.StepID
	runner     ports.CommandRunner
	fs         ports.FileSystem
}

// NewConfigureStep creates a new ConfigureStep.
func NewConfigureStep(pkg, coreModule string, excluded, flags []string, runner ports.CommandRunner, fs ports.FileSystem) *ConfigureStep {
	return &ConfigureStep{
		pkg:        pkg,
		coreModule: coreModule,
		excluded:   excluded,
		flags:      flags,
		id:         pipeline.MustNewStepID("qtbuild:configure:" + pkg),
		runner:     runner,
		fs:         fs,
	}
}

// ID returns the step identifier.
func (s *ConfigureStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *ConfigureStep) Description() string {
	return fmt.Sprintf("Configure %s build (%d modules excluded)", s.pkg, len(s.excluded))
}

// Phase returns the provisioning phase.
func (s *ConfigureStep) Phase() pipeline.Phase {
	return pipeline.PhaseConfigure
}

// Policy returns the failure-handling metadata. A failed configure leaves
// no Makefile; re-running it will not help.
func (s *ConfigureStep) Policy() pipeline.Policy {
	return pipeline.Policy{Fatal: true}
}

// Precondition reports whether the source tree still needs configuring.
// No-op when the binding is already installed.
func (s *ConfigureStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	if installed {
		return false, nil
	}
	return !s.fs.Exists(filepath.Join(sourceDir(ctx), "Makefile")), nil
}

// Apply runs configure.py with --disable flags for each excluded module.
func (s *ConfigureStep) Apply(ctx pipeline.RunContext) error {
	args := []string{configureEntry, "--confirm-license", "--verbose"}
	for _, module := range s.excluded {
		if err := validation.ValidatePackageName(module); err != nil {
			return fmt.Errorf("invalid excluded module %q: %w", module, err)
		}
		args = append(args, "--disable", module)
	}
	args = append(args, s.flags...)

	result, err := s.runner.RunIn(ctx.Context(), sourceDir(ctx), "python3", args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("configure failed: %s", result.Stderr)
	}
	return nil
}

// Postcondition reports whether configure produced a Makefile, or the
// binding is already installed.
func (s *ConfigureStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	if installed {
		return true, nil
	}
	return s.fs.Exists(filepath.Join(sourceDir(ctx), "Makefile")), nil
}

// BuildStep compiles the configured source tree. It re-probes available
// memory right before invoking make: the snapshot taken at preflight can be
// hours stale by the time compilation starts, and an over-parallel build on
// a low-memory board gets OOM-killed halfway through.
type BuildStep struct {
	pkg         string
	coreModule  string
	lowMemoryMB int
	id          pipeline.StepID
	runner      ports.CommandRunner
	fs          ports.FileSystem
	sys         probe.SystemReader
}

// NewBuildStep creates a new BuildStep.
func NewBuildStep(pkg, coreModule string, lowMemoryMB int, runner ports.CommandRunner, fs ports.FileSystem, sys probe.SystemReader) *BuildStep {
	return &BuildStep{
		pkg:         pkg,
		coreModule:  coreModule,
		lowMemoryMB: lowMemoryMB,
		id:          pipeline.MustNewStepID("qtbuild:build:" + pkg),
		runner:      runner,
		fs:          fs,
		sys:         sys,
	}
}

// ID returns the step identifier.
func (s *BuildStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *BuildStep) Description() string {
	return fmt.Sprintf("Compile %s", s.pkg)
}

// Phase returns the provisioning phase.
func (s *BuildStep) Phase() pipeline.Phase {
	return pipeline.PhaseBuild
}

// Policy returns the failure-handling metadata.
func (s *BuildStep) Policy() pipeline.Policy {
	return pipeline.Policy{Fatal: true}
}

// Precondition reports whether compilation is still needed. An installed
// binding means no; a missing Makefile means yes without asking make (on a
// fresh host the scratch tree does not exist yet, and a dry run must still
// be able to plan this step); otherwise `make -q` decides, exiting 0 when
// there is nothing to do.
func (s *BuildStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	if installed {
		return false, nil
	}
	if !s.fs.Exists(filepath.Join(sourceDir(ctx), "Makefile")) {
		return true, nil
	}

	result, err := s.runner.RunIn(ctx.Context(), sourceDir(ctx), "make", "-q")
	if err != nil {
		return false, err
	}
	return !result.Success(), nil
}

// Apply runs make with the effective job count.
func (s *BuildStep) Apply(ctx pipeline.RunContext) error {
	jobs, err := s.effectiveJobs(ctx)
	if err != nil {
		return err
	}

	result, err := s.runner.RunIn(ctx.Context(), sourceDir(ctx), "make", fmt.Sprintf("-j%d", jobs))
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("make -j%d failed: %s", jobs, result.Stderr)
	}
	return nil
}

// Postcondition reports whether the build is up to date or the binding is
// already installed.
func (s *BuildStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	installed, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	if installed {
		return true, nil
	}
	if !s.fs.Exists(filepath.Join(sourceDir(ctx), "Makefile")) {
		return false, nil
	}

	result, err := s.runner.RunIn(ctx.Context(), sourceDir(ctx), "make", "-q")
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

// effectiveJobs clamps the configured parallelism to 1 when available
// memory has dropped below the floor.
func (s *BuildStep) effectiveJobs(ctx pipeline.RunContext) (int, error) {
	jobs := ctx.Jobs()
	if jobs <= 1 || s.lowMemoryMB <= 0 {
		return jobs, nil
	}

	memMB, err := s.sys.AvailableMemoryMB()
	if err != nil {
		return 0, fmt.Errorf("failed to re-probe memory before build: %w", err)
	}
	if memMB < int64(s.lowMemoryMB) {
		return 1, nil
	}
	return jobs, nil
}

// InstallStep installs the compiled binding into the system.
type InstallStep struct {
	pkg        string
	coreModule string
	id         pipeline.StepID
	runner     ports.CommandRunner
}

// NewInstallStep creates a new InstallStep.
func NewInstallStep(pkg, coreModule string, runner ports.CommandRunner) *InstallStep {
	return &InstallStep{
		pkg:        pkg,
		coreModule: coreModule,
		id:         pipeline.MustNewStepID("qtbuild:install:" + pkg),
		runner:     runner,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *InstallStep) Description() string {
	return fmt.Sprintf("Install %s", s.pkg)
}

// Phase returns the provisioning phase.
func (s *InstallStep) Phase() pipeline.Phase {
	return pipeline.PhaseInstall
}

// Policy returns the failure-handling metadata.
func (s *InstallStep) Policy() pipeline.Policy {
	return pipeline.Policy{Fatal: true}
}

// Precondition reports whether the core module is still missing.
func (s *InstallStep) Precondition(ctx pipeline.RunContext) (bool, error) {
	present, err := importable(ctx, s.runner, s.coreModule)
	if err != nil {
		return false, err
	}
	return !present, nil
}

// Apply runs make install in the source tree.
func (s *InstallStep) Apply(ctx pipeline.RunContext) error {
	result, err := s.runner.RunIn(ctx.Context(), sourceDir(ctx), "sudo", "make", "install")
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("make install failed: %s", result.Stderr)
	}
	return nil
}

// Postcondition reports whether the core module imports.
func (s *InstallStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	return importable(ctx, s.runner, s.coreModule)
}

// VerifyStep asserts the build came out minimal: the core module imports
// and every excluded module does not.
type VerifyStep struct {
	pkg        string
	coreModule string
	excluded   []string
	id         pipeline.StepID
	runner     ports.CommandRunner
	validator  *validate.Validator
}

// NewVerifyStep creates a new VerifyStep.
func NewVerifyStep(pkg, coreModule string, excluded []string, runner ports.CommandRunner, validator *validate.Validator) *VerifyStep {
	return &VerifyStep{
		pkg:        pkg,
		coreModule: coreModule,
		excluded:   excluded,
		id:         pipeline.MustNewStepID("qtbuild:verify:" + pkg),
		runner:     runner,
		validator:  validator,
	}
}

// ID returns the step identifier.
func (s *VerifyStep) ID() pipeline.StepID {
	return s.id
}

// Description returns a human-readable summary.
func (s *VerifyStep) Description() string {
	return fmt.Sprintf("Verify %s exclusions", s.pkg)
}

// Phase returns the provisioning phase.
func (s *VerifyStep) Phase() pipeline.Phase {
	return pipeline.PhaseValidate
}

// Policy returns the failure-handling metadata. An unexpected module means
// the build was not minimal; the whole point of the pipeline failed.
func (s *VerifyStep) Policy() pipeline.Policy {
	return pipeline.Policy{Fatal: true}
}

// Precondition always holds: verification is re-run on every invocation.
func (s *VerifyStep) Precondition(_ pipeline.RunContext) (bool, error) {
	return true, nil
}

// Apply runs the presence and absence assertions.
func (s *VerifyStep) Apply(ctx pipeline.RunContext) error {
	ok, unexpected, err := s.check(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("build verification failed, unexpected capabilities: %v", unexpected)
	}
	return nil
}

// Postcondition re-runs the assertions.
func (s *VerifyStep) Postcondition(ctx pipeline.RunContext) (bool, error) {
	ok, _, err := s.check(ctx)
	return ok, err
}

// check asserts the core module present and all excluded modules absent.
func (s *VerifyStep) check(ctx pipeline.RunContext) (bool, []string, error) {
	present, err := s.validator.AssertPresent(ctx.Context(), []validate.Capability{
		validate.NewImportCapability(s.coreModule, s.runner),
	})
	if err != nil {
		return false, nil, err
	}

	capabilities := make([]validate.Capability, 0, len(s.excluded))
	for _, module := range s.excluded {
		capabilities = append(capabilities, validate.NewImportCapability(s.importName(module), s.runner))
	}
	absent, err := s.validator.AssertAbsent(ctx.Context(), capabilities)
	if err != nil {
		return false, nil, err
	}

	unexpected := append(present.Unexpected, absent.Unexpected...)
	return present.OK && absent.OK, unexpected, nil
}

// importName qualifies a bare module name against the core package.
// Configure disables "QtWebEngineWidgets"; the import probe needs
// "PyQt5.QtWebEngineWidgets".
func (s *VerifyStep) importName(module string) string {
	if strings.Contains(module, ".") {
		return module
	}
	return s.coreModule + "." + module
}

// importable probes a python module with the system interpreter.
func importable(ctx pipeline.RunContext, runner ports.CommandRunner, module string) (bool, error) {
	result, err := runner.Run(ctx.Context(), "python3", "-c", "import "+module)
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

var (
	_ pipeline.Step = (*FetchSourceStep)(nil)
	_ pipeline.Step = (*ConfigureStep)(nil)
	_ pipeline.Step = (*BuildStep)(nil)
	_ pipeline.Step = (*InstallStep)(nil)
	_ pipeline.Step = (*VerifyStep)(nil)
)
