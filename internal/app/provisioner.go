// Package app wires adapters, providers, and the pipeline executor into the
// orinup application services.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mvaldez/orinup/internal/adapters/command"
	"github.com/mvaldez/orinup/internal/adapters/filesystem"
	"github.com/mvaldez/orinup/internal/adapters/logging"
	"github.com/mvaldez/orinup/internal/adapters/manifeststore"
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/manifest"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/domain/probe"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/provider/apt"
	"github.com/mvaldez/orinup/internal/provider/desktop"
	"github.com/mvaldez/orinup/internal/provider/pip"
	"github.com/mvaldez/orinup/internal/provider/qtbuild"
	"github.com/mvaldez/orinup/internal/provider/system"
)

// MinDiskFreeMB is the preflight floor for free disk space. A Qt-class
// source build needs room for the sdist, the object files, and the install.
const MinDiskFreeMB = 6144

// RequiredTools are probed before any step runs. A missing tool fails the
// run in the preflight phase, before anything has been mutated.
var RequiredTools = []probe.Tool{
	{Name: "python3", MinVersion: "3.6"},
	{Name: "pip3"},
	{Name: "make"},
	{Name: "gcc"},
	{Name: "tar"},
	{Name: "qmake"},
}

// RunOutcome aggregates everything a caller needs to report on a
// provisioning run.
type RunOutcome struct {
	Result       pipeline.RunResult
	Snapshot     *probe.Snapshot
	ManifestPath string
	LogPath      string
	DryRun       bool
	ExitCode     int
}

// Provisioner is the main application orchestrator. It drives a run through
// probe, step execution, and manifest write.
type Provisioner struct {
	runner ports.CommandRunner
	fs     ports.FileSystem
	sys    probe.SystemReader
	repo   manifest.Repository
	out    io.Writer
	level  ports.Level
	tools  []probe.Tool
}

// New creates a Provisioner backed by the real host adapters.
func New(out io.Writer) *Provisioner {
	return &Provisioner{
		runner: command.NewRealRunner(),
		fs:     filesystem.NewRealFileSystem(),
		sys:    probe.RealSystemReader{},
		repo:   manifeststore.NewYAMLRepository(),
		out:    out,
		level:  ports.LevelInfo,
		tools:  RequiredTools,
	}
}

// WithRunner substitutes the command runner. Tests inject a mock.
func (p *Provisioner) WithRunner(runner ports.CommandRunner) *Provisioner {
	c := *p
	c.runner = runner
	return &c
}

// WithFileSystem substitutes the filesystem adapter.
func (p *Provisioner) WithFileSystem(fs ports.FileSystem) *Provisioner {
	c := *p
	c.fs = fs
	return &c
}

// WithSystemReader substitutes the system reader.
func (p *Provisioner) WithSystemReader(sys probe.SystemReader) *Provisioner {
	c := *p
	c.sys = sys
	return &c
}

// WithManifestRepository substitutes the manifest repository.
func (p *Provisioner) WithManifestRepository(repo manifest.Repository) *Provisioner {
	c := *p
	c.repo = repo
	return &c
}

// WithTools substitutes the required-tool list.
func (p *Provisioner) WithTools(tools []probe.Tool) *Provisioner {
	c := *p
	c.tools = tools
	return &c
}

// WithLogLevel sets the console log level.
func (p *Provisioner) WithLogLevel(level ports.Level) *Provisioner {
	c := *p
	c.level = level
	return &c
}

// Provision runs the full pipeline: probe the host, compile provider
// sections into steps, execute them in order, and write the install
// manifest. The returned outcome carries the phase-partitioned exit code;
// the error is the first fatal failure, already reflected in that code.
func (p *Provisioner) Provision(ctx context.Context, cfg config.RunConfig) (RunOutcome, error) {
	outcome := RunOutcome{DryRun: cfg.DryRun()}

	runLog, err := logging.NewRunLog(ports.ExpandPath(cfg.LogDir()), p.out, p.level)
	if err != nil {
		outcome.ExitCode = pipeline.ExitPreflightFailed
		return outcome, fmt.Errorf("failed to open run log: %w", err)
	}
	defer func() { _ = runLog.Close() }()
	logger := runLog.Logger()
	outcome.LogPath = runLog.Path()

	lifecycle, err := pipeline.NewLifecycle()
	if err != nil {
		outcome.ExitCode = pipeline.ExitPreflightFailed
		return outcome, err
	}
	defer lifecycle.Stop()

	lifecycle.Begin()
	logger.Info(ctx, "probing environment")

	snapshot, err := p.preflight(ctx, cfg)
	outcome.Snapshot = snapshot
	if err != nil {
		lifecycle.Fail(err, pipeline.ExitPreflightFailed)
		outcome.ExitCode = pipeline.ExitPreflightFailed
		logger.Error(ctx, "preflight failed", ports.F("error", err.Error()))
		return outcome, err
	}
	lifecycle.ProbeDone()

	trace := pipeline.NewTrace()
	registry, err := p.buildRegistry(cfg, snapshot, trace)
	if err != nil {
		lifecycle.Fail(err, pipeline.ExitPreflightFailed)
		outcome.ExitCode = pipeline.ExitPreflightFailed
		logger.Error(ctx, "could not compile steps", ports.F("error", err.Error()))
		return outcome, err
	}

	logger.Info(ctx, "executing pipeline", ports.F("steps", registry.Len()))

	executor := pipeline.NewExecutor().
		WithDryRun(cfg.DryRun()).
		WithTrace(trace).
		WithLogger(logger)

	runCtx := pipeline.NewRunContext(ctx).
		WithJobs(cfg.Jobs()).
		WithKeepTemp(cfg.KeepTemp())

	result := executor.Execute(ctx, registry, runCtx)
	outcome.Result = result

	if !result.Succeeded() {
		failure := firstFailure(result)
		lifecycle.Fail(failure, result.ExitCode)
		outcome.ExitCode = result.ExitCode
		p.writeManifest(ctx, cfg, manifest.PipelineFailed, logger, &outcome)
		return outcome, failure
	}
	lifecycle.StepsDone()

	if !cfg.DryRun() {
		if err := p.writeManifest(ctx, cfg, manifest.PipelineSucceeded, logger, &outcome); err != nil {
			lifecycle.Fail(err, pipeline.ExitInstallFailed)
			outcome.ExitCode = pipeline.ExitInstallFailed
			return outcome, err
		}
	}
	lifecycle.ManifestDone()

	outcome.ExitCode = pipeline.ExitSuccess
	return outcome, nil
}

// preflight probes the host and checks the hard requirements.
func (p *Provisioner) preflight(ctx context.Context, cfg config.RunConfig) (*probe.Snapshot, error) {
	prober := probe.NewProber(p.runner, p.tools).WithSystemReader(p.sys)

	snapshot, err := prober.Probe(ctx, os.TempDir())
	if err != nil {
		return nil, err
	}

	for _, tool := range p.tools {
		if err := prober.Require(snapshot, tool.Name); err != nil {
			return snapshot, err
		}
	}

	if snapshot.DiskFreeMB < MinDiskFreeMB {
		return snapshot, fmt.Errorf("insufficient disk space: %d MB free, need %d MB",
			snapshot.DiskFreeMB, MinDiskFreeMB)
	}

	return snapshot, nil
}

// buildRegistry compiles every provider section into an ordered registry.
// Dependency installs come first, the source build after them, and desktop
// cosmetics last.
func (p *Provisioner) buildRegistry(cfg config.RunConfig, snapshot *probe.Snapshot, trace *pipeline.Trace) (*pipeline.Registry, error) {
	runner := pipeline.NewTracingRunner(p.runner, trace)
	hasSession := snapshot.Flag("desktop-session")

	providers := []pipeline.Provider{
		apt.NewProvider(runner),
		pip.NewProvider(runner),
		system.NewProvider(p.fs),
		qtbuild.NewProvider(runner, p.fs, p.sys),
		desktop.NewProvider(runner, p.fs, hasSession),
	}

	registry := pipeline.NewRegistry()
	for _, provider := range providers {
		steps, err := provider.Steps(cfg)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", provider.Name(), err)
		}
		if err := registry.RegisterAll(steps); err != nil {
			return nil, fmt.Errorf("provider %s: %w", provider.Name(), err)
		}
	}
	return registry, nil
}

// writeManifest records the install root state, succeeded or failed. The
// failed-status manifest is diagnostic; its write errors are logged and
// swallowed so they never mask the step failure.
func (p *Provisioner) writeManifest(ctx context.Context, cfg config.RunConfig, status manifest.PipelineStatus, logger ports.Logger, outcome *RunOutcome) error {
	if cfg.DryRun() {
		return nil
	}

	m, err := manifest.NewWriter(p.fs).Write(cfg.InstallRoot(), status)
	if err != nil {
		if status == manifest.PipelineFailed {
			logger.Warn(ctx, "skipping failure manifest", ports.F("error", err.Error()))
			return nil
		}
		return fmt.Errorf("failed to build manifest: %w", err)
	}

	path := ports.ExpandPath(cfg.ManifestPath())
	if err := p.repo.Save(ctx, path, m); err != nil {
		if status == manifest.PipelineFailed {
			logger.Warn(ctx, "failed to save failure manifest", ports.F("error", err.Error()))
			return nil
		}
		return fmt.Errorf("failed to save manifest: %w", err)
	}

	outcome.ManifestPath = path
	logger.Info(ctx, "manifest written", ports.F("path", path), ports.F("status", string(status)))
	return nil
}

// firstFailure returns the error of the first failed step.
func firstFailure(result pipeline.RunResult) error {
	for _, r := range result.Results {
		if r.Status() == pipeline.StatusFailed && r.Err() != nil {
			return r.Err()
		}
	}
	return errors.New("pipeline failed")
}
