package app_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/orinup/internal/app"
	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/testutil/mocks"
)

// fakeSystemReader controls memory and disk readings.
type fakeSystemReader struct {
	memMB   int64
	diskMB  int64
	session bool
}

func (r *fakeSystemReader) AvailableMemoryMB() (int64, error) { return r.memMB, nil }
func (r *fakeSystemReader) DiskFreeMB(string) (int64, error)  { return r.diskMB, nil }
func (r *fakeSystemReader) HasDesktopSession() bool           { return r.session }
func (r *fakeSystemReader) IsJetsonBoard() bool               { return true }

func healthyReader() *fakeSystemReader {
	return &fakeSystemReader{memMB: 8192, diskMB: 100000}
}

func baseConfig(t *testing.T) config.RunConfig {
	t.Helper()
	dir := t.TempDir()
	return config.NewRunConfig().
		WithLogDir(filepath.Join(dir, "logs")).
		WithManifestPath(filepath.Join(dir, "manifest.yaml")).
		WithInstallRoot("/usr/local")
}

func newProvisioner(runner *mocks.CommandRunner, fs *mocks.FileSystem) *app.Provisioner {
	return app.New(&bytes.Buffer{}).
		WithRunner(runner).
		WithFileSystem(fs).
		WithSystemReader(healthyReader()).
		WithTools(nil)
}

func TestProvision_EmptyConfigWritesManifest(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/usr/local/lib/libdemo.so", []byte("elf"))

	cfg := baseConfig(t)
	provisioner := newProvisioner(mocks.NewCommandRunner(), fs)

	outcome, err := provisioner.Provision(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, pipeline.ExitSuccess, outcome.ExitCode)
	assert.True(t, outcome.Result.Succeeded())
	assert.Empty(t, outcome.Result.Results)
	assert.NotEmpty(t, outcome.ManifestPath)
	assert.NotEmpty(t, outcome.LogPath)
}

func TestProvision_FatalStepSetsPhaseExitCode(t *testing.T) {
	runner := mocks.NewCommandRunner()
	// Every external command fails: the apt precondition sees the package
	// missing, both install attempts fail.
	runner.SetDefaultResult(ports.CommandResult{ExitCode: 1, Stderr: "E: unable to locate"})

	fs := mocks.NewFileSystem()
	fs.AddFile("/usr/local/lib/libdemo.so", []byte("elf"))

	cfg, perr := config.NewLoader().Parse([]byte(`
providers:
  apt:
    packages: [build-essential]
`))
	require.NoError(t, perr)
	dir := t.TempDir()
	cfg = cfg.
		WithLogDir(filepath.Join(dir, "logs")).
		WithManifestPath(filepath.Join(dir, "manifest.yaml")).
		WithInstallRoot("/usr/local")

	provisioner := newProvisioner(runner, fs)

	outcome, err := provisioner.Provision(context.Background(), cfg)
	require.Error(t, err)

	assert.Equal(t, pipeline.ExitInstallFailed, outcome.ExitCode)
	assert.Equal(t, pipeline.RunFailed, outcome.Result.Status)
	require.Len(t, outcome.Result.Results, 1)
	assert.Equal(t, 2, outcome.Result.Results[0].Attempts())
}

func TestProvision_DryRunSkipsEverything(t *testing.T) {
	runner := mocks.NewCommandRunner()
	runner.SetDefaultResult(ports.CommandResult{ExitCode: 1})

	cfg, perr := config.NewLoader().Parse([]byte(`
providers:
  apt:
    packages: [build-essential]
`))
	require.NoError(t, perr)
	cfg = cfg.WithDryRun(true).WithLogDir(filepath.Join(t.TempDir(), "logs"))

	provisioner := newProvisioner(runner, mocks.NewFileSystem())

	outcome, err := provisioner.Provision(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, pipeline.ExitSuccess, outcome.ExitCode)
	assert.Empty(t, outcome.ManifestPath)
	require.Len(t, outcome.Result.Results, 1)
	assert.Equal(t, pipeline.StatusSkipped, outcome.Result.Results[0].Status())
	assert.False(t, runner.CalledWith("sudo"))
}

func TestProvision_LowDiskFailsPreflight(t *testing.T) {
	provisioner := app.New(&bytes.Buffer{}).
		WithRunner(mocks.NewCommandRunner()).
		WithFileSystem(mocks.NewFileSystem()).
		WithSystemReader(&fakeSystemReader{memMB: 8192, diskMB: 512}).
		WithTools(nil)

	outcome, err := provisioner.Provision(context.Background(), baseConfig(t))
	require.Error(t, err)
	assert.Equal(t, pipeline.ExitPreflightFailed, outcome.ExitCode)
	assert.Contains(t, err.Error(), "disk space")
}

func TestProvision_BadProviderSectionFailsPreflight(t *testing.T) {
	cfg, perr := config.NewLoader().Parse([]byte(`
providers:
  pip:
    packages: not-a-list
`))
	require.NoError(t, perr)
	cfg = cfg.WithLogDir(filepath.Join(t.TempDir(), "logs"))

	provisioner := newProvisioner(mocks.NewCommandRunner(), mocks.NewFileSystem())

	outcome, err := provisioner.Provision(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, pipeline.ExitPreflightFailed, outcome.ExitCode)
}

func TestDoctor_ReportsDiskShortage(t *testing.T) {
	provisioner := app.New(&bytes.Buffer{}).
		WithRunner(mocks.NewCommandRunner()).
		WithFileSystem(mocks.NewFileSystem()).
		WithSystemReader(&fakeSystemReader{memMB: 8192, diskMB: 512}).
		WithTools(nil)

	report, err := provisioner.Doctor(context.Background())
	require.NoError(t, err)
	assert.False(t, report.DiskOK)
	assert.False(t, report.Healthy())
}

func TestDoctor_HealthyHost(t *testing.T) {
	provisioner := newProvisioner(mocks.NewCommandRunner(), mocks.NewFileSystem())

	report, err := provisioner.Doctor(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DiskOK)
	assert.True(t, report.Healthy())
	assert.Equal(t, int64(8192), report.Snapshot.AvailableMemoryMB)
}

func TestWriteAndVerifyManifest(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/opt/app/bin/tool", []byte("binary"))
	fs.AddFile("/opt/app/share/data.txt", []byte("data"))

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	provisioner := newProvisioner(mocks.NewCommandRunner(), fs)

	m, err := provisioner.WriteManifest(context.Background(), "/opt/app", path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.EntryCount())

	loaded, report, err := provisioner.VerifyManifest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.EntryCount())
	assert.True(t, report.Clean())

	fs.AddFile("/opt/app/share/data.txt", []byte("tampered"))

	_, report, err = provisioner.VerifyManifest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"share/data.txt"}, report.Modified)
}
