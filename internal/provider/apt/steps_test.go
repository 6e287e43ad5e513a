package apt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/orinup/internal/domain/pipeline"
	"github.com/mvaldez/orinup/internal/ports"
	"github.com/mvaldez/orinup/internal/provider/apt"
	"github.com/mvaldez/orinup/internal/testutil/mocks"
)

const dpkgFormat = "-f=${Package}\t${Version}\t${db:Status-Status}\n"

func TestPackageStep_ID(t *testing.T) {
	t.Parallel()

	step := apt.NewPackageStep(apt.Package{Name: "qtbase5-dev"}, mocks.NewCommandRunner())

	assert.Equal(t, "apt:install:qtbase5-dev", step.ID().String())
	assert.Equal(t, pipeline.PhaseInstall, step.Phase())
	assert.True(t, step.Policy().Fatal)
	assert.True(t, step.Policy().Retryable)
}

func TestPackageStep_Precondition_NotInstalled(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("dpkg-query", []string{"-W", dpkgFormat, "qtbase5-dev"}, ports.CommandResult{
		ExitCode: 1,
		Stderr:   "no packages found matching qtbase5-dev",
	})

	step := apt.NewPackageStep(apt.Package{Name: "qtbase5-dev"}, runner)
	needed, err := step.Precondition(pipeline.NewRunContext(context.Background()))

	require.NoError(t, err)
	assert.True(t, needed)
}

func TestPackageStep_Precondition_AlreadyInstalled(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("dpkg-query", []string{"-W", dpkgFormat, "qtbase5-dev"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "qtbase5-dev\t5.15.3\tinstalled\n",
	})

	step := apt.NewPackageStep(apt.Package{Name: "qtbase5-dev"}, runner)
	needed, err := step.Precondition(pipeline.NewRunContext(context.Background()))

	require.NoError(t, err)
	assert.False(t, needed)
}

func TestPackageStep_Apply(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"apt-get", "install", "-y", "qtbase5-dev"}, ports.CommandResult{ExitCode: 0})

	step := apt.NewPackageStep(apt.Package{Name: "qtbase5-dev"}, runner)
	err := step.Apply(pipeline.NewRunContext(context.Background()))

	require.NoError(t, err)
	assert.True(t, runner.CalledWith("sudo", "apt-get", "install", "-y", "qtbase5-dev"))
}

func TestPackageStep_Apply_PinnedVersion(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"apt-get", "install", "-y", "qtbase5-dev=5.15.3-1"}, ports.CommandResult{ExitCode: 0})

	step := apt.NewPackageStep(apt.Package{Name: "qtbase5-dev", Version: "5.15.3-1"}, runner)
	err := step.Apply(pipeline.NewRunContext(context.Background()))

	require.NoError(t, err)
}

func TestPackageStep_Apply_RejectsInjection(t *testing.T) {
	t.Parallel()

	// Step IDs reject metacharacters at construction, so a malicious
	// package name never reaches Apply.
	bad := apt.Package{Name: "gcc;rm -rf /"}
	assert.Panics(t, func() { apt.NewPackageStep(bad, mocks.NewCommandRunner()) })
}

func TestPackageStep_Apply_InstallFails(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"apt-get", "install", "-y", "qtbase5-dev"}, ports.CommandResult{
		ExitCode: 100,
		Stderr:   "E: Unable to locate package qtbase5-dev",
	})

	step := apt.NewPackageStep(apt.Package{Name: "qtbase5-dev"}, runner)
	err := step.Apply(pipeline.NewRunContext(context.Background()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to locate")
}
