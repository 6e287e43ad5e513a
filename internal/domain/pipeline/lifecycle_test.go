package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_InitialState(t *testing.T) {
	lifecycle, err := NewLifecycle()
	require.NoError(t, err)
	defer lifecycle.Stop()

	assert.Equal(t, RunStatePending, lifecycle.State())
	assert.Equal(t, ExitSuccess, lifecycle.ExitCode())
}

func TestLifecycle_HappyPath(t *testing.T) {
	lifecycle, err := NewLifecycle()
	require.NoError(t, err)
	defer lifecycle.Stop()

	lifecycle.Begin()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, RunStateProbing, lifecycle.State())

	lifecycle.ProbeDone()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, RunStateExecuting, lifecycle.State())

	lifecycle.StepsDone()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, RunStateManifesting, lifecycle.State())

	lifecycle.ManifestDone()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, RunStateSucceeded, lifecycle.State())
	assert.Equal(t, ExitSuccess, lifecycle.ExitCode())
}

func TestLifecycle_FailDuringProbe(t *testing.T) {
	lifecycle, err := NewLifecycle()
	require.NoError(t, err)
	defer lifecycle.Stop()

	lifecycle.Begin()
	time.Sleep(50 * time.Millisecond)

	cause := errors.New("gcc not found")
	lifecycle.Fail(cause, ExitPreflightFailed)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, RunStateFailed, lifecycle.State())
	assert.Equal(t, ExitPreflightFailed, lifecycle.ExitCode())
	assert.Equal(t, cause, lifecycle.LastError())
}

func TestLifecycle_FailDuringExecution(t *testing.T) {
	lifecycle, err := NewLifecycle()
	require.NoError(t, err)
	defer lifecycle.Stop()

	lifecycle.Begin()
	time.Sleep(50 * time.Millisecond)
	lifecycle.ProbeDone()
	time.Sleep(50 * time.Millisecond)

	lifecycle.Fail(errors.New("make exited 2"), ExitBuildFailed)
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, RunStateFailed, lifecycle.State())
	assert.Equal(t, ExitBuildFailed, lifecycle.ExitCode())
}
