package qtbuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/provider/qtbuild"
	"github.com/mvaldez/orinup/internal/testutil/mocks"
)

func parseConfig(t *testing.T, yaml string) config.RunConfig {
	t.Helper()
	cfg, err := config.NewLoader().Parse([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

func newProvider() *qtbuild.Provider {
	return qtbuild.NewProvider(mocks.NewCommandRunner(), mocks.NewFileSystem(), &fakeSystemReader{memMB: 8192})
}

func TestProvider_Steps_FullPipeline(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, `
target_version: "5.15.4"
providers:
  qtbuild:
    excluded_modules:
      - QtWebEngineWidgets
      - QtBluetooth
    configure_flags:
      - --no-designer-plugin
`)

	steps, err := newProvider().Steps(cfg)
	require.NoError(t, err)
	require.Len(t, steps, 5)

	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.ID().String()
	}
	assert.Equal(t, []string{
		"qtbuild:fetch:pyqt5",
		"qtbuild:configure:pyqt5",
		"qtbuild:build:pyqt5",
		"qtbuild:install:pyqt5",
		"qtbuild:verify:pyqt5",
	}, ids)
}

func TestProvider_Steps_NoSection(t *testing.T) {
	t.Parallel()

	steps, err := newProvider().Steps(config.NewRunConfig())
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestProvider_Steps_RequiresPinnedVersion(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, `
providers:
  qtbuild:
    excluded_modules: [QtBluetooth]
`)

	_, err := newProvider().Steps(cfg)
	require.Error(t, err)

	userErr := config.GetUserError(err)
	require.NotNil(t, userErr)
	assert.Equal(t, config.ErrCodeValidationFailed, userErr.Code)
}

func TestProvider_Steps_CustomPackage(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, `
target_version: "6.2.0"
providers:
  qtbuild:
    package: pyqt6
    core_module: PyQt6
`)

	steps, err := newProvider().Steps(cfg)
	require.NoError(t, err)
	require.Len(t, steps, 5)
	assert.Equal(t, "qtbuild:fetch:pyqt6", steps[0].ID().String())
}

func TestProvider_Steps_MalformedSection(t *testing.T) {
	t.Parallel()

	cfg := parseConfig(t, `
target_version: "5.15.4"
providers:
  qtbuild:
    excluded_modules: not-a-list
`)

	_, err := newProvider().Steps(cfg)
	assert.Error(t, err)
}
