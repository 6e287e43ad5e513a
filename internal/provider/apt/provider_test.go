package apt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/orinup/internal/domain/config"
	"github.com/mvaldez/orinup/internal/provider/apt"
	"github.com/mvaldez/orinup/internal/testutil/mocks"
)

func configWithSection(t *testing.T, yaml string) config.RunConfig {
	t.Helper()
	cfg, err := config.NewLoader().Parse([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

func TestProvider_Steps(t *testing.T) {
	t.Parallel()

	cfg := configWithSection(t, `
providers:
  apt:
    packages:
      - build-essential
      - name: qtbase5-dev
        version: "5.15.3-1"
`)

	provider := apt.NewProvider(mocks.NewCommandRunner())
	steps, err := provider.Steps(cfg)

	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "apt:install:build-essential", steps[0].ID().String())
	assert.Equal(t, "apt:install:qtbase5-dev", steps[1].ID().String())
}

func TestProvider_Steps_SkipDeps(t *testing.T) {
	t.Parallel()

	cfg := configWithSection(t, `
providers:
  apt:
    packages: [build-essential]
`).WithSkipDeps(true)

	provider := apt.NewProvider(mocks.NewCommandRunner())
	steps, err := provider.Steps(cfg)

	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestProvider_Steps_NoSection(t *testing.T) {
	t.Parallel()

	provider := apt.NewProvider(mocks.NewCommandRunner())
	steps, err := provider.Steps(config.NewRunConfig())

	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestProvider_Steps_BadSection(t *testing.T) {
	t.Parallel()

	cfg := configWithSection(t, `
providers:
  apt:
    packages: not-a-list
`)

	provider := apt.NewProvider(mocks.NewCommandRunner())
	_, err := provider.Steps(cfg)

	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeSectionInvalid))
}

func TestProvider_Steps_PackageWithoutName(t *testing.T) {
	t.Parallel()

	cfg := configWithSection(t, `
providers:
  apt:
    packages:
      - version: "5.15.3-1"
`)

	provider := apt.NewProvider(mocks.NewCommandRunner())
	_, err := provider.Steps(cfg)

	require.Error(t, err)
	assert.True(t, config.IsUserError(err, config.ErrCodeSectionInvalid))
}
