package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfg = nil
	configPathOverride = ""
	t.Cleanup(func() {
		viper.Reset()
		cfg = nil
		configPathOverride = ""
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wayseat.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetWithoutInitReturnsDefaults(t *testing.T) {
	resetConfig(t)

	c := Get()
	assert.Equal(t, 1.5, c.Input.AxisSmoothing)
	assert.Equal(t, 8.0, c.Input.AxisSensitivity)
	assert.Equal(t, 1.0, c.Input.ScaleX)
	assert.Equal(t, 1.0, c.Input.ScaleY)
	assert.Equal(t, "", c.Logging.LogLevel)
}

func TestInitWithoutConfigFileUsesDefaults(t *testing.T) {
	resetConfig(t)
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, Init())
	assert.Equal(t, DefaultConfig, *Get())
}

func TestInitReadsConfigFile(t *testing.T) {
	resetConfig(t)
	SetConfigPath(writeConfigFile(t, `
[input]
axis_smoothing = 3.0
scale_x = 2.0

[logging]
log_level = "debug"
`))

	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, 3.0, c.Input.AxisSmoothing)
	assert.Equal(t, 8.0, c.Input.AxisSensitivity) // untouched keys keep defaults
	assert.Equal(t, 2.0, c.Input.ScaleX)
	assert.Equal(t, 1.0, c.Input.ScaleY)
	assert.Equal(t, "debug", c.Logging.LogLevel)
}

func TestInitRejectsMalformedConfig(t *testing.T) {
	resetConfig(t)
	SetConfigPath(writeConfigFile(t, "not [valid toml"))

	assert.Error(t, Init())
}

func TestInitClampsNonPositiveTuning(t *testing.T) {
	resetConfig(t)
	SetConfigPath(writeConfigFile(t, `
[input]
axis_smoothing = -1.0
axis_sensitivity = 0.0
`))

	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, 1.5, c.Input.AxisSmoothing)
	assert.Equal(t, 8.0, c.Input.AxisSensitivity)
}
