package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/core"
	"github.com/cbabos/VulkanGameEngineExperiment/engine/renderer"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultApplicationConfigIsValid(t *testing.T) {
	config := DefaultApplicationConfig()
	require.NoError(t, config.Validate())

	kind, err := config.RendererType()
	require.NoError(t, err)
	assert.Equal(t, renderer.Vulkan, kind)

	backend, err := config.BackendConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, backend.FenceTimeout)
	assert.Equal(t, config.Window.Name, backend.ApplicationName)
}

func TestLoadApplicationConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
name = "Test Planet"
width = 640
height = 480

[log]
level = "debug"

[renderer]
backend = "headless"
validation = false
fence_timeout = "250ms"
clear_color = [0.1, 0.2, 0.3, 1.0]
`)
	config, err := LoadApplicationConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Test Planet", config.Window.Name)
	assert.Equal(t, uint32(640), config.Window.Width)
	assert.Equal(t, uint32(100), config.Window.X, "unset keys keep their defaults")

	level, err := config.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, core.DebugLevel, level)

	kind, err := config.RendererType()
	require.NoError(t, err)
	assert.Equal(t, renderer.Headless, kind)

	backend, err := config.BackendConfig()
	require.NoError(t, err)
	assert.False(t, backend.Validation)
	assert.True(t, backend.PreferMailbox)
	assert.Equal(t, 250*time.Millisecond, backend.FenceTimeout)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, backend.ClearColor)
	assert.Equal(t, "assets/shaders", backend.ShaderDir)
}

func TestLoadApplicationConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadApplicationConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), config)
}

func TestLoadApplicationConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown backend", "[renderer]\nbackend = \"opengl\"\n"},
		{"bad timeout", "[renderer]\nfence_timeout = \"soon\"\n"},
		{"negative timeout", "[renderer]\nfence_timeout = \"-1s\"\n"},
		{"zero window", "[window]\nwidth = 0\n"},
		{"bad log level", "[log]\nlevel = \"chatty\"\n"},
		{"not toml", "[window\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadApplicationConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
