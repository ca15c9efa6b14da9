package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		path := writeConfig(t, `
logger:
  verbosity: info
compiler:
  cacheDir: /var/cache/tilejit
  toolchainPath: /usr/local/bin/tile-compile
backend:
  defaultWarps: 8
  defaultStages: 1
  npuDeviceID: 2
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "info", cfg.Logger.Verbosity)
		assert.Equal(t, "/var/cache/tilejit", cfg.Compiler.CacheDir)
		assert.Equal(t, "/usr/local/bin/tile-compile", cfg.Compiler.ToolchainPath)
		assert.Equal(t, 8, cfg.Backend.DefaultWarps)
		assert.Equal(t, 1, cfg.Backend.DefaultStages)
		assert.Equal(t, 2, cfg.Backend.NPUDeviceID)
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := LoadConfig("non-existent-file.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "logger: [unterminated")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestResolveNPUDeviceID(t *testing.T) {
	t.Run("falls back to config value", func(t *testing.T) {
		os.Unsetenv(NPUDeviceIDEnvVar)
		cfg := &Config{}
		cfg.Backend.NPUDeviceID = 3
		assert.Equal(t, 3, cfg.ResolveNPUDeviceID())
	})

	t.Run("env var overrides config", func(t *testing.T) {
		t.Setenv(NPUDeviceIDEnvVar, "5")
		cfg := &Config{}
		cfg.Backend.NPUDeviceID = 3
		assert.Equal(t, 5, cfg.ResolveNPUDeviceID())
	})

	t.Run("defaults to zero", func(t *testing.T) {
		os.Unsetenv(NPUDeviceIDEnvVar)
		cfg := &Config{}
		assert.Equal(t, 0, cfg.ResolveNPUDeviceID())
	})
}
