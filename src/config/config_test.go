package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
)

var allVars = []string{
	"VKGRAPH_BACKEND", "VKGRAPH_APP_NAME", "VKGRAPH_API_VERSION", "VKGRAPH_VALIDATION",
	"VKGRAPH_LOG_LEVEL", "VKGRAPH_LOG_DEV", "VKGRAPH_METRICS_ADDR", "VKGRAPH_DUMP",
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, native.ApiVersion12, cfg.Version())
	require.Nil(t, cfg.Layers())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VKGRAPH_BACKEND", "vulkan")
	t.Setenv("VKGRAPH_API_VERSION", "1.3")
	t.Setenv("VKGRAPH_VALIDATION", "true")
	t.Setenv("VKGRAPH_METRICS_ADDR", ":9090")
	t.Setenv("VKGRAPH_DUMP", "none")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, BackendVulkan, cfg.Backend)
	require.Equal(t, native.ApiVersion13, cfg.Version())
	require.Equal(t, []string{ValidationLayer}, cfg.Layers())
	require.Equal(t, ":9090", cfg.MetricsAddr)
	require.Equal(t, DumpNone, cfg.Dump)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("VKGRAPH_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("VKGRAPH_APP_NAME=demo\nVKGRAPH_LOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "demo", cfg.AppName)
	require.Equal(t, "warn", cfg.LogLevel, "the environment wins over the file")

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	clearEnv(t)
	t.Setenv("VKGRAPH_BACKEND", "metal")
	t.Setenv("VKGRAPH_DUMP", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	// Command-line overrides applied after Load can still fix the values.
	cfg.Backend = BackendFake
	cfg.Dump = DumpNone
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"backend", func(c *Config) { c.Backend = "metal" }, false},
		{"dump", func(c *Config) { c.Dump = "json" }, false},
		{"api version", func(c *Config) { c.APIVersion = "2.0" }, false},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.LogDev = true
	l, err := cfg.Logger()
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(-1))
}
