// Package config reads the settings of the vkgraph binary from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vkgraph/src/render/native"
)

const (
	BackendFake   = "fake"
	BackendVulkan = "vulkan"

	DumpYAML = "yaml"
	DumpNone = "none"
)

// ValidationLayer is enabled on the instance when Validation is set.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// Config holds every VKGRAPH_* variable.
type Config struct {
	Backend     string `env:"VKGRAPH_BACKEND,default=fake"`
	AppName     string `env:"VKGRAPH_APP_NAME,default=vkgraph"`
	APIVersion  string `env:"VKGRAPH_API_VERSION,default=1.2"`
	Validation  bool   `env:"VKGRAPH_VALIDATION,default=false"`
	LogLevel    string `env:"VKGRAPH_LOG_LEVEL,default=info"`
	LogDev      bool   `env:"VKGRAPH_LOG_DEV,default=false"`
	MetricsAddr string `env:"VKGRAPH_METRICS_ADDR"`
	Dump        string `env:"VKGRAPH_DUMP,default=yaml"`
}

// Default returns the values Load produces with an empty environment.
func Default() Config {
	return Config{
		Backend:    BackendFake,
		AppName:    "vkgraph",
		APIVersion: "1.2",
		LogLevel:   "info",
		Dump:       DumpYAML,
	}
}

// Load reads envFile (if not empty) into the process environment and then
// decodes the configuration from it. Variables already set in the
// environment win over the file. The result is not validated: apply any
// overrides first, then call Validate.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

var apiVersions = map[string]native.ApiVersion{
	"1.0": native.ApiVersion10,
	"1.1": native.ApiVersion11,
	"1.2": native.ApiVersion12,
	"1.3": native.ApiVersion13,
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFake, BackendVulkan:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	switch c.Dump {
	case DumpYAML, DumpNone:
	default:
		return fmt.Errorf("config: unknown dump format %q", c.Dump)
	}
	if _, ok := apiVersions[c.APIVersion]; !ok {
		return fmt.Errorf("config: unsupported api version %q", c.APIVersion)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	return nil
}

// Version returns the parsed API version. Validate must have passed.
func (c Config) Version() native.ApiVersion {
	return apiVersions[c.APIVersion]
}

// Layers returns the instance layers the configuration asks for.
func (c Config) Layers() []string {
	if c.Validation {
		return []string{ValidationLayer}
	}
	return nil
}

// Logger builds the zap logger described by LogLevel and LogDev.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.LogDev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
