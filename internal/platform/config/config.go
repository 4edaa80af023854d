// Package config loads fraccalc configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jsamuelsen/fraccalc/internal/platform/logging"
	"github.com/jsamuelsen/fraccalc/internal/platform/telemetry"
)

// Default configuration values.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 16

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	DefaultPrompt           = "? "
	DefaultHistorySize      = 100
	DefaultBatchLimit       = 100
	DefaultBatchConcurrency = 4
	DefaultMaxInputLength   = 256
	DefaultDecimalPlaces    = 6

	DefaultRemoteRetryMaxAttempts     = 3
	DefaultRemoteRetryMultiplier      = 2.0
	DefaultRemoteRetryJitterFactor    = 0.25
	DefaultRemoteCircuitMaxFailures   = 5
	DefaultRemoteCircuitHalfOpenLimit = 1

	// DefaultDir is where Load looks for YAML files.
	DefaultDir = "configs"

	envPrefix = "APP_"
)

// Config is the root configuration structure.
type Config struct {
	App        AppConfig        `koanf:"app"        validate:"required"`
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Log        LogConfig        `koanf:"log"        validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Calculator CalculatorConfig `koanf:"calculator" validate:"required"`
	Remote     RemoteConfig     `koanf:"remote"     validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings used by the serve command.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=10ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true"`
	Insecure     bool    `koanf:"insecure"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// CalculatorConfig contains evaluator and REPL settings.
type CalculatorConfig struct {
	// Prompt is printed before each REPL line; "" disables it.
	Prompt           string `koanf:"prompt"`
	HistorySize      int    `koanf:"history_size"      validate:"required,min=1,max=100000"`
	BatchLimit       int    `koanf:"batch_limit"       validate:"required,min=1,max=10000"`
	BatchConcurrency int    `koanf:"batch_concurrency" validate:"required,min=1,max=256"`
	MaxInputLength   int    `koanf:"max_input_length"  validate:"required,min=8,max=65536"`
	DecimalPlaces    int32  `koanf:"decimal_places"    validate:"min=0,max=18"`
}

// RemoteConfig configures the client used when the CLI evaluates against a
// running fraccalc service instead of in process.
type RemoteConfig struct {
	// URL of the service; empty evaluates locally.
	URL            string               `koanf:"url"             validate:"omitempty,http_url"`
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
}

// RetryConfig contains retry settings for the remote client.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig contains circuit breaker settings for the remote
// client.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "fraccalc",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "127.0.0.1",
		"server.read_timeout":     "10s",
		"server.write_timeout":    "10s",
		"server.idle_timeout":     "60s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "5s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "pretty",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/fraccalc.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.insecure":      false,
		"telemetry.service_name":  "fraccalc",
		"telemetry.sampling_rate": 1.0,

		"calculator.prompt":            DefaultPrompt,
		"calculator.history_size":      DefaultHistorySize,
		"calculator.batch_limit":       DefaultBatchLimit,
		"calculator.batch_concurrency": DefaultBatchConcurrency,
		"calculator.max_input_length":  DefaultMaxInputLength,
		"calculator.decimal_places":    DefaultDecimalPlaces,

		"remote.url":                             "",
		"remote.timeout":                         "5s",
		"remote.retry.max_attempts":              DefaultRemoteRetryMaxAttempts,
		"remote.retry.initial_interval":          "100ms",
		"remote.retry.max_interval":              "2s",
		"remote.retry.multiplier":                DefaultRemoteRetryMultiplier,
		"remote.retry.jitter_factor":             DefaultRemoteRetryJitterFactor,
		"remote.circuit_breaker.max_failures":    DefaultRemoteCircuitMaxFailures,
		"remote.circuit_breaker.timeout":         "30s",
		"remote.circuit_breaker.half_open_limit": DefaultRemoteCircuitHalfOpenLimit,
	}
}

// Load loads configuration from DefaultDir. See LoadFrom.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultDir, profile)
}

// LoadFrom loads configuration with the following precedence (highest to
// lowest):
//  1. Environment variables (APP_ prefix, "__" separates sections:
//     APP_CALCULATOR__HISTORY_SIZE)
//  2. Profile config file (<dir>/<profile>.yaml)
//  3. Base config file (<dir>/base.yaml)
//  4. Default values
//
// Missing files are skipped.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := loadFileIfExists(k, filepath.Join(dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_LOG__FILE__MAX_SIZE to log.file.max_size.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}

// Logging converts the log section for logging.New.
func (c *Config) Logging() *logging.Config {
	return &logging.Config{
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		Service: c.App.Name,
		Version: c.App.Version,
		File: logging.FileConfig{
			Enabled:    c.Log.File.Enabled,
			Path:       c.Log.File.Path,
			MaxSizeMB:  c.Log.File.MaxSizeMB,
			MaxBackups: c.Log.File.MaxBackups,
			MaxAgeDays: c.Log.File.MaxAgeDays,
			Compress:   c.Log.File.Compress,
		},
	}
}

// Tracing converts the telemetry section for telemetry.New.
func (c *Config) Tracing() *telemetry.Config {
	return &telemetry.Config{
		Enabled:      c.Telemetry.Enabled,
		Endpoint:     c.Telemetry.Endpoint,
		Insecure:     c.Telemetry.Insecure,
		ServiceName:  c.Telemetry.ServiceName,
		Version:      c.App.Version,
		Environment:  c.App.Environment,
		SamplingRate: c.Telemetry.SamplingRate,
	}
}

// Addr returns the server listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
