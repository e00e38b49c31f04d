// Package config loads tsedit settings from .tsedit.yaml, TSEDIT_* variables
// and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidMaxSize     = errors.New("invalid max file size")
	ErrInvalidCacheSize   = errors.New("invalid parse cache size")
	ErrNoIncludePatterns  = errors.New("files.include is empty")
	ErrInvalidPattern     = errors.New("invalid glob pattern")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
)

// Config holds all tsedit configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Files     FilesConfig     `mapstructure:"files"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// FilesConfig selects the files commands operate on.
type FilesConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
	MaxSize string   `mapstructure:"max_size"`
}

// CacheConfig sizes the parse cache.
type CacheConfig struct {
	MaxSize string `mapstructure:"max_size"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string  `mapstructure:"otlp_headers"`
	PrometheusAddr string  `mapstructure:"prometheus_addr"`
	Environment    string  `mapstructure:"environment"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"`
	DebugTrace     bool    `mapstructure:"debug_trace"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}

	if _, err := c.Files.MaxSizeBytes(); err != nil {
		return err
	}

	if _, err := c.Cache.MaxSizeBytes(); err != nil {
		return err
	}

	if len(c.Files.Include) == 0 {
		return ErrNoIncludePatterns
	}

	for _, pattern := range append(append([]string{}, c.Files.Include...), c.Files.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// MaxSizeBytes parses MaxSize, e.g. "1 MiB" or "500kB".
func (f FilesConfig) MaxSizeBytes() (int64, error) {
	size, err := humanize.ParseBytes(f.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxSize, f.MaxSize)
	}

	return int64(size), nil //nolint:gosec // sizes beyond MaxInt64 are not meaningful
}

// MaxSizeBytes parses MaxSize. Empty means the cache default.
func (c CacheConfig) MaxSizeBytes() (int64, error) {
	if c.MaxSize == "" {
		return 0, nil
	}

	size, err := humanize.ParseBytes(c.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCacheSize, c.MaxSize)
	}

	return int64(size), nil //nolint:gosec // sizes beyond MaxInt64 are not meaningful
}

// Observability converts the log and telemetry settings for mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()

	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.Environment = c.Telemetry.Environment
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	cfg.Prometheus = c.Telemetry.PrometheusAddr != ""
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.DebugTrace = c.Telemetry.DebugTrace
	cfg.LogJSON = c.Log.JSON

	if level, err := c.Log.SlogLevel(); err == nil {
		cfg.LogLevel = level
	}

	return cfg
}
