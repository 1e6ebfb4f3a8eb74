// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/sentinel/internal/core"
)

// Backend names accepted by capture.backend.
const (
	BackendAuto     = "auto"
	BackendAFPacket = "afpacket"
	BackendPcap     = "pcap"
	BackendFile     = "file"
)

// Snap length bounds accepted by capture.snap_len.
const (
	MinSnapLen = 64
	MaxSnapLen = 262144
)

// GlobalConfig represents the top-level configuration.
// Maps to the `sentinel:` root key in YAML.
type GlobalConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Capture CaptureConfig `mapstructure:"capture"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level      string           `mapstructure:"level"` // trace / debug / info / warn / error
	Pattern    string           `mapstructure:"pattern"`
	TimeFormat string           `mapstructure:"time_format"`
	File       FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures rotating file log output.
type FileOutputConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// ─── Capture ───

// CaptureConfig configures interface selection and the capture channel.
type CaptureConfig struct {
	Backend     string          `mapstructure:"backend"`   // auto | afpacket | pcap | file
	Interface   string          `mapstructure:"interface"` // empty = relaxed auto-selection
	FilePath    string          `mapstructure:"file_path"` // required for backend=file
	SnapLen     int             `mapstructure:"snap_len"`
	PollTimeout time.Duration   `mapstructure:"poll_timeout"`
	Timeout     time.Duration   `mapstructure:"timeout"` // 0 = unbounded
	ReadRetry   ReadRetryConfig `mapstructure:"read_retry"`
}

// ReadRetryConfig bounds retries of failed reads.
type ReadRetryConfig struct {
	MaxConsecutive int           `mapstructure:"max_consecutive"` // 0 = unlimited
	Backoff        time.Duration `mapstructure:"backoff"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `sentinel: ...`.
type configRoot struct {
	Sentinel GlobalConfig `mapstructure:"sentinel"`
}

// Load loads configuration from file. An empty path yields defaults plus
// environment overrides. Env vars use the SENTINEL_ prefix, e.g.
// SENTINEL_CAPTURE_BACKEND.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// key "sentinel.capture.backend" -> env "SENTINEL_CAPTURE_BACKEND"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Sentinel

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
// All keys use the "sentinel." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("sentinel.log.level", "info")
	v.SetDefault("sentinel.log.pattern", "%time [%level] %msg %field")
	v.SetDefault("sentinel.log.time_format", "2006-01-02 15:04:05")
	v.SetDefault("sentinel.log.file.enabled", false)
	v.SetDefault("sentinel.log.file.path", "/var/log/sentinel/sentinel.log")
	v.SetDefault("sentinel.log.file.max_size_mb", 100)
	v.SetDefault("sentinel.log.file.max_age_days", 30)
	v.SetDefault("sentinel.log.file.max_backups", 5)
	v.SetDefault("sentinel.log.file.compress", true)

	// Capture defaults
	v.SetDefault("sentinel.capture.backend", BackendAuto)
	v.SetDefault("sentinel.capture.interface", "")
	v.SetDefault("sentinel.capture.file_path", "")
	v.SetDefault("sentinel.capture.snap_len", 65535)
	v.SetDefault("sentinel.capture.poll_timeout", "100ms")
	v.SetDefault("sentinel.capture.timeout", "0s")
	v.SetDefault("sentinel.capture.read_retry.max_consecutive", 0)
	v.SetDefault("sentinel.capture.read_retry.backoff", "5ms")

	// Metrics defaults
	v.SetDefault("sentinel.metrics.enabled", false)
	v.SetDefault("sentinel.metrics.listen", ":9091")
	v.SetDefault("sentinel.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and resolves runtime defaults.
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: log level %q (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Path == "" {
		return fmt.Errorf("%w: log.file.path is required when log.file.enabled=true", core.ErrConfigInvalid)
	}

	// ── Capture validation ──
	c := &cfg.Capture
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendAuto:
		if c.FilePath != "" {
			c.Backend = BackendFile
		} else {
			c.Backend = ResolveAutoBackend()
		}
	case BackendAFPacket, BackendPcap, BackendFile:
	default:
		return fmt.Errorf("%w: capture.backend %q (must be auto/afpacket/pcap/file)", core.ErrConfigInvalid, c.Backend)
	}
	if c.Backend == BackendFile && c.FilePath == "" {
		return fmt.Errorf("%w: capture.file_path is required when capture.backend=file", core.ErrConfigInvalid)
	}
	if c.SnapLen < MinSnapLen || c.SnapLen > MaxSnapLen {
		return fmt.Errorf("%w: capture.snap_len %d out of range [%d, %d]", core.ErrConfigInvalid, c.SnapLen, MinSnapLen, MaxSnapLen)
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("%w: capture.poll_timeout must be positive", core.ErrConfigInvalid)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: capture.timeout must not be negative", core.ErrConfigInvalid)
	}
	if c.ReadRetry.MaxConsecutive < 0 {
		return fmt.Errorf("%w: capture.read_retry.max_consecutive must not be negative", core.ErrConfigInvalid)
	}
	if c.ReadRetry.Backoff < 0 {
		return fmt.Errorf("%w: capture.read_retry.backoff must not be negative", core.ErrConfigInvalid)
	}

	// ── Metrics ──
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
	}

	return nil
}

// ResolveAutoBackend picks the native backend for the running platform.
func ResolveAutoBackend() string {
	if runtime.GOOS == "linux" {
		return BackendAFPacket
	}
	return BackendPcap
}
