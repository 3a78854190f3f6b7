// Package toolconfig holds svxconf's own settings, as opposed to the
// svxlink configuration it manages. The settings file is itself INI, read
// with the same store the document layer uses.
package toolconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/ini.v1"

	"github.com/svxtools/svxconf/pkg/logger"
)

const (
	// DefaultConfigPath is the default path for svxconf's own config
	DefaultConfigPath = "/etc/svxconf/svxconf.conf"

	DefaultSvxlinkConf     = "/etc/svxlink/svxlink.conf"
	DefaultBackupDir       = "/var/lib/svxconf/backups"
	DefaultProbeTimeoutSec = 3
	DefaultAPIPort         = 8777
	DefaultEnableCORS      = false
	DefaultGlobalRateLimit = 120
	DefaultGlobalBurst     = 30
)

// Config represents svxconf's configuration
type Config struct {
	General   GeneralConfig
	Probe     ProbeConfig
	API       APIConfig
	RateLimit RateLimitConfig
}

// GeneralConfig locates the managed file and the backup store
type GeneralConfig struct {
	SvxlinkConf string `ini:"svxlink_conf"`
	BackupDir   string `ini:"backup_dir"`
}

// ProbeConfig tunes the node reachability probe
type ProbeConfig struct {
	TimeoutSeconds int `ini:"timeout_seconds"`
}

// Timeout returns the probe timeout as a duration.
func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// APIConfig contains API server configuration
type APIConfig struct {
	Port           int      `ini:"port"`
	EnableCORS     bool     `ini:"enable_cors"`
	AllowedOrigins []string `ini:"allowed_origins"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	RequestsPerMinute int `ini:"requests_per_minute"`
	Burst             int `ini:"burst"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			SvxlinkConf: DefaultSvxlinkConf,
			BackupDir:   DefaultBackupDir,
		},
		Probe: ProbeConfig{
			TimeoutSeconds: DefaultProbeTimeoutSec,
		},
		API: APIConfig{
			Port:       DefaultAPIPort,
			EnableCORS: DefaultEnableCORS,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: DefaultGlobalRateLimit,
			Burst:             DefaultGlobalBurst,
		},
	}
}

// Load loads svxconf configuration from an INI file. A missing file is not
// an error; defaults are used, matching how the rest of the tool treats
// optional settings.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		logger.Warn("svxconf config not found, using defaults", "path", path)
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if err := f.Section("general").MapTo(&cfg.General); err != nil {
		return nil, fmt.Errorf("invalid [general] section: %w", err)
	}
	if err := f.Section("probe").MapTo(&cfg.Probe); err != nil {
		return nil, fmt.Errorf("invalid [probe] section: %w", err)
	}
	if err := f.Section("api").MapTo(&cfg.API); err != nil {
		return nil, fmt.Errorf("invalid [api] section: %w", err)
	}
	if err := f.Section("ratelimit").MapTo(&cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("invalid [ratelimit] section: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for sanity
func (c *Config) Validate() error {
	if c.General.SvxlinkConf == "" {
		return fmt.Errorf("svxlink_conf must not be empty")
	}
	if c.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("probe timeout_seconds must be positive, got %d", c.Probe.TimeoutSeconds)
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api port must be in 1-65535, got %d", c.API.Port)
	}
	if c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}
