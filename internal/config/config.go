// Package config loads dirsize settings from flags, environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/idelchi/dirsize/internal/diskusage"
)

// EnvPrefix is the prefix of environment variables read by viper (DIRSIZE_SCAN_WORKERS, ...).
const EnvPrefix = "DIRSIZE"

// OutputFormats lists the accepted output formats.
//
//nolint:gochecknoglobals // Config constant
var OutputFormats = []string{"table", "json"}

// Config represents the application configuration.
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// ScanConfig contains engine settings.
type ScanConfig struct {
	Workers          int           `mapstructure:"workers"`
	WalkWorkers      int           `mapstructure:"walk_workers"`
	FollowSymlinks   bool          `mapstructure:"follow_symlinks"`
	Excludes         []string      `mapstructure:"excludes"`
	Timeout          time.Duration `mapstructure:"timeout"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
}

// OutputConfig contains presentation settings.
type OutputConfig struct {
	Format   string `mapstructure:"format"`
	Top      int    `mapstructure:"top"`
	Progress bool   `mapstructure:"progress"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scan.workers", 0)
	v.SetDefault("scan.walk_workers", 0)
	v.SetDefault("scan.follow_symlinks", false)
	v.SetDefault("scan.excludes", []string{})
	v.SetDefault("scan.timeout", time.Duration(0))
	v.SetDefault("scan.progress_interval", diskusage.DefaultProgressInterval)

	v.SetDefault("output.format", "table")
	v.SetDefault("output.top", 0)
	v.SetDefault("output.progress", true)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)
}

// BindEnv makes v read DIRSIZE_-prefixed environment variables, with "." mapped to "_".
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	cfg.Output.Format = strings.ToLower(cfg.Output.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q: must be one of %v", c.Output.Format, OutputFormats)
	}

	if c.Output.Top < 0 {
		return errors.New("top cannot be negative")
	}

	if c.Scan.Workers < 0 || c.Scan.WalkWorkers < 0 {
		return errors.New("worker counts cannot be negative")
	}

	if c.Scan.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// Options converts the scan settings to engine options.
func (c *Config) Options(logger logrus.FieldLogger) diskusage.Options {
	return diskusage.Options{
		Workers:          c.Scan.Workers,
		WalkWorkers:      c.Scan.WalkWorkers,
		FollowSymlinks:   c.Scan.FollowSymlinks,
		Excludes:         c.Scan.Excludes,
		Timeout:          c.Scan.Timeout,
		ProgressInterval: c.Scan.ProgressInterval,
		Logger:           logger,
	}
}

// NewLogger builds a logrus logger from the log settings.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	// Validate already rejected unparsable levels
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}

	logger.SetLevel(level)

	if c.Log.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
