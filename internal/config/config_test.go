package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/dirsize/internal/diskusage"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 0, cfg.Output.Top)
	assert.True(t, cfg.Output.Progress)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, diskusage.DefaultProgressInterval, cfg.Scan.ProgressInterval)
	assert.False(t, cfg.Scan.FollowSymlinks)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirsize.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scan:
  workers: 3
  follow_symlinks: true
  timeout: 90s
  excludes:
    - "\\.git/"
output:
  format: JSON
  top: 5
log:
  level: debug
  json: true
`), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.True(t, cfg.Scan.FollowSymlinks)
	assert.Equal(t, 90*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, []string{`\.git/`}, cfg.Scan.Excludes)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Output.Top)
	assert.True(t, cfg.Log.JSON)

	opts := cfg.Options(nil)
	assert.Equal(t, 3, opts.Workers)
	assert.True(t, opts.FollowSymlinks)
	assert.Equal(t, 90*time.Second, opts.Timeout)
	assert.Equal(t, []string{`\.git/`}, opts.Excludes)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DIRSIZE_SCAN_WALK_WORKERS", "7")
	t.Setenv("DIRSIZE_OUTPUT_FORMAT", "json")

	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Scan.WalkWorkers)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Output: OutputConfig{Format: "table"},
			Log:    LogConfig{Level: "info"},
		}
	}

	tests := map[string]func(*Config){
		"unknown format":   func(c *Config) { c.Output.Format = "xml" },
		"negative top":     func(c *Config) { c.Output.Top = -1 },
		"negative workers": func(c *Config) { c.Scan.Workers = -2 },
		"negative timeout": func(c *Config) { c.Scan.Timeout = -time.Second },
		"bad log level":    func(c *Config) { c.Log.Level = "loud" },
	}

	require.NoError(t, valid().Validate())

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "debug", JSON: true}}

	logger := cfg.NewLogger()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.Log.JSON = false
	assert.IsType(t, &logrus.TextFormatter{}, cfg.NewLogger().Formatter)
}
