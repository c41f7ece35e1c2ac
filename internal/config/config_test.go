package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/curator/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081", cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, domain.StatusPending, cfg.DefaultStatus())
	assert.False(t, cfg.Dashboard.AutoRefresh)
	assert.True(t, cfg.Dashboard.ConfirmActions)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
api:
  url: http://curator.lan:9000/
  timeout: 5s
dashboard:
  default_status: Approved
  auto_refresh: true
  confirm_actions: false
  open_command: transmission-remote
  open_args: ["-a"]
logging:
  level: debug
`)

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://curator.lan:9000", cfg.API.URL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, domain.StatusApproved, cfg.DefaultStatus())
	assert.True(t, cfg.Dashboard.AutoRefresh)
	assert.False(t, cfg.Dashboard.ConfirmActions)
	assert.Equal(t, "transmission-remote", cfg.Dashboard.OpenCommand)
	assert.Equal(t, []string{"-a"}, cfg.Dashboard.OpenArgs)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB, "unset keys keep defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api:\n  url: http://from-file:8081\n")
	t.Setenv("CURATOR_API_URL", "http://from-env:8081")
	t.Setenv("CURATOR_DASHBOARD_AUTO_REFRESH", "true")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8081", cfg.API.URL)
	assert.True(t, cfg.Dashboard.AutoRefresh)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.API.URL = " " }, wantErr: true},
		{name: "url without scheme", mutate: func(c *Config) { c.API.URL = "localhost:8081" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "unknown status", mutate: func(c *Config) { c.Dashboard.DefaultStatus = "queued" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.API.URL = "http://saved:1234"
	cfg.Dashboard.DefaultStatus = "rejected"

	path, err := SaveConfig(viper.New(), cfg, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	loaded, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved:1234", loaded.API.URL)
	assert.Equal(t, domain.StatusRejected, loaded.DefaultStatus())
	assert.Equal(t, cfg.API.Timeout, loaded.API.Timeout)
}
