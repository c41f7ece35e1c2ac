package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/curator/internal/domain"
)

// EnvPrefix is prepended to every environment override (CURATOR_API_URL)
const EnvPrefix = "CURATOR"

// Config holds all application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// APIConfig holds the curator backend connection
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DashboardConfig holds console behaviour
type DashboardConfig struct {
	DefaultStatus  string `mapstructure:"default_status"`
	AutoRefresh    bool   `mapstructure:"auto_refresh"`
	ConfirmActions bool   `mapstructure:"confirm_actions"`

	// Program that opens torrent links; empty uses the system handler
	OpenCommand string   `mapstructure:"open_command"`
	OpenArgs    []string `mapstructure:"open_args"`
}

// StorageConfig holds the preferences/history database location
type StorageConfig struct {
	Dir string `mapstructure:"dir"` // empty = memory only
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8081",
			Timeout: 30 * time.Second,
		},
		Dashboard: DashboardConfig{
			DefaultStatus:  string(domain.StatusPending),
			AutoRefresh:    false,
			ConfirmActions: true,
		},
		Storage: StorageConfig{
			Dir: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "curator.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "curator")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "curator")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "curator")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "curator")
	}
}

// Load reads configuration from file and environment. An explicit path must
// exist; otherwise config.yaml is looked up in the default directory and the
// working directory, and a missing file means defaults.
func Load(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// are absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.url", cfg.API.URL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("dashboard.default_status", cfg.Dashboard.DefaultStatus)
	v.SetDefault("dashboard.auto_refresh", cfg.Dashboard.AutoRefresh)
	v.SetDefault("dashboard.confirm_actions", cfg.Dashboard.ConfirmActions)
	v.SetDefault("dashboard.open_command", cfg.Dashboard.OpenCommand)
	v.SetDefault("dashboard.open_args", cfg.Dashboard.OpenArgs)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("api.url must start with http:// or https://: %q", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if _, err := domain.ParseStatus(c.Dashboard.DefaultStatus); err != nil {
		return fmt.Errorf("dashboard.default_status: %w", err)
	}
	return nil
}

// DefaultStatus returns the parsed dashboard.default_status
func (c *Config) DefaultStatus() domain.Status {
	s, err := domain.ParseStatus(c.Dashboard.DefaultStatus)
	if err != nil {
		return domain.StatusPending
	}
	return s
}

// SaveConfig writes the configuration to config.yaml in dir
func SaveConfig(v *viper.Viper, cfg *Config, dir string) (string, error) {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v.Set("api.url", cfg.API.URL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("dashboard.default_status", cfg.Dashboard.DefaultStatus)
	v.Set("dashboard.auto_refresh", cfg.Dashboard.AutoRefresh)
	v.Set("dashboard.confirm_actions", cfg.Dashboard.ConfirmActions)
	v.Set("dashboard.open_command", cfg.Dashboard.OpenCommand)
	v.Set("dashboard.open_args", cfg.Dashboard.OpenArgs)
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}
