// ABOUTME: medtrack configuration: JSON file, MEDTRACK_ environment overrides, and defaults.
// ABOUTME: Loaded through viper; also owns the XDG data and config paths.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	appName   = "medtrack"
	envPrefix = "MEDTRACK"
)

// Config stores medtrack configuration.
type Config struct {
	// Server
	ListenAddr    string `mapstructure:"listen_addr"`
	DataDir       string `mapstructure:"data_dir"`
	APIKey        string `mapstructure:"api_key"`
	AllowedOrigin string `mapstructure:"allowed_origin"`

	// Client
	ServerURL   string        `mapstructure:"server_url"`
	Debounce    time.Duration `mapstructure:"debounce"`
	SavingHold  time.Duration `mapstructure:"saving_hold"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	// Side-effect lookup
	FDABaseURL   string        `mapstructure:"fda_base_url"`
	CacheBackend string        `mapstructure:"cache_backend"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	RedisAddr    string        `mapstructure:"redis_addr"`

	// Legacy cache migration
	LegacyBackend string `mapstructure:"legacy_backend"`
	LegacyDir     string `mapstructure:"legacy_dir"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"listen_addr":    ":8787",
	"data_dir":       "",
	"api_key":        "",
	"allowed_origin": "http://localhost:3000",
	"server_url":     "http://localhost:8787",
	"debounce":       "1s",
	"saving_hold":    "500ms",
	"http_timeout":   "10s",
	"fda_base_url":   "https://api.fda.gov",
	"cache_backend":  "sqlite",
	"cache_ttl":      "24h",
	"redis_addr":     "",
	"legacy_backend": "badger",
	"legacy_dir":     "",
	"log_level":      "info",
	"log_format":     "json",
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, appName, "config.json")
}

// DefaultDataDir returns the XDG data directory for medtrack.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// Load reads the default config file, if any, and the environment.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads the JSON config file at path. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
		// Bind env vars explicitly so Unmarshal picks them up
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return DefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// DataFile returns the path of the server's patient document.
func (c *Config) DataFile() string {
	return filepath.Join(c.GetDataDir(), "patient-data.json")
}

// GetLegacyDir returns the local Badger directory of the legacy cache.
func (c *Config) GetLegacyDir() string {
	if c.LegacyDir == "" {
		return filepath.Join(c.GetDataDir(), "legacy")
	}
	return ExpandPath(c.LegacyDir)
}

// Validate checks values shared by every command.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "sqlite", "none":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("cache_backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache_backend: %q", c.CacheBackend)
	}

	switch c.LegacyBackend {
	case "badger", "charm", "none":
	default:
		return fmt.Errorf("unknown legacy_backend: %q", c.LegacyBackend)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log_format: %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.Debounce < 0 || c.SavingHold < 0 || c.CacheTTL < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// ValidateServe additionally requires what the document server needs.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api_key is required to serve (set MEDTRACK_API_KEY)")
	}
	if c.AllowedOrigin == "" {
		return fmt.Errorf("allowed_origin is required to serve")
	}
	return nil
}
