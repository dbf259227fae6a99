// ABOUTME: Configuration management for threadlink with YAML config loading.
// ABOUTME: Handles the data directory, log level, display width, env overrides, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDataDir  = "THREADLINK_DATA_DIR"
	EnvLogLevel = "THREADLINK_LOG_LEVEL"
	EnvWidth    = "THREADLINK_WIDTH"
)

const (
	defaultLogLevel = "info"
	defaultWidth    = 100
	minWidth        = 20
)

// Config stores threadlink configuration loaded from ~/.config/threadlink/config.yaml.
type Config struct {
	DataDir string        `yaml:"data_dir,omitempty"`
	Log     LogConfig     `yaml:"log"`
	Display DisplayConfig `yaml:"display"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// DisplayConfig holds terminal display settings.
type DisplayConfig struct {
	Width int `yaml:"width,omitempty"`
}

// GetDataDir returns the snapshot and like-store root. THREADLINK_DATA_DIR
// wins over data_dir, which wins over $XDG_DATA_HOME/threadlink.
func (c *Config) GetDataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return ExpandPath(dir)
	}
	if c.DataDir != "" {
		return ExpandPath(c.DataDir)
	}
	return DefaultDataDir()
}

// GetLogLevel returns the configured log level, honoring THREADLINK_LOG_LEVEL.
func (c *Config) GetLogLevel() (logrus.Level, error) {
	raw := os.Getenv(EnvLogLevel)
	if raw == "" {
		raw = c.Log.Level
	}
	if raw == "" {
		raw = defaultLogLevel
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// GetWidth returns the display wrap width, honoring THREADLINK_WIDTH.
// Values below the minimum fall back to the default.
func (c *Config) GetWidth() int {
	width := c.Display.Width
	if raw := os.Getenv(EnvWidth); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			width = n
		}
	}
	if width < minWidth {
		return defaultWidth
	}
	return width
}

// DefaultDataDir returns $XDG_DATA_HOME/threadlink, defaulting to ~/.local/share/threadlink.
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "threadlink"), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "threadlink", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
