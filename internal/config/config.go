// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, no code execution is possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Quality     string `toml:"quality"`
	DownloadDir string `toml:"download_dir"`
	History     bool   `toml:"history"`
	DatabaseDir string `toml:"database_dir"`
	Listen      string `toml:"listen"`
	LogFile     string `toml:"log_file"`
	LogMaxSize  int    `toml:"log_max_size"`
	LogBackups  int    `toml:"log_backups"`
	Debug       bool   `toml:"debug"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Quality:     "1080",
		DownloadDir: "~/Videos/tikrip",
		History:     true,
		Listen:      "127.0.0.1:8080",
		LogMaxSize:  20,
		LogBackups:  3,
		Debug:       false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tikrip"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tikrip"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validQualities := map[string]bool{
		"480": true, "540": true, "720": true, "1080": true,
	}
	if !validQualities[c.Quality] {
		return fmt.Errorf("unsupported quality %q (valid: 480, 540, 720, 1080)", c.Quality)
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	if c.LogMaxSize < 0 || c.LogBackups < 0 {
		return fmt.Errorf("log rotation values cannot be negative")
	}

	return nil
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// DatabasePath returns the path to the extraction history database.
// An explicit database_dir wins over the XDG data directory.
func (c *Config) DatabasePath() (string, error) {
	if c.DatabaseDir != "" {
		return filepath.Join(c.DatabaseDir, "history.db"), nil
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "tikrip", "history.db"), nil
}
