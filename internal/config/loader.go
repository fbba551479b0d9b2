// Package config loads focus settings from a YAML file and FOCUS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FOCUS_SYNC_DEBOUNCE.
const EnvPrefix = "FOCUS"

// Load reads the configuration. An explicit path must exist; with an empty
// path the default location is used when present and defaults otherwise.
// Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		file = DefaultPath()
	}
	if _, err := os.Stat(file); err == nil {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else if path != "" || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config %s: %w", file, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("database", d.Database)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("sync.api_url", d.Sync.APIURL)
	v.SetDefault("sync.filename", d.Sync.Filename)
	v.SetDefault("sync.debounce", d.Sync.Debounce)
	v.SetDefault("sync.timeout", d.Sync.Timeout)
	v.SetDefault("dashboard.host", d.Dashboard.Host)
	v.SetDefault("dashboard.port", d.Dashboard.Port)
	v.SetDefault("daemon.import_dir", d.Daemon.ImportDir)
	v.SetDefault("daemon.debounce", d.Daemon.Debounce)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}

// resolve expands ~ and fills paths derived from DataDir.
func (c *Config) resolve() error {
	var err error
	if c.DataDir, err = ExpandHome(c.DataDir); err != nil {
		return err
	}
	if c.Daemon.ImportDir == "" {
		c.Daemon.ImportDir = filepath.Join(c.DataDir, "inbox")
	} else if c.Daemon.ImportDir, err = ExpandHome(c.Daemon.ImportDir); err != nil {
		return err
	}
	if c.Log.File != "" {
		if c.Log.File, err = ExpandHome(c.Log.File); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("data_dir must not be empty")
	case c.Database == "":
		return fmt.Errorf("database must not be empty")
	case c.Sync.APIURL == "":
		return fmt.Errorf("sync.api_url must not be empty")
	case c.Sync.Filename == "":
		return fmt.Errorf("sync.filename must not be empty")
	case c.Sync.Debounce <= 0:
		return fmt.Errorf("sync.debounce must be positive, got %s", c.Sync.Debounce)
	case c.Sync.Timeout <= 0:
		return fmt.Errorf("sync.timeout must be positive, got %s", c.Sync.Timeout)
	case c.Dashboard.Port < 1 || c.Dashboard.Port > 65535:
		return fmt.Errorf("dashboard.port %d out of range", c.Dashboard.Port)
	case c.Daemon.Debounce <= 0:
		return fmt.Errorf("daemon.debounce must be positive, got %s", c.Daemon.Debounce)
	}
	return nil
}

// DBPath returns the absolute database path.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(c.DataDir, c.Database)
}

// DefaultPath returns ~/.config/dailyfocus/config.yaml.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dailyfocus", "config.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
