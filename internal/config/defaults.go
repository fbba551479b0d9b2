package config

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultConfig returns the default configuration. Paths are left unexpanded.
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "~/.local/share/dailyfocus",
		Database: "focus.db",
		Locale:   "zh-CN",
		Sync: SyncConfig{
			APIURL:   "https://api.github.com",
			Filename: "dailyfocus-data.json",
			Debounce: 3 * time.Second,
			Timeout:  30 * time.Second,
		},
		Dashboard: DashboardConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Daemon: DaemonConfig{
			Debounce: time.Second,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

const defaultFile = `# focus configuration

# Where the database and the import drop folder live
data_dir: ~/.local/share/dailyfocus
database: focus.db

# Collation used when sorting task titles
locale: zh-CN

# Remote backup (GitHub Gist API)
sync:
  api_url: https://api.github.com
  filename: dailyfocus-data.json
  debounce: 3s
  timeout: 30s

# focus serve
dashboard:
  host: 127.0.0.1
  port: 8787

daemon:
  # import_dir: ~/.local/share/dailyfocus/inbox
  debounce: 1s

# Component logs; leave file empty for stderr
log:
  file: ""
  max_size_mb: 10
  max_backups: 3
  max_age_days: 28
`

// WriteDefault writes a commented default configuration file, creating its
// directory.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultFile), 0o644)
}
