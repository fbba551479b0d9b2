package config

import "time"

// Config is the full focus configuration.
type Config struct {
	// DataDir holds the database and the import drop folder.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// Database is the SQLite file name, relative to DataDir unless absolute.
	Database string `yaml:"database" mapstructure:"database"`

	// Locale drives title collation.
	Locale string `yaml:"locale" mapstructure:"locale"`

	Sync      SyncConfig      `yaml:"sync" mapstructure:"sync"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Daemon    DaemonConfig    `yaml:"daemon" mapstructure:"daemon"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SyncConfig configures the remote backup.
type SyncConfig struct {
	APIURL   string        `yaml:"api_url" mapstructure:"api_url"`
	Filename string        `yaml:"filename" mapstructure:"filename"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DashboardConfig configures the HTTP dashboard of focus serve.
type DashboardConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// DaemonConfig configures the import drop folder.
type DaemonConfig struct {
	// ImportDir defaults to <data_dir>/inbox.
	ImportDir string        `yaml:"import_dir" mapstructure:"import_dir"`
	Debounce  time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// LogConfig configures component logs. An empty File logs to stderr.
type LogConfig struct {
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}
