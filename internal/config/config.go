package config

import (
	"fmt"
	"os"
)

// Backend names accepted by WINDOWLOG_BACKEND
const (
	BackendAuto    = "auto"
	BackendX11     = "x11"
	BackendMutter  = "mutter"
	BackendWayland = "wayland"
)

// Config holds all application configuration
type Config struct {
	// Report file configuration
	Report ReportConfig

	// Archive database configuration
	Database DatabaseConfig

	// Observation backend configuration
	Tracker TrackerConfig

	// Single instance guard
	Daemon DaemonConfig

	// Diagnostics log configuration
	Logging LoggingConfig
}

// ReportConfig holds report file configuration
type ReportConfig struct {
	Dir     string // Directory that receives window_log_*.txt
	Archive bool   // Whether finished reports are also stored in the database
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string // Path to SQLite database file
}

// TrackerConfig holds tracking behavior configuration
type TrackerConfig struct {
	Backend string // auto, x11, mutter or wayland
}

// DaemonConfig holds the PID file location
type DaemonConfig struct {
	PIDFile string
}

// LoggingConfig holds diagnostics log configuration
type LoggingConfig struct {
	File  string
	Level string // debug, info, warn or error
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Report: ReportConfig{
			Dir:     ".",
			Archive: true,
		},
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.config/windowlog/windowlog.db
		},
		Tracker: TrackerConfig{
			Backend: BackendAuto,
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/windowlog-%d.pid", os.Getuid()),
		},
		Logging: LoggingConfig{
			File:  fmt.Sprintf("/tmp/windowlog-%d.log", os.Getuid()),
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Report.Dir == "" {
		return fmt.Errorf("report directory cannot be empty")
	}

	switch c.Tracker.Backend {
	case BackendAuto, BackendX11, BackendMutter, BackendWayland:
	default:
		return fmt.Errorf("unknown backend %q (want auto, x11, mutter or wayland)", c.Tracker.Backend)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	dbPath := c.Database.Path
	if dbPath == "" {
		dbPath = "(default)"
	}

	return fmt.Sprintf(`Configuration:
  Report:
    Directory: %s
    Archive: %v
  Database:
    Path: %s
  Tracker:
    Backend: %s
  Daemon:
    PID File: %s
  Logging:
    File: %s
    Level: %s`,
		c.Report.Dir,
		c.Report.Archive,
		dbPath,
		c.Tracker.Backend,
		c.Daemon.PIDFile,
		c.Logging.File,
		c.Logging.Level,
	)
}
