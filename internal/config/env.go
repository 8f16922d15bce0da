package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "WINDOWLOG"

// LoadFromEnv loads configuration from WINDOWLOG_* environment variables.
// Unset or malformed values leave the current value in place.
func LoadFromEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if dir := v.GetString("report_dir"); dir != "" {
		cfg.Report.Dir = dir
	}

	if archive := v.GetString("archive"); archive != "" {
		if val, err := strconv.ParseBool(archive); err == nil {
			cfg.Report.Archive = val
		}
	}

	if dbPath := v.GetString("db_path"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if backend := v.GetString("backend"); backend != "" {
		cfg.Tracker.Backend = strings.ToLower(backend)
	}

	if pidFile := v.GetString("pid_file"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := v.GetString("log_file"); logFile != "" {
		cfg.Logging.File = logFile
	}

	if level := v.GetString("log_level"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}
