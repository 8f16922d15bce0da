package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "windowlog"

// rootCmd tracks the focused window until interrupted
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "windowlog - focused window time tracker",
	Long: `windowlog polls the focused window and the user's idle time, adds up the
time spent in each window and, when interrupted with Ctrl+C, writes a sorted
summary to window_log_<YYYYMMDD_HHMMSS>.txt.

Environment Variables:
  WINDOWLOG_REPORT_DIR   Directory for report files (default ".")
  WINDOWLOG_ARCHIVE      Also store reports in the archive database (true/false)
  WINDOWLOG_DB_PATH      Archive database path
  WINDOWLOG_BACKEND      auto, x11, mutter or wayland
  WINDOWLOG_PID_FILE     PID file path
  WINDOWLOG_LOG_FILE     Diagnostics log file
  WINDOWLOG_LOG_LEVEL    debug, info, warn or error`,
	Version:      version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runTrack,
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
