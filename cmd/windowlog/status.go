package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/windowlog/windowlog/internal/config"
	"github.com/windowlog/windowlog/internal/pidfile"
	"github.com/windowlog/windowlog/internal/tracker"
	"github.com/windowlog/windowlog/pkg/detector"
	"github.com/windowlog/windowlog/pkg/utils"
	"github.com/windowlog/windowlog/pkg/window"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker status and the current observation",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := config.New()

	running, pid, err := pidfile.New(cfg.Daemon.PIDFile).IsRunning()
	switch {
	case err != nil:
		printErr(out, "Status: unknown (%v)\n", err)
	case running:
		color.New(color.FgGreen).Fprintf(out, "Status: Running (PID: %d)\n", pid)
	default:
		fmt.Fprintln(out, "Status: Not running")
	}

	fmt.Fprintf(out, "Display server: %s\n", detector.DetectDisplayServer())
	fmt.Fprintf(out, "Backend: %s (candidates: %s)\n", cfg.Tracker.Backend, strings.Join(detector.Candidates(cfg.Tracker.Backend), ", "))

	src, err := detector.New(cfg.Tracker.Backend)
	if err != nil {
		printErr(out, "\nCould not observe the current window: %v\n", err)
		return nil
	}
	defer src.Close()

	obs, errs := window.Observe(src)

	fmt.Fprintf(out, "\nCurrent Observation (%s):\n", src.Name())
	if obs.Focused {
		fmt.Fprintf(out, "  Window: %s\n", tracker.WindowBucket(obs.Title))
		fmt.Fprintf(out, "  Title: %s\n", obs.Title)
	} else {
		fmt.Fprintln(out, "  Window: (none focused)")
	}
	fmt.Fprintf(out, "  Idle for: %s", utils.FormatElapsed(obs.Idle))
	if obs.Idle >= tracker.IdleThreshold {
		color.New(color.FgYellow).Fprint(out, " (idle)")
	}
	fmt.Fprintln(out)

	for _, err := range errs {
		printErr(out, "  query failed: %v\n", err)
	}
	return nil
}
