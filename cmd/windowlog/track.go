package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/windowlog/windowlog/internal/config"
	"github.com/windowlog/windowlog/internal/database"
	"github.com/windowlog/windowlog/internal/logging"
	"github.com/windowlog/windowlog/internal/pidfile"
	"github.com/windowlog/windowlog/internal/reporter"
	"github.com/windowlog/windowlog/internal/tracker"
	"github.com/windowlog/windowlog/pkg/detector"
)

func runTrack(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "diagnostics log disabled: %v\n", err)
	} else {
		defer logCloser.Close()
	}

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		return err
	}
	defer pf.Release()

	src, err := detector.New(cfg.Tracker.Backend)
	if err != nil {
		return fmt.Errorf("failed to initialize window source: %w", err)
	}
	defer src.Close()

	logger.Info().Str("backend", src.Name()).Msg("Window source initialized")
	logger.Debug().Msg(cfg.String())

	started := time.Now()
	acc := tracker.NewAccumulator(tracker.IdleThreshold, started)
	svc := tracker.NewService(src, acc, out, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// After the first signal a second Ctrl+C kills the process outright.
	go func() {
		<-ctx.Done()
		stop()
	}()

	fmt.Fprintf(out, "tracking windows via %s, press Ctrl+C to stop and write the report\n", src.Name())

	if err := svc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("tracker error: %w", err)
	}

	ended := time.Now()
	if ev, ok := acc.Flush(ended); ok {
		logger.Debug().Str("bucket", ev.From.String()).Dur("credited", ev.Credited).Msg("Final interval flushed")
	}

	fmt.Fprintln(out, "\nstop requested, window usage summary:")

	entries := reporter.Sort(acc.Snapshot())
	repo, closeArchive := openArchive(cfg, logger)
	defer closeArchive()

	rep := reporter.New(cfg, repo, out, logger)
	path, err := rep.Write(entries)
	if err != nil {
		return err
	}
	rep.Archive(entries, started, ended, src.Name(), path)

	reporter.WaitForEnter(cmd.InOrStdin(), out)
	return nil
}

// openArchive returns nil when archiving is disabled or the database cannot
// be opened; the report file does not depend on it.
func openArchive(cfg *config.Config, logger zerolog.Logger) (*database.Repository, func()) {
	if !cfg.Report.Archive {
		return nil, func() {}
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Report archive unavailable")
		return nil, func() {}
	}
	return database.NewRepository(db), func() { db.Close() }
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func printErr(w io.Writer, format string, a ...any) {
	color.New(color.FgRed).Fprintf(w, format, a...)
}
