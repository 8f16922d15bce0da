package tracker

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/windowlog/windowlog/pkg/utils"
	"github.com/windowlog/windowlog/pkg/window"
)

var (
	colorStamp  = color.New(color.FgHiBlack).SprintFunc()
	colorSwitch = color.New(color.FgCyan).SprintFunc()
	colorIdle   = color.New(color.FgYellow).SprintFunc()
	colorResume = color.New(color.FgGreen).SprintFunc()
)

type Service struct {
	source   window.Source
	acc      *Accumulator
	out      io.Writer
	logger   zerolog.Logger
	interval time.Duration
	now      func() time.Time
	running  atomic.Bool
}

func NewService(source window.Source, acc *Accumulator, out io.Writer, logger zerolog.Logger) *Service {
	return &Service{
		source:   source,
		acc:      acc,
		out:      out,
		logger:   logger,
		interval: PollInterval,
		now:      time.Now,
	}
}

// Start runs the polling loop until ctx is cancelled. It returns ctx.Err().
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("tracker is already running")
	}
	defer s.running.Store(false)

	s.logger.Info().
		Str("source", s.source.Name()).
		Dur("interval", s.interval).
		Dur("idle_threshold", s.acc.threshold).
		Msg("Starting tracker")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.trackOnce()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Tracker stopped by context")
			return ctx.Err()

		case <-ticker.C:
			s.trackOnce()
		}
	}
}

func (s *Service) IsRunning() bool {
	return s.running.Load()
}

func (s *Service) trackOnce() {
	obs, errs := window.Observe(s.source)
	for _, err := range errs {
		s.logger.Debug().Err(err).Str("source", s.source.Name()).Msg("Observation failed")
	}

	for _, ev := range s.acc.Sample(obs, s.now()) {
		s.logger.Debug().
			Int("kind", int(ev.Kind)).
			Str("from", ev.From.String()).
			Str("to", ev.To.String()).
			Dur("credited", ev.Credited).
			Msg("Transition")
		s.printEvent(ev)
	}
}

// printEvent writes the live console line for a transition.
func (s *Service) printEvent(ev Event) {
	stamp := colorStamp(fmt.Sprintf("[%s]", ev.At.Format("15:04:05")))

	switch ev.Kind {
	case EventSwitch:
		fmt.Fprintf(s.out, "%s -> %s\n", stamp, colorSwitch(utils.FitWidth(ev.To.String(), LabelWidth)))
	case EventIdleStart:
		fmt.Fprintf(s.out, "%s %s\n", stamp, colorIdle(utils.FitWidth("⚠ idle", LabelWidth)))
	case EventIdleEnd:
		fmt.Fprintf(s.out, "%s %s (idle for: %s)\n", stamp,
			colorResume(utils.FitWidth("✔ active again", LabelWidth)),
			utils.FormatElapsed(ev.Credited))
	}
}
