package reporter

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/windowlog/windowlog/internal/config"
	"github.com/windowlog/windowlog/internal/database"
	"github.com/windowlog/windowlog/internal/models"
	"github.com/windowlog/windowlog/internal/tracker"
	"github.com/windowlog/windowlog/pkg/utils"
)

const (
	fileLayout  = "20060102_150405"
	timeColumn  = 10
	tableWidth  = tracker.LabelWidth + 1 + timeColumn
	bannerTitle = " window usage summary "
)

var colorBanner = color.New(color.Bold).SprintFunc()

// Entry is one row of a report
type Entry struct {
	Bucket   tracker.Bucket
	Duration time.Duration
}

// Sort orders a ledger by duration descending, ties by label ascending
func Sort(ledger map[tracker.Bucket]time.Duration) []Entry {
	entries := make([]Entry, 0, len(ledger))
	for b, d := range ledger {
		entries = append(entries, Entry{Bucket: b, Duration: d})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Duration != entries[j].Duration {
			return entries[i].Duration > entries[j].Duration
		}
		li, lj := entries[i].Bucket.String(), entries[j].Bucket.String()
		if li != lj {
			return li < lj
		}
		// a window titled like the idle bucket sorts after it
		return entries[i].Bucket.Idle && !entries[j].Bucket.Idle
	})

	return entries
}

// FileName returns the report file name for a report written at t
func FileName(t time.Time) string {
	return fmt.Sprintf("window_log_%s.txt", t.Format(fileLayout))
}

// FormatRow renders one table row
func FormatRow(e Entry) string {
	return fmt.Sprintf("%s %*s", utils.FitWidth(e.Bucket.String(), tracker.LabelWidth), timeColumn, utils.FormatElapsed(e.Duration))
}

// Render writes the full report body to w
func Render(w io.Writer, entries []Entry) error {
	side := (tableWidth - len(bannerTitle)) / 2
	header := strings.Repeat("=", side) + bannerTitle + strings.Repeat("=", tableWidth-side-len(bannerTitle))

	lines := []string{
		header,
		fmt.Sprintf("%s %*s", utils.FitWidth("window title", tracker.LabelWidth), timeColumn, "total time"),
		strings.Repeat("-", tableWidth),
	}
	for _, e := range entries {
		lines = append(lines, FormatRow(e))
	}
	lines = append(lines, strings.Repeat("=", tableWidth))

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Reporter writes the final report file, echoes it and archives it
type Reporter struct {
	config  *config.Config
	repo    *database.Repository
	console io.Writer
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a new reporter. repo may be nil when archiving is disabled.
func New(cfg *config.Config, repo *database.Repository, console io.Writer, logger zerolog.Logger) *Reporter {
	return &Reporter{
		config:  cfg,
		repo:    repo,
		console: console,
		logger:  logger,
		now:     time.Now,
	}
}

// Write renders entries into a new timestamped file in the report directory
// and mirrors the body to the console. It returns the path written. Nothing
// is left on disk when writing fails.
func (r *Reporter) Write(entries []Entry) (string, error) {
	var body bytes.Buffer
	if err := Render(&body, entries); err != nil {
		return "", errors.Wrap(err, "failed to render report")
	}

	path := filepath.Join(r.config.Report.Dir, FileName(r.now()))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", errors.Wrap(err, "failed to create report file")
	}

	if _, err := f.Write(body.Bytes()); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrapf(err, "failed to write report file %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.Wrapf(err, "failed to close report file %s", path)
	}

	r.logger.Info().Str("file", path).Int("entries", len(entries)).Msg("Report written")

	fmt.Fprintln(r.console)
	lines := strings.Split(strings.TrimRight(body.String(), "\n"), "\n")
	for i, line := range lines {
		if i == 0 || i == len(lines)-1 {
			line = colorBanner(line)
		}
		fmt.Fprintln(r.console, line)
	}
	fmt.Fprintf(r.console, "\nreport saved to: %s\n", path)

	return path, nil
}

// Archive stores the report in the database. Failures are logged and
// otherwise ignored; the report file is the record of truth.
func (r *Reporter) Archive(entries []Entry, started, ended time.Time, backend, path string) {
	if r.repo == nil {
		return
	}

	run := &models.ReportRun{
		StartedAt: started,
		EndedAt:   ended,
		FileName:  filepath.Base(path),
		Backend:   backend,
	}
	for i, e := range entries {
		run.Entries = append(run.Entries, models.ReportEntry{
			Rank:   i,
			Label:  e.Bucket.Label,
			IsIdle: e.Bucket.Idle,
			Millis: e.Duration.Milliseconds(),
		})
		run.TotalMillis += e.Duration.Milliseconds()
	}

	if err := r.repo.SaveRun(run); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to archive report")
		return
	}
	r.logger.Info().Uint("run_id", run.ID).Msg("Report archived")
}

// WaitForEnter prompts on out and blocks until a line (or EOF) is read from in
func WaitForEnter(in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "press Enter to exit...")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
