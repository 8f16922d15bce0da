package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/windowlog/windowlog/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := Connect(filepath.Join(t.TempDir(), "windowlog.db"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	return NewRepository(db)
}

func testRun(ended time.Time, labels ...string) *models.ReportRun {
	run := &models.ReportRun{
		StartedAt: ended.Add(-time.Hour),
		EndedAt:   ended,
		FileName:  "window_log_" + ended.Format("20060102_150405") + ".txt",
		Backend:   "x11",
	}
	for i, label := range labels {
		ms := int64(len(labels)-i) * 1000
		run.Entries = append(run.Entries, models.ReportEntry{Rank: i, Label: label, Millis: ms})
		run.TotalMillis += ms
	}
	return run
}

func TestSaveAndRecentRuns(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	for i, run := range []*models.ReportRun{
		testRun(base, "Editor", "Browser"),
		testRun(base.Add(2*time.Hour), "Terminal", "Editor", "Mail"),
		testRun(base.Add(time.Hour), "Music"),
	} {
		if err := repo.SaveRun(run); err != nil {
			t.Fatalf("SaveRun(%d) error: %v", i, err)
		}
		if run.ID == 0 {
			t.Fatalf("SaveRun(%d) did not assign an ID", i)
		}
	}

	runs, err := repo.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns(2) returned %d runs", len(runs))
	}
	if !runs[0].EndedAt.Equal(base.Add(2*time.Hour)) || !runs[1].EndedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("runs not newest first: %v, %v", runs[0].EndedAt, runs[1].EndedAt)
	}

	entries := runs[0].Entries
	if len(entries) != 3 {
		t.Fatalf("newest run has %d entries, want 3", len(entries))
	}
	for i, want := range []string{"Terminal", "Editor", "Mail"} {
		if entries[i].Label != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Label, want)
		}
	}
	if got := runs[0].Duration(); got != 6*time.Second {
		t.Errorf("Duration() = %v, want 6s", got)
	}
	if got := entries[0].Duration(); got != 3*time.Second {
		t.Errorf("entry Duration() = %v, want 3s", got)
	}
}

func TestGetLatestEmpty(t *testing.T) {
	repo := newTestRepository(t)

	run, err := repo.GetLatest()
	if err != nil {
		t.Fatalf("GetLatest() error: %v", err)
	}
	if run != nil {
		t.Errorf("GetLatest() on empty archive = %+v, want nil", run)
	}
}

func TestClear(t *testing.T) {
	repo := newTestRepository(t)
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := repo.SaveRun(testRun(base.Add(time.Duration(i)*time.Minute), "a", "b")); err != nil {
			t.Fatal(err)
		}
	}

	n, err := repo.Count()
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3", n, err)
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	n, err = repo.Count()
	if err != nil || n != 0 {
		t.Fatalf("Count() after Clear = %d, %v; want 0", n, err)
	}

	var entries int64
	if err := repo.db.Model(&models.ReportEntry{}).Count(&entries).Error; err != nil || entries != 0 {
		t.Errorf("entries after Clear = %d, %v; want 0", entries, err)
	}
}
