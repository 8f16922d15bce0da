package database

import (
	"github.com/windowlog/windowlog/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for archived reports
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveRun inserts a run together with its entries
func (r *Repository) SaveRun(run *models.ReportRun) error {
	result := r.db.Create(run)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert report run")
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their entries in
// report order.
func (r *Repository) RecentRuns(limit int) ([]*models.ReportRun, error) {
	var runs []*models.ReportRun
	result := r.db.
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("rank ASC")
		}).
		Order("ended_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&runs)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query report runs")
	}

	return runs, nil
}

// GetLatest retrieves the most recent run, or nil when the archive is empty
func (r *Repository) GetLatest() (*models.ReportRun, error) {
	runs, err := r.RecentRuns(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// Count returns the number of archived runs
func (r *Repository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.ReportRun{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count report runs")
	}
	return n, nil
}

// Clear removes every archived run and entry
func (r *Repository) Clear() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM report_entries").Error; err != nil {
			return errors.Wrap(err, "failed to clear report entries")
		}
		if err := tx.Exec("DELETE FROM report_runs").Error; err != nil {
			return errors.Wrap(err, "failed to clear report runs")
		}
		return nil
	})
}
