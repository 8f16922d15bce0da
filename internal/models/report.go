package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportRun is one archived tracking session
type ReportRun struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StartedAt   time.Time      `gorm:"not null;index" json:"started_at"`
	EndedAt     time.Time      `gorm:"not null" json:"ended_at"`
	FileName    string         `gorm:"not null" json:"file_name"`
	Backend     string         `gorm:"not null" json:"backend"` // "x11", "mutter" or "wayland"
	TotalMillis int64          `gorm:"not null;default:0" json:"total_millis"`
	Entries     []ReportEntry  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"entries"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ReportEntry is one row of an archived report
type ReportEntry struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	RunID  uint   `gorm:"not null;index" json:"run_id"`
	Rank   int    `gorm:"not null" json:"rank"`
	Label  string `gorm:"not null" json:"label"`
	IsIdle bool   `gorm:"not null;default:false" json:"is_idle"`
	Millis int64  `gorm:"not null;default:0" json:"millis"`
}

// Duration returns the archived total of the run
func (r *ReportRun) Duration() time.Duration {
	return time.Duration(r.TotalMillis) * time.Millisecond
}

// Duration returns the archived time of the entry
func (e *ReportEntry) Duration() time.Duration {
	return time.Duration(e.Millis) * time.Millisecond
}
