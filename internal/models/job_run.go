package models

import (
	"time"
)

// Job run statuses
const (
	JobRunStatusRunning   = "running"
	JobRunStatusCompleted = "completed"
	JobRunStatusFailed    = "failed"
)

// JobRun records one execution of a recurring job. Failed runs keep
// their error text; overlapping ticks are skipped by the scheduler and
// leave no row.
type JobRun struct {
	ID         uint   `gorm:"primarykey"`
	Name       string `gorm:"not null;index"`
	Date       string `gorm:"not null"`
	Status     string `gorm:"not null;default:'running'"`
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}
