package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncRun is the persisted record of one synchronization cycle.
type SyncRun struct {
	RunID      string     `gorm:"primaryKey;type:text"`
	Trigger    string     `gorm:"type:varchar(20);not null"` // cron, startup, manual
	Status     string     `gorm:"type:varchar(20);not null;index"`
	StartedAt  time.Time  `gorm:"type:timestamptz;not null;index"`
	FinishedAt *time.Time `gorm:"type:timestamptz"`
	LastError  *string    `gorm:"type:text"`
	// StatsJSON holds the per-phase counters for the run.
	StatsJSON datatypes.JSON `gorm:"type:jsonb"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}

// SyncRun status values.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
	RunStatusSkipped   = "skipped"
)
