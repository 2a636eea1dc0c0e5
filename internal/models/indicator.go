package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Indicator is the stored row for one catalog entry. The registry owns the
// metadata; this row carries the sync bookkeeping that survives restarts.
type Indicator struct {
	Slug          string     `gorm:"primaryKey;type:text"`
	Name          string     `gorm:"type:text;not null"`
	Source        string     `gorm:"type:varchar(20);not null;index"`
	Category      string     `gorm:"type:varchar(30);not null;index"`
	Description   string     `gorm:"type:text"`
	Symbol        string     `gorm:"type:text"`
	Unit          string     `gorm:"type:varchar(20)"`
	// RefreshInterval is stored in minutes with an "m" suffix, e.g. "60m"
	// for hourly series and "1440m" for daily ones.
	RefreshInterval string     `gorm:"type:varchar(10);not null;default:'1440m'"`
	LastUpdatedAt   *time.Time `gorm:"type:timestamptz;index"`
	LastStatus      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	LastError       *string    `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Indicator) TableName() string {
	return "indicators"
}

// Sync status values for Indicator.LastStatus. The scheduler writes
// updating before each resolve so an interrupted run is visible in the
// status report.
const (
	StatusPending  = "pending"
	StatusUpdating = "updating"
	StatusActive   = "active"
	StatusError    = "error"
)

// FormatRefreshInterval renders a duration in the stored minute format.
func FormatRefreshInterval(d time.Duration) string {
	return strconv.Itoa(int(d.Minutes())) + "m"
}

// ParseRefreshInterval parses the stored "<minutes>m" format.
func ParseRefreshInterval(s string) (time.Duration, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "m")
	mins, err := strconv.Atoi(trimmed)
	if err != nil || mins <= 0 {
		return 0, fmt.Errorf("invalid refresh interval %q", s)
	}
	return time.Duration(mins) * time.Minute, nil
}

// IsStale reports whether the indicator is due for a refresh at now. An
// indicator that has never updated, or whose stored interval is unreadable,
// is always stale.
func (i Indicator) IsStale(now time.Time) bool {
	if i.LastUpdatedAt == nil {
		return true
	}
	interval, err := ParseRefreshInterval(i.RefreshInterval)
	if err != nil {
		return true
	}
	return now.Sub(*i.LastUpdatedAt) >= interval
}
