package models

import "time"

// PointSourceSystem marks values produced by a calculator rather than
// fetched from a provider.
const PointSourceSystem = "System"

// IndicatorPoint is one observation. The (slug, timestamp) pair is the
// natural key; re-syncs upsert on it so historical revisions overwrite in
// place.
type IndicatorPoint struct {
	Slug      string    `gorm:"primaryKey;type:text"`
	Timestamp time.Time `gorm:"primaryKey;type:timestamptz"`
	Value     float64   `gorm:"not null"`
	Source    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (IndicatorPoint) TableName() string {
	return "indicator_points"
}
