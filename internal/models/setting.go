package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores runtime-configurable values, API credentials included, so
// they can be changed without a redeploy.
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Key string `gorm:"type:varchar(120);not null;uniqueIndex"`

	// JSON value: a bare string for credentials, richer objects elsewhere.
	Value datatypes.JSON `gorm:"type:jsonb;not null"`

	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;autoUpdateTime;index"`
}

func (Setting) TableName() string {
	return "settings"
}

// Well-known setting keys.
const (
	SettingFREDAPIKey   = "fred_api_key"
	SettingTiingoAPIKey = "tiingo_api_key"
)
