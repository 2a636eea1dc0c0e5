package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert rule conditions.
const (
	AlertAbove = "above"
	AlertBelow = "below"
)

// AlertRule fires when an indicator's latest value crosses a threshold.
type AlertRule struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Slug      string          `gorm:"type:text;not null;index"`
	Condition string          `gorm:"type:varchar(10);not null"`
	Threshold decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Enabled   bool            `gorm:"not null;default:true"`

	LastTriggeredAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt       time.Time  `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

func (AlertRule) TableName() string {
	return "alert_rules"
}

// Matches reports whether the rule's condition holds for value.
func (r AlertRule) Matches(value decimal.Decimal) bool {
	switch r.Condition {
	case AlertAbove:
		return value.GreaterThan(r.Threshold)
	case AlertBelow:
		return value.LessThan(r.Threshold)
	}
	return false
}
