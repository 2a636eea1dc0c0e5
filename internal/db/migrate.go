package db

import (
	"macrolens/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.Indicator{},
		&models.IndicatorPoint{},
		&models.Setting{},
		&models.AlertRule{},
		&models.SyncRun{},
	)
}
