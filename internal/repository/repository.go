package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"macrolens/internal/models"
)

// Repository is the persistence surface for the sync engine and the API.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Catalog rows.
	UpsertIndicators(ctx context.Context, items []models.Indicator) error
	GetIndicator(ctx context.Context, slug string) (*models.Indicator, error)
	ListIndicators(ctx context.Context, params ListIndicatorsParams) ([]models.Indicator, error)
	CountIndicators(ctx context.Context) (int64, error)
	DeleteIndicatorsNotIn(ctx context.Context, slugs []string) (int64, error)
	UpdateIndicatorStatus(ctx context.Context, slug, status string, lastErr *string, updatedAt *time.Time) error

	// Observations.
	UpsertPoints(ctx context.Context, items []models.IndicatorPoint) error
	GetSeries(ctx context.Context, slug string, params SeriesParams) ([]models.IndicatorPoint, error)
	LatestPoint(ctx context.Context, slug string) (*models.IndicatorPoint, error)
	CountPoints(ctx context.Context, slug string) (int64, error)

	// Settings.
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, item *models.Setting) error
	ListSettings(ctx context.Context) ([]models.Setting, error)

	// Alerts.
	ListAlertRules(ctx context.Context, onlyEnabled bool) ([]models.AlertRule, error)
	SaveAlertRule(ctx context.Context, item *models.AlertRule) error
	DeleteAlertRule(ctx context.Context, id uint64) error
	MarkAlertTriggered(ctx context.Context, id uint64, at time.Time) error

	// Run history.
	InsertSyncRun(ctx context.Context, item *models.SyncRun) error
	FinishSyncRun(ctx context.Context, runID, status string, lastErr *string, stats []byte) error
	ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
}

type ListIndicatorsParams struct {
	Source   *string
	Category *string
	Limit    int
	Offset   int
}

type SeriesParams struct {
	Since *time.Time
	Until *time.Time
	Limit int
}
