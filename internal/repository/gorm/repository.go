package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"macrolens/internal/models"
	"macrolens/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Catalog ----------------------------------------------------------------

func (s *Store) UpsertIndicators(ctx context.Context, items []models.Indicator) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"source",
			"category",
			"description",
			"symbol",
			"unit",
			"refresh_interval",
			"updated_at",
		}),
	}).Create(&items).Error
}

func (s *Store) GetIndicator(ctx context.Context, slug string) (*models.Indicator, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var item models.Indicator
	err := s.db.WithContext(ctx).Model(&models.Indicator{}).Where("slug = ?", slug).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListIndicators(ctx context.Context, params repository.ListIndicatorsParams) ([]models.Indicator, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Indicator{})
	if params.Source != nil && strings.TrimSpace(*params.Source) != "" {
		query = query.Where("source = ?", strings.TrimSpace(*params.Source))
	}
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Indicator
	if err := query.Order("slug asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountIndicators(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Indicator{}).Count(&n).Error
	return n, err
}

func (s *Store) DeleteIndicatorsNotIn(ctx context.Context, slugs []string) (int64, error) {
	if s == nil || s.db == nil || len(slugs) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("slug NOT IN ?", slugs).Delete(&models.Indicator{})
	return res.RowsAffected, res.Error
}

func (s *Store) UpdateIndicatorStatus(ctx context.Context, slug, status string, lastErr *string, updatedAt *time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	updates := map[string]any{
		"last_status": status,
		"last_error":  lastErr,
	}
	if updatedAt != nil {
		updates["last_updated_at"] = *updatedAt
	}
	return s.db.WithContext(ctx).
		Model(&models.Indicator{}).
		Where("slug = ?", slug).
		Updates(updates).Error
}

// --- Observations -----------------------------------------------------------

// pointsChunk keeps multi-row inserts under postgres parameter limits.
const pointsChunk = 500

func (s *Store) UpsertPoints(ctx context.Context, items []models.IndicatorPoint) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"source",
		}),
	}).CreateInBatches(&items, pointsChunk).Error
}

func (s *Store) GetSeries(ctx context.Context, slug string, params repository.SeriesParams) ([]models.IndicatorPoint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.IndicatorPoint{}).Where("slug = ?", slug)
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("timestamp >= ?", *params.Since)
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("timestamp <= ?", *params.Until)
	}
	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}
	var items []models.IndicatorPoint
	if err := query.Order("timestamp asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) LatestPoint(ctx context.Context, slug string) (*models.IndicatorPoint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.IndicatorPoint
	err := s.db.WithContext(ctx).
		Model(&models.IndicatorPoint{}).
		Where("slug = ?", slug).
		Order("timestamp desc").
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CountPoints(ctx context.Context, slug string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.IndicatorPoint{}).
		Where("slug = ?", slug).
		Count(&n).Error
	return n, err
}

// --- Settings ---------------------------------------------------------------

func (s *Store) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.Setting
	err := s.db.WithContext(ctx).Model(&models.Setting{}).Where("key = ?", key).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertSetting(ctx context.Context, item *models.Setting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Setting
	if err := s.db.WithContext(ctx).
		Model(&models.Setting{}).
		Order("key asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- Alerts -----------------------------------------------------------------

func (s *Store) ListAlertRules(ctx context.Context, onlyEnabled bool) ([]models.AlertRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.AlertRule{})
	if onlyEnabled {
		query = query.Where("enabled = ?", true)
	}
	var items []models.AlertRule
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SaveAlertRule(ctx context.Context, item *models.AlertRule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteAlertRule(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.AlertRule{}, id).Error
}

func (s *Store) MarkAlertTriggered(ctx context.Context, id uint64, at time.Time) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.AlertRule{}).
		Where("id = ?", id).
		Update("last_triggered_at", at).Error
}

// --- Run history ------------------------------------------------------------

func (s *Store) InsertSyncRun(ctx context.Context, item *models.SyncRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FinishSyncRun(ctx context.Context, runID, status string, lastErr *string, stats []byte) error {
	if s == nil || s.db == nil || runID == "" {
		return nil
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"status":      status,
		"finished_at": now,
		"last_error":  lastErr,
	}
	if len(stats) > 0 {
		updates["stats_json"] = stats
	}
	return s.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Where("run_id = ?", runID).
		Updates(updates).Error
}

func (s *Store) ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	var items []models.SyncRun
	if err := s.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Order("started_at desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers ----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 5000 {
		return 5000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
