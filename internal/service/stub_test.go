package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"macrolens/internal/fetch"
	"macrolens/internal/models"
	"macrolens/internal/repository"
	"macrolens/internal/timeseries"
)

// stubRepo is an in-memory repository for engine tests.
type stubRepo struct {
	mu         sync.Mutex
	indicators map[string]models.Indicator
	points     map[string]map[time.Time]models.IndicatorPoint
	settings   map[string]models.Setting
	rules      map[uint64]models.AlertRule
	nextRuleID uint64
	runs       []models.SyncRun
	// statusLog records every status transition in order, "slug=status".
	statusLog []string
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		indicators: map[string]models.Indicator{},
		points:     map[string]map[time.Time]models.IndicatorPoint{},
		settings:   map[string]models.Setting{},
		rules:      map[uint64]models.AlertRule{},
	}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (s *stubRepo) UpsertIndicators(ctx context.Context, items []models.Indicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if existing, ok := s.indicators[item.Slug]; ok {
			item.LastUpdatedAt = existing.LastUpdatedAt
			item.LastStatus = existing.LastStatus
			item.LastError = existing.LastError
		}
		s.indicators[item.Slug] = item
	}
	return nil
}

func (s *stubRepo) GetIndicator(ctx context.Context, slug string) (*models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.indicators[slug]; ok {
		return &item, nil
	}
	return nil, nil
}

func (s *stubRepo) ListIndicators(ctx context.Context, params repository.ListIndicatorsParams) ([]models.Indicator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Indicator
	for _, item := range s.indicators {
		if params.Source != nil && item.Source != *params.Source {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *stubRepo) CountIndicators(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.indicators)), nil
}

func (s *stubRepo) DeleteIndicatorsNotIn(ctx context.Context, slugs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := map[string]bool{}
	for _, slug := range slugs {
		keep[slug] = true
	}
	var removed int64
	for slug := range s.indicators {
		if !keep[slug] {
			delete(s.indicators, slug)
			removed++
		}
	}
	return removed, nil
}

func (s *stubRepo) UpdateIndicatorStatus(ctx context.Context, slug, status string, lastErr *string, updatedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusLog = append(s.statusLog, slug+"="+status)
	item, ok := s.indicators[slug]
	if !ok {
		item = models.Indicator{Slug: slug, RefreshInterval: "1440m"}
	}
	item.LastStatus = status
	item.LastError = lastErr
	if updatedAt != nil {
		item.LastUpdatedAt = updatedAt
	}
	s.indicators[slug] = item
	return nil
}

func (s *stubRepo) UpsertPoints(ctx context.Context, items []models.IndicatorPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		bySlug, ok := s.points[item.Slug]
		if !ok {
			bySlug = map[time.Time]models.IndicatorPoint{}
			s.points[item.Slug] = bySlug
		}
		bySlug[item.Timestamp] = item
	}
	return nil
}

func (s *stubRepo) GetSeries(ctx context.Context, slug string, params repository.SeriesParams) ([]models.IndicatorPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.IndicatorPoint
	for _, item := range s.points[slug] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *stubRepo) LatestPoint(ctx context.Context, slug string) (*models.IndicatorPoint, error) {
	items, _ := s.GetSeries(ctx, slug, repository.SeriesParams{})
	if len(items) == 0 {
		return nil, nil
	}
	last := items[len(items)-1]
	return &last, nil
}

func (s *stubRepo) CountPoints(ctx context.Context, slug string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.points[slug])), nil
}

func (s *stubRepo) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.settings[key]; ok {
		return &item, nil
	}
	return nil, nil
}

func (s *stubRepo) UpsertSetting(ctx context.Context, item *models.Setting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[item.Key] = *item
	return nil
}

func (s *stubRepo) ListSettings(ctx context.Context) ([]models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Setting
	for _, item := range s.settings {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubRepo) ListAlertRules(ctx context.Context, onlyEnabled bool) ([]models.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.AlertRule
	for _, rule := range s.rules {
		if onlyEnabled && !rule.Enabled {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) SaveAlertRule(ctx context.Context, item *models.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == 0 {
		s.nextRuleID++
		item.ID = s.nextRuleID
	}
	s.rules[item.ID] = *item
	return nil
}

func (s *stubRepo) DeleteAlertRule(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, id)
	return nil
}

func (s *stubRepo) MarkAlertTriggered(ctx context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.rules[id]
	if !ok {
		return nil
	}
	rule.LastTriggeredAt = &at
	s.rules[id] = rule
	return nil
}

func (s *stubRepo) InsertSyncRun(ctx context.Context, item *models.SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *item)
	return nil
}

func (s *stubRepo) FinishSyncRun(ctx context.Context, runID, status string, lastErr *string, stats []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].RunID == runID {
			s.runs[i].Status = status
			s.runs[i].LastError = lastErr
			s.runs[i].StatsJSON = stats
		}
	}
	return nil
}

func (s *stubRepo) ListSyncRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SyncRun, len(s.runs))
	copy(out, s.runs)
	return out, nil
}

func (s *stubRepo) statusTransitions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.statusLog))
	copy(out, s.statusLog)
	return out
}

var _ repository.Repository = (*stubRepo)(nil)

// stubSource is a scripted provider for resolver tests.
type stubSource struct {
	name string
	key  bool

	mu        sync.Mutex
	calls     map[string]int
	backfills map[string]bool
	errs      map[string]error
	data      map[string]timeseries.Series
	block     chan struct{}
}

func newStubSource(name string) *stubSource {
	return &stubSource{
		name:      name,
		key:       true,
		calls:     map[string]int{},
		backfills: map[string]bool{},
		errs:      map[string]error{},
		data:      map[string]timeseries.Series{},
	}
}

func (s *stubSource) Name() string     { return s.name }
func (s *stubSource) Configured() bool { return s.key }

func (s *stubSource) Fetch(ctx context.Context, symbol string, backfill bool) (timeseries.Series, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[symbol]++
	if backfill {
		s.backfills[symbol] = true
	}
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	if series, ok := s.data[symbol]; ok {
		return series, nil
	}
	return timeseries.Series{{Timestamp: time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), Value: 1}}, nil
}

func (s *stubSource) callCount(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[symbol]
}

func (s *stubSource) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

var _ fetch.Source = (*stubSource)(nil)
