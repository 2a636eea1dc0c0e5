package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"macrolens/internal/fetch"
	"macrolens/internal/metrics"
	"macrolens/internal/models"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
	"macrolens/internal/signal"
)

// ErrSyncInProgress is returned when a run is requested while another is
// still active. Cron overlap and manual triggers race here; exactly one
// wins.
var ErrSyncInProgress = errors.New("sync already in progress")

// SyncOptions tune one engine instance.
type SyncOptions struct {
	// BatchSize bounds how many indicators are refreshed between pauses.
	BatchSize int
	// BatchPause separates full batches to stay friendly to providers.
	BatchPause time.Duration
}

func (o SyncOptions) withDefaults() SyncOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.BatchPause <= 0 {
		o.BatchPause = time.Second
	}
	return o
}

// RunSummary reports what one sync run did.
type RunSummary struct {
	RunID      string            `json:"run_id"`
	Trigger    string            `json:"trigger"`
	Status     string            `json:"status"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Canary     string            `json:"canary,omitempty"`
	CanaryOK   bool              `json:"canary_ok"`
	Synced     int               `json:"synced"`
	Failed     int               `json:"failed"`
	Fresh      int               `json:"fresh"`
	Calculated int               `json:"calculated"`
	CalcErrors int               `json:"calc_errors"`
	// StoppedBy is set when a fatal provider error ended the batch early.
	StoppedBy string            `json:"stopped_by,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// SyncService orchestrates full synchronization runs: canary, batched
// refresh of stale external indicators, then a consistency pass over every
// calculated indicator.
type SyncService struct {
	Registry *registry.Registry
	Store    repository.Repository
	Resolver *Resolver
	// Alerts, when set, is evaluated on every run regardless of outcome.
	Alerts  *AlertService
	Hub     *signal.Hub
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Options SyncOptions

	// Now is a test hook; nil means time.Now.
	Now func() time.Time

	running atomic.Bool
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// RunSync executes one full run. Concurrent calls beyond the first return
// ErrSyncInProgress without touching providers or the store.
func (s *SyncService) RunSync(ctx context.Context, trigger string) (*RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	opts := s.Options.withDefaults()
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now(),
		Errors:    map[string]string{},
	}

	// Without FRED credentials most of the catalog cannot refresh; the run
	// is recorded as skipped rather than producing a wall of auth errors.
	if !s.fredConfigured() {
		summary.Status = models.RunStatusSkipped
		summary.FinishedAt = s.now()
		if s.Logger != nil {
			s.Logger.Warn("sync skipped: FRED API key not configured", zap.String("run_id", summary.RunID))
		}
		s.recordRun(ctx, summary, "FRED API key not configured")
		return summary, nil
	}

	s.recordRunStart(ctx, summary)
	if s.Logger != nil {
		s.Logger.Info("sync run starting",
			zap.String("run_id", summary.RunID),
			zap.String("trigger", trigger))
	}

	stale, fresh := s.staleExternal(ctx)
	summary.Fresh = fresh

	// Alert rules are checked on every run, whatever the stale set or the
	// canary outcome, so thresholds fire on the data already stored.
	s.evaluateAlerts(ctx)

	// Nothing stale means nothing to do.
	if len(stale) == 0 {
		summary.Status = models.RunStatusSucceeded
		summary.FinishedAt = s.now()
		s.recordRun(ctx, summary, "")
		s.observeRun(summary)
		if s.Logger != nil {
			s.Logger.Info("sync run finished: all indicators fresh",
				zap.String("run_id", summary.RunID),
				zap.Int("fresh", fresh))
		}
		return summary, nil
	}

	res := NewResolution()

	// Canary phase: the first stale entry is fetched alone. A failure here
	// means the provider or the network is broken, so batching and
	// consistency are pointless.
	canary := stale[0]
	summary.Canary = canary
	s.markUpdating(ctx, canary)
	if _, err := s.Resolver.Resolve(ctx, res, canary, false, true); err != nil {
		summary.Status = models.RunStatusFailed
		summary.FinishedAt = s.now()
		summary.Errors[canary] = err.Error()
		s.recordRun(ctx, summary, err.Error())
		s.observeRun(summary)
		if s.Logger != nil {
			s.Logger.Error("sync aborted: canary failed",
				zap.String("run_id", summary.RunID),
				zap.String("canary", canary),
				zap.Error(err))
		}
		return summary, fmt.Errorf("canary %s: %w", canary, err)
	}
	summary.CanaryOK = true
	summary.Synced++

	s.refreshSlugs(ctx, res, stale[1:], false, opts, summary)
	s.batchCalculateDerived(ctx, summary)

	summary.Status = models.RunStatusSucceeded
	summary.FinishedAt = s.now()
	s.recordRun(ctx, summary, "")
	s.observeRun(summary)
	s.publish(summary)
	if s.Logger != nil {
		s.Logger.Info("sync run finished",
			zap.String("run_id", summary.RunID),
			zap.Int("synced", summary.Synced),
			zap.Int("failed", summary.Failed),
			zap.Int("calculated", summary.Calculated),
			zap.String("stopped_by", summary.StoppedBy),
			zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)))
	}
	return summary, nil
}

// RunFull refreshes every external indicator regardless of freshness, with
// backfill requested from the providers, then recomputes all calculated
// indicators. No canary gate: a full sync is an explicit operator action.
func (s *SyncService) RunFull(ctx context.Context, trigger string, backfill bool) (*RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	opts := s.Options.withDefaults()
	summary := &RunSummary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now(),
		Errors:    map[string]string{},
	}

	if !s.fredConfigured() {
		summary.Status = models.RunStatusSkipped
		summary.FinishedAt = s.now()
		s.recordRun(ctx, summary, "FRED API key not configured")
		return summary, nil
	}

	s.recordRunStart(ctx, summary)
	if s.Logger != nil {
		s.Logger.Info("full sync starting",
			zap.String("run_id", summary.RunID),
			zap.Bool("backfill", backfill))
	}

	var slugs []string
	for _, spec := range s.Registry.All() {
		if spec.Source.External() {
			slugs = append(slugs, spec.Slug)
		}
	}
	s.refreshSlugs(ctx, NewResolution(), slugs, backfill, opts, summary)
	s.batchCalculateDerived(ctx, summary)

	summary.Status = models.RunStatusSucceeded
	summary.FinishedAt = s.now()
	s.recordRun(ctx, summary, "")
	s.observeRun(summary)
	s.publish(summary)
	return summary, nil
}

// refreshSlugs resolves external indicators in bounded batches, marking
// each one updating first. A fatal provider error (quota, auth, bad
// request) ends the phase early; the run itself still succeeds so
// calculated indicators stay consistent with whatever data did land.
func (s *SyncService) refreshSlugs(ctx context.Context, res *Resolution, slugs []string, backfill bool, opts SyncOptions, summary *RunSummary) {
	processed := 0
	for _, slug := range slugs {
		if ctx.Err() != nil {
			summary.Errors[slug] = ctx.Err().Error()
			return
		}
		s.markUpdating(ctx, slug)
		if _, err := s.Resolver.Resolve(ctx, res, slug, backfill, true); err != nil {
			summary.Failed++
			summary.Errors[slug] = err.Error()
			if kind := fetch.KindOf(err); kind.Fatal() {
				summary.StoppedBy = string(kind)
				if s.Logger != nil {
					s.Logger.Warn("batch stopped early",
						zap.String("run_id", summary.RunID),
						zap.String("slug", slug),
						zap.String("kind", string(kind)))
				}
				return
			}
		} else {
			summary.Synced++
		}
		processed++
		if processed%opts.BatchSize == 0 {
			if err := sleepCtx(ctx, opts.BatchPause); err != nil {
				return
			}
		}
	}
}

// batchCalculateDerived recomputes every calculated indicator from stored
// data. Dependencies are not fetched here; the phase exists to fold in
// whatever the batch phase managed to land.
func (s *SyncService) batchCalculateDerived(ctx context.Context, summary *RunSummary) {
	for _, spec := range s.Registry.All() {
		if spec.Source != registry.SourceCalculated {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if _, err := s.Resolver.Resolve(ctx, NewResolution(), spec.Slug, false, false); err != nil {
			summary.CalcErrors++
			summary.Errors[spec.Slug] = err.Error()
			continue
		}
		summary.Calculated++
	}
}

// staleExternal returns the external slugs due for refresh plus the count
// of fresh ones skipped. The first entry doubles as the run's canary.
func (s *SyncService) staleExternal(ctx context.Context) (stale []string, fresh int) {
	rows, err := s.Store.ListIndicators(ctx, repository.ListIndicatorsParams{Limit: 5000})
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("listing indicators for sync failed", zap.Error(err))
		}
		return nil, 0
	}
	now := s.now()
	for _, row := range rows {
		if !registry.Source(row.Source).External() {
			continue
		}
		if !row.IsStale(now) {
			fresh++
			continue
		}
		stale = append(stale, row.Slug)
	}
	return stale, fresh
}

func (s *SyncService) markUpdating(ctx context.Context, slug string) {
	_ = s.Store.UpdateIndicatorStatus(ctx, slug, models.StatusUpdating, nil, nil)
}

func (s *SyncService) evaluateAlerts(ctx context.Context) {
	if s.Alerts == nil {
		return
	}
	fired, err := s.Alerts.Evaluate(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("alert evaluation failed", zap.Error(err))
		}
		return
	}
	if fired > 0 && s.Logger != nil {
		s.Logger.Info("alerts fired", zap.Int("count", fired))
	}
}

func (s *SyncService) fredConfigured() bool {
	src, ok := s.Resolver.Sources[registry.SourceFRED]
	if !ok || src == nil {
		return false
	}
	if c, ok := src.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

func (s *SyncService) recordRunStart(ctx context.Context, summary *RunSummary) {
	_ = s.Store.InsertSyncRun(ctx, &models.SyncRun{
		RunID:     summary.RunID,
		Trigger:   summary.Trigger,
		Status:    models.RunStatusRunning,
		StartedAt: summary.StartedAt,
	})
}

func (s *SyncService) recordRun(ctx context.Context, summary *RunSummary, lastErr string) {
	stats, _ := json.Marshal(summary)
	var errPtr *string
	if lastErr != "" {
		errPtr = &lastErr
	}
	if summary.Status == models.RunStatusSkipped {
		_ = s.Store.InsertSyncRun(ctx, &models.SyncRun{
			RunID:      summary.RunID,
			Trigger:    summary.Trigger,
			Status:     summary.Status,
			StartedAt:  summary.StartedAt,
			FinishedAt: &summary.FinishedAt,
			LastError:  errPtr,
			StatsJSON:  stats,
		})
		return
	}
	_ = s.Store.FinishSyncRun(ctx, summary.RunID, summary.Status, errPtr, stats)
}

func (s *SyncService) observeRun(summary *RunSummary) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.SyncRuns.WithLabelValues(summary.Status).Inc()
	s.Metrics.SyncDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
}

func (s *SyncService) publish(summary *RunSummary) {
	if s.Hub == nil {
		return
	}
	s.Hub.Publish(signal.Event{
		Type:  signal.TypeIndicatorsUpdated,
		RunID: summary.RunID,
		Payload: map[string]any{
			"synced":     summary.Synced,
			"failed":     summary.Failed,
			"calculated": summary.Calculated,
		},
	})
	s.Hub.Publish(signal.Event{
		Type:  signal.TypeSyncFinished,
		RunID: summary.RunID,
		Payload: map[string]any{
			"status":     summary.Status,
			"stopped_by": summary.StoppedBy,
		},
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
