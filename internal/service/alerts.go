package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"macrolens/internal/metrics"
	"macrolens/internal/repository"
	"macrolens/internal/signal"
)

// defaultAlertCooldown keeps a firing rule quiet across consecutive sync
// cycles instead of re-alerting four times a day.
const defaultAlertCooldown = 6 * time.Hour

// AlertService checks enabled threshold rules against the latest stored
// value of each indicator, typically right after a sync run.
type AlertService struct {
	Store    repository.Repository
	Hub      *signal.Hub
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Cooldown time.Duration

	// Now is a test hook; nil means time.Now.
	Now func() time.Time
}

func (a *AlertService) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// Evaluate fires matching rules and returns how many triggered.
func (a *AlertService) Evaluate(ctx context.Context) (int, error) {
	cooldown := a.Cooldown
	if cooldown <= 0 {
		cooldown = defaultAlertCooldown
	}
	rules, err := a.Store.ListAlertRules(ctx, true)
	if err != nil {
		return 0, err
	}
	now := a.now()
	fired := 0
	for _, rule := range rules {
		latest, err := a.Store.LatestPoint(ctx, rule.Slug)
		if err != nil {
			return fired, err
		}
		if latest == nil {
			continue
		}
		if !rule.Matches(decimal.NewFromFloat(latest.Value)) {
			continue
		}
		if rule.LastTriggeredAt != nil && now.Sub(*rule.LastTriggeredAt) < cooldown {
			continue
		}
		if err := a.Store.MarkAlertTriggered(ctx, rule.ID, now); err != nil {
			return fired, err
		}
		fired++
		if a.Metrics != nil {
			a.Metrics.AlertsFired.Inc()
		}
		if a.Hub != nil {
			a.Hub.Publish(signal.Event{
				Type: signal.TypeAlert,
				Slug: rule.Slug,
				Payload: map[string]any{
					"rule_id":   rule.ID,
					"condition": rule.Condition,
					"threshold": rule.Threshold.String(),
					"value":     latest.Value,
				},
			})
		}
		if a.Logger != nil {
			a.Logger.Info("alert fired",
				zap.Uint64("rule_id", rule.ID),
				zap.String("slug", rule.Slug),
				zap.String("condition", rule.Condition),
				zap.String("threshold", rule.Threshold.String()),
				zap.Float64("value", latest.Value))
		}
	}
	return fired, nil
}
