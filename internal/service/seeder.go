package service

import (
	"context"

	"go.uber.org/zap"

	"macrolens/internal/models"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
)

// Seeder reconciles the indicators table with the registry at startup.
// Metadata is overwritten from the registry; sync bookkeeping columns are
// left alone so a reseed never resets staleness.
type Seeder struct {
	Registry *registry.Registry
	Store    repository.Repository
	Logger   *zap.Logger
}

type SeedResult struct {
	Seeded  int `json:"seeded"`
	Removed int `json:"removed"`
}

func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	specs := s.Registry.All()
	rows := make([]models.Indicator, 0, len(specs))
	slugs := make([]string, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, models.Indicator{
			Slug:            spec.Slug,
			Name:            spec.Name,
			Source:          string(spec.Source),
			Category:        string(spec.Category),
			Description:     spec.Description,
			Symbol:          spec.Symbol,
			Unit:            string(spec.Unit),
			RefreshInterval: models.FormatRefreshInterval(spec.RefreshInterval),
			LastStatus:      models.StatusPending,
		})
		slugs = append(slugs, spec.Slug)
	}
	if err := s.Store.UpsertIndicators(ctx, rows); err != nil {
		return SeedResult{}, err
	}
	removed, err := s.Store.DeleteIndicatorsNotIn(ctx, slugs)
	if err != nil {
		return SeedResult{}, err
	}
	result := SeedResult{Seeded: len(rows), Removed: int(removed)}
	if s.Logger != nil {
		s.Logger.Info("catalog seeded",
			zap.Int("indicators", result.Seeded),
			zap.Int("removed", result.Removed))
	}
	return result, nil
}
