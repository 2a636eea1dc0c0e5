package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"macrolens/internal/fetch"
	"macrolens/internal/metrics"
	"macrolens/internal/models"
	"macrolens/internal/ratelimit"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
	"macrolens/internal/timeseries"
)

var (
	ErrUnknownIndicator  = errors.New("unknown indicator")
	ErrDependencyCycle   = errors.New("dependency cycle")
	ErrMissingCalculator = errors.New("missing calculator")
	ErrNoProvider        = errors.New("no provider configured")
)

// Resolver turns a slug into a series: fetching from a provider, computing
// through a calculator, or reading the store, depending on the spec.
type Resolver struct {
	Registry *registry.Registry
	Store    repository.Repository
	Sources  map[registry.Source]fetch.Source
	Limiter  *ratelimit.Limiter
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// Now is a test hook; nil means time.Now.
	Now func() time.Time
}

// Resolution memoizes resolved series for the duration of one sync run, so
// shared dependencies are fetched once per run and never cached across runs.
type Resolution struct {
	memo map[string]timeseries.Series
}

func NewResolution() *Resolution {
	return &Resolution{memo: map[string]timeseries.Series{}}
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// Resolve returns the series for slug. External slugs always hit their
// provider. With fetchDeps set, calculated indicators pull their inputs
// through the resolver; without it, inputs come from the store only and
// resolution never touches the network for dependencies.
func (r *Resolver) Resolve(ctx context.Context, res *Resolution, slug string, backfill, fetchDeps bool) (timeseries.Series, error) {
	if res == nil {
		res = NewResolution()
	}
	order, err := r.plan(slug, fetchDeps)
	if err != nil {
		return nil, err
	}
	for _, s := range order {
		if _, done := res.memo[s]; done {
			continue
		}
		series, err := r.resolveOne(ctx, res, s, backfill, fetchDeps)
		if err != nil {
			r.countOutcome("error")
			if s == slug {
				return nil, err
			}
			return nil, fmt.Errorf("resolve %s: dependency %s: %w", slug, s, err)
		}
		res.memo[s] = series
	}
	return res.memo[slug], nil
}

// plan walks the dependency graph iteratively and returns slugs in
// dependencies-first order. A slug revisited while still on the walk stack
// is a cycle.
func (r *Resolver) plan(slug string, fetchDeps bool) ([]string, error) {
	const (
		visiting = 1
		done     = 2
	)
	type frame struct {
		slug string
		deps []string
		next int
	}
	state := map[string]int{slug: visiting}
	stack := []frame{{slug: slug, deps: r.depsOf(slug, fetchDeps)}}
	var order []string
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.deps) {
			dep := top.deps[top.next]
			top.next++
			switch state[dep] {
			case visiting:
				return nil, fmt.Errorf("%w: %s -> %s", ErrDependencyCycle, top.slug, dep)
			case done:
			default:
				state[dep] = visiting
				stack = append(stack, frame{slug: dep, deps: r.depsOf(dep, fetchDeps)})
			}
			continue
		}
		state[top.slug] = done
		order = append(order, top.slug)
		stack = stack[:len(stack)-1]
	}
	return order, nil
}

// depsOf returns the inputs a slug needs resolved first. Only calculated
// indicators have dependencies, and only when the run is allowed to fetch
// them.
func (r *Resolver) depsOf(slug string, fetchDeps bool) []string {
	if !fetchDeps {
		return nil
	}
	spec, ok := r.Registry.Spec(slug)
	if !ok || spec.Source != registry.SourceCalculated {
		return nil
	}
	if calc, ok := r.Registry.Calculator(slug); ok {
		return calc.Inputs()
	}
	return nil
}

func (r *Resolver) resolveOne(ctx context.Context, res *Resolution, slug string, backfill, fetchDeps bool) (timeseries.Series, error) {
	spec, ok := r.Registry.Spec(slug)
	if !ok {
		return r.resolveRawID(ctx, slug, backfill)
	}
	switch {
	case spec.Source == registry.SourceManual:
		// Manual data is entered through the API; resolution never
		// synthesizes values for it.
		r.countOutcome("manual")
		return timeseries.Series{}, nil
	case spec.Source == registry.SourceCalculated:
		return r.resolveCalculated(ctx, res, spec, fetchDeps)
	case spec.Source.External():
		return r.resolveExternal(ctx, spec, backfill)
	default:
		return nil, fmt.Errorf("%w: %s has unsupported source %q", ErrUnknownIndicator, slug, spec.Source)
	}
}

// resolveExternal always goes to the provider. Freshness is the
// scheduler's concern: it skips fresh indicators when building the stale
// set, so an explicit resolve here means the caller wants new data.
func (r *Resolver) resolveExternal(ctx context.Context, spec registry.Spec, backfill bool) (timeseries.Series, error) {
	src, ok := r.Sources[spec.Source]
	if !ok || src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, spec.Source)
	}

	// First fetch for an empty series always backfills the full history.
	if !backfill {
		n, err := r.Store.CountPoints(ctx, spec.Slug)
		if err != nil {
			return nil, err
		}
		backfill = n == 0
	}

	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, string(spec.Source)); err != nil {
			return nil, err
		}
	}
	series, err := src.Fetch(ctx, spec.ExternalSymbol(), backfill)
	if err != nil {
		r.recordFailure(ctx, spec.Slug, err)
		return nil, err
	}
	if err := r.persist(ctx, spec.Slug, string(spec.Source), series); err != nil {
		return nil, err
	}
	r.countOutcome("fetched")
	if r.Logger != nil {
		r.Logger.Debug("fetched indicator",
			zap.String("slug", spec.Slug),
			zap.String("source", string(spec.Source)),
			zap.Int("points", len(series)),
			zap.Bool("backfill", backfill))
	}
	return series, nil
}

func (r *Resolver) resolveCalculated(ctx context.Context, res *Resolution, spec registry.Spec, fetchDeps bool) (timeseries.Series, error) {
	calc, ok := r.Registry.Calculator(spec.Slug)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCalculator, spec.Slug)
	}
	declared := calc.Inputs()
	inputs := make([]timeseries.Series, 0, len(declared))
	for _, dep := range declared {
		if fetchDeps {
			series, done := res.memo[dep]
			if !done {
				return nil, fmt.Errorf("input %s for %s not resolved", dep, spec.Slug)
			}
			inputs = append(inputs, series)
			continue
		}
		stored, err := r.storedSeries(ctx, dep)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, stored)
	}
	out, err := calc.Calculate(inputs)
	if err != nil {
		r.recordFailure(ctx, spec.Slug, err)
		return nil, err
	}
	if err := r.persist(ctx, spec.Slug, models.PointSourceSystem, out); err != nil {
		return nil, err
	}
	r.countOutcome("calculated")
	return out, nil
}

// resolveRawID handles dependency slugs absent from the registry. IDs that
// look like provider series codes (no lowercase, no hyphen) go straight to
// FRED; anything else is a typo or a missing catalog entry.
func (r *Resolver) resolveRawID(ctx context.Context, slug string, backfill bool) (timeseries.Series, error) {
	if !looksLikeSeriesID(slug) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, slug)
	}
	src, ok := r.Sources[registry.SourceFRED]
	if !ok || src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, registry.SourceFRED)
	}
	if r.Limiter != nil {
		if err := r.Limiter.Wait(ctx, string(registry.SourceFRED)); err != nil {
			return nil, err
		}
	}
	series, err := src.Fetch(ctx, slug, backfill)
	if err != nil {
		return nil, err
	}
	r.countOutcome("fetched")
	return series, nil
}

func looksLikeSeriesID(slug string) bool {
	for _, c := range slug {
		if c == '-' || (c >= 'a' && c <= 'z') {
			return false
		}
	}
	return slug != ""
}

func (r *Resolver) storedSeries(ctx context.Context, slug string) (timeseries.Series, error) {
	rows, err := r.Store.GetSeries(ctx, slug, repository.SeriesParams{})
	if err != nil {
		return nil, err
	}
	out := make(timeseries.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, timeseries.Point{Timestamp: row.Timestamp, Value: row.Value})
	}
	return out, nil
}

func (r *Resolver) persist(ctx context.Context, slug, source string, series timeseries.Series) error {
	points := make([]models.IndicatorPoint, 0, len(series))
	for _, p := range series {
		points = append(points, models.IndicatorPoint{
			Slug:      slug,
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Source:    source,
		})
	}
	if err := r.Store.UpsertPoints(ctx, points); err != nil {
		return err
	}
	if r.Metrics != nil {
		r.Metrics.PointsUpserted.Add(float64(len(points)))
	}
	now := r.now()
	return r.Store.UpdateIndicatorStatus(ctx, slug, models.StatusActive, nil, &now)
}

func (r *Resolver) recordFailure(ctx context.Context, slug string, cause error) {
	msg := cause.Error()
	_ = r.Store.UpdateIndicatorStatus(ctx, slug, models.StatusError, &msg, nil)
	if r.Metrics != nil {
		var fe *fetch.Error
		if errors.As(cause, &fe) {
			r.Metrics.FetchErrors.WithLabelValues(fe.Provider, string(fe.Kind)).Inc()
		}
	}
	if r.Logger != nil {
		r.Logger.Warn("indicator resolution failed", zap.String("slug", slug), zap.Error(cause))
	}
}

func (r *Resolver) countOutcome(outcome string) {
	if r.Metrics != nil {
		r.Metrics.ResolveTotal.WithLabelValues(outcome).Inc()
	}
}
