package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"macrolens/internal/fetch"
	"macrolens/internal/indicators"
	"macrolens/internal/models"
	"macrolens/internal/registry"
	"macrolens/internal/repository"
	"macrolens/internal/timeseries"
)

func testRegistry() *registry.Registry {
	specs := []registry.Spec{
		{Slug: "us_10y", Name: "10Y", Source: registry.SourceFRED, Symbol: "DGS10", Category: registry.CategoryUSMacro},
		{Slug: "us_2y", Name: "2Y", Source: registry.SourceFRED, Symbol: "DGS2", Category: registry.CategoryUSMacro},
		{Slug: "gold", Name: "Gold", Source: registry.SourceTiingo, Symbol: "gld", Category: registry.CategoryCommodities, RefreshInterval: time.Hour},
		{Slug: "vxn", Name: "VXN", Source: registry.SourceManual, Category: registry.CategoryRisk},
		{Slug: "yield_curve_10y_2y", Name: "Curve", Source: registry.SourceCalculated, Category: registry.CategoryUSMacro},
		{Slug: "real_yield", Name: "Real Yield", Source: registry.SourceCalculated, Category: registry.CategoryUSMacro},
		{Slug: "breakeven_10y", Name: "Breakeven", Source: registry.SourceFRED, Symbol: "T10YIE", Category: registry.CategoryUSMacro},
		{Slug: "financial_stress", Name: "Stress", Source: registry.SourceCalculated, Category: registry.CategoryRisk},
	}
	calcs := []indicators.Calculator{
		indicators.YieldCurve10Y2Y(),
		indicators.RealYield10Y(),
		indicators.FinancialStress{},
	}
	return registry.NewWith(specs, calcs)
}

func testResolver(reg *registry.Registry, repo *stubRepo, fred *stubSource) *Resolver {
	return &Resolver{
		Registry: reg,
		Store:    repo,
		Sources: map[registry.Source]fetch.Source{
			registry.SourceFRED:   fred,
			registry.SourceTiingo: newStubSource("Tiingo"),
		},
	}
}

func seedPoints(t *testing.T, repo *stubRepo, slug string, vals map[time.Time]float64) {
	t.Helper()
	points := make([]models.IndicatorPoint, 0, len(vals))
	for ts, v := range vals {
		points = append(points, models.IndicatorPoint{Slug: slug, Timestamp: ts, Value: v, Source: "test"})
	}
	if err := repo.UpsertPoints(context.Background(), points); err != nil {
		t.Fatalf("seed points: %v", err)
	}
}

func seriesParamsAll() repository.SeriesParams {
	return repository.SeriesParams{}
}

func TestResolver_CalculatedFetchesDepsOnce(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	fred.data["DGS10"] = timeseries.Series{{Timestamp: day, Value: 4.2}}
	fred.data["DGS2"] = timeseries.Series{{Timestamp: day, Value: 3.7}}
	fred.data["T10YIE"] = timeseries.Series{{Timestamp: day, Value: 2.3}}
	r := testResolver(reg, repo, fred)

	res := NewResolution()
	curve, err := r.Resolve(context.Background(), res, "yield_curve_10y_2y", false, true)
	if err != nil {
		t.Fatalf("curve: %v", err)
	}
	if len(curve) != 1 || curve[0].Value != 4.2-3.7 {
		t.Fatalf("curve=%+v", curve)
	}

	// Same resolution: us_10y is memoized, only the new dep is fetched.
	if _, err := r.Resolve(context.Background(), res, "real_yield", false, true); err != nil {
		t.Fatalf("real_yield: %v", err)
	}
	if fred.callCount("DGS10") != 1 {
		t.Fatalf("DGS10 fetched %d times, want 1", fred.callCount("DGS10"))
	}
	if fred.callCount("T10YIE") != 1 {
		t.Fatalf("T10YIE fetched %d times, want 1", fred.callCount("T10YIE"))
	}

	// Calculated output is persisted under the system source.
	rows, _ := repo.GetSeries(context.Background(), "yield_curve_10y_2y", seriesParamsAll())
	if len(rows) != 1 || rows[0].Source != "System" {
		t.Fatalf("persisted calculated rows: %+v", rows)
	}
}

func TestResolver_NoFetchDepsUsesStoreOnly(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	r := testResolver(reg, repo, fred)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	seedPoints(t, repo, "us_10y", map[time.Time]float64{day: 4.0})
	seedPoints(t, repo, "us_2y", map[time.Time]float64{day: 3.0})

	out, err := r.Resolve(context.Background(), NewResolution(), "yield_curve_10y_2y", false, false)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 1 || out[0].Value != 1.0 {
		t.Fatalf("out=%+v", out)
	}
	if fred.totalCalls() != 0 {
		t.Fatalf("store-only resolve hit the network %d times", fred.totalCalls())
	}
}

func TestResolver_RawIDHeuristic(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	r := testResolver(reg, repo, fred)

	// Uppercase, no hyphen: treated as a FRED series id.
	if _, err := r.Resolve(context.Background(), NewResolution(), "DGS10X", false, true); err != nil {
		t.Fatalf("raw id resolve: %v", err)
	}
	if fred.callCount("DGS10X") != 1 {
		t.Fatalf("DGS10X not fetched")
	}

	// Lowercase unknown slug: rejected without touching the network.
	_, err := r.Resolve(context.Background(), NewResolution(), "my_custom_thing", false, true)
	if !errors.Is(err, ErrUnknownIndicator) {
		t.Fatalf("err=%v want ErrUnknownIndicator", err)
	}
	if fred.callCount("my_custom_thing") != 0 {
		t.Fatalf("unknown slug must not be fetched")
	}
}

func TestResolver_RawIDDependency(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	fred.data["STLFSI4"] = timeseries.Series{{Timestamp: day, Value: -0.4}}
	r := testResolver(reg, repo, fred)

	// financial_stress depends on the unregistered id STLFSI4, which the
	// resolver fetches directly from FRED.
	out, err := r.Resolve(context.Background(), NewResolution(), "financial_stress", false, true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 1 || out[0].Value != -0.4 {
		t.Fatalf("out=%+v", out)
	}
}

func TestResolver_ManualReturnsEmpty(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	r := testResolver(reg, repo, fred)

	out, err := r.Resolve(context.Background(), NewResolution(), "vxn", false, true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(out) != 0 {
		t.Fatalf("manual resolve produced data: %+v", out)
	}
	if fred.totalCalls() != 0 {
		t.Fatalf("manual resolve must not fetch")
	}
}

func TestResolver_ExternalAlwaysFetches(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	r := testResolver(reg, repo, fred)

	// Even a freshly-updated indicator with stored data goes to the
	// provider: skipping fresh entries is the scheduler's job, and an
	// explicit resolve means the caller wants new data.
	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour)
	seedPoints(t, repo, "us_10y", map[time.Time]float64{day: 4.5})
	_ = repo.UpdateIndicatorStatus(context.Background(), "us_10y", models.StatusActive, nil, &now)
	fred.data["DGS10"] = timeseries.Series{{Timestamp: day, Value: 4.7}}

	out, err := r.Resolve(context.Background(), NewResolution(), "us_10y", false, true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if fred.callCount("DGS10") != 1 {
		t.Fatalf("DGS10 fetched %d times, want 1", fred.callCount("DGS10"))
	}
	if len(out) != 1 || out[0].Value != 4.7 {
		t.Fatalf("out=%+v", out)
	}
}

func TestResolver_RepeatedResolveOverwritesPoints(t *testing.T) {
	reg := testRegistry()
	repo := newStubRepo()
	fred := newStubSource("FRED")
	r := testResolver(reg, repo, fred)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	fred.data["DGS10"] = timeseries.Series{{Timestamp: day, Value: 4.2}}
	if _, err := r.Resolve(context.Background(), NewResolution(), "us_10y", false, true); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// A revision for the same timestamp replaces the stored value rather
	// than adding a second row.
	fred.data["DGS10"] = timeseries.Series{{Timestamp: day, Value: 4.3}}
	if _, err := r.Resolve(context.Background(), NewResolution(), "us_10y", false, true); err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	rows, _ := repo.GetSeries(context.Background(), "us_10y", seriesParamsAll())
	if len(rows) != 1 {
		t.Fatalf("rows=%d want 1 (%+v)", len(rows), rows)
	}
	if rows[0].Value != 4.3 {
		t.Fatalf("value=%v want 4.3", rows[0].Value)
	}
}

func TestResolver_CycleDetection(t *testing.T) {
	specs := []registry.Spec{
		{Slug: "a", Source: registry.SourceCalculated},
		{Slug: "b", Source: registry.SourceCalculated},
	}
	calcs := []indicators.Calculator{
		indicators.Spread{SlugName: "a", InputA: "b", InputB: "b"},
		indicators.Spread{SlugName: "b", InputA: "a", InputB: "a"},
	}
	reg := registry.NewWith(specs, calcs)
	r := testResolver(reg, newStubRepo(), newStubSource("FRED"))

	_, err := r.Resolve(context.Background(), NewResolution(), "a", false, true)
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("err=%v want ErrDependencyCycle", err)
	}
}
