package registry

import (
	"time"

	"macrolens/internal/indicators"
)

// Source identifies where an indicator's raw data comes from.
type Source string

const (
	SourceFRED        Source = "FRED"
	SourceTiingo      Source = "Tiingo"
	SourceBinance     Source = "Binance"
	SourceAlternative Source = "Alternative"
	SourceManual      Source = "Manual"
	SourceCalculated  Source = "Calculated"
)

// External reports whether the source is fetched from an external provider.
func (s Source) External() bool {
	switch s {
	case SourceFRED, SourceTiingo, SourceBinance, SourceAlternative:
		return true
	}
	return false
}

type Category string

const (
	CategoryValuation   Category = "Valuation"
	CategoryLiquidity   Category = "Liquidity"
	CategoryUSMacro     Category = "US Macro"
	CategoryUSStocks    Category = "US Stocks"
	CategoryCrypto      Category = "Crypto"
	CategoryCommodities Category = "Commodities"
	CategoryGlobal      Category = "Global"
	CategoryRisk        Category = "Risk"
	// CategoryInternal marks specs that exist only as calculation inputs.
	// They are resolvable by slug but hidden from the available listing.
	CategoryInternal Category = "Internal"
)

type Unit string

const (
	UnitIndex    Unit = "index"
	UnitPercent  Unit = "percent"
	UnitUSD      Unit = "usd"
	UnitRatio    Unit = "ratio"
	UnitMillions Unit = "millions"
	UnitBillions Unit = "billions"
	UnitDollars  Unit = "dollars"
)

// DefaultRefreshInterval applies when a spec does not set one.
const DefaultRefreshInterval = 24 * time.Hour

// Spec is the immutable metadata for one indicator. Slug is the unique key
// shared by the registry, the store, and the API.
type Spec struct {
	Slug            string        `json:"slug"`
	Name            string        `json:"name"`
	Source          Source        `json:"source"`
	Category        Category      `json:"category"`
	Description     string        `json:"description,omitempty"`
	Symbol          string        `json:"symbol,omitempty"` // external symbol; empty means the slug itself
	Unit            Unit          `json:"unit"`
	RefreshInterval time.Duration `json:"refresh_interval"`
}

// ExternalSymbol returns the provider symbol for the spec, falling back to
// the slug when no override is configured.
func (s Spec) ExternalSymbol() string {
	if s.Symbol != "" {
		return s.Symbol
	}
	return s.Slug
}

// Registry is the process catalog of indicator specs and calculators. It is
// built once at startup and passed by reference to the resolver and the
// scheduler; there is no package-level instance.
type Registry struct {
	specs  []Spec
	bySlug map[string]int
	calcs  map[string]indicators.Calculator
}

// New builds the default catalog.
func New() *Registry {
	return build(defaultSpecs(), defaultCalculators())
}

// NewWith builds a registry from an explicit spec table and calculator set.
// Used by tests and by hosts that trim the catalog.
func NewWith(specs []Spec, calcs []indicators.Calculator) *Registry {
	return build(specs, calcs)
}

func build(specs []Spec, calcs []indicators.Calculator) *Registry {
	r := &Registry{
		specs:  make([]Spec, 0, len(specs)),
		bySlug: make(map[string]int, len(specs)),
		calcs:  make(map[string]indicators.Calculator, len(calcs)),
	}
	for _, spec := range specs {
		if spec.RefreshInterval <= 0 {
			spec.RefreshInterval = DefaultRefreshInterval
		}
		if _, dup := r.bySlug[spec.Slug]; dup {
			continue
		}
		r.bySlug[spec.Slug] = len(r.specs)
		r.specs = append(r.specs, spec)
	}
	for _, c := range calcs {
		r.calcs[c.Slug()] = c
	}
	return r
}

// Spec returns the metadata for slug.
func (r *Registry) Spec(slug string) (Spec, bool) {
	idx, ok := r.bySlug[slug]
	if !ok {
		return Spec{}, false
	}
	return r.specs[idx], true
}

// Calculator returns the computation unit for a calculated slug. A slug may
// have metadata but no calculator; callers treat that as an error.
func (r *Registry) Calculator(slug string) (indicators.Calculator, bool) {
	c, ok := r.calcs[slug]
	return c, ok
}

// All returns every spec, including internal-only entries.
func (r *Registry) All() []Spec {
	out := make([]Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Available returns the specs shown to consumers; internal-only entries are
// excluded but remain resolvable by slug.
func (r *Registry) Available() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		if s.Category == CategoryInternal {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Stats summarizes the catalog composition.
type Stats struct {
	Total       int `json:"total"`
	Visible     int `json:"visible"`
	FRED        int `json:"fred"`
	Tiingo      int `json:"tiingo"`
	Binance     int `json:"binance"`
	Alternative int `json:"alternative"`
	Manual      int `json:"manual"`
	Calculated  int `json:"calculated"`
}

func (r *Registry) Stats() Stats {
	st := Stats{Total: len(r.specs)}
	for _, s := range r.specs {
		if s.Category != CategoryInternal {
			st.Visible++
		}
		switch s.Source {
		case SourceFRED:
			st.FRED++
		case SourceTiingo:
			st.Tiingo++
		case SourceBinance:
			st.Binance++
		case SourceAlternative:
			st.Alternative++
		case SourceManual:
			st.Manual++
		case SourceCalculated:
			st.Calculated++
		}
	}
	return st
}
