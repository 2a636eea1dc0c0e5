package registry

import (
	"testing"
	"time"
)

func TestLookupAndSymbolFallback(t *testing.T) {
	r := New()

	spec, ok := r.Spec("us_10y")
	if !ok {
		t.Fatalf("us_10y not found")
	}
	if spec.ExternalSymbol() != "DGS10" {
		t.Fatalf("symbol=%q want DGS10", spec.ExternalSymbol())
	}

	// No symbol override falls back to the slug.
	fg, ok := r.Spec("vxn")
	if !ok {
		t.Fatalf("vxn not found")
	}
	if fg.ExternalSymbol() != "vxn" {
		t.Fatalf("symbol=%q want vxn", fg.ExternalSymbol())
	}

	if _, ok := r.Spec("no_such_slug"); ok {
		t.Fatalf("unknown slug should not resolve")
	}
}

func TestDefaultRefreshInterval(t *testing.T) {
	r := New()
	fred, _ := r.Spec("us_10y")
	if fred.RefreshInterval != 24*time.Hour {
		t.Fatalf("FRED refresh=%v want 24h", fred.RefreshInterval)
	}
	tiingo, _ := r.Spec("gold")
	if tiingo.RefreshInterval != time.Hour {
		t.Fatalf("Tiingo refresh=%v want 1h", tiingo.RefreshInterval)
	}
}

func TestAvailableExcludesInternal(t *testing.T) {
	r := New()
	if _, ok := r.Spec("cp_3m_rate"); !ok {
		t.Fatalf("internal spec must stay resolvable by slug")
	}
	for _, s := range r.Available() {
		if s.Category == CategoryInternal {
			t.Fatalf("Available leaked internal spec %s", s.Slug)
		}
	}
	st := r.Stats()
	if st.Visible >= st.Total {
		t.Fatalf("internal specs not counted: visible=%d total=%d", st.Visible, st.Total)
	}
}

func TestEveryCalculatedSpecHasCalculator(t *testing.T) {
	r := New()
	for _, s := range r.All() {
		if s.Source != SourceCalculated {
			continue
		}
		c, ok := r.Calculator(s.Slug)
		if !ok {
			t.Fatalf("no calculator registered for %s", s.Slug)
		}
		if c.Slug() != s.Slug {
			t.Fatalf("calculator slug %s does not match spec %s", c.Slug(), s.Slug)
		}
		if len(c.Inputs()) == 0 {
			t.Fatalf("%s declares no inputs", s.Slug)
		}
	}
}
