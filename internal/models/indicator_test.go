package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseRefreshInterval(t *testing.T) {
	d, err := ParseRefreshInterval("60m")
	if err != nil || d != time.Hour {
		t.Fatalf("60m parsed to %v, %v", d, err)
	}
	d, err = ParseRefreshInterval("1440m")
	if err != nil || d != 24*time.Hour {
		t.Fatalf("1440m parsed to %v, %v", d, err)
	}
	for _, bad := range []string{"", "m", "-5m", "0m", "soon"} {
		if _, err := ParseRefreshInterval(bad); err == nil {
			t.Fatalf("%q should not parse", bad)
		}
	}
	if got := FormatRefreshInterval(time.Hour); got != "60m" {
		t.Fatalf("format=%q want 60m", got)
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	never := Indicator{RefreshInterval: "60m"}
	if !never.IsStale(now) {
		t.Fatalf("never-updated indicator must be stale")
	}

	// The boundary is inclusive: exactly one interval old is stale.
	cases := []struct {
		age   time.Duration
		stale bool
	}{
		{59 * time.Minute, false},
		{60 * time.Minute, true},
		{61 * time.Minute, true},
	}
	for _, c := range cases {
		ind := Indicator{RefreshInterval: "60m", LastUpdatedAt: at(c.age)}
		if ind.IsStale(now) != c.stale {
			t.Fatalf("age %v: stale=%v want %v", c.age, !c.stale, c.stale)
		}
	}

	broken := Indicator{RefreshInterval: "whenever", LastUpdatedAt: at(time.Minute)}
	if !broken.IsStale(now) {
		t.Fatalf("unreadable interval must count as stale")
	}
}

func TestAlertRuleMatches(t *testing.T) {
	above := AlertRule{Condition: AlertAbove, Threshold: decimal.NewFromInt(30)}
	if !above.Matches(decimal.NewFromInt(31)) {
		t.Fatalf("31 > 30 should match")
	}
	if above.Matches(decimal.NewFromInt(30)) {
		t.Fatalf("threshold itself should not match")
	}
	below := AlertRule{Condition: AlertBelow, Threshold: decimal.NewFromFloat(0.5)}
	if !below.Matches(decimal.NewFromFloat(0.25)) {
		t.Fatalf("0.25 < 0.5 should match")
	}
	bogus := AlertRule{Condition: "sideways", Threshold: decimal.Zero}
	if bogus.Matches(decimal.NewFromInt(1)) {
		t.Fatalf("unknown condition must never match")
	}
}
