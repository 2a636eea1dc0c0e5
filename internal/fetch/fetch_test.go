package fetch

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestKindFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{429, KindRateLimited},
		{401, KindAuthFailed},
		{403, KindAuthFailed},
		{400, KindBadRequest},
		{500, KindTransient},
		{503, KindTransient},
		{404, KindUnknown},
	}
	for _, c := range cases {
		if got := KindFromStatus(c.status); got != c.want {
			t.Fatalf("status %d: kind=%s want %s", c.status, got, c.want)
		}
	}
}

func TestKindFatal(t *testing.T) {
	for _, k := range []Kind{KindRateLimited, KindAuthFailed, KindBadRequest} {
		if !k.Fatal() {
			t.Fatalf("%s should stop the batch", k)
		}
	}
	for _, k := range []Kind{KindTransient, KindUnknown} {
		if k.Fatal() {
			t.Fatalf("%s should not stop the batch", k)
		}
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := statusError("FRED", "DGS10", http.StatusTooManyRequests, []byte("quota"))
	wrapped := errors.Join(errors.New("resolve us_10y"), inner)
	if KindOf(wrapped) != KindRateLimited {
		t.Fatalf("kind lost through wrapping: %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("plain errors must report unknown")
	}
}

func TestParseFREDObservations_SkipsMissing(t *testing.T) {
	body := []byte(`{"observations":[
		{"date":"2026-01-02","value":"4.25"},
		{"date":"2026-01-03","value":"."},
		{"date":"2026-01-04","value":"4.30"}
	]}`)
	s, err := parseFREDObservations("DGS10", body)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len=%d want 2 (missing value must be dropped)", len(s))
	}
	if s[0].Value != 4.25 || s[1].Value != 4.30 {
		t.Fatalf("values: %+v", s)
	}
}

func TestParseTiingoPrices_AdjCloseFallback(t *testing.T) {
	body := []byte(`[
		{"date":"2026-01-02T00:00:00.000Z","close":100,"adjClose":99.5},
		{"date":"2026-01-03T00:00:00.000Z","close":101,"adjClose":0}
	]`)
	s, err := parseTiingoPrices("spy", body)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(s) != 2 || s[0].Value != 99.5 || s[1].Value != 101 {
		t.Fatalf("unexpected series: %+v", s)
	}
}

func TestParseBinanceKlines(t *testing.T) {
	body := []byte(`[
		[1767312000000,"42000.0","43000.0","41000.0","42500.5",100,1767398399999],
		[1767398400000,"42500.5","44000.0","42000.0","43210.0",100,1767484799999]
	]`)
	s, err := parseBinanceKlines("BTCUSDT", body)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len=%d want 2", len(s))
	}
	if s[0].Value != 42500.5 {
		t.Fatalf("close=%v want 42500.5", s[0].Value)
	}
	if s[0].Timestamp != time.UnixMilli(1767312000000).UTC() {
		t.Fatalf("timestamp=%v", s[0].Timestamp)
	}
}

func TestParseFearGreed(t *testing.T) {
	body := []byte(`{"data":[
		{"value":"25","value_classification":"Fear","timestamp":"1767312000"},
		{"value":"bogus","timestamp":"1767398400"},
		{"value":"70","timestamp":"1767398400"}
	]}`)
	s, err := parseFearGreed(body)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(s) != 2 {
		t.Fatalf("len=%d want 2 (bad value row dropped)", len(s))
	}
	if s[1].Value != 70 {
		t.Fatalf("latest=%v want 70", s[1].Value)
	}
}

func TestStartDate(t *testing.T) {
	if !startDate(true).Equal(BackfillStart) {
		t.Fatalf("backfill must start at %v", BackfillStart)
	}
	if time.Since(startDate(false)) > recentWindow+time.Minute {
		t.Fatalf("incremental start too far back: %v", startDate(false))
	}
}
