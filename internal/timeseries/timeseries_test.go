package timeseries

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_SortsAndDedupes(t *testing.T) {
	s := Series{
		{Timestamp: day(3), Value: 3},
		{Timestamp: day(1), Value: 1},
		{Timestamp: day(3), Value: 30},
		{Timestamp: day(2), Value: 2},
	}
	out := Normalize(s)
	if len(out) != 3 {
		t.Fatalf("len=%d want 3", len(out))
	}
	if !out[0].Timestamp.Equal(day(1)) || !out[2].Timestamp.Equal(day(3)) {
		t.Fatalf("not sorted: %v", out)
	}
	if out[2].Value != 30 {
		t.Fatalf("duplicate timestamp should keep last value, got %v", out[2].Value)
	}
}

func TestAlignPair_ForwardFill(t *testing.T) {
	daily := Series{
		{Timestamp: day(1), Value: 10},
		{Timestamp: day(2), Value: 11},
		{Timestamp: day(3), Value: 12},
		{Timestamp: day(4), Value: 13},
	}
	slow := Series{
		{Timestamp: day(2), Value: 100},
		{Timestamp: day(4), Value: 200},
	}
	rows := AlignPair(daily, slow)
	if len(rows) != 3 {
		t.Fatalf("len=%d want 3 (day 1 has no slow value yet)", len(rows))
	}
	if rows[0].B != 100 || rows[1].B != 100 {
		t.Fatalf("slow series should forward fill: %+v", rows)
	}
	if rows[2].B != 200 {
		t.Fatalf("day 4 should pick up fresh slow value, got %v", rows[2].B)
	}
}

func TestAlignPair_ExactMatch(t *testing.T) {
	a := Series{{Timestamp: day(1), Value: 10}, {Timestamp: day(2), Value: 12}}
	b := Series{{Timestamp: day(1), Value: 4}, {Timestamp: day(2), Value: 4}}
	rows := AlignPair(a, b)
	if len(rows) != 2 {
		t.Fatalf("len=%d want 2", len(rows))
	}
	if rows[0].A-rows[0].B != 6 || rows[1].A-rows[1].B != 8 {
		t.Fatalf("unexpected alignment: %+v", rows)
	}
}

func TestAlignMulti_SkipsWarmup(t *testing.T) {
	a := Series{{Timestamp: day(1), Value: 1}, {Timestamp: day(3), Value: 3}}
	b := Series{{Timestamp: day(2), Value: 20}}
	c := Series{{Timestamp: day(2), Value: 200}, {Timestamp: day(3), Value: 300}}
	rows := AlignMulti([]Series{a, b, c})
	if len(rows) != 2 {
		t.Fatalf("len=%d want 2", len(rows))
	}
	if !rows[0].Timestamp.Equal(day(2)) {
		t.Fatalf("first full row should be day 2, got %v", rows[0].Timestamp)
	}
	if rows[1].Values[0] != 3 || rows[1].Values[1] != 20 || rows[1].Values[2] != 300 {
		t.Fatalf("day 3 row should forward fill b: %+v", rows[1])
	}
}

func TestLatest(t *testing.T) {
	if _, ok := Latest(nil); ok {
		t.Fatalf("empty series should report no latest point")
	}
	p, ok := Latest(Series{{Timestamp: day(2), Value: 2}, {Timestamp: day(5), Value: 5}, {Timestamp: day(3), Value: 3}})
	if !ok || p.Value != 5 {
		t.Fatalf("latest=%+v ok=%v", p, ok)
	}
}
