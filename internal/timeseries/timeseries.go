package timeseries

import (
	"sort"
	"time"
)

// Point is a single observation of an indicator at a UTC instant.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is an ascending, timestamp-unique sequence of points for one indicator.
type Series []Point

// Normalize sorts the series ascending and drops duplicate timestamps,
// keeping the last value seen for each instant.
func Normalize(s Series) Series {
	if len(s) == 0 {
		return s
	}
	byTS := make(map[time.Time]float64, len(s))
	for _, p := range s {
		byTS[p.Timestamp.UTC()] = p.Value
	}
	out := make(Series, 0, len(byTS))
	for ts, v := range byTS {
		out = append(out, Point{Timestamp: ts, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// AlignedPair is one row of a two-series alignment.
type AlignedPair struct {
	Timestamp time.Time
	A, B      float64
}

// AlignPair joins series a with series b on a's timestamps, carrying the last
// known value of b forward. Financial series often differ in frequency
// (daily vs quarterly), so the slower series is forward-filled onto the
// faster one. Rows before b's first observation are skipped.
func AlignPair(a, b Series) []AlignedPair {
	a = Normalize(a)
	b = Normalize(b)

	out := make([]AlignedPair, 0, len(a))
	var lastB float64
	haveB := false
	bi := 0
	for _, pa := range a {
		for bi < len(b) && !b[bi].Timestamp.After(pa.Timestamp) {
			lastB = b[bi].Value
			haveB = true
			bi++
		}
		if !haveB {
			continue
		}
		out = append(out, AlignedPair{Timestamp: pa.Timestamp, A: pa.Value, B: lastB})
	}
	return out
}

// AlignedRow is one row of a multi-series alignment.
type AlignedRow struct {
	Timestamp time.Time
	Values    []float64
}

// AlignMulti forward-fills every input series onto the union of all input
// timestamps. Rows are emitted only once every series has produced at least
// one value, so the warm-up period is skipped.
func AlignMulti(list []Series) []AlignedRow {
	if len(list) == 0 {
		return nil
	}
	normalized := make([]Series, len(list))
	tsSet := make(map[time.Time]struct{})
	for i, s := range list {
		normalized[i] = Normalize(s)
		for _, p := range normalized[i] {
			tsSet[p.Timestamp] = struct{}{}
		}
	}
	stamps := make([]time.Time, 0, len(tsSet))
	for ts := range tsSet {
		stamps = append(stamps, ts)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Before(stamps[j]) })

	idx := make([]int, len(normalized))
	current := make([]float64, len(normalized))
	have := make([]bool, len(normalized))

	var out []AlignedRow
	for _, ts := range stamps {
		for i, s := range normalized {
			for idx[i] < len(s) && !s[idx[i]].Timestamp.After(ts) {
				current[i] = s[idx[i]].Value
				have[i] = true
				idx[i]++
			}
		}
		ready := true
		for _, h := range have {
			if !h {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		row := AlignedRow{Timestamp: ts, Values: make([]float64, len(current))}
		copy(row.Values, current)
		out = append(out, row)
	}
	return out
}

// Latest returns the most recent point, or false when the series is empty.
func Latest(s Series) (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	latest := s[0]
	for _, p := range s[1:] {
		if p.Timestamp.After(latest.Timestamp) {
			latest = p
		}
	}
	return latest, true
}
