package indicators

import (
	"fmt"

	"macrolens/internal/timeseries"
)

// BuffettIndicator is total US market cap over GDP, in percent.
type BuffettIndicator struct{}

func (BuffettIndicator) Slug() string { return "buffett_indicator" }

func (BuffettIndicator) Inputs() []string { return []string{"us_market_cap", "gdp"} }

func (BuffettIndicator) Calculate(inputs []timeseries.Series) (timeseries.Series, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("buffett_indicator requires 2 inputs: market cap and GDP")
	}
	marketCap, gdp := inputs[0], inputs[1]
	if len(marketCap) == 0 || len(gdp) == 0 {
		return nil, fmt.Errorf("buffett_indicator: empty input data")
	}
	aligned := timeseries.AlignPair(marketCap, gdp)
	out := make(timeseries.Series, 0, len(aligned))
	for _, row := range aligned {
		if row.B == 0 {
			continue
		}
		// NCBEILQ027S is in millions, GDP in billions.
		mcBillions := row.A / 1000.0
		out = append(out, timeseries.Point{Timestamp: row.Timestamp, Value: (mcBillions / row.B) * 100.0})
	}
	return out, nil
}

// YieldGap compares the S&P 500 earnings yield against the 10Y treasury
// yield. Positive = stocks cheap relative to bonds.
type YieldGap struct{}

func (YieldGap) Slug() string { return "yield_gap" }

func (YieldGap) Inputs() []string { return []string{"SP500PE12M", "us_10y"} }

func (YieldGap) Calculate(inputs []timeseries.Series) (timeseries.Series, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("yield_gap requires 2 inputs: PE ratio and 10Y yield")
	}
	aligned := timeseries.AlignPair(inputs[0], inputs[1])
	out := make(timeseries.Series, 0, len(aligned))
	for _, row := range aligned {
		pe := row.A
		earningsYield := 0.0
		if pe != 0 {
			earningsYield = (1.0 / pe) * 100.0
		}
		out = append(out, timeseries.Point{Timestamp: row.Timestamp, Value: earningsYield - row.B})
	}
	return out, nil
}
