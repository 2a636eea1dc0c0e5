package indicators

import (
	"fmt"

	"macrolens/internal/timeseries"
)

// Spread is the generic A-minus-B calculator used by the yield-curve,
// real-yield, and funding-stress indicators.
type Spread struct {
	SlugName string
	InputA   string
	InputB   string
}

func (s Spread) Slug() string     { return s.SlugName }
func (s Spread) Inputs() []string { return []string{s.InputA, s.InputB} }

func (s Spread) Calculate(inputs []timeseries.Series) (timeseries.Series, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%s requires 2 inputs: %s and %s", s.SlugName, s.InputA, s.InputB)
	}
	aligned := timeseries.AlignPair(inputs[0], inputs[1])
	out := make(timeseries.Series, 0, len(aligned))
	for _, row := range aligned {
		out = append(out, timeseries.Point{Timestamp: row.Timestamp, Value: row.A - row.B})
	}
	return out, nil
}

// YieldCurve10Y2Y is the classic recession signal: 10Y minus 2Y treasury.
func YieldCurve10Y2Y() Calculator {
	return Spread{SlugName: "yield_curve_10y_2y", InputA: "us_10y", InputB: "us_2y"}
}

// YieldCurve10Y3M tracks the 10Y minus 3M spread, the more accurate
// recession predictor.
func YieldCurve10Y3M() Calculator {
	return Spread{SlugName: "yield_curve_10y_3m", InputA: "us_10y", InputB: "us_3m"}
}

// RealYield10Y is the nominal 10Y yield minus breakeven inflation.
func RealYield10Y() Calculator {
	return Spread{SlugName: "real_yield", InputA: "us_10y", InputB: "breakeven_10y"}
}

// CommercialPaperSpread is CP 3M minus T-Bill 3M, a corporate funding
// stress gauge (TED spread alternative).
func CommercialPaperSpread() Calculator {
	return Spread{SlugName: "cp_bill_spread", InputA: "cp_3m_rate", InputB: "us_3m"}
}

// SOFRSpread is SOFR minus the Fed Funds rate; positive readings signal
// collateral scarcity or repo stress.
func SOFRSpread() Calculator {
	return Spread{SlugName: "sofr_spread", InputA: "sofr_30d", InputB: "fed_funds"}
}
