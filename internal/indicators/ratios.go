package indicators

import (
	"fmt"

	"macrolens/internal/timeseries"
)

// ratio divides series A by series B, skipping zero denominators.
type ratio struct {
	slug   string
	inputA string
	inputB string
	scale  float64
}

func (r ratio) Slug() string     { return r.slug }
func (r ratio) Inputs() []string { return []string{r.inputA, r.inputB} }

func (r ratio) Calculate(inputs []timeseries.Series) (timeseries.Series, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("%s requires 2 inputs: %s and %s", r.slug, r.inputA, r.inputB)
	}
	aligned := timeseries.AlignPair(inputs[0], inputs[1])
	if len(aligned) == 0 {
		return nil, fmt.Errorf("%s: no overlapping data after alignment", r.slug)
	}
	out := make(timeseries.Series, 0, len(aligned))
	for _, row := range aligned {
		if row.B == 0 {
			continue
		}
		out = append(out, timeseries.Point{Timestamp: row.Timestamp, Value: (row.A / row.B) * r.scale})
	}
	return out, nil
}

// CopperGoldRatio rises with growth expectations and falls risk-off.
// Scaled by 1000 for readability.
func CopperGoldRatio() Calculator {
	return ratio{slug: "copper_gold_ratio", inputA: "copper", inputB: "gold", scale: 1000}
}

// GoldSilverRatio tracks safe-haven demand: high = fear, low = risk-on.
func GoldSilverRatio() Calculator {
	return ratio{slug: "gold_silver_ratio", inputA: "gold", inputB: "silver", scale: 1}
}
