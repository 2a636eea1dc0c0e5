package indicators

import (
	"fmt"

	"macrolens/internal/timeseries"
)

// NetLiquidity is Fed balance sheet minus TGA minus RRP, in dollars. It is
// the liquidity backdrop that tends to drive equity markets.
type NetLiquidity struct{}

func (NetLiquidity) Slug() string { return "net_liquidity" }

func (NetLiquidity) Inputs() []string {
	return []string{"fed_balance_sheet", "treasury_tga", "fed_rrp"}
}

func (NetLiquidity) Calculate(inputs []timeseries.Series) (timeseries.Series, error) {
	if len(inputs) < 3 {
		return nil, fmt.Errorf("net_liquidity requires 3 inputs: Fed assets, TGA, RRP")
	}
	rows := timeseries.AlignMulti(inputs[:3])
	out := make(timeseries.Series, 0, len(rows))
	for _, row := range rows {
		// WALCL and WTREGEN are in millions, RRPONTSYD in billions;
		// everything is converted to plain dollars.
		fed := row.Values[0] * 1e6
		tga := row.Values[1] * 1e6
		rrp := row.Values[2] * 1e9
		out = append(out, timeseries.Point{Timestamp: row.Timestamp, Value: fed - tga - rrp})
	}
	return out, nil
}

// FinancialStress passes the St. Louis Fed stress index through unchanged;
// the raw index is already zero-centered.
type FinancialStress struct{}

func (FinancialStress) Slug() string { return "financial_stress" }

func (FinancialStress) Inputs() []string { return []string{"STLFSI4"} }

func (FinancialStress) Calculate(inputs []timeseries.Series) (timeseries.Series, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("financial_stress requires input STLFSI4")
	}
	return timeseries.Normalize(inputs[0]), nil
}
