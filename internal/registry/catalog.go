package registry

import (
	"time"

	"macrolens/internal/indicators"
)

// The static catalog. Tiingo and Binance series refresh hourly, everything
// else daily. Internal entries exist only as calculation inputs.

const hourly = 60 * time.Minute

func defaultSpecs() []Spec {
	return []Spec{
		// Calculated indicators.
		{Slug: "buffett_indicator", Name: "Buffett Indicator", Source: SourceCalculated, Category: CategoryValuation,
			Description: "Market cap to GDP ratio. >100% = overvalued", Unit: UnitPercent},
		{Slug: "yield_curve_10y_2y", Name: "10Y-2Y Yield Curve", Source: SourceCalculated, Category: CategoryUSMacro,
			Description: "Spread between 10Y and 2Y treasury. Negative = recession signal", Unit: UnitPercent},
		{Slug: "yield_curve_10y_3m", Name: "10Y-3M Yield Curve", Source: SourceCalculated, Category: CategoryUSMacro,
			Description: "Spread between 10Y and 3M treasury", Unit: UnitPercent},
		{Slug: "net_liquidity", Name: "Net Liquidity", Source: SourceCalculated, Category: CategoryLiquidity,
			Description: "Fed balance sheet - TGA - RRP", Unit: UnitDollars},
		{Slug: "financial_stress", Name: "Financial Stress Index", Source: SourceCalculated, Category: CategoryRisk,
			Description: "St. Louis Fed financial stress index", Unit: UnitIndex},
		{Slug: "copper_gold_ratio", Name: "Copper/Gold Ratio", Source: SourceCalculated, Category: CategoryGlobal,
			Description: "Economic health gauge. Rising = growth, falling = risk-off", Unit: UnitRatio},
		{Slug: "gold_silver_ratio", Name: "Gold/Silver Ratio", Source: SourceCalculated, Category: CategoryCommodities,
			Description: "Safe haven demand. High = fear", Unit: UnitRatio},
		{Slug: "real_yield", Name: "Real Yield (10Y)", Source: SourceCalculated, Category: CategoryUSMacro,
			Description: "10Y treasury minus breakeven inflation", Unit: UnitPercent},
		{Slug: "yield_gap", Name: "Yield Gap", Source: SourceCalculated, Category: CategoryValuation,
			Description: "S&P 500 earnings yield minus 10Y treasury yield", Unit: UnitPercent},
		{Slug: "cp_bill_spread", Name: "Commercial Paper Spread", Source: SourceCalculated, Category: CategoryRisk,
			Description: "CP 3M - T-Bill 3M corporate funding stress", Unit: UnitPercent},
		{Slug: "sofr_spread", Name: "SOFR - Fed Funds", Source: SourceCalculated, Category: CategoryLiquidity,
			Description: "Repo market stress indicator", Unit: UnitPercent},

		// FRED: valuation and rates.
		{Slug: "us_market_cap", Name: "US Total Market Cap", Source: SourceFRED, Category: CategoryValuation,
			Symbol: "NCBEILQ027S", Unit: UnitMillions, Description: "Total market value of US corporate equities"},
		{Slug: "us_10y", Name: "10-Year Treasury Yield", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "DGS10", Unit: UnitPercent, Description: "Benchmark long-term rate"},
		{Slug: "us_2y", Name: "2-Year Treasury Yield", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "DGS2", Unit: UnitPercent, Description: "Fed policy expectations proxy"},
		{Slug: "us_3m", Name: "3-Month Treasury Yield", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "DGS3MO", Unit: UnitPercent, Description: "Risk-free rate benchmark"},
		{Slug: "us_30y", Name: "30-Year Treasury Yield", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "DGS30", Unit: UnitPercent},
		{Slug: "tips_10y", Name: "10-Year TIPS Yield", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "DFII10", Unit: UnitPercent, Description: "Real interest rate"},
		{Slug: "breakeven_10y", Name: "10Y Breakeven Inflation", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "T10YIE", Unit: UnitPercent, Description: "Market's inflation expectation"},
		{Slug: "fed_funds", Name: "Fed Funds Rate", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "FEDFUNDS", Unit: UnitPercent, Description: "Federal Reserve policy rate"},
		{Slug: "cp_3m_rate", Name: "3-Month Commercial Paper", Source: SourceFRED, Category: CategoryInternal,
			Symbol: "CPF3M", Unit: UnitPercent, Description: "3-month AA financial commercial paper rate"},
		{Slug: "sofr_30d", Name: "SOFR (30-Day Avg)", Source: SourceFRED, Category: CategoryInternal,
			Symbol: "SOFR30DAYAVG", Unit: UnitPercent},

		// FRED: employment and inflation.
		{Slug: "unrate", Name: "Unemployment Rate", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "UNRATE", Unit: UnitPercent, Description: "US unemployment rate"},
		{Slug: "nfp", Name: "Nonfarm Payrolls", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "PAYEMS", Unit: UnitIndex, Description: "Monthly job additions"},
		{Slug: "initial_claims", Name: "Initial Jobless Claims", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "ICSA", Unit: UnitIndex, Description: "Weekly unemployment filings"},
		{Slug: "cpi", Name: "Consumer Price Index", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "CPIAUCSL", Unit: UnitIndex, Description: "Headline inflation measure"},
		{Slug: "core_pce", Name: "Core PCE", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "PCEPILFE", Unit: UnitIndex, Description: "Fed's primary inflation target"},

		// FRED: growth and liquidity.
		{Slug: "gdp", Name: "Gross Domestic Product", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "GDP", Unit: UnitBillions, Description: "US economic output (nominal)"},
		{Slug: "industrial_prod", Name: "Industrial Production", Source: SourceFRED, Category: CategoryUSMacro,
			Symbol: "INDPRO", Unit: UnitIndex},
		{Slug: "fed_balance_sheet", Name: "Fed Balance Sheet", Source: SourceFRED, Category: CategoryLiquidity,
			Symbol: "WALCL", Unit: UnitMillions, Description: "Total Fed assets"},
		{Slug: "treasury_tga", Name: "Treasury General Account", Source: SourceFRED, Category: CategoryLiquidity,
			Symbol: "WTREGEN", Unit: UnitMillions, Description: "Government cash balance"},
		{Slug: "fed_rrp", Name: "Reverse Repo (RRP)", Source: SourceFRED, Category: CategoryLiquidity,
			Symbol: "RRPONTSYD", Unit: UnitBillions, Description: "Overnight RRP"},
		{Slug: "m2", Name: "M2 Money Supply", Source: SourceFRED, Category: CategoryLiquidity,
			Symbol: "M2SL", Unit: UnitBillions},
		{Slug: "vix", Name: "VIX Volatility Index", Source: SourceFRED, Category: CategoryRisk,
			Symbol: "VIXCLS", Unit: UnitIndex, Description: "Fear gauge. >30 = high fear"},

		// Tiingo: index and commodity ETF proxies (hourly refresh).
		{Slug: "spx", Name: "S&P 500", Source: SourceTiingo, Category: CategoryUSStocks,
			Symbol: "spy", Unit: UnitIndex, RefreshInterval: hourly, Description: "US large-cap benchmark"},
		{Slug: "ndx", Name: "Nasdaq 100", Source: SourceTiingo, Category: CategoryUSStocks,
			Symbol: "qqq", Unit: UnitIndex, RefreshInterval: hourly},
		{Slug: "russell_2000", Name: "Russell 2000", Source: SourceTiingo, Category: CategoryUSStocks,
			Symbol: "iwm", Unit: UnitIndex, RefreshInterval: hourly},
		{Slug: "dxy", Name: "Dollar Index (DXY)", Source: SourceTiingo, Category: CategoryGlobal,
			Symbol: "uup", Unit: UnitIndex, RefreshInterval: hourly},
		{Slug: "gold", Name: "Gold", Source: SourceTiingo, Category: CategoryCommodities,
			Symbol: "gld", Unit: UnitUSD, RefreshInterval: hourly, Description: "Safe haven asset"},
		{Slug: "silver", Name: "Silver", Source: SourceTiingo, Category: CategoryCommodities,
			Symbol: "slv", Unit: UnitUSD, RefreshInterval: hourly},
		{Slug: "copper", Name: "Copper", Source: SourceTiingo, Category: CategoryCommodities,
			Symbol: "cper", Unit: UnitUSD, RefreshInterval: hourly, Description: "Economic barometer (Dr. Copper)"},
		{Slug: "oil_wti", Name: "WTI Crude Oil", Source: SourceTiingo, Category: CategoryCommodities,
			Symbol: "uso", Unit: UnitUSD, RefreshInterval: hourly},

		// Binance crypto pairs (hourly refresh).
		{Slug: "binance_btc_usdt", Name: "BTC/USDT (Binance)", Source: SourceBinance, Category: CategoryCrypto,
			Symbol: "BTCUSDT", Unit: UnitUSD, RefreshInterval: hourly},
		{Slug: "binance_eth_usdt", Name: "ETH/USDT (Binance)", Source: SourceBinance, Category: CategoryCrypto,
			Symbol: "ETHUSDT", Unit: UnitUSD, RefreshInterval: hourly},

		// Alternative.me sentiment.
		{Slug: "crypto_fear_greed", Name: "Crypto Fear & Greed", Source: SourceAlternative, Category: CategoryCrypto,
			Symbol: "crypto_fear_greed", Unit: UnitIndex},

		// Manual entries: no free API, user-maintained.
		{Slug: "vxn", Name: "VXN (Nasdaq Volatility)", Source: SourceManual, Category: CategoryRisk,
			Unit: UnitIndex, Description: "Nasdaq volatility index, no free API"},
		{Slug: "skew", Name: "SKEW Index", Source: SourceManual, Category: CategoryRisk,
			Unit: UnitIndex, Description: "Black swan risk, no free API"},
	}
}

func defaultCalculators() []indicators.Calculator {
	return []indicators.Calculator{
		indicators.BuffettIndicator{},
		indicators.NetLiquidity{},
		indicators.FinancialStress{},
		indicators.YieldGap{},
		indicators.YieldCurve10Y2Y(),
		indicators.YieldCurve10Y3M(),
		indicators.RealYield10Y(),
		indicators.CommercialPaperSpread(),
		indicators.SOFRSpread(),
		indicators.CopperGoldRatio(),
		indicators.GoldSilverRatio(),
	}
}
