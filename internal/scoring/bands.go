// Package scoring maps indicator, fundamental and news inputs to bounded
// sub-scores and composes them into a graded analysis result.
package scoring

// Band is one step of a score table: values strictly below UpTo map to
// Score with the given label.
type Band struct {
	UpTo  float64
	Score float64
	Label string
}

// Table is an ascending list of bands plus a terminal band for values at
// or beyond the last bound. Tables are plain data so alternate
// calibrations can be injected in tests.
type Table struct {
	Bands []Band
	Else  Band
}

// Lookup returns the score and label for v.
func (t Table) Lookup(v float64) (float64, string) {
	for _, b := range t.Bands {
		if v < b.UpTo {
			return b.Score, b.Label
		}
	}
	return t.Else.Score, t.Else.Label
}

// TechnicalBands calibrates the five technical components.
type TechnicalBands struct {
	MaxArrangement float64
	MaxDivergence  float64
	MaxRSI         float64
	MaxMACD        float64
	MaxVolume      float64

	Divergence  Table
	RSI         Table
	VolumeRatio Table

	// MACD quadrant scores keyed by the signs of the MACD line and
	// histogram.
	MACDStrongUp   float64
	MACDSlowing    float64
	MACDRebound    float64
	MACDStrongDown float64
}

// Max returns the technical sub-score ceiling.
func (b TechnicalBands) Max() float64 {
	return b.MaxArrangement + b.MaxDivergence + b.MaxRSI + b.MaxMACD + b.MaxVolume
}

// DefaultTechnicalBands returns the production calibration.
func DefaultTechnicalBands() TechnicalBands {
	return TechnicalBands{
		MaxArrangement: 6,
		MaxDivergence:  6,
		MaxRSI:         5,
		MaxMACD:        5,
		MaxVolume:      8,
		Divergence: Table{
			Bands: []Band{
				{UpTo: -10, Score: 3, Label: "oversold"},
				{UpTo: -5, Score: 2, Label: "downtrend"},
				{UpTo: 0, Score: 4, Label: "mild pullback"},
				{UpTo: 5, Score: 6, Label: "healthy uptrend"},
				{UpTo: 10, Score: 5, Label: "strong uptrend"},
			},
			Else: Band{Score: 2, Label: "overheated"},
		},
		RSI: Table{
			Bands: []Band{
				{UpTo: 30, Score: 4, Label: "oversold"},
				{UpTo: 40, Score: 5, Label: "undervalued"},
				{UpTo: 60, Score: 3, Label: "neutral"},
				{UpTo: 70, Score: 2, Label: "overvalued"},
			},
			Else: Band{Score: 1, Label: "overbought"},
		},
		VolumeRatio: Table{
			Bands: []Band{
				{UpTo: 0.5, Score: 2, Label: "very thin volume"},
				{UpTo: 1.0, Score: 4, Label: "light volume"},
				{UpTo: 1.5, Score: 6, Label: "normal volume"},
				{UpTo: 2.0, Score: 8, Label: "active volume"},
			},
			Else: Band{Score: 6, Label: "volume spike"},
		},
		MACDStrongUp:   5,
		MACDSlowing:    3,
		MACDRebound:    4,
		MACDStrongDown: 1,
	}
}

// FundamentalBands calibrates the nine fundamental components.
type FundamentalBands struct {
	MaxPER           float64
	MaxPBR           float64
	MaxPSR           float64
	MaxRevenueGrowth float64
	MaxOpGrowth      float64
	MaxROE           float64
	MaxOpMargin      float64
	MaxDebtRatio     float64
	MaxCurrentRatio  float64

	PER           Table
	PBR           Table
	PSR           Table
	RevenueGrowth Table
	OpGrowth      Table
	ROE           Table
	OpMargin      Table
	DebtRatio     Table
	CurrentRatio  Table

	// LossPERScore is forced for companies with negative trailing
	// earnings regardless of the PER table.
	LossPERScore float64

	// NegativePBRScore is forced for a negative PBR, which means book
	// value has gone negative (capital impairment), regardless of the
	// PBR table.
	NegativePBRScore float64
}

// Max returns the fundamental sub-score ceiling.
func (b FundamentalBands) Max() float64 {
	return b.MaxPER + b.MaxPBR + b.MaxPSR + b.MaxRevenueGrowth + b.MaxOpGrowth +
		b.MaxROE + b.MaxOpMargin + b.MaxDebtRatio + b.MaxCurrentRatio
}

// DefaultFundamentalBands returns the production calibration.
func DefaultFundamentalBands() FundamentalBands {
	return FundamentalBands{
		MaxPER:           8,
		MaxPBR:           7,
		MaxPSR:           5,
		MaxRevenueGrowth: 6,
		MaxOpGrowth:      6,
		MaxROE:           5,
		MaxOpMargin:      5,
		MaxDebtRatio:     4,
		MaxCurrentRatio:  4,
		LossPERScore:     0,
		NegativePBRScore: 1,
		PER: Table{
			Bands: []Band{
				{UpTo: 5, Score: 8, Label: "deeply undervalued"},
				{UpTo: 10, Score: 7, Label: "undervalued"},
				{UpTo: 15, Score: 5, Label: "fairly valued"},
				{UpTo: 20, Score: 3, Label: "slightly expensive"},
				{UpTo: 30, Score: 2, Label: "expensive"},
			},
			Else: Band{Score: 1, Label: "overvalued"},
		},
		PBR: Table{
			Bands: []Band{
				{UpTo: 0.5, Score: 7, Label: "deeply undervalued"},
				{UpTo: 1.0, Score: 6, Label: "undervalued"},
				{UpTo: 1.5, Score: 4, Label: "fairly valued"},
				{UpTo: 2.0, Score: 3, Label: "slightly expensive"},
				{UpTo: 3.0, Score: 2, Label: "expensive"},
			},
			Else: Band{Score: 1, Label: "overvalued"},
		},
		PSR: Table{
			Bands: []Band{
				{UpTo: 0.5, Score: 5, Label: "undervalued"},
				{UpTo: 1.0, Score: 4, Label: "good value"},
				{UpTo: 2.0, Score: 3, Label: "fairly valued"},
				{UpTo: 4.0, Score: 2, Label: "slightly expensive"},
			},
			Else: Band{Score: 1, Label: "expensive"},
		},
		RevenueGrowth: Table{
			Bands: []Band{
				{UpTo: -10, Score: 1, Label: "sharp decline"},
				{UpTo: 0, Score: 2, Label: "mild decline"},
				{UpTo: 10, Score: 3, Label: "stable"},
				{UpTo: 20, Score: 4, Label: "solid growth"},
				{UpTo: 30, Score: 5, Label: "strong growth"},
			},
			Else: Band{Score: 6, Label: "high growth"},
		},
		OpGrowth: Table{
			Bands: []Band{
				{UpTo: -20, Score: 1, Label: "sharp decline"},
				{UpTo: 0, Score: 2, Label: "decline"},
				{UpTo: 10, Score: 3, Label: "stable"},
				{UpTo: 30, Score: 4, Label: "solid growth"},
				{UpTo: 50, Score: 5, Label: "strong growth"},
			},
			Else: Band{Score: 6, Label: "surging"},
		},
		ROE: Table{
			Bands: []Band{
				{UpTo: 5, Score: 1, Label: "weak"},
				{UpTo: 10, Score: 2, Label: "below average"},
				{UpTo: 15, Score: 3, Label: "adequate"},
				{UpTo: 20, Score: 4, Label: "good"},
			},
			Else: Band{Score: 5, Label: "excellent"},
		},
		OpMargin: Table{
			Bands: []Band{
				{UpTo: 5, Score: 1, Label: "weak"},
				{UpTo: 10, Score: 2, Label: "below average"},
				{UpTo: 15, Score: 3, Label: "adequate"},
				{UpTo: 20, Score: 4, Label: "good"},
			},
			Else: Band{Score: 5, Label: "excellent"},
		},
		DebtRatio: Table{
			Bands: []Band{
				{UpTo: 50, Score: 4, Label: "very solid"},
				{UpTo: 100, Score: 3, Label: "stable"},
				{UpTo: 150, Score: 2, Label: "average"},
				{UpTo: 200, Score: 1.5, Label: "caution"},
			},
			Else: Band{Score: 1, Label: "risky"},
		},
		CurrentRatio: Table{
			Bands: []Band{
				{UpTo: 100, Score: 1, Label: "caution"},
				{UpTo: 150, Score: 2, Label: "average"},
				{UpTo: 200, Score: 3, Label: "stable"},
			},
			Else: Band{Score: 4, Label: "very stable"},
		},
	}
}

// SentimentBands calibrates the automatic sentiment components.
type SentimentBands struct {
	MaxSentiment float64
	MaxImpact    float64
	MaxVolume    float64

	// MinNewsCount is the minimum number of classified items required
	// for an automatic score; below it every component defaults to its
	// midpoint and the result is flagged data-insufficient.
	MinNewsCount int

	PositiveRatio Table
	NewsCount     Table

	// Majority-negative coverage applies an extra deduction, floored.
	NegativeMajorityRatio     float64
	NegativeMajorityDeduction float64
	NegativeMajorityFloor     float64
}

// Max returns the sentiment sub-score ceiling.
func (b SentimentBands) Max() float64 {
	return b.MaxSentiment + b.MaxImpact + b.MaxVolume
}

// DefaultSentimentBands returns the production calibration.
func DefaultSentimentBands() SentimentBands {
	return SentimentBands{
		MaxSentiment: 10,
		MaxImpact:    6,
		MaxVolume:    4,
		MinNewsCount: 3,
		PositiveRatio: Table{
			Bands: []Band{
				{UpTo: 0.2, Score: 2, Label: "negative"},
				{UpTo: 0.4, Score: 4, Label: "leaning negative"},
				{UpTo: 0.6, Score: 6, Label: "mixed"},
				{UpTo: 0.8, Score: 8, Label: "positive"},
			},
			Else: Band{Score: 10, Label: "very positive"},
		},
		NewsCount: Table{
			Bands: []Band{
				{UpTo: 5, Score: 1, Label: "very low interest"},
				{UpTo: 10, Score: 2, Label: "low interest"},
				{UpTo: 20, Score: 3, Label: "moderate interest"},
			},
			Else: Band{Score: 4, Label: "high interest"},
		},
		NegativeMajorityRatio:     0.5,
		NegativeMajorityDeduction: 2,
		NegativeMajorityFloor:     1,
	}
}

// LiquidityBands calibrates the liquidity penalty deductions. Penalty
// tables yield positive magnitudes; the calculator negates them.
type LiquidityBands struct {
	MaxTradingValuePenalty float64
	MaxVolatilityPenalty   float64
	MaxTotalPenalty        float64

	TradingValue Table
	VolumeCV     Table
}

// DefaultLiquidityBands returns the production calibration. Trading
// value bounds are in KRW.
func DefaultLiquidityBands() LiquidityBands {
	return LiquidityBands{
		MaxTradingValuePenalty: 3,
		MaxVolatilityPenalty:   2,
		MaxTotalPenalty:        5,
		TradingValue: Table{
			Bands: []Band{
				{UpTo: 5_000_000_000, Score: 3, Label: "very thin market"},
				{UpTo: 10_000_000_000, Score: 2, Label: "thin market"},
				{UpTo: 30_000_000_000, Score: 1, Label: "moderate turnover"},
				{UpTo: 50_000_000_000, Score: 0.5, Label: "good turnover"},
			},
			Else: Band{Score: 0, Label: "excellent turnover"},
		},
		VolumeCV: Table{
			Bands: []Band{
				{UpTo: 0.5, Score: 0, Label: "very steady volume"},
				{UpTo: 1.0, Score: 0.5, Label: "steady volume"},
				{UpTo: 1.5, Score: 1, Label: "fluctuating volume"},
			},
			Else: Band{Score: 2, Label: "erratic volume"},
		},
	}
}
