package scoring

import (
	"fmt"

	"github.com/yourusername/stock-compass/internal/models"
)

// RiskGrade classifies the liquidity penalty severity
type RiskGrade string

const (
	RiskGradeGood   RiskGrade = "good"
	RiskGradeNormal RiskGrade = "normal"
	RiskGradeWarn   RiskGrade = "warn"
	RiskGradeDanger RiskGrade = "danger"
)

// LiquidityInputs are the two liquidity measures, nil when fewer than 20
// bars were available.
type LiquidityInputs struct {
	AvgTradingValue *float64
	VolumeCV        *float64
}

// LiquidityResult is the liquidity penalty: Total.Value is in
// [-MaxTotalPenalty, 0].
type LiquidityResult struct {
	Total        models.SubScore `json:"total"`
	TradingValue models.SubScore `json:"tradingValue"`
	Volatility   models.SubScore `json:"volatility"`
	RiskGrade    RiskGrade       `json:"riskGrade"`
}

// LiquidityCalculator derives the liquidity penalty for a stock.
type LiquidityCalculator struct {
	bands LiquidityBands
}

// NewLiquidityCalculator creates a calculator with the given calibration.
func NewLiquidityCalculator(bands LiquidityBands) *LiquidityCalculator {
	return &LiquidityCalculator{bands: bands}
}

// Score computes the penalty. The two deductions are independent but the
// combined penalty is floored at -MaxTotalPenalty.
func (c *LiquidityCalculator) Score(in LiquidityInputs) LiquidityResult {
	trading := c.scoreTradingValue(in.AvgTradingValue)
	volatility := c.scoreVolatility(in.VolumeCV)

	penalty := trading.Value + volatility.Value
	if penalty < -c.bands.MaxTotalPenalty {
		penalty = -c.bands.MaxTotalPenalty
	}

	return LiquidityResult{
		Total: models.SubScore{
			Value:   penalty,
			Max:     c.bands.MaxTotalPenalty,
			Detail:  fmt.Sprintf("%.1f of %.0f penalty points", -penalty, c.bands.MaxTotalPenalty),
			HasData: trading.HasData || volatility.HasData,
		},
		TradingValue: trading,
		Volatility:   volatility,
		RiskGrade:    riskGrade(-penalty),
	}
}

func (c *LiquidityCalculator) scoreTradingValue(v *float64) models.SubScore {
	max := c.bands.MaxTradingValuePenalty
	if v == nil {
		return models.SubScore{Value: -1, Max: max, Detail: "trading value unavailable", HasData: false}
	}
	penalty, label := c.bands.TradingValue.Lookup(*v)
	return models.SubScore{
		Value:   -penalty,
		Max:     max,
		Detail:  fmt.Sprintf("%s (%.1fB KRW daily)", label, *v/1_000_000_000),
		HasData: true,
	}
}

func (c *LiquidityCalculator) scoreVolatility(cv *float64) models.SubScore {
	max := c.bands.MaxVolatilityPenalty
	if cv == nil {
		return models.SubScore{Value: -0.5, Max: max, Detail: "volume history unavailable", HasData: false}
	}
	penalty, label := c.bands.VolumeCV.Lookup(*cv)
	return models.SubScore{
		Value:   -penalty,
		Max:     max,
		Detail:  fmt.Sprintf("%s (CV %.2f)", label, *cv),
		HasData: true,
	}
}

func riskGrade(penalty float64) RiskGrade {
	switch {
	case penalty >= 4:
		return RiskGradeDanger
	case penalty >= 2.5:
		return RiskGradeWarn
	case penalty >= 1:
		return RiskGradeNormal
	default:
		return RiskGradeGood
	}
}
