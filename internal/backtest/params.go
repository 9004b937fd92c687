// Package backtest replays a score-driven buy/sell strategy over a
// historical price series and derives performance metrics.
package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/stock-compass/internal/models"
)

// Default simulation parameters
const (
	DefaultLookbackDays   = 200
	DefaultCommissionRate = 0.00015
	DefaultTaxRate        = 0.0023
	DefaultRiskFreeRate   = 0.035

	// MinScoreBars is the smallest trailing window the technical
	// calculator can score; shorter windows record a null score and
	// skip trading for the day.
	MinScoreBars = 20
)

// Params configures a single backtest run. Thresholds are technical
// sub-score values in [0, 30].
type Params struct {
	StockCode      string    `json:"stockCode" validate:"required"`
	StartDate      time.Time `json:"startDate" validate:"required"`
	EndDate        time.Time `json:"endDate" validate:"required"`
	InitialCapital float64   `json:"initialCapital" validate:"required,gt=0"`
	BuyThreshold   float64   `json:"buyThreshold" validate:"gte=0,lte=30"`
	SellThreshold  float64   `json:"sellThreshold" validate:"gte=-1,lte=30"`
	CommissionRate float64   `json:"commissionRate" validate:"gte=0,lte=0.1"`
	TaxRate        float64   `json:"taxRate" validate:"gte=0,lte=0.1"`
	LookbackDays   int       `json:"lookbackDays" validate:"gte=0"`
	RiskFreeRate   float64   `json:"riskFreeRate" validate:"gte=0,lte=1"`
}

// DefaultParams returns params with the production cost model for the
// given symbol and range.
func DefaultParams(stockCode string, start, end time.Time) Params {
	return Params{
		StockCode:      stockCode,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: 10_000_000,
		BuyThreshold:   20,
		SellThreshold:  12,
		CommissionRate: DefaultCommissionRate,
		TaxRate:        DefaultTaxRate,
		LookbackDays:   DefaultLookbackDays,
		RiskFreeRate:   DefaultRiskFreeRate,
	}
}

// Validate checks param invariants. Callers must validate before
// invoking the engine; the engine assumes valid params. Every failure
// wraps models.ErrInvalidParams so API callers can map it to a client
// error.
func (p Params) Validate() error {
	if p.StockCode == "" {
		return fmt.Errorf("%w: stock code is required", models.ErrInvalidParams)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", models.ErrInvalidParams)
	}
	if p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: end date must not precede start date", models.ErrInvalidParams)
	}
	if p.InitialCapital <= 0 {
		return fmt.Errorf("%w: initial capital must be positive", models.ErrInvalidParams)
	}
	if p.SellThreshold >= p.BuyThreshold {
		return fmt.Errorf("%w: sell threshold must be below buy threshold", models.ErrInvalidParams)
	}
	if p.CommissionRate < 0 || p.CommissionRate > 0.1 {
		return fmt.Errorf("%w: commission rate must be between 0 and 0.1", models.ErrInvalidParams)
	}
	if p.TaxRate < 0 || p.TaxRate > 0.1 {
		return fmt.Errorf("%w: tax rate must be between 0 and 0.1", models.ErrInvalidParams)
	}
	if p.LookbackDays < 0 {
		return fmt.Errorf("%w: lookback days cannot be negative", models.ErrInvalidParams)
	}
	return nil
}

// normalized returns a copy with zero-valued optional fields replaced
// by defaults.
func (p Params) normalized() Params {
	if p.LookbackDays == 0 {
		p.LookbackDays = DefaultLookbackDays
	}
	if p.RiskFreeRate == 0 {
		p.RiskFreeRate = DefaultRiskFreeRate
	}
	return p
}
