package models

import "time"

// FinancialSnapshot represents the most recent fundamental metrics for a stock.
// Every field is nullable: providers routinely return partial data and a
// missing metric is a valid, scoreable state.
type FinancialSnapshot struct {
	StockCode     string    `db:"stock_code" json:"stock_code"`
	PER           *float64  `db:"per" json:"per"`
	PBR           *float64  `db:"pbr" json:"pbr"`
	PSR           *float64  `db:"psr" json:"psr"`
	ROE           *float64  `db:"roe" json:"roe"`
	OpMargin      *float64  `db:"op_margin" json:"op_margin"`
	RevenueGrowth *float64  `db:"revenue_growth" json:"revenue_growth"`
	OpGrowth      *float64  `db:"op_growth" json:"op_growth"`
	DebtRatio     *float64  `db:"debt_ratio" json:"debt_ratio"`
	CurrentRatio  *float64  `db:"current_ratio" json:"current_ratio"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// HasData reports whether at least one metric is populated.
func (f FinancialSnapshot) HasData() bool {
	fields := []*float64{
		f.PER, f.PBR, f.PSR, f.ROE, f.OpMargin,
		f.RevenueGrowth, f.OpGrowth, f.DebtRatio, f.CurrentRatio,
	}
	for _, v := range fields {
		if v != nil {
			return true
		}
	}
	return false
}

// IsLossCompany reports whether the trailing earnings are negative.
// A negative PER is how upstream providers encode a loss-making company.
func (f FinancialSnapshot) IsLossCompany() bool {
	return f.PER != nil && *f.PER < 0
}
