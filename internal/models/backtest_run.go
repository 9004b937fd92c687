package models

import (
	"time"

	"github.com/google/uuid"
)

// BacktestRun is a persisted backtest execution: the headline metrics as
// columns for ranking queries, the full report as JSON.
type BacktestRun struct {
	ID               uuid.UUID `db:"id" json:"id"`
	StockCode        string    `db:"stock_code" json:"stockCode"`
	StartDate        time.Time `db:"start_date" json:"startDate"`
	EndDate          time.Time `db:"end_date" json:"endDate"`
	InitialCapital   float64   `db:"initial_capital" json:"initialCapital"`
	BuyThreshold     float64   `db:"buy_threshold" json:"buyThreshold"`
	SellThreshold    float64   `db:"sell_threshold" json:"sellThreshold"`
	TotalReturn      float64   `db:"total_return" json:"totalReturn"`
	AnnualizedReturn float64   `db:"annualized_return" json:"annualizedReturn"`
	MaxDrawdown      float64   `db:"max_drawdown" json:"maxDrawdown"`
	SharpeRatio      float64   `db:"sharpe_ratio" json:"sharpeRatio"`
	WinRate          float64   `db:"win_rate" json:"winRate"`
	TradeCount       int       `db:"trade_count" json:"tradeCount"`
	FinalValue       float64   `db:"final_value" json:"finalValue"`
	Report           []byte    `db:"report" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}
