package backtest

import (
	"time"
)

// PositionKind is the ledger state: all cash or all shares. Exactly one
// holds on any simulated day.
type PositionKind string

const (
	PositionCash    PositionKind = "cash"
	PositionHolding PositionKind = "holding"
)

// TradeType marks the direction of a trade
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// Trade records one state transition of the ledger. Profit and
// ProfitPct are set on sells only, relative to the most recent buy.
type Trade struct {
	Type                TradeType `json:"type"`
	Date                time.Time `json:"date"`
	Price               float64   `json:"price"`
	Shares              float64   `json:"shares"`
	Score               float64   `json:"score"`
	PortfolioValueAfter float64   `json:"portfolioValueAfter"`
	Profit              *float64  `json:"profit,omitempty"`
	ProfitPct           *float64  `json:"profitPct,omitempty"`
}

// DailyRecord is one row of the simulation ledger. Score is nil on days
// whose trailing window was too short to score.
type DailyRecord struct {
	Date           time.Time    `json:"date"`
	Price          float64      `json:"price"`
	Score          *float64     `json:"score"`
	PortfolioValue float64      `json:"portfolioValue"`
	Position       PositionKind `json:"position"`
}

// Ledger is the sequential cash/position state machine. Day d+1 depends
// on day d's resulting state, so a ledger is never shared across runs.
type Ledger struct {
	Position  PositionKind
	Cash      float64
	Shares    float64
	CostBasis float64 // net cash invested at the last buy
	Trades    []Trade
	Daily     []DailyRecord
}

// NewLedger starts a ledger in the cash state.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		Position: PositionCash,
		Cash:     initialCapital,
	}
}

// Buy converts all cash to shares at price, net of the commission rate.
// The fee reduces the amount converted, never a separate debit.
func (l *Ledger) Buy(date time.Time, price, score, commissionRate float64) {
	invested := l.Cash * (1 - commissionRate)
	l.Shares = invested / price
	l.CostBasis = invested
	l.Cash = 0
	l.Position = PositionHolding

	l.Trades = append(l.Trades, Trade{
		Type:                TradeBuy,
		Date:                date,
		Price:               price,
		Shares:              l.Shares,
		Score:               score,
		PortfolioValueAfter: l.Value(price),
	})
}

// Sell liquidates all shares at price, net of commission plus tax, and
// records the realized profit against the last buy's cost basis.
func (l *Ledger) Sell(date time.Time, price, score, commissionRate, taxRate float64) {
	proceeds := l.Shares * price
	net := proceeds * (1 - commissionRate - taxRate)

	profit := net - l.CostBasis
	profitPct := 0.0
	if l.CostBasis > 0 {
		profitPct = profit / l.CostBasis * 100
	}

	shares := l.Shares
	l.Cash = net
	l.Shares = 0
	l.CostBasis = 0
	l.Position = PositionCash

	l.Trades = append(l.Trades, Trade{
		Type:                TradeSell,
		Date:                date,
		Price:               price,
		Shares:              shares,
		Score:               score,
		PortfolioValueAfter: l.Cash,
		Profit:              &profit,
		ProfitPct:           &profitPct,
	})
}

// Value returns the mark-to-market portfolio value at the given price.
func (l *Ledger) Value(price float64) float64 {
	if l.Position == PositionHolding {
		return l.Shares * price
	}
	return l.Cash
}

// Record appends the daily ledger row.
func (l *Ledger) Record(date time.Time, price float64, score *float64) {
	l.Daily = append(l.Daily, DailyRecord{
		Date:           date,
		Price:          price,
		Score:          score,
		PortfolioValue: l.Value(price),
		Position:       l.Position,
	})
}
