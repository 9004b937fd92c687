package models

import (
	"time"
)

// PriceBar represents a single daily OHLCV bar.
// Bars handed to the indicator and backtest layers must be ordered
// ascending by date; neither layer mutates them.
type PriceBar struct {
	StockCode    string    `db:"stock_code" json:"stock_code"`
	Date         time.Time `db:"date" json:"date"`
	Open         float64   `db:"open" json:"open"`
	High         float64   `db:"high" json:"high"`
	Low          float64   `db:"low" json:"low"`
	Close        float64   `db:"close" json:"close"`
	Volume       int64     `db:"volume" json:"volume"`
	TradingValue *float64  `db:"trading_value" json:"trading_value,omitempty"`
}

// ApproxTradingValue returns the recorded turnover when present, otherwise
// approximates it from the mid price and volume.
func (p PriceBar) ApproxTradingValue() float64 {
	if p.TradingValue != nil {
		return *p.TradingValue
	}
	return (p.High + p.Low) / 2 * float64(p.Volume)
}

// SortedAscending reports whether the series is ordered ascending by date.
func SortedAscending(bars []PriceBar) bool {
	for i := 1; i < len(bars); i++ {
		if bars[i].Date.Before(bars[i-1].Date) {
			return false
		}
	}
	return true
}
