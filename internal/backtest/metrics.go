package backtest

import (
	"math"
	"time"
)

// PerformanceMetrics summarizes a completed run. Returns are fractions
// (0.05 = 5%), drawdown is a positive fraction of the running peak.
type PerformanceMetrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	WinRate          float64 `json:"winRate"`
	TradeCount       int     `json:"tradeCount"`
	FinalValue       float64 `json:"finalValue"`
}

// CalculateMetrics derives performance metrics from the daily ledger and
// trade log. Every ratio guards its zero-denominator case.
func CalculateMetrics(daily []DailyRecord, trades []Trade, initialCapital, riskFreeRate float64) PerformanceMetrics {
	metrics := PerformanceMetrics{TradeCount: len(trades)}
	if len(daily) == 0 || initialCapital <= 0 {
		metrics.FinalValue = initialCapital
		return metrics
	}

	metrics.FinalValue = daily[len(daily)-1].PortfolioValue
	metrics.TotalReturn = metrics.FinalValue/initialCapital - 1
	metrics.AnnualizedReturn = annualize(metrics.TotalReturn, daily[0].Date, daily[len(daily)-1].Date)
	metrics.MaxDrawdown = maxDrawdown(daily)
	metrics.SharpeRatio = sharpeRatio(dailyReturns(daily), riskFreeRate)
	metrics.WinRate = winRate(trades)
	return metrics
}

// annualize converts a total return to a yearly rate over the calendar
// span of the simulation. A zero-day span returns the raw total.
func annualize(totalReturn float64, first, last time.Time) float64 {
	days := last.Sub(first).Hours() / 24
	if days <= 0 {
		return totalReturn
	}
	return math.Pow(1+totalReturn, 365/days) - 1
}

func maxDrawdown(daily []DailyRecord) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, d := range daily {
		if d.PortfolioValue > peak {
			peak = d.PortfolioValue
		}
		if peak == 0 {
			continue
		}
		dd := (peak - d.PortfolioValue) / peak
		if dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func dailyReturns(daily []DailyRecord) []float64 {
	if len(daily) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(daily)-1)
	for i := 1; i < len(daily); i++ {
		prev := daily[i-1].PortfolioValue
		if prev <= 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (daily[i].PortfolioValue-prev)/prev)
	}
	return returns
}

// sharpeRatio annualizes the mean daily excess return over its sample
// standard deviation; zero when volatility is zero.
func sharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)
	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	dailyRiskFree := riskFreeRate / 252
	return (mean - dailyRiskFree) / std * math.Sqrt(252)
}

func winRate(trades []Trade) float64 {
	sells := 0
	wins := 0
	for _, t := range trades {
		if t.Type != TradeSell {
			continue
		}
		sells++
		if t.Profit != nil && *t.Profit > 0 {
			wins++
		}
	}
	if sells == 0 {
		return 0
	}
	return float64(wins) / float64(sells)
}
