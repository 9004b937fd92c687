package backtest

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stock-compass/internal/indicators"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/scoring"
)

// Benchmark compares the strategy against buying on the first simulated
// day and holding through the last.
type Benchmark struct {
	BuyHoldReturn float64 `json:"buyHoldReturn"`
}

// Report is the full backtest output. Field names in the JSON form are
// a compatibility contract with existing consumers.
type Report struct {
	StockCode string             `json:"stockCode"`
	Params    Params             `json:"params"`
	DailyData []DailyRecord      `json:"dailyData"`
	Trades    []Trade            `json:"trades"`
	Metrics   PerformanceMetrics `json:"metrics"`
	Benchmark Benchmark          `json:"benchmark"`
}

// Engine replays the threshold strategy over a price series. The day
// loop is strictly sequential; independent runs are safe to execute in
// parallel because each owns its ledger.
type Engine struct {
	params    Params
	technical *scoring.TechnicalCalculator
	logger    *logrus.Logger
}

// NewEngine creates an engine for validated params.
func NewEngine(params Params, technical *scoring.TechnicalCalculator, logger *logrus.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest params: %w", err)
	}
	if technical == nil {
		technical = scoring.NewTechnicalCalculator(scoring.DefaultTechnicalBands())
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{params: params.normalized(), technical: technical, logger: logger}, nil
}

// Params returns the normalized run parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Run simulates the strategy over the full price history. Bars must be
// ascending by date and cover both the simulated range and enough
// preceding history for the lookback window.
func (e *Engine) Run(bars []models.PriceBar) (*Report, error) {
	if len(bars) == 0 {
		return nil, models.ErrNoPriceData
	}
	if !models.SortedAscending(bars) {
		return nil, fmt.Errorf("price series must be ascending by date")
	}

	startIdx, endIdx, err := e.rangeIndexes(bars)
	if err != nil {
		return nil, err
	}

	ledger := NewLedger(e.params.InitialCapital)
	for idx := startIdx; idx <= endIdx; idx++ {
		e.step(ledger, bars, idx)
	}

	report := &Report{
		StockCode: e.params.StockCode,
		Params:    e.params,
		DailyData: ledger.Daily,
		Trades:    ledger.Trades,
		Metrics:   CalculateMetrics(ledger.Daily, ledger.Trades, e.params.InitialCapital, e.params.RiskFreeRate),
		Benchmark: Benchmark{BuyHoldReturn: buyHoldReturn(bars[startIdx].Close, bars[endIdx].Close)},
	}

	e.logger.WithFields(logrus.Fields{
		"stock":       e.params.StockCode,
		"days":        len(report.DailyData),
		"trades":      len(report.Trades),
		"totalReturn": report.Metrics.TotalReturn,
	}).Info("Backtest run complete")

	return report, nil
}

// step scores one trading day and applies the decision rule.
func (e *Engine) step(ledger *Ledger, bars []models.PriceBar, idx int) {
	bar := bars[idx]

	windowStart := idx - e.params.LookbackDays + 1
	if windowStart < 0 {
		windowStart = 0
	}
	window := bars[windowStart : idx+1]

	if len(window) < MinScoreBars {
		// Not enough history to score: no trade today.
		ledger.Record(bar.Date, bar.Close, nil)
		return
	}

	score := e.technical.Score(indicators.Calculate(window)).Total.Value

	switch {
	case ledger.Position == PositionCash && score >= e.params.BuyThreshold && bar.Close > 0:
		ledger.Buy(bar.Date, bar.Close, score, e.params.CommissionRate)
	case ledger.Position == PositionHolding && score < e.params.SellThreshold && bar.Close > 0:
		ledger.Sell(bar.Date, bar.Close, score, e.params.CommissionRate, e.params.TaxRate)
	}

	ledger.Record(bar.Date, bar.Close, &score)
}

// rangeIndexes locates the simulated span [startIdx, endIdx] inside the
// full series.
func (e *Engine) rangeIndexes(bars []models.PriceBar) (int, int, error) {
	startIdx := -1
	for i, b := range bars {
		if !b.Date.Before(e.params.StartDate) {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return 0, 0, fmt.Errorf("%w: no bars on or after %s", models.ErrNoPriceData, e.params.StartDate.Format("2006-01-02"))
	}

	endIdx := -1
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.After(e.params.EndDate) {
			endIdx = i
			break
		}
	}
	if endIdx < 0 || endIdx < startIdx {
		return 0, 0, fmt.Errorf("%w: no bars between %s and %s", models.ErrNoPriceData,
			e.params.StartDate.Format("2006-01-02"), e.params.EndDate.Format("2006-01-02"))
	}

	return startIdx, endIdx, nil
}

func buyHoldReturn(firstClose, lastClose float64) float64 {
	if firstClose <= 0 {
		return 0
	}
	return (lastClose - firstClose) / firstClose
}
