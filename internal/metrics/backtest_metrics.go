// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_compass",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by status",
	}, []string{"status"})
)

// Backtest histograms
var (
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_compass",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	BacktestTotalReturn = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_compass",
		Name:      "backtest_total_return",
		Help:      "Total return fraction of completed backtest runs",
		Buckets:   []float64{-0.5, -0.3, -0.1, -0.05, 0, 0.05, 0.1, 0.3, 0.5, 1.0},
	})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure"
func RecordBacktestRun(status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(status).Inc()
	BacktestDuration.Observe(durationSeconds)
}

// RecordBacktestReturn records the outcome of a completed run.
func RecordBacktestReturn(totalReturn float64) {
	BacktestTotalReturn.Observe(totalReturn)
}
