// Package metrics defines scoring-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis counter vectors
var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_compass",
		Name:      "analyses_total",
		Help:      "Total number of stock analyses by status and sentiment source",
	}, []string{"status", "sentiment_source"})
)

// Analysis histograms
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_compass",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of single-stock analyses in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	CompositeScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_compass",
		Name:      "composite_score",
		Help:      "Composite scores of completed analyses",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

// Analysis gauge vectors
var (
	GradeDistribution = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "stock_compass",
		Name:      "grade_distribution",
		Help:      "Number of stocks at each grade in the latest ranking",
	}, []string{"grade"})
)

// RecordAnalysis records a completed analysis.
// status should be one of: "success", "failure"
func RecordAnalysis(status, sentimentSource string, durationSeconds float64) {
	AnalysesTotal.WithLabelValues(status, sentimentSource).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordCompositeScore records a computed composite score.
func RecordCompositeScore(score float64) {
	CompositeScore.Observe(score)
}

// UpdateGradeCount updates the gauge for one grade bucket.
func UpdateGradeCount(grade string, count float64) {
	GradeDistribution.WithLabelValues(grade).Set(count)
}
