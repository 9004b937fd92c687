// Package logger provides analysis-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AnalysisLogger provides dedicated logging for scoring operations.
type AnalysisLogger struct {
	*logrus.Entry
}

// NewAnalysisLogger creates a new analysis logger.
func NewAnalysisLogger(baseLogger *logrus.Logger) *AnalysisLogger {
	return &AnalysisLogger{
		Entry: baseLogger.WithField("component", "analysis"),
	}
}

// LogScoreComputed logs a completed composite score.
func (al *AnalysisLogger) LogScoreComputed(stockCode string, totalScore float64, grade string, sentimentSource string, dataInsufficient bool, durationMs float64) {
	al.WithFields(logrus.Fields{
		"stock_code":        stockCode,
		"total_score":       totalScore,
		"grade":             grade,
		"sentiment_source":  sentimentSource,
		"data_insufficient": dataInsufficient,
		"duration_ms":       durationMs,
	}).Info("Composite score computed")
}

// LogBatchProgress logs batch scoring progress.
func (al *AnalysisLogger) LogBatchProgress(completed, total, failed int) {
	al.WithFields(logrus.Fields{
		"completed": completed,
		"total":     total,
		"failed":    failed,
	}).Info("Batch analysis progress")
}

// LogScoringFailure logs a failed scoring attempt.
func (al *AnalysisLogger) LogScoringFailure(stockCode string, err error) {
	al.WithFields(logrus.Fields{
		"stock_code": stockCode,
		"error":      err.Error(),
	}).Error("Stock scoring failed")
}

// LogManualOverride logs a manual sentiment rating taking effect.
func (al *AnalysisLogger) LogManualOverride(stockCode string, ratedCount int, avgRating float64) {
	al.WithFields(logrus.Fields{
		"stock_code":  stockCode,
		"rated_count": ratedCount,
		"avg_rating":  avgRating,
	}).Info("Manual sentiment override applied")
}
