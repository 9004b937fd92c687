// Package logger provides data collection logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CollectionLogger provides dedicated logging for provider collection runs.
type CollectionLogger struct {
	*logrus.Entry
}

// NewCollectionLogger creates a new collection logger.
func NewCollectionLogger(baseLogger *logrus.Logger) *CollectionLogger {
	return &CollectionLogger{
		Entry: baseLogger.WithField("component", "collection"),
	}
}

// LogPricesCollected logs a completed price collection run.
func (cl *CollectionLogger) LogPricesCollected(stockCode string, source string, bars int, from, to time.Time) {
	cl.WithFields(logrus.Fields{
		"stock_code": stockCode,
		"source":     source,
		"bars":       bars,
		"from":       from.Format("2006-01-02"),
		"to":         to.Format("2006-01-02"),
	}).Info("Daily prices collected")
}

// LogFinancialsCollected logs a completed fundamentals collection run.
func (cl *CollectionLogger) LogFinancialsCollected(stockCode string, source string, populatedMetrics int) {
	cl.WithFields(logrus.Fields{
		"stock_code":        stockCode,
		"source":            source,
		"populated_metrics": populatedMetrics,
	}).Info("Financial snapshot collected")
}

// LogNewsCollected logs a completed news collection run.
func (cl *CollectionLogger) LogNewsCollected(stockCode string, source string, items, duplicates int) {
	cl.WithFields(logrus.Fields{
		"stock_code": stockCode,
		"source":     source,
		"items":      items,
		"duplicates": duplicates,
	}).Info("News items collected")
}

// LogProviderError logs an upstream provider failure.
func (cl *CollectionLogger) LogProviderError(source, operation string, err error) {
	cl.WithFields(logrus.Fields{
		"source":    source,
		"operation": operation,
		"error":     err.Error(),
	}).Error("Provider request failed")
}

// LogRateLimited logs a throttled provider call.
func (cl *CollectionLogger) LogRateLimited(source string, waited time.Duration) {
	cl.WithFields(logrus.Fields{
		"source":    source,
		"waited_ms": waited.Milliseconds(),
	}).Debug("Provider request rate limited")
}
