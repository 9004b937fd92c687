// Package metrics provides the centralized Prometheus metrics registry
// for the analysis service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PriceBarsCollectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_compass",
		Name:      "price_bars_collected_total",
		Help:      "Total number of daily price bars collected",
	})
	NewsItemsCollectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_compass",
		Name:      "news_items_collected_total",
		Help:      "Total number of news items collected",
	})
	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_compass",
		Name:      "provider_errors_total",
		Help:      "Total number of provider request failures by source",
	}, []string{"source"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_compass",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
)

// Gauge metrics
var (
	TrackedStocks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stock_compass",
		Name:      "tracked_stocks",
		Help:      "Number of stocks in the analysis universe",
	})
	LastCollectionTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stock_compass",
		Name:      "last_collection_timestamp_seconds",
		Help:      "Unix time of the last completed collection pass",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PriceBarsCollectedTotal)
		registry.MustRegister(NewsItemsCollectedTotal)
		registry.MustRegister(ProviderErrorsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		// Register gauge metrics
		registry.MustRegister(TrackedStocks)
		registry.MustRegister(LastCollectionTimestamp)

		// Register analysis metrics
		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(CompositeScore)
		registry.MustRegister(GradeDistribution)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestTotalReturn)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPriceBarsCollected records stored daily bars.
func RecordPriceBarsCollected(count int) {
	PriceBarsCollectedTotal.Add(float64(count))
}

// RecordNewsItemsCollected records stored news items.
func RecordNewsItemsCollected(count int) {
	NewsItemsCollectedTotal.Add(float64(count))
}

// RecordProviderError records a provider request failure.
func RecordProviderError(source string) {
	ProviderErrorsTotal.WithLabelValues(source).Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateTrackedStocks updates the universe size gauge.
func UpdateTrackedStocks(count float64) {
	TrackedStocks.Set(count)
}

// UpdateLastCollection marks the completion time of a collection pass.
func UpdateLastCollection(t float64) {
	LastCollectionTimestamp.Set(t)
}
