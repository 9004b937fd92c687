// Package service wires the scoring, collection and backtest workflows
// onto the repositories and providers.
package service

import (
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/stock-compass/internal/models"
)

// ResultCache provides in-memory caching for analysis results, keyed by
// stock code. A stale score is acceptable for the TTL window; writes
// that change the inputs flush the affected entry.
type ResultCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewResultCache creates a new analysis result cache
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached result
func (rc *ResultCache) Get(stockCode string) *models.AnalysisResult {
	if v, found := rc.cache.Get(stockCode); found {
		if result, ok := v.(*models.AnalysisResult); ok {
			return result
		}
	}
	return nil
}

// Set stores a result
func (rc *ResultCache) Set(stockCode string, result *models.AnalysisResult) {
	rc.cache.Set(stockCode, result, rc.ttl)
}

// Invalidate removes the entry for a stock
func (rc *ResultCache) Invalidate(stockCode string) {
	rc.cache.Delete(stockCode)
}

// Flush removes every entry
func (rc *ResultCache) Flush() {
	rc.cache.Flush()
}
