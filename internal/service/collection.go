package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/datasource"
	"github.com/yourusername/stock-compass/internal/logger"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/repository"
)

// Default history span fetched for a stock with no stored prices.
const initialPriceHistoryDays = 400

// CollectionService pulls prices, financials and news from the
// providers into the repositories.
type CollectionService struct {
	sources       *datasource.Sources
	stockRepo     repository.StockRepository
	priceRepo     repository.PriceRepository
	financialRepo repository.FinancialRepository
	newsRepo      repository.NewsRepository
	log           *logger.CollectionLogger

	newsLookbackDays int
}

// CollectionSummary reports the outcome of a full collection pass
type CollectionSummary struct {
	Stocks     int           `json:"stocks"`
	PriceBars  int           `json:"priceBars"`
	NewsItems  int           `json:"newsItems"`
	Financials int           `json:"financials"`
	Errors     int           `json:"errors"`
	Duration   time.Duration `json:"duration"`
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	sources *datasource.Sources,
	repos *repository.Repositories,
	newsLookbackDays int,
	baseLogger *logrus.Logger,
) *CollectionService {
	if newsLookbackDays <= 0 {
		newsLookbackDays = 30
	}
	return &CollectionService{
		sources:          sources,
		stockRepo:        repos.Stock,
		priceRepo:        repos.Price,
		financialRepo:    repos.Financial,
		newsRepo:         repos.News,
		log:              logger.NewCollectionLogger(baseLogger),
		newsLookbackDays: newsLookbackDays,
	}
}

// CollectPrices fetches daily bars since the last stored date and
// inserts them. A stock with no history gets an initial backfill.
func (s *CollectionService) CollectPrices(ctx context.Context, stockCode string) (int, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -initialPriceHistoryDays)

	latest, err := s.priceRepo.GetLatestDate(ctx, stockCode)
	switch {
	case err == nil:
		if !latest.Before(truncateToDay(to)) {
			return 0, nil
		}
		from = latest.AddDate(0, 0, 1)
	case errors.Is(err, models.ErrNoPriceData):
		// initial backfill
	default:
		return 0, fmt.Errorf("resolving last stored date for %s: %w", stockCode, err)
	}

	bars, err := s.sources.Prices.FetchDailyPrices(ctx, stockCode, from, to)
	if err != nil {
		s.log.LogProviderError(s.sources.Prices.Name(), "fetch_daily_prices", err)
		metrics.RecordProviderError(s.sources.Prices.Name())
		return 0, err
	}
	if len(bars) == 0 {
		return 0, nil
	}

	if err := s.priceRepo.InsertBatch(ctx, bars); err != nil {
		return 0, fmt.Errorf("storing %d bars for %s: %w", len(bars), stockCode, err)
	}

	s.log.LogPricesCollected(stockCode, s.sources.Prices.Name(), len(bars), from, to)
	metrics.RecordPriceBarsCollected(len(bars))
	return len(bars), nil
}

// CollectFinancials fetches the latest fundamental snapshot and upserts
// it. An empty snapshot is still stored so the staleness timestamp
// advances.
func (s *CollectionService) CollectFinancials(ctx context.Context, stockCode string) error {
	snapshot, err := s.sources.Financials.FetchFinancials(ctx, stockCode)
	if err != nil {
		s.log.LogProviderError(s.sources.Financials.Name(), "fetch_financials", err)
		metrics.RecordProviderError(s.sources.Financials.Name())
		return err
	}

	if err := s.financialRepo.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("storing financials for %s: %w", stockCode, err)
	}

	s.log.LogFinancialsCollected(stockCode, s.sources.Financials.Name(), populatedMetrics(snapshot))
	return nil
}

// CollectNews fetches recent classified headlines and inserts them.
// Re-fetched articles are dropped by the URL conflict rule, so the call
// is safe to repeat.
func (s *CollectionService) CollectNews(ctx context.Context, stockCode string) (int, error) {
	since := time.Now().AddDate(0, 0, -s.newsLookbackDays)

	items, err := s.sources.News.FetchNews(ctx, stockCode, since)
	if err != nil {
		s.log.LogProviderError(s.sources.News.Name(), "fetch_news", err)
		metrics.RecordProviderError(s.sources.News.Name())
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	if err := s.newsRepo.InsertBatch(ctx, items); err != nil {
		return 0, fmt.Errorf("storing %d news items for %s: %w", len(items), stockCode, err)
	}

	s.log.LogNewsCollected(stockCode, s.sources.News.Name(), len(items), 0)
	metrics.RecordNewsItemsCollected(len(items))
	return len(items), nil
}

// CollectAll runs the three collectors over every known stock. The
// provider clients rate-limit themselves, so the loop is sequential on
// purpose; a failing stock is counted and skipped.
func (s *CollectionService) CollectAll(ctx context.Context) (*CollectionSummary, error) {
	stocks, err := s.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stocks: %w", err)
	}

	started := time.Now()
	summary := &CollectionSummary{Stocks: len(stocks)}
	metrics.UpdateTrackedStocks(float64(len(stocks)))

	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}

		if n, err := s.CollectPrices(ctx, stock.Code); err != nil {
			summary.Errors++
		} else {
			summary.PriceBars += n
		}

		if err := s.CollectFinancials(ctx, stock.Code); err != nil {
			summary.Errors++
		} else {
			summary.Financials++
		}

		if n, err := s.CollectNews(ctx, stock.Code); err != nil {
			summary.Errors++
		} else {
			summary.NewsItems += n
		}
	}

	summary.Duration = time.Since(started)
	metrics.UpdateLastCollection(float64(time.Now().Unix()))
	return summary, nil
}

func populatedMetrics(snapshot *models.FinancialSnapshot) int {
	count := 0
	for _, v := range []*float64{
		snapshot.PER, snapshot.PBR, snapshot.PSR, snapshot.ROE, snapshot.OpMargin,
		snapshot.RevenueGrowth, snapshot.OpGrowth, snapshot.DebtRatio, snapshot.CurrentRatio,
	} {
		if v != nil {
			count++
		}
	}
	return count
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
