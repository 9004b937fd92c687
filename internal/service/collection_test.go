package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-compass/internal/datasource"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/repository"
)

func newTestCollectionService(
	sources *datasource.Sources,
	stocks *MockStockRepository,
	prices *MockPriceRepository,
	financials *MockFinancialRepository,
	news *MockNewsRepository,
) *CollectionService {
	repos := &repository.Repositories{
		Stock:     stocks,
		Price:     prices,
		Financial: financials,
		News:      news,
	}
	return NewCollectionService(sources, repos, 30, quietLogger())
}

func TestCollectPricesIncremental(t *testing.T) {
	latest := time.Now().AddDate(0, 0, -10)
	fetched := risingBars("005930", 5, latest.AddDate(0, 0, 1))

	priceSource := &stubPriceSource{bars: fetched}
	sources := &datasource.Sources{Prices: priceSource}

	prices := new(MockPriceRepository)
	prices.On("GetLatestDate", mock.Anything, "005930").Return(latest, nil)
	prices.On("InsertBatch", mock.Anything, fetched).Return(nil)

	svc := newTestCollectionService(sources, new(MockStockRepository), prices, new(MockFinancialRepository), new(MockNewsRepository))

	n, err := svc.CollectPrices(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// The fetch window starts the day after the last stored bar
	wantFrom := latest.AddDate(0, 0, 1)
	assert.WithinDuration(t, wantFrom, priceSource.lastFrom, time.Second)
	prices.AssertExpectations(t)
}

func TestCollectPricesInitialBackfill(t *testing.T) {
	priceSource := &stubPriceSource{bars: risingBars("373220", 30, time.Now().AddDate(0, 0, -30))}
	sources := &datasource.Sources{Prices: priceSource}

	prices := new(MockPriceRepository)
	prices.On("GetLatestDate", mock.Anything, "373220").Return(time.Time{}, models.ErrNoPriceData)
	prices.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)

	svc := newTestCollectionService(sources, new(MockStockRepository), prices, new(MockFinancialRepository), new(MockNewsRepository))

	n, err := svc.CollectPrices(context.Background(), "373220")
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	wantFrom := time.Now().AddDate(0, 0, -initialPriceHistoryDays)
	assert.WithinDuration(t, wantFrom, priceSource.lastFrom, time.Minute)
}

func TestCollectPricesAlreadyUpToDate(t *testing.T) {
	priceSource := &stubPriceSource{}
	sources := &datasource.Sources{Prices: priceSource}

	prices := new(MockPriceRepository)
	prices.On("GetLatestDate", mock.Anything, "005930").Return(truncateToDay(time.Now()), nil)

	svc := newTestCollectionService(sources, new(MockStockRepository), prices, new(MockFinancialRepository), new(MockNewsRepository))

	n, err := svc.CollectPrices(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, priceSource.calls)
}

func TestCollectFinancialsUpserts(t *testing.T) {
	per := 11.2
	financialSource := &stubFinancialSource{snapshot: &models.FinancialSnapshot{
		StockCode: "005930", PER: &per, UpdatedAt: time.Now(),
	}}
	sources := &datasource.Sources{Financials: financialSource}

	financials := new(MockFinancialRepository)
	financials.On("Upsert", mock.Anything, financialSource.snapshot).Return(nil)

	svc := newTestCollectionService(sources, new(MockStockRepository), new(MockPriceRepository), financials, new(MockNewsRepository))

	require.NoError(t, svc.CollectFinancials(context.Background(), "005930"))
	financials.AssertExpectations(t)
}

func TestCollectNewsInserts(t *testing.T) {
	items := []models.NewsItem{
		{StockCode: "005930", Title: "headline", URL: "https://example.com/1"},
	}
	newsSource := &stubNewsSource{items: items}
	sources := &datasource.Sources{News: newsSource}

	news := new(MockNewsRepository)
	news.On("InsertBatch", mock.Anything, items).Return(nil)

	svc := newTestCollectionService(sources, new(MockStockRepository), new(MockPriceRepository), new(MockFinancialRepository), news)

	n, err := svc.CollectNews(context.Background(), "005930")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollectAllCountsErrorsAndContinues(t *testing.T) {
	sources := &datasource.Sources{
		Prices:     &stubPriceSource{err: errors.New("provider down")},
		Financials: &stubFinancialSource{},
		News:       &stubNewsSource{},
	}

	stocks := new(MockStockRepository)
	stocks.On("ListAll", mock.Anything).Return([]*models.Stock{
		{Code: "005930"}, {Code: "000660"},
	}, nil)

	prices := new(MockPriceRepository)
	prices.On("GetLatestDate", mock.Anything, mock.Anything).Return(time.Time{}, models.ErrNoPriceData)

	financials := new(MockFinancialRepository)
	financials.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	svc := newTestCollectionService(sources, stocks, prices, financials, new(MockNewsRepository))

	summary, err := svc.CollectAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Stocks)
	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, 2, summary.Financials)
	assert.Equal(t, 0, summary.PriceBars)
}
