package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-compass/internal/backtest"
	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/service"
)

type stubStockRepo struct {
	stocks  map[string]*models.Stock
	created *models.Stock
	err     error
}

func (s *stubStockRepo) Create(ctx context.Context, stock *models.Stock) error {
	s.created = stock
	return s.err
}

func (s *stubStockRepo) GetByCode(ctx context.Context, code string) (*models.Stock, error) {
	if s.err != nil {
		return nil, s.err
	}
	stock, ok := s.stocks[code]
	if !ok {
		return nil, models.ErrNotFound
	}
	return stock, nil
}

func (s *stubStockRepo) List(ctx context.Context, market models.Market, limit int) ([]*models.Stock, error) {
	var out []*models.Stock
	for _, stock := range s.stocks {
		if stock.Market == market {
			out = append(out, stock)
		}
	}
	return out, s.err
}

func (s *stubStockRepo) ListAll(ctx context.Context) ([]*models.Stock, error) {
	var out []*models.Stock
	for _, stock := range s.stocks {
		out = append(out, stock)
	}
	return out, s.err
}

func (s *stubStockRepo) Update(ctx context.Context, stock *models.Stock) error { return s.err }

func (s *stubStockRepo) Delete(ctx context.Context, code string) error {
	if _, ok := s.stocks[code]; !ok {
		return models.ErrNotFound
	}
	delete(s.stocks, code)
	return nil
}

type stubAnalysisAPI struct {
	result     *models.AnalysisResult
	ranking    []*models.AnalysisResult
	batch      *service.BatchResult
	err        error
	analyzed   []string
	ratedID    uuid.UUID
	ratedValue *float64
}

func (s *stubAnalysisAPI) AnalyzeStock(ctx context.Context, stockCode string) (*models.AnalysisResult, error) {
	s.analyzed = append(s.analyzed, stockCode)
	return s.result, s.err
}

func (s *stubAnalysisAPI) AnalyzeAll(ctx context.Context) (*service.BatchResult, error) {
	return s.batch, s.err
}

func (s *stubAnalysisAPI) GetLatest(ctx context.Context, stockCode string) (*models.AnalysisResult, error) {
	return s.result, s.err
}

func (s *stubAnalysisAPI) GetRanking(ctx context.Context, date time.Time, limit int) ([]*models.AnalysisResult, error) {
	return s.ranking, s.err
}

func (s *stubAnalysisAPI) RateNews(ctx context.Context, stockCode string, newsID uuid.UUID, rating *float64) error {
	s.ratedID = newsID
	s.ratedValue = rating
	return s.err
}

type stubBacktestAPI struct {
	report     *backtest.Report
	run        *models.BacktestRun
	runs       []*models.BacktestRun
	err        error
	lastParams backtest.Params
}

func (s *stubBacktestAPI) Run(ctx context.Context, params backtest.Params) (*backtest.Report, error) {
	s.lastParams = params
	return s.report, s.err
}

func (s *stubBacktestAPI) GetRun(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	return s.run, s.err
}

func (s *stubBacktestAPI) ListRuns(ctx context.Context, stockCode string, limit int) ([]*models.BacktestRun, error) {
	return s.runs, s.err
}

type stubCollectionAPI struct {
	summary *service.CollectionSummary
	err     error
}

func (s *stubCollectionAPI) CollectAll(ctx context.Context) (*service.CollectionSummary, error) {
	return s.summary, s.err
}

type testDeps struct {
	stocks     *stubStockRepo
	analysis   *stubAnalysisAPI
	backtests  *stubBacktestAPI
	collection *stubCollectionAPI
}

func newTestServer(deps testDeps) *Server {
	if deps.stocks == nil {
		deps.stocks = &stubStockRepo{stocks: map[string]*models.Stock{}}
	}
	if deps.analysis == nil {
		deps.analysis = &stubAnalysisAPI{}
	}
	if deps.backtests == nil {
		deps.backtests = &stubBacktestAPI{}
	}
	if deps.collection == nil {
		deps.collection = &stubCollectionAPI{}
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := config.APIConfig{
		Host:                "127.0.0.1",
		Port:                8080,
		ReadTimeoutSeconds:  5,
		WriteTimeoutSeconds: 10,
	}
	return NewServer(cfg, deps.stocks, deps.analysis, deps.backtests, deps.collection, logger)
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestHealthz(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"ok"`)
}

func TestGetStockNotFound(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodGet, "/api/v1/stocks/005930", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateStock(t *testing.T) {
	stocks := &stubStockRepo{stocks: map[string]*models.Stock{}}
	server := newTestServer(testDeps{stocks: stocks})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/stocks", map[string]string{
		"code":   "005930",
		"name":   "Samsung Electronics",
		"market": "KOSPI",
		"sector": "Semiconductors",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	require.NotNil(t, stocks.created)
	assert.Equal(t, "005930", stocks.created.Code)
	assert.Equal(t, models.MarketKOSPI, stocks.created.Market)
	assert.NotEqual(t, uuid.Nil, stocks.created.ID)
}

func TestCreateStockRejectsBadMarket(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/stocks", map[string]string{
		"code":   "005930",
		"name":   "Samsung Electronics",
		"market": "NASDAQ",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetAnalysisRefreshRecomputes(t *testing.T) {
	analysis := &stubAnalysisAPI{
		result: &models.AnalysisResult{
			ID:         uuid.New(),
			StockCode:  "005930",
			TotalScore: 72.5,
			Grade:      models.GradeB,
		},
	}
	server := newTestServer(testDeps{analysis: analysis})

	resp := doRequest(t, server, http.MethodGet, "/api/v1/stocks/005930/analysis?refresh=true", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"005930"}, analysis.analyzed)
	assert.Contains(t, resp.Body.String(), `"totalScore":72.5`)
}

func TestGetAnalysisReadsStored(t *testing.T) {
	analysis := &stubAnalysisAPI{
		result: &models.AnalysisResult{StockCode: "005930", TotalScore: 61},
	}
	server := newTestServer(testDeps{analysis: analysis})

	resp := doRequest(t, server, http.MethodGet, "/api/v1/stocks/005930/analysis", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, analysis.analyzed)
}

func TestRankingRejectsBadDate(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodGet, "/api/v1/ranking?date=20260830", nil)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRanking(t *testing.T) {
	analysis := &stubAnalysisAPI{
		ranking: []*models.AnalysisResult{
			{StockCode: "005930", TotalScore: 85},
			{StockCode: "000660", TotalScore: 78},
		},
	}
	server := newTestServer(testDeps{analysis: analysis})

	resp := doRequest(t, server, http.MethodGet, "/api/v1/ranking?date=2026-08-28&limit=10", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"count":2`)
}

func TestRateNews(t *testing.T) {
	analysis := &stubAnalysisAPI{}
	server := newTestServer(testDeps{analysis: analysis})

	newsID := uuid.New()
	resp := doRequest(t, server, http.MethodPut, "/api/v1/news/"+newsID.String()+"/rating", map[string]interface{}{
		"stockCode": "005930",
		"rating":    7.5,
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, newsID, analysis.ratedID)
	require.NotNil(t, analysis.ratedValue)
	assert.Equal(t, 7.5, *analysis.ratedValue)
}

func TestRateNewsClearsWithNull(t *testing.T) {
	analysis := &stubAnalysisAPI{ratedValue: new(float64)}
	server := newTestServer(testDeps{analysis: analysis})

	newsID := uuid.New()
	resp := doRequest(t, server, http.MethodPut, "/api/v1/news/"+newsID.String()+"/rating", map[string]interface{}{
		"stockCode": "005930",
		"rating":    nil,
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, analysis.ratedValue)
}

func TestRateNewsInvalidID(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodPut, "/api/v1/news/not-a-uuid/rating", map[string]interface{}{
		"stockCode": "005930",
		"rating":    5.0,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), models.ErrInvalidID.Error())
}

func TestRunAnalysisUnknownStockReturns404(t *testing.T) {
	analysis := &stubAnalysisAPI{
		err: fmt.Errorf("%w: 999999", models.ErrUnknownStock),
	}
	server := newTestServer(testDeps{analysis: analysis})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/stocks/999999/analysis", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), models.ErrUnknownStock.Error())
}

func TestRunBacktestAppliesDefaults(t *testing.T) {
	backtests := &stubBacktestAPI{
		report: &backtest.Report{StockCode: "005930"},
	}
	server := newTestServer(testDeps{backtests: backtests})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/backtest", map[string]interface{}{
		"stockCode": "005930",
		"startDate": "2025-01-02",
		"endDate":   "2025-12-30",
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "005930", backtests.lastParams.StockCode)
	assert.Equal(t, backtest.DefaultCommissionRate, backtests.lastParams.CommissionRate)
	assert.Equal(t, backtest.DefaultLookbackDays, backtests.lastParams.LookbackDays)
}

func TestRunBacktestOverrides(t *testing.T) {
	backtests := &stubBacktestAPI{report: &backtest.Report{}}
	server := newTestServer(testDeps{backtests: backtests})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/backtest", map[string]interface{}{
		"stockCode":      "005930",
		"startDate":      "2025-01-02",
		"endDate":        "2025-12-30",
		"buyThreshold":   25.0,
		"initialCapital": 50_000_000.0,
	})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 25.0, backtests.lastParams.BuyThreshold)
	assert.Equal(t, 50_000_000.0, backtests.lastParams.InitialCapital)
}

func TestRunBacktestNoData(t *testing.T) {
	backtests := &stubBacktestAPI{err: models.ErrNoPriceData}
	server := newTestServer(testDeps{backtests: backtests})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/backtest", map[string]interface{}{
		"stockCode": "005930",
		"startDate": "2025-01-02",
		"endDate":   "2025-12-30",
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRunBacktestInvalidThresholdsReturn400(t *testing.T) {
	// The stub surfaces the same wrapped validation error the engine
	// produces for inverted thresholds.
	params := backtest.DefaultParams("005930",
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC))
	params.BuyThreshold = 20
	params.SellThreshold = 25
	validationErr := params.Validate()
	require.Error(t, validationErr)

	backtests := &stubBacktestAPI{err: validationErr}
	server := newTestServer(testDeps{backtests: backtests})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/backtest", map[string]interface{}{
		"stockCode":     "005930",
		"startDate":     "2025-01-02",
		"endDate":       "2025-12-30",
		"buyThreshold":  20.0,
		"sellThreshold": 25.0,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "sell threshold")
}

func TestRunBacktestBadDate(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/backtest", map[string]interface{}{
		"stockCode": "005930",
		"startDate": "02/01/2025",
		"endDate":   "2025-12-30",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetBacktestRun(t *testing.T) {
	runID := uuid.New()
	backtests := &stubBacktestAPI{
		run: &models.BacktestRun{ID: runID, StockCode: "005930"},
	}
	server := newTestServer(testDeps{backtests: backtests})

	resp := doRequest(t, server, http.MethodGet, "/api/v1/backtest/"+runID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), runID.String())
}

func TestCollectAllEndpoint(t *testing.T) {
	collection := &stubCollectionAPI{
		summary: &service.CollectionSummary{Stocks: 3, PriceBars: 42},
	}
	server := newTestServer(testDeps{collection: collection})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/admin/collect", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"priceBars":42`)
}

func TestAnalyzeAllEndpoint(t *testing.T) {
	analysis := &stubAnalysisAPI{
		batch: &service.BatchResult{Completed: 5, Failed: 1},
	}
	server := newTestServer(testDeps{analysis: analysis})

	resp := doRequest(t, server, http.MethodPost, "/api/v1/admin/analyze", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"completed":5`)
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(testDeps{})

	resp := doRequest(t, server, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, resp.Code)
}
