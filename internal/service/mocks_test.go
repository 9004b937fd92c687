package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/stock-compass/internal/models"
)

// MockStockRepository mocks stock master data access
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Create(ctx context.Context, stock *models.Stock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) GetByCode(ctx context.Context, code string) (*models.Stock, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stock), args.Error(1)
}

func (m *MockStockRepository) List(ctx context.Context, market models.Market, limit int) ([]*models.Stock, error) {
	args := m.Called(ctx, market, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Stock), args.Error(1)
}

func (m *MockStockRepository) ListAll(ctx context.Context) ([]*models.Stock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Stock), args.Error(1)
}

func (m *MockStockRepository) Update(ctx context.Context, stock *models.Stock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockPriceRepository mocks daily price access
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) InsertBatch(ctx context.Context, bars []models.PriceBar) error {
	args := m.Called(ctx, bars)
	return args.Error(0)
}

func (m *MockPriceRepository) GetRange(ctx context.Context, stockCode string, start, end time.Time) ([]models.PriceBar, error) {
	args := m.Called(ctx, stockCode, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PriceBar), args.Error(1)
}

func (m *MockPriceRepository) GetRecent(ctx context.Context, stockCode string, days int) ([]models.PriceBar, error) {
	args := m.Called(ctx, stockCode, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PriceBar), args.Error(1)
}

func (m *MockPriceRepository) GetLatestDate(ctx context.Context, stockCode string) (time.Time, error) {
	args := m.Called(ctx, stockCode)
	return args.Get(0).(time.Time), args.Error(1)
}

// MockFinancialRepository mocks financial snapshot access
type MockFinancialRepository struct {
	mock.Mock
}

func (m *MockFinancialRepository) Upsert(ctx context.Context, snapshot *models.FinancialSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockFinancialRepository) GetByCode(ctx context.Context, stockCode string) (*models.FinancialSnapshot, error) {
	args := m.Called(ctx, stockCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialSnapshot), args.Error(1)
}

// MockNewsRepository mocks news item access
type MockNewsRepository struct {
	mock.Mock
}

func (m *MockNewsRepository) InsertBatch(ctx context.Context, items []models.NewsItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockNewsRepository) GetRecent(ctx context.Context, stockCode string, since time.Time) ([]models.NewsItem, error) {
	args := m.Called(ctx, stockCode, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NewsItem), args.Error(1)
}

func (m *MockNewsRepository) SetRating(ctx context.Context, id uuid.UUID, rating *float64) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

func (m *MockNewsRepository) GetRated(ctx context.Context, stockCode string) ([]models.NewsItem, error) {
	args := m.Called(ctx, stockCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NewsItem), args.Error(1)
}

// MockAnalysisRepository mocks analysis result access
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Save(ctx context.Context, result *models.AnalysisResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetLatest(ctx context.Context, stockCode string) (*models.AnalysisResult, error) {
	args := m.Called(ctx, stockCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisRepository) GetByDate(ctx context.Context, stockCode string, date time.Time) (*models.AnalysisResult, error) {
	args := m.Called(ctx, stockCode, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalysisResult), args.Error(1)
}

func (m *MockAnalysisRepository) GetRanking(ctx context.Context, date time.Time, limit int) ([]*models.AnalysisResult, error) {
	args := m.Called(ctx, date, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalysisResult), args.Error(1)
}

// MockBacktestRunRepository mocks persisted backtest run access
type MockBacktestRunRepository struct {
	mock.Mock
}

func (m *MockBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BacktestRun), args.Error(1)
}

func (m *MockBacktestRunRepository) GetByStock(ctx context.Context, stockCode string, limit int) ([]*models.BacktestRun, error) {
	args := m.Called(ctx, stockCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BacktestRun), args.Error(1)
}

// stubPriceSource is a canned price provider
type stubPriceSource struct {
	bars     []models.PriceBar
	err      error
	lastFrom time.Time
	lastTo   time.Time
	calls    int
}

func (s *stubPriceSource) FetchDailyPrices(ctx context.Context, stockCode string, from, to time.Time) ([]models.PriceBar, error) {
	s.calls++
	s.lastFrom, s.lastTo = from, to
	return s.bars, s.err
}

func (s *stubPriceSource) Name() string { return "kis" }

// stubFinancialSource is a canned fundamentals provider
type stubFinancialSource struct {
	snapshot *models.FinancialSnapshot
	err      error
}

func (s *stubFinancialSource) FetchFinancials(ctx context.Context, stockCode string) (*models.FinancialSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.snapshot != nil {
		return s.snapshot, nil
	}
	return &models.FinancialSnapshot{StockCode: stockCode, UpdatedAt: time.Now()}, nil
}

func (s *stubFinancialSource) Name() string { return "naver" }

// stubNewsSource is a canned news provider
type stubNewsSource struct {
	items []models.NewsItem
	err   error
}

func (s *stubNewsSource) FetchNews(ctx context.Context, stockCode string, since time.Time) ([]models.NewsItem, error) {
	return s.items, s.err
}

func (s *stubNewsSource) Name() string { return "naver" }
