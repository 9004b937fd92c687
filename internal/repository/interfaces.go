package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/stock-compass/internal/models"
)

// StockRepository defines the interface for stock master data access
type StockRepository interface {
	Create(ctx context.Context, stock *models.Stock) error
	GetByCode(ctx context.Context, code string) (*models.Stock, error)
	List(ctx context.Context, market models.Market, limit int) ([]*models.Stock, error)
	ListAll(ctx context.Context) ([]*models.Stock, error)
	Update(ctx context.Context, stock *models.Stock) error
	Delete(ctx context.Context, code string) error
}

// PriceRepository defines the interface for daily price data access
type PriceRepository interface {
	InsertBatch(ctx context.Context, bars []models.PriceBar) error
	GetRange(ctx context.Context, stockCode string, start, end time.Time) ([]models.PriceBar, error)
	GetRecent(ctx context.Context, stockCode string, days int) ([]models.PriceBar, error)
	GetLatestDate(ctx context.Context, stockCode string) (time.Time, error)
}

// FinancialRepository defines the interface for financial snapshot access
type FinancialRepository interface {
	Upsert(ctx context.Context, snapshot *models.FinancialSnapshot) error
	GetByCode(ctx context.Context, stockCode string) (*models.FinancialSnapshot, error)
}

// NewsRepository defines the interface for news item access
type NewsRepository interface {
	InsertBatch(ctx context.Context, items []models.NewsItem) error
	GetRecent(ctx context.Context, stockCode string, since time.Time) ([]models.NewsItem, error)
	SetRating(ctx context.Context, id uuid.UUID, rating *float64) error
	GetRated(ctx context.Context, stockCode string) ([]models.NewsItem, error)
}

// AnalysisRepository defines the interface for analysis result access
type AnalysisRepository interface {
	Save(ctx context.Context, result *models.AnalysisResult) error
	GetLatest(ctx context.Context, stockCode string) (*models.AnalysisResult, error)
	GetByDate(ctx context.Context, stockCode string, date time.Time) (*models.AnalysisResult, error)
	GetRanking(ctx context.Context, date time.Time, limit int) ([]*models.AnalysisResult, error)
}

// BacktestRunRepository defines the interface for persisted backtest runs
type BacktestRunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetByStock(ctx context.Context, stockCode string, limit int) ([]*models.BacktestRun, error)
}
