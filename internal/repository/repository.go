package repository

import (
	"fmt"

	"github.com/yourusername/stock-compass/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Stock       StockRepository
	Price       PriceRepository
	Financial   FinancialRepository
	News        NewsRepository
	Analysis    AnalysisRepository
	BacktestRun BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Stock:       NewPostgresStockRepository(db),
		Price:       NewPostgresPriceRepository(db),
		Financial:   NewPostgresFinancialRepository(db),
		News:        NewPostgresNewsRepository(db),
		Analysis:    NewPostgresAnalysisRepository(db),
		BacktestRun: NewPostgresBacktestRunRepository(db),
	}, nil
}
