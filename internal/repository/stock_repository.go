package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/models"
)

const stockColumns = "id, code, name, market, sector, created_at, updated_at"

// PostgresStockRepository implements StockRepository for PostgreSQL
type PostgresStockRepository struct {
	db *database.DB
}

// NewPostgresStockRepository creates a new stock repository
func NewPostgresStockRepository(db *database.DB) StockRepository {
	return &PostgresStockRepository{db: db}
}

// Create inserts a new stock
func (r *PostgresStockRepository) Create(ctx context.Context, stock *models.Stock) error {
	query := `
		INSERT INTO stocks (id, code, name, market, sector)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		stock.ID, stock.Code, stock.Name, stock.Market, stock.Sector,
	)
	if err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}

	return nil
}

// GetByCode retrieves a stock by its 6-digit code
func (r *PostgresStockRepository) GetByCode(ctx context.Context, code string) (*models.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks WHERE code = $1`

	stock := &models.Stock{}
	err := r.db.GetPool().QueryRow(ctx, query, code).Scan(
		&stock.ID, &stock.Code, &stock.Name, &stock.Market, &stock.Sector,
		&stock.CreatedAt, &stock.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	return stock, nil
}

// List retrieves stocks for a market ordered by code
func (r *PostgresStockRepository) List(ctx context.Context, market models.Market, limit int) ([]*models.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stocks
		WHERE market = $1
		ORDER BY code ASC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, market, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	return scanStocks(rows)
}

// ListAll retrieves every tracked stock ordered by code
func (r *PostgresStockRepository) ListAll(ctx context.Context) ([]*models.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stocks ORDER BY code ASC`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	return scanStocks(rows)
}

// Update updates a stock's mutable fields
func (r *PostgresStockRepository) Update(ctx context.Context, stock *models.Stock) error {
	query := `
		UPDATE stocks
		SET name = $2, market = $3, sector = $4, updated_at = NOW()
		WHERE code = $1
	`

	tag, err := r.db.GetPool().Exec(ctx, query,
		stock.Code, stock.Name, stock.Market, stock.Sector,
	)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes a stock by code
func (r *PostgresStockRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.db.GetPool().Exec(ctx, `DELETE FROM stocks WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanStocks(rows pgx.Rows) ([]*models.Stock, error) {
	var stocks []*models.Stock
	for rows.Next() {
		stock := &models.Stock{}
		if err := rows.Scan(
			&stock.ID, &stock.Code, &stock.Name, &stock.Market, &stock.Sector,
			&stock.CreatedAt, &stock.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, stock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stocks: %w", err)
	}
	return stocks, nil
}
