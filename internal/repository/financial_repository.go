package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/models"
)

// PostgresFinancialRepository implements FinancialRepository for PostgreSQL
type PostgresFinancialRepository struct {
	db *database.DB
}

// NewPostgresFinancialRepository creates a new financial repository
func NewPostgresFinancialRepository(db *database.DB) FinancialRepository {
	return &PostgresFinancialRepository{db: db}
}

// Upsert inserts or replaces the financial snapshot for a stock
func (r *PostgresFinancialRepository) Upsert(ctx context.Context, snapshot *models.FinancialSnapshot) error {
	query := `
		INSERT INTO financials (
			stock_code, per, pbr, psr, roe, op_margin,
			revenue_growth, op_growth, debt_ratio, current_ratio, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (stock_code) DO UPDATE SET
			per = EXCLUDED.per,
			pbr = EXCLUDED.pbr,
			psr = EXCLUDED.psr,
			roe = EXCLUDED.roe,
			op_margin = EXCLUDED.op_margin,
			revenue_growth = EXCLUDED.revenue_growth,
			op_growth = EXCLUDED.op_growth,
			debt_ratio = EXCLUDED.debt_ratio,
			current_ratio = EXCLUDED.current_ratio,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		snapshot.StockCode, snapshot.PER, snapshot.PBR, snapshot.PSR,
		snapshot.ROE, snapshot.OpMargin, snapshot.RevenueGrowth, snapshot.OpGrowth,
		snapshot.DebtRatio, snapshot.CurrentRatio,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert financial snapshot: %w", err)
	}

	return nil
}

// GetByCode retrieves the financial snapshot for a stock
func (r *PostgresFinancialRepository) GetByCode(ctx context.Context, stockCode string) (*models.FinancialSnapshot, error) {
	query := `
		SELECT stock_code, per, pbr, psr, roe, op_margin,
		       revenue_growth, op_growth, debt_ratio, current_ratio, updated_at
		FROM financials WHERE stock_code = $1
	`

	snapshot := &models.FinancialSnapshot{}
	err := r.db.GetPool().QueryRow(ctx, query, stockCode).Scan(
		&snapshot.StockCode, &snapshot.PER, &snapshot.PBR, &snapshot.PSR,
		&snapshot.ROE, &snapshot.OpMargin, &snapshot.RevenueGrowth, &snapshot.OpGrowth,
		&snapshot.DebtRatio, &snapshot.CurrentRatio, &snapshot.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get financial snapshot: %w", err)
	}

	return snapshot, nil
}
