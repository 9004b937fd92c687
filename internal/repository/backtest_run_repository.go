package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/models"
)

const backtestRunColumns = `
	id, stock_code, start_date, end_date, initial_capital,
	buy_threshold, sell_threshold, total_return, annualized_return,
	max_drawdown, sharpe_ratio, win_rate, trade_count, final_value,
	report, created_at
`

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Save inserts a completed backtest run
func (r *PostgresBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (` + backtestRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.StockCode, run.StartDate, run.EndDate, run.InitialCapital,
		run.BuyThreshold, run.SellThreshold, run.TotalReturn, run.AnnualizedReturn,
		run.MaxDrawdown, run.SharpeRatio, run.WinRate, run.TradeCount, run.FinalValue,
		run.Report, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}

	return nil
}

// GetByID retrieves a backtest run by ID
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs WHERE id = $1`

	run := &models.BacktestRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.StockCode, &run.StartDate, &run.EndDate, &run.InitialCapital,
		&run.BuyThreshold, &run.SellThreshold, &run.TotalReturn, &run.AnnualizedReturn,
		&run.MaxDrawdown, &run.SharpeRatio, &run.WinRate, &run.TradeCount, &run.FinalValue,
		&run.Report, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest run: %w", err)
	}

	return run, nil
}

// GetByStock retrieves the most recent runs for a stock
func (r *PostgresBacktestRunRepository) GetByStock(ctx context.Context, stockCode string, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT ` + backtestRunColumns + `
		FROM backtest_runs
		WHERE stock_code = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, stockCode, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := rows.Scan(
			&run.ID, &run.StockCode, &run.StartDate, &run.EndDate, &run.InitialCapital,
			&run.BuyThreshold, &run.SellThreshold, &run.TotalReturn, &run.AnnualizedReturn,
			&run.MaxDrawdown, &run.SharpeRatio, &run.WinRate, &run.TradeCount, &run.FinalValue,
			&run.Report, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backtest run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate backtest runs: %w", err)
	}
	return runs, nil
}
