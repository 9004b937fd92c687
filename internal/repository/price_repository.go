package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/models"
)

// PostgresPriceRepository implements PriceRepository for PostgreSQL
type PostgresPriceRepository struct {
	db *database.DB
}

// NewPostgresPriceRepository creates a new price repository
func NewPostgresPriceRepository(db *database.DB) PriceRepository {
	return &PostgresPriceRepository{db: db}
}

// InsertBatch inserts daily bars, skipping days already recorded
func (r *PostgresPriceRepository) InsertBatch(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	query := `
		INSERT INTO daily_prices (stock_code, date, open, high, low, close, volume, trading_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (stock_code, date) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query,
			bar.StockCode, bar.Date, bar.Open, bar.High, bar.Low, bar.Close,
			bar.Volume, bar.TradingValue,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert price bar: %w", err)
		}
	}

	return nil
}

// GetRange retrieves bars for a date range ordered ascending by date
func (r *PostgresPriceRepository) GetRange(ctx context.Context, stockCode string, start, end time.Time) ([]models.PriceBar, error) {
	query := `
		SELECT stock_code, date, open, high, low, close, volume, trading_value
		FROM daily_prices
		WHERE stock_code = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, stockCode, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// GetRecent retrieves the most recent trading days ordered ascending by date
func (r *PostgresPriceRepository) GetRecent(ctx context.Context, stockCode string, days int) ([]models.PriceBar, error) {
	query := `
		SELECT stock_code, date, open, high, low, close, volume, trading_value
		FROM (
			SELECT stock_code, date, open, high, low, close, volume, trading_value
			FROM daily_prices
			WHERE stock_code = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, stockCode, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent prices: %w", err)
	}
	defer rows.Close()

	return scanPriceBars(rows)
}

// GetLatestDate returns the most recent bar date for a stock
func (r *PostgresPriceRepository) GetLatestDate(ctx context.Context, stockCode string) (time.Time, error) {
	var latest *time.Time
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT MAX(date) FROM daily_prices WHERE stock_code = $1`, stockCode,
	).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, models.ErrNoPriceData
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest price date: %w", err)
	}
	if latest == nil {
		return time.Time{}, models.ErrNoPriceData
	}
	return *latest, nil
}

func scanPriceBars(rows pgx.Rows) ([]models.PriceBar, error) {
	var bars []models.PriceBar
	for rows.Next() {
		var bar models.PriceBar
		if err := rows.Scan(
			&bar.StockCode, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close,
			&bar.Volume, &bar.TradingValue,
		); err != nil {
			return nil, fmt.Errorf("failed to scan price bar: %w", err)
		}
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price bars: %w", err)
	}
	return bars, nil
}
