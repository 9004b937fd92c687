package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/models"
)

const newsColumns = "id, stock_code, title, url, sentiment, impact, rating, published_at, created_at"

// PostgresNewsRepository implements NewsRepository for PostgreSQL
type PostgresNewsRepository struct {
	db *database.DB
}

// NewPostgresNewsRepository creates a new news repository
func NewPostgresNewsRepository(db *database.DB) NewsRepository {
	return &PostgresNewsRepository{db: db}
}

// InsertBatch inserts news items, deduplicating on URL
func (r *PostgresNewsRepository) InsertBatch(ctx context.Context, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO news (id, stock_code, title, url, sentiment, impact, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.StockCode, item.Title, item.URL,
			item.Sentiment, item.Impact, item.PublishedAt,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert news item: %w", err)
		}
	}

	return nil
}

// GetRecent retrieves news for a stock published on or after since,
// newest first
func (r *PostgresNewsRepository) GetRecent(ctx context.Context, stockCode string, since time.Time) ([]models.NewsItem, error) {
	query := `
		SELECT ` + newsColumns + `
		FROM news
		WHERE stock_code = $1 AND published_at >= $2
		ORDER BY published_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, stockCode, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()

	return scanNewsItems(rows)
}

// SetRating stores a user rating for a news item. A nil rating clears it.
func (r *PostgresNewsRepository) SetRating(ctx context.Context, id uuid.UUID, rating *float64) error {
	tag, err := r.db.GetPool().Exec(ctx,
		`UPDATE news SET rating = $2 WHERE id = $1`, id, rating,
	)
	if err != nil {
		return fmt.Errorf("failed to set news rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// GetRated retrieves news items for a stock that carry a user rating
func (r *PostgresNewsRepository) GetRated(ctx context.Context, stockCode string) ([]models.NewsItem, error) {
	query := `
		SELECT ` + newsColumns + `
		FROM news
		WHERE stock_code = $1 AND rating IS NOT NULL
		ORDER BY published_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, stockCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query rated news: %w", err)
	}
	defer rows.Close()

	return scanNewsItems(rows)
}

func scanNewsItems(rows pgx.Rows) ([]models.NewsItem, error) {
	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		if err := rows.Scan(
			&item.ID, &item.StockCode, &item.Title, &item.URL,
			&item.Sentiment, &item.Impact, &item.Rating,
			&item.PublishedAt, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate news items: %w", err)
	}
	return items, nil
}
