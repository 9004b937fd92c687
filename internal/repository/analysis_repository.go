package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/models"
)

// PostgresAnalysisRepository implements AnalysisRepository for PostgreSQL.
// The sub-score breakdown is stored as JSONB; the headline columns exist
// for ranking and filtering.
type PostgresAnalysisRepository struct {
	db *database.DB
}

// NewPostgresAnalysisRepository creates a new analysis repository
func NewPostgresAnalysisRepository(db *database.DB) AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Save inserts or replaces the analysis result for a stock and date
func (r *PostgresAnalysisRepository) Save(ctx context.Context, result *models.AnalysisResult) error {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal score breakdown: %w", err)
	}

	query := `
		INSERT INTO analysis_results (
			id, stock_code, analysis_date, total_score, grade,
			sentiment_source, is_loss_company, data_insufficient, breakdown, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (stock_code, analysis_date) DO UPDATE SET
			total_score = EXCLUDED.total_score,
			grade = EXCLUDED.grade,
			sentiment_source = EXCLUDED.sentiment_source,
			is_loss_company = EXCLUDED.is_loss_company,
			data_insufficient = EXCLUDED.data_insufficient,
			breakdown = EXCLUDED.breakdown,
			created_at = EXCLUDED.created_at
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		result.ID, result.StockCode, result.AnalysisDate, result.TotalScore, result.Grade,
		result.SentimentSource, result.IsLossCompany, result.DataInsufficient,
		breakdown, result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent analysis result for a stock
func (r *PostgresAnalysisRepository) GetLatest(ctx context.Context, stockCode string) (*models.AnalysisResult, error) {
	query := analysisSelect + `
		WHERE stock_code = $1
		ORDER BY analysis_date DESC
		LIMIT 1
	`
	return r.queryOne(ctx, query, stockCode)
}

// GetByDate retrieves the analysis result for a stock on a specific date
func (r *PostgresAnalysisRepository) GetByDate(ctx context.Context, stockCode string, date time.Time) (*models.AnalysisResult, error) {
	query := analysisSelect + ` WHERE stock_code = $1 AND analysis_date = $2`
	return r.queryOne(ctx, query, stockCode, date)
}

// GetRanking retrieves the top scored stocks for a date
func (r *PostgresAnalysisRepository) GetRanking(ctx context.Context, date time.Time, limit int) ([]*models.AnalysisResult, error) {
	query := analysisSelect + `
		WHERE analysis_date = $1
		ORDER BY total_score DESC, stock_code ASC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, date, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis ranking: %w", err)
	}
	defer rows.Close()

	var results []*models.AnalysisResult
	for rows.Next() {
		result, err := scanAnalysisResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis results: %w", err)
	}
	return results, nil
}

const analysisSelect = `
	SELECT id, stock_code, analysis_date, total_score, grade,
	       sentiment_source, is_loss_company, data_insufficient, breakdown, created_at
	FROM analysis_results
`

func (r *PostgresAnalysisRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*models.AnalysisResult, error) {
	row := r.db.GetPool().QueryRow(ctx, query, args...)
	result, err := scanAnalysisResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scanAnalysisResult(row pgx.Row) (*models.AnalysisResult, error) {
	result := &models.AnalysisResult{}
	var breakdown []byte

	err := row.Scan(
		&result.ID, &result.StockCode, &result.AnalysisDate, &result.TotalScore,
		&result.Grade, &result.SentimentSource, &result.IsLossCompany,
		&result.DataInsufficient, &breakdown, &result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pgx.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis result: %w", err)
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &result.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score breakdown: %w", err)
		}
	}

	return result, nil
}
