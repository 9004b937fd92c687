package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/stock-compass/internal/models"
)

// PriceSource fetches daily OHLCV history from an external provider.
type PriceSource interface {
	// FetchDailyPrices retrieves daily bars for the stock within the date
	// range, inclusive on both ends, ordered ascending by date.
	FetchDailyPrices(ctx context.Context, stockCode string, from, to time.Time) ([]models.PriceBar, error)

	// Name returns the name of the data source
	Name() string
}

// FinancialSource fetches the latest fundamental metrics for a stock.
// Missing metrics come back as nil fields, never as an error.
type FinancialSource interface {
	FetchFinancials(ctx context.Context, stockCode string) (*models.FinancialSnapshot, error)

	Name() string
}

// NewsSource fetches recent news headlines for a stock, classified by
// tone and expected impact.
type NewsSource interface {
	FetchNews(ctx context.Context, stockCode string, since time.Time) ([]models.NewsItem, error)

	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
