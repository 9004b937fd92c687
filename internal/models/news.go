package models

import (
	"time"

	"github.com/google/uuid"
)

// SentimentClass represents the classified tone of a news item
type SentimentClass string

const (
	SentimentPositive SentimentClass = "positive"
	SentimentNegative SentimentClass = "negative"
	SentimentNeutral  SentimentClass = "neutral"
)

// ImpactClass represents the expected price impact of a news item
type ImpactClass string

const (
	ImpactHigh   ImpactClass = "high"
	ImpactMedium ImpactClass = "medium"
	ImpactLow    ImpactClass = "low"
)

// NewsItem represents a classified news article for a stock.
// Rating is a user-assigned score in [-10, 10]; nil means unrated and an
// explicit 0 marks the article as irrelevant.
type NewsItem struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	StockCode   string         `db:"stock_code" json:"stock_code"`
	Title       string         `db:"title" json:"title"`
	URL         string         `db:"url" json:"url"`
	Sentiment   SentimentClass `db:"sentiment" json:"sentiment" validate:"omitempty,oneof=positive negative neutral"`
	Impact      ImpactClass    `db:"impact" json:"impact" validate:"omitempty,oneof=high medium low"`
	Rating      *float64       `db:"rating" json:"rating,omitempty" validate:"omitempty,gte=-10,lte=10"`
	PublishedAt time.Time      `db:"published_at" json:"published_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// IsRated reports whether the item carries a relevant user rating.
func (n NewsItem) IsRated() bool {
	return n.Rating != nil && *n.Rating != 0
}
