package models

import (
	"time"

	"github.com/google/uuid"
)

// Grade represents the letter grade derived from a total score
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// SentimentSource identifies how the sentiment sub-score was derived
type SentimentSource string

const (
	SentimentSourceAuto   SentimentSource = "auto"
	SentimentSourceManual SentimentSource = "manual"
)

// SubScore is one bounded scoring component. Value is within [0, Max] for
// additive scores and [-Max, 0] for penalties. HasData is false when the
// inputs were missing and the component defaulted to its neutral midpoint.
type SubScore struct {
	Value   float64 `json:"value"`
	Max     float64 `json:"max"`
	Detail  string  `json:"detail"`
	HasData bool    `json:"hasData"`
}

// ScoreBreakdown holds the four top-level sub-scores.
type ScoreBreakdown struct {
	Technical        SubScore `json:"technical"`
	Fundamental      SubScore `json:"fundamental"`
	Sentiment        SubScore `json:"sentiment"`
	LiquidityPenalty SubScore `json:"liquidityPenalty"`
}

// AnalysisResult is the composite scoring output for one stock on one day.
// Field names in the JSON form are a compatibility contract with existing
// dashboard consumers; do not rename them.
type AnalysisResult struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	StockCode        string          `db:"stock_code" json:"stockCode"`
	AnalysisDate     time.Time       `db:"analysis_date" json:"analysisDate"`
	Breakdown        ScoreBreakdown  `db:"-" json:"breakdown"`
	TotalScore       float64         `db:"total_score" json:"totalScore"`
	Grade            Grade           `db:"grade" json:"grade"`
	SentimentSource  SentimentSource `db:"sentiment_source" json:"sentimentSource"`
	IsLossCompany    bool            `db:"is_loss_company" json:"isLossCompany"`
	DataInsufficient bool            `db:"data_insufficient" json:"dataInsufficient"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
}
