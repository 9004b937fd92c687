package scoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/stock-compass/internal/indicators"
	"github.com/yourusername/stock-compass/internal/models"
)

// Grade breakpoints, inclusive lower bounds scanned top-down.
var gradeThresholds = []struct {
	Min   float64
	Grade models.Grade
}{
	{90, models.GradeAPlus},
	{80, models.GradeA},
	{70, models.GradeBPlus},
	{60, models.GradeB},
	{50, models.GradeCPlus},
	{40, models.GradeC},
	{30, models.GradeD},
}

// GradeForScore maps a total score to its letter grade.
func GradeForScore(total float64) models.Grade {
	for _, t := range gradeThresholds {
		if total >= t.Min {
			return t.Grade
		}
	}
	return models.GradeF
}

// Aggregate composes the four sub-scores into an analysis result. The
// sentiment result already encodes whether the manual override applied.
// The total is clamped to [0, 100].
func Aggregate(stockCode string, date time.Time, tech TechnicalScore, fund FundamentalScore, sent SentimentResult, liq LiquidityResult) models.AnalysisResult {
	total := tech.Total.Value + fund.Total.Value + sent.Total.Value + liq.Total.Value
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	total = round1(total)

	return models.AnalysisResult{
		ID:           uuid.New(),
		StockCode:    stockCode,
		AnalysisDate: date,
		Breakdown: models.ScoreBreakdown{
			Technical:        tech.Total,
			Fundamental:      fund.Total,
			Sentiment:        sent.Total,
			LiquidityPenalty: liq.Total,
		},
		TotalScore:       total,
		Grade:            GradeForScore(total),
		SentimentSource:  sent.Source,
		IsLossCompany:    fund.IsLossCompany,
		DataInsufficient: !tech.Total.HasData || !fund.Total.HasData || !sent.Total.HasData,
		CreatedAt:        time.Now().UTC(),
	}
}

// Scorer bundles the four calculators behind a single entry point.
type Scorer struct {
	technical   *TechnicalCalculator
	fundamental *FundamentalCalculator
	sentiment   *SentimentCalculator
	liquidity   *LiquidityCalculator
}

// NewScorer creates a scorer with the default calibration.
func NewScorer() *Scorer {
	return &Scorer{
		technical:   NewTechnicalCalculator(DefaultTechnicalBands()),
		fundamental: NewFundamentalCalculator(DefaultFundamentalBands()),
		sentiment:   NewSentimentCalculator(DefaultSentimentBands()),
		liquidity:   NewLiquidityCalculator(DefaultLiquidityBands()),
	}
}

// Technical exposes the technical calculator for callers that score
// price windows in isolation, such as the backtest engine.
func (s *Scorer) Technical() *TechnicalCalculator {
	return s.technical
}

// ScoreStock computes the full composite score for a stock from
// already materialized inputs. Empty inputs are valid and score their
// neutral defaults.
func (s *Scorer) ScoreStock(stockCode string, date time.Time, bars []models.PriceBar, fin models.FinancialSnapshot, news []models.NewsItem) models.AnalysisResult {
	ind := indicators.Calculate(bars)

	tech := s.technical.Score(ind)
	fund := s.fundamental.Score(fin)
	sent := s.sentiment.Score(news)
	liq := s.liquidity.Score(LiquidityInputs{
		AvgTradingValue: tradingValueOf(ind),
		VolumeCV:        indicators.VolumeCV(bars, indicators.VolumePeriod),
	})

	return Aggregate(stockCode, date, tech, fund, sent, liq)
}

func tradingValueOf(ind *indicators.Set) *float64 {
	if ind == nil {
		return nil
	}
	return ind.AvgTradingValue
}
