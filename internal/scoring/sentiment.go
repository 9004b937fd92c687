package scoring

import (
	"fmt"

	"github.com/yourusername/stock-compass/internal/models"
)

// AutoSentiment holds the three automatic sentiment components.
type AutoSentiment struct {
	Sentiment models.SubScore `json:"sentiment"`
	Impact    models.SubScore `json:"impact"`
	Volume    models.SubScore `json:"volume"`

	PositiveCount   int `json:"positiveCount"`
	NegativeCount   int `json:"negativeCount"`
	NeutralCount    int `json:"neutralCount"`
	HighImpactCount int `json:"highImpactCount"`
	TotalCount      int `json:"totalCount"`
}

// ManualSentiment holds the user-rating override inputs.
type ManualSentiment struct {
	AvgRating  float64 `json:"avgRating"`
	RatedCount int     `json:"ratedCount"`
}

// SentimentResult is the 20-point sentiment sub-score as a tagged
// variant: exactly one of Auto or Manual is set, matching Source.
type SentimentResult struct {
	Total  models.SubScore        `json:"total"`
	Source models.SentimentSource `json:"source"`
	Auto   *AutoSentiment         `json:"auto,omitempty"`
	Manual *ManualSentiment       `json:"manual,omitempty"`
}

// SentimentCalculator scores a stock from its classified news items.
type SentimentCalculator struct {
	bands SentimentBands
}

// NewSentimentCalculator creates a calculator with the given calibration.
func NewSentimentCalculator(bands SentimentBands) *SentimentCalculator {
	return &SentimentCalculator{bands: bands}
}

// Score derives the sentiment sub-score. When at least one news item
// carries a non-zero user rating the manual path fully replaces the
// automatic components; otherwise the three automatic components apply.
// Recomputing from the same rated set always yields the same score.
func (c *SentimentCalculator) Score(items []models.NewsItem) SentimentResult {
	if manual := c.manualScore(items); manual != nil {
		return *manual
	}
	return c.autoScore(items)
}

func (c *SentimentCalculator) manualScore(items []models.NewsItem) *SentimentResult {
	sum := 0.0
	count := 0
	for _, item := range items {
		if item.IsRated() {
			sum += *item.Rating
			count++
		}
	}
	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	// Rescale [-10, 10] to [0, Max].
	score := (avg + 10) / 20 * c.bands.Max()

	return &SentimentResult{
		Total: models.SubScore{
			Value:   round1(score),
			Max:     c.bands.Max(),
			Detail:  fmt.Sprintf("manual ratings (%d items, average %+.1f)", count, avg),
			HasData: true,
		},
		Source: models.SentimentSourceManual,
		Manual: &ManualSentiment{AvgRating: avg, RatedCount: count},
	}
}

func (c *SentimentCalculator) autoScore(items []models.NewsItem) SentimentResult {
	auto := &AutoSentiment{TotalCount: len(items)}
	mediumImpact := 0
	for _, item := range items {
		switch item.Sentiment {
		case models.SentimentPositive:
			auto.PositiveCount++
		case models.SentimentNegative:
			auto.NegativeCount++
		default:
			auto.NeutralCount++
		}
		switch item.Impact {
		case models.ImpactHigh:
			auto.HighImpactCount++
		case models.ImpactMedium:
			mediumImpact++
		}
	}

	if len(items) < c.bands.MinNewsCount {
		auto.Sentiment = neutral(c.bands.MaxSentiment, fmt.Sprintf("insufficient news (%d items)", len(items)))
		auto.Impact = neutral(c.bands.MaxImpact, "insufficient news")
		auto.Volume = neutral(c.bands.MaxVolume, "insufficient news")
	} else {
		auto.Sentiment = c.scoreTone(auto)
		auto.Impact = c.scoreImpact(auto.HighImpactCount, mediumImpact)
		score, label := c.bands.NewsCount.Lookup(float64(len(items)))
		auto.Volume = models.SubScore{
			Value:   score,
			Max:     c.bands.MaxVolume,
			Detail:  fmt.Sprintf("%s (%d items)", label, len(items)),
			HasData: true,
		}
	}

	total := auto.Sentiment.Value + auto.Impact.Value + auto.Volume.Value
	return SentimentResult{
		Total: models.SubScore{
			Value:   total,
			Max:     c.bands.Max(),
			Detail:  fmt.Sprintf("%.1f of %.0f sentiment points", total, c.bands.Max()),
			HasData: len(items) >= c.bands.MinNewsCount,
		},
		Source: models.SentimentSourceAuto,
		Auto:   auto,
	}
}

func (c *SentimentCalculator) scoreTone(auto *AutoSentiment) models.SubScore {
	classified := auto.PositiveCount + auto.NegativeCount
	if classified == 0 {
		return neutral(c.bands.MaxSentiment, fmt.Sprintf("no classified tone in %d items", auto.TotalCount))
	}

	positiveRatio := float64(auto.PositiveCount) / float64(classified)
	negativeRatio := float64(auto.NegativeCount) / float64(classified)
	score, label := c.bands.PositiveRatio.Lookup(positiveRatio)

	if negativeRatio >= c.bands.NegativeMajorityRatio {
		score -= c.bands.NegativeMajorityDeduction
		if score < c.bands.NegativeMajorityFloor {
			score = c.bands.NegativeMajorityFloor
		}
		label += ", negative majority"
	}

	return models.SubScore{
		Value:   score,
		Max:     c.bands.MaxSentiment,
		Detail:  fmt.Sprintf("%s (%d positive, %d negative, %d neutral)", label, auto.PositiveCount, auto.NegativeCount, auto.NeutralCount),
		HasData: true,
	}
}

func (c *SentimentCalculator) scoreImpact(high, medium int) models.SubScore {
	max := c.bands.MaxImpact
	var score float64
	var label string
	switch {
	case high >= 3:
		score, label = max, fmt.Sprintf("%d high-impact items", high)
	case high == 2:
		score, label = 5, "two high-impact items"
	case high == 1:
		score, label = 4, "one high-impact item"
	case medium > 0:
		score, label = 3, fmt.Sprintf("%d medium-impact items", medium)
	default:
		score, label = 2, "no market-moving news"
	}
	return models.SubScore{Value: score, Max: max, Detail: label, HasData: true}
}
