package scoring

import (
	"fmt"
	"math"

	"github.com/yourusername/stock-compass/internal/indicators"
	"github.com/yourusername/stock-compass/internal/models"
)

// TechnicalScore is the 30-point technical sub-score with its five
// component breakdowns.
type TechnicalScore struct {
	Total         models.SubScore `json:"total"`
	MAArrangement models.SubScore `json:"maArrangement"`
	MADivergence  models.SubScore `json:"maDivergence"`
	RSI           models.SubScore `json:"rsi"`
	MACD          models.SubScore `json:"macd"`
	Volume        models.SubScore `json:"volume"`
}

// TechnicalCalculator scores a stock from its indicator set.
type TechnicalCalculator struct {
	bands TechnicalBands
}

// NewTechnicalCalculator creates a calculator with the given calibration.
func NewTechnicalCalculator(bands TechnicalBands) *TechnicalCalculator {
	return &TechnicalCalculator{bands: bands}
}

// Score computes the technical sub-score. A nil indicator set, or any
// missing indicator, scores that component at half its maximum as a
// neutral no-signal outcome; it is never an error.
func (c *TechnicalCalculator) Score(ind *indicators.Set) TechnicalScore {
	arrangement := c.scoreArrangement(ind)
	divergence := c.scoreDivergence(ind)
	rsi := c.scoreRSI(ind)
	macd := c.scoreMACD(ind)
	volume := c.scoreVolume(ind)

	total := arrangement.Value + divergence.Value + rsi.Value + macd.Value + volume.Value
	hasData := ind.HasData()

	return TechnicalScore{
		Total: models.SubScore{
			Value:   total,
			Max:     c.bands.Max(),
			Detail:  fmt.Sprintf("%.1f of %.0f technical points", total, c.bands.Max()),
			HasData: hasData,
		},
		MAArrangement: arrangement,
		MADivergence:  divergence,
		RSI:           rsi,
		MACD:          macd,
		Volume:        volume,
	}
}

// scoreArrangement classifies the ordering of price against its moving
// averages. Each correctly descending adjacent pair contributes equally;
// a full bullish stack scores the maximum, a full bearish stack zero.
func (c *TechnicalCalculator) scoreArrangement(ind *indicators.Set) models.SubScore {
	max := c.bands.MaxArrangement
	if ind == nil || ind.MA5 == nil || ind.MA20 == nil {
		return neutral(max, "insufficient moving average data")
	}

	values := []float64{ind.CurrentPrice, *ind.MA5, *ind.MA20}
	if ind.MA60 != nil {
		values = append(values, *ind.MA60)
	}
	if ind.MA120 != nil {
		values = append(values, *ind.MA120)
	}

	ordered := 0
	pairs := len(values) - 1
	for i := 0; i < pairs; i++ {
		if values[i] > values[i+1] {
			ordered++
		}
	}

	ratio := float64(ordered) / float64(pairs)
	score := round1(ratio * max)

	var label string
	switch {
	case ratio >= 1.0:
		label = "fully bullish alignment"
	case ratio >= 0.75:
		label = "mostly bullish alignment"
	case ratio >= 0.5:
		label = "mixed alignment"
	case ratio >= 0.25:
		label = "mostly bearish alignment"
	default:
		label = "fully bearish alignment"
	}

	return models.SubScore{Value: score, Max: max, Detail: label, HasData: true}
}

func (c *TechnicalCalculator) scoreDivergence(ind *indicators.Set) models.SubScore {
	max := c.bands.MaxDivergence
	if ind == nil || ind.MA20 == nil || *ind.MA20 == 0 {
		return neutral(max, "no MA20 available")
	}

	divergence := (ind.CurrentPrice - *ind.MA20) / *ind.MA20 * 100
	score, label := c.bands.Divergence.Lookup(divergence)
	return models.SubScore{
		Value:   score,
		Max:     max,
		Detail:  fmt.Sprintf("%s (%+.1f%% from MA20)", label, divergence),
		HasData: true,
	}
}

func (c *TechnicalCalculator) scoreRSI(ind *indicators.Set) models.SubScore {
	max := c.bands.MaxRSI
	if ind == nil || ind.RSI14 == nil {
		return neutral(max, "RSI unavailable")
	}

	score, label := c.bands.RSI.Lookup(*ind.RSI14)
	return models.SubScore{
		Value:   score,
		Max:     max,
		Detail:  fmt.Sprintf("%s (RSI %.1f)", label, *ind.RSI14),
		HasData: true,
	}
}

func (c *TechnicalCalculator) scoreMACD(ind *indicators.Set) models.SubScore {
	max := c.bands.MaxMACD
	if ind == nil || ind.MACD == nil || ind.MACDHist == nil {
		return neutral(max, "MACD unavailable")
	}

	macd := *ind.MACD
	hist := *ind.MACDHist

	var score float64
	var label string
	switch {
	case macd > 0 && hist > 0:
		score, label = c.bands.MACDStrongUp, "strong uptrend"
	case macd > 0:
		score, label = c.bands.MACDSlowing, "uptrend slowing"
	case hist > 0:
		score, label = c.bands.MACDRebound, "rebound signal"
	default:
		score, label = c.bands.MACDStrongDown, "strong downtrend"
	}

	return models.SubScore{Value: score, Max: max, Detail: label, HasData: true}
}

func (c *TechnicalCalculator) scoreVolume(ind *indicators.Set) models.SubScore {
	max := c.bands.MaxVolume
	if ind == nil || ind.VolumeRatio == nil {
		return neutral(max, "volume ratio unavailable")
	}

	score, label := c.bands.VolumeRatio.Lookup(*ind.VolumeRatio)
	return models.SubScore{
		Value:   score,
		Max:     max,
		Detail:  fmt.Sprintf("%s (%.1fx 20-day average)", label, *ind.VolumeRatio),
		HasData: true,
	}
}

func neutral(max float64, detail string) models.SubScore {
	return models.SubScore{Value: max / 2, Max: max, Detail: detail, HasData: false}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
