package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/stock-compass/internal/indicators"
)

func f(v float64) *float64 { return &v }

func fullyBullishSet() *indicators.Set {
	return &indicators.Set{
		CurrentPrice: 110,
		MA5:          f(108),
		MA20:         f(106),
		MA60:         f(103),
		MA120:        f(100),
		RSI14:        f(50),
		MACD:         f(1.2),
		MACDSignal:   f(0.8),
		MACDHist:     f(0.4),
		VolumeRatio:  f(2.5),
	}
}

func TestTechnicalScoreNilSetIsNeutral(t *testing.T) {
	calc := NewTechnicalCalculator(DefaultTechnicalBands())
	score := calc.Score(nil)

	// Every component defaults to its midpoint: 3+3+2.5+2.5+4.
	assert.InDelta(t, 15.0, score.Total.Value, 1e-12)
	assert.False(t, score.Total.HasData)
	assert.False(t, score.MAArrangement.HasData)
	assert.False(t, score.Volume.HasData)
}

func TestTechnicalScoreBullishStack(t *testing.T) {
	calc := NewTechnicalCalculator(DefaultTechnicalBands())
	score := calc.Score(fullyBullishSet())

	assert.True(t, score.Total.HasData)
	assert.Equal(t, 6.0, score.MAArrangement.Value, "full bullish stack")
	// +3.8% above MA20 is a healthy uptrend.
	assert.Equal(t, 6.0, score.MADivergence.Value)
	assert.Equal(t, 3.0, score.RSI.Value, "RSI 50 is neutral")
	assert.Equal(t, 5.0, score.MACD.Value, "positive line and histogram")
	assert.Equal(t, 6.0, score.Volume.Value, "2.5x volume is a spike")
	assert.InDelta(t, 26.0, score.Total.Value, 1e-12)
}

func TestTechnicalScoreBearishStack(t *testing.T) {
	calc := NewTechnicalCalculator(DefaultTechnicalBands())
	set := &indicators.Set{
		CurrentPrice: 80,
		MA5:          f(85),
		MA20:         f(92), // -13% divergence: oversold
		MA60:         f(97),
		MA120:        f(100),
		RSI14:        f(75),
		MACD:         f(-1.5),
		MACDSignal:   f(-1.0),
		MACDHist:     f(-0.5),
		VolumeRatio:  f(0.3),
	}
	score := calc.Score(set)

	assert.Equal(t, 0.0, score.MAArrangement.Value, "full bearish stack")
	assert.Equal(t, 3.0, score.MADivergence.Value)
	assert.Equal(t, 1.0, score.RSI.Value, "overbought")
	assert.Equal(t, 1.0, score.MACD.Value, "strong downtrend")
	assert.Equal(t, 2.0, score.Volume.Value, "very thin volume")
}

func TestTechnicalScorePartialIndicators(t *testing.T) {
	calc := NewTechnicalCalculator(DefaultTechnicalBands())
	set := &indicators.Set{
		CurrentPrice: 105,
		MA5:          f(103),
		MA20:         f(100),
		RSI14:        f(35),
		VolumeRatio:  f(1.2),
		// MACD and long MAs unavailable on a short window.
	}
	score := calc.Score(set)

	assert.True(t, score.Total.HasData)
	assert.Equal(t, 6.0, score.MAArrangement.Value, "both available pairs ordered")
	assert.Equal(t, 5.0, score.RSI.Value, "undervalued zone")
	assert.False(t, score.MACD.HasData)
	assert.Equal(t, 2.5, score.MACD.Value, "missing MACD scores its midpoint")
}

func TestTechnicalScoreMACDQuadrants(t *testing.T) {
	calc := NewTechnicalCalculator(DefaultTechnicalBands())

	cases := []struct {
		macd, hist float64
		want       float64
	}{
		{1, 0.5, 5},
		{1, -0.5, 3},
		{-1, 0.5, 4},
		{-1, -0.5, 1},
	}
	for _, tc := range cases {
		set := fullyBullishSet()
		set.MACD = f(tc.macd)
		set.MACDHist = f(tc.hist)
		score := calc.Score(set)
		assert.Equal(t, tc.want, score.MACD.Value, "macd=%v hist=%v", tc.macd, tc.hist)
	}
}

func TestTechnicalScoreStaysInBounds(t *testing.T) {
	calc := NewTechnicalCalculator(DefaultTechnicalBands())
	max := DefaultTechnicalBands().Max()

	sets := []*indicators.Set{
		nil,
		fullyBullishSet(),
		{CurrentPrice: 50, MA5: f(100), MA20: f(100), RSI14: f(5), VolumeRatio: f(10)},
		{CurrentPrice: 0},
	}
	for i, set := range sets {
		score := calc.Score(set)
		assert.GreaterOrEqual(t, score.Total.Value, 0.0, "set %d", i)
		assert.LessOrEqual(t, score.Total.Value, max, "set %d", i)
	}
}

func TestTableLookupBoundaries(t *testing.T) {
	table := DefaultTechnicalBands().RSI

	score, _ := table.Lookup(29.999)
	assert.Equal(t, 4.0, score)
	score, _ = table.Lookup(30) // bounds are exclusive upper
	assert.Equal(t, 5.0, score)
	score, _ = table.Lookup(70)
	assert.Equal(t, 1.0, score)
}
