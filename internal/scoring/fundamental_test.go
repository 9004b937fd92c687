package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/stock-compass/internal/models"
)

func TestFundamentalScoreEmptySnapshotIsNeutral(t *testing.T) {
	calc := NewFundamentalCalculator(DefaultFundamentalBands())
	score := calc.Score(models.FinancialSnapshot{StockCode: "005930"})

	assert.False(t, score.Total.HasData)
	assert.False(t, score.IsLossCompany)
	// Nine midpoints: 4+3.5+2.5+3+3+2.5+2.5+2+2.
	assert.InDelta(t, 25.0, score.Total.Value, 1e-12)
}

func TestFundamentalScoreStrongCompany(t *testing.T) {
	calc := NewFundamentalCalculator(DefaultFundamentalBands())
	score := calc.Score(models.FinancialSnapshot{
		StockCode:     "005930",
		PER:           f(8),
		PBR:           f(0.9),
		PSR:           f(0.8),
		RevenueGrowth: f(25),
		OpGrowth:      f(40),
		ROE:           f(18),
		OpMargin:      f(22),
		DebtRatio:     f(40),
		CurrentRatio:  f(250),
	})

	assert.True(t, score.Total.HasData)
	assert.Equal(t, 7.0, score.PER.Value)
	assert.Equal(t, 6.0, score.PBR.Value)
	assert.Equal(t, 4.0, score.PSR.Value)
	assert.Equal(t, 5.0, score.RevenueGrowth.Value)
	assert.Equal(t, 5.0, score.OpGrowth.Value)
	assert.Equal(t, 4.0, score.ROE.Value)
	assert.Equal(t, 5.0, score.OpMargin.Value)
	assert.Equal(t, 4.0, score.DebtRatio.Value)
	assert.Equal(t, 4.0, score.CurrentRatio.Value)
	assert.InDelta(t, 44.0, score.Total.Value, 1e-12)
}

func TestFundamentalScoreLossCompany(t *testing.T) {
	calc := NewFundamentalCalculator(DefaultFundamentalBands())
	score := calc.Score(models.FinancialSnapshot{
		StockCode: "096770",
		PER:       f(-12.5),
		PBR:       f(0.8),
	})

	assert.True(t, score.IsLossCompany)
	assert.Equal(t, 0.0, score.PER.Value, "negative earnings floor the PER component")
	assert.True(t, score.PER.HasData)
	assert.Contains(t, score.PER.Detail, "loss company")
	assert.Equal(t, 6.0, score.PBR.Value, "other components are unaffected")
}

func TestFundamentalScoreNegativePBRIsCapitalImpairment(t *testing.T) {
	calc := NewFundamentalCalculator(DefaultFundamentalBands())
	score := calc.Score(models.FinancialSnapshot{
		StockCode: "096770",
		PBR:       f(-0.3),
	})

	assert.Equal(t, 1.0, score.PBR.Value, "negative book value is not an undervaluation")
	assert.True(t, score.PBR.HasData)
	assert.Contains(t, score.PBR.Detail, "capital impaired")
}

func TestFundamentalScorePartialSnapshot(t *testing.T) {
	calc := NewFundamentalCalculator(DefaultFundamentalBands())
	score := calc.Score(models.FinancialSnapshot{
		StockCode: "005930",
		ROE:       f(12),
	})

	assert.True(t, score.Total.HasData, "one populated metric is enough")
	assert.Equal(t, 3.0, score.ROE.Value)
	assert.False(t, score.PER.HasData)
	assert.Equal(t, 4.0, score.PER.Value, "missing PER scores its midpoint")
}

func TestFundamentalScoreStaysInBounds(t *testing.T) {
	calc := NewFundamentalCalculator(DefaultFundamentalBands())
	max := DefaultFundamentalBands().Max()

	snapshots := []models.FinancialSnapshot{
		{},
		{PER: f(500), PBR: f(20), PSR: f(50), RevenueGrowth: f(-80), OpGrowth: f(-90),
			ROE: f(-30), OpMargin: f(-50), DebtRatio: f(900), CurrentRatio: f(10)},
		{PER: f(3), PBR: f(0.3), PSR: f(0.2), RevenueGrowth: f(80), OpGrowth: f(120),
			ROE: f(35), OpMargin: f(40), DebtRatio: f(10), CurrentRatio: f(400)},
	}
	for i, fin := range snapshots {
		score := calc.Score(fin)
		assert.GreaterOrEqual(t, score.Total.Value, 0.0, "snapshot %d", i)
		assert.LessOrEqual(t, score.Total.Value, max, "snapshot %d", i)
	}
}
