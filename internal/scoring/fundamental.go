package scoring

import (
	"fmt"

	"github.com/yourusername/stock-compass/internal/models"
)

// FundamentalScore is the 50-point fundamental sub-score with its nine
// component breakdowns.
type FundamentalScore struct {
	Total         models.SubScore `json:"total"`
	PER           models.SubScore `json:"per"`
	PBR           models.SubScore `json:"pbr"`
	PSR           models.SubScore `json:"psr"`
	RevenueGrowth models.SubScore `json:"revenueGrowth"`
	OpGrowth      models.SubScore `json:"opGrowth"`
	ROE           models.SubScore `json:"roe"`
	OpMargin      models.SubScore `json:"opMargin"`
	DebtRatio     models.SubScore `json:"debtRatio"`
	CurrentRatio  models.SubScore `json:"currentRatio"`
	IsLossCompany bool            `json:"isLossCompany"`
}

// FundamentalCalculator scores a stock from its financial snapshot.
type FundamentalCalculator struct {
	bands FundamentalBands
}

// NewFundamentalCalculator creates a calculator with the given calibration.
func NewFundamentalCalculator(bands FundamentalBands) *FundamentalCalculator {
	return &FundamentalCalculator{bands: bands}
}

// Score computes the fundamental sub-score. Missing metrics score their
// component midpoints; a negative PER marks the company loss-making and
// forces the PER component to the configured floor.
func (c *FundamentalCalculator) Score(fin models.FinancialSnapshot) FundamentalScore {
	result := FundamentalScore{
		PER:           c.scorePER(fin.PER),
		PBR:           c.scorePBR(fin.PBR),
		PSR:           c.scoreBanded(fin.PSR, c.bands.PSR, c.bands.MaxPSR, "PSR", "%.2f"),
		RevenueGrowth: c.scoreBanded(fin.RevenueGrowth, c.bands.RevenueGrowth, c.bands.MaxRevenueGrowth, "revenue growth", "%+.1f%%"),
		OpGrowth:      c.scoreBanded(fin.OpGrowth, c.bands.OpGrowth, c.bands.MaxOpGrowth, "operating profit growth", "%+.1f%%"),
		ROE:           c.scoreBanded(fin.ROE, c.bands.ROE, c.bands.MaxROE, "ROE", "%.1f%%"),
		OpMargin:      c.scoreBanded(fin.OpMargin, c.bands.OpMargin, c.bands.MaxOpMargin, "operating margin", "%.1f%%"),
		DebtRatio:     c.scoreBanded(fin.DebtRatio, c.bands.DebtRatio, c.bands.MaxDebtRatio, "debt ratio", "%.0f%%"),
		CurrentRatio:  c.scoreBanded(fin.CurrentRatio, c.bands.CurrentRatio, c.bands.MaxCurrentRatio, "current ratio", "%.0f%%"),
		IsLossCompany: fin.IsLossCompany(),
	}

	total := result.PER.Value + result.PBR.Value + result.PSR.Value +
		result.RevenueGrowth.Value + result.OpGrowth.Value +
		result.ROE.Value + result.OpMargin.Value +
		result.DebtRatio.Value + result.CurrentRatio.Value

	result.Total = models.SubScore{
		Value:   total,
		Max:     c.bands.Max(),
		Detail:  fmt.Sprintf("%.1f of %.0f fundamental points", total, c.bands.Max()),
		HasData: fin.HasData(),
	}
	return result
}

func (c *FundamentalCalculator) scorePER(per *float64) models.SubScore {
	max := c.bands.MaxPER
	if per == nil {
		return neutral(max, "PER unavailable")
	}
	if *per < 0 {
		return models.SubScore{
			Value:   c.bands.LossPERScore,
			Max:     max,
			Detail:  fmt.Sprintf("loss company (PER %.1f)", *per),
			HasData: true,
		}
	}
	score, label := c.bands.PER.Lookup(*per)
	return models.SubScore{
		Value:   score,
		Max:     max,
		Detail:  fmt.Sprintf("%s (PER %.1f)", label, *per),
		HasData: true,
	}
}

func (c *FundamentalCalculator) scorePBR(pbr *float64) models.SubScore {
	max := c.bands.MaxPBR
	if pbr == nil {
		return neutral(max, "PBR unavailable")
	}
	if *pbr < 0 {
		// Negative book value, not an undervaluation
		return models.SubScore{
			Value:   c.bands.NegativePBRScore,
			Max:     max,
			Detail:  fmt.Sprintf("capital impaired (PBR %.2f)", *pbr),
			HasData: true,
		}
	}
	score, label := c.bands.PBR.Lookup(*pbr)
	return models.SubScore{
		Value:   score,
		Max:     max,
		Detail:  fmt.Sprintf("%s (PBR %.2f)", label, *pbr),
		HasData: true,
	}
}

func (c *FundamentalCalculator) scoreBanded(v *float64, table Table, max float64, name, format string) models.SubScore {
	if v == nil {
		return neutral(max, name+" unavailable")
	}
	score, label := table.Lookup(*v)
	return models.SubScore{
		Value:   score,
		Max:     max,
		Detail:  fmt.Sprintf("%s (%s "+format+")", label, name, *v),
		HasData: true,
	}
}
