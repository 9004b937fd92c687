// Package indicators derives technical indicators from daily price series.
package indicators

import (
	"math"

	"github.com/yourusername/stock-compass/internal/models"
)

// Default indicator windows
const (
	RSIPeriod        = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	VolumePeriod     = 20
)

// Set holds the indicator values for the last bar of a price window.
// A nil field means the window was too short for that indicator.
type Set struct {
	CurrentPrice    float64  `json:"current_price"`
	MA5             *float64 `json:"ma5"`
	MA20            *float64 `json:"ma20"`
	MA60            *float64 `json:"ma60"`
	MA120           *float64 `json:"ma120"`
	RSI14           *float64 `json:"rsi14"`
	MACD            *float64 `json:"macd"`
	MACDSignal      *float64 `json:"macd_signal"`
	MACDHist        *float64 `json:"macd_hist"`
	VolumeRatio     *float64 `json:"volume_ratio"`
	AvgTradingValue *float64 `json:"avg_trading_value"`
}

// HasData reports whether the set was computed from a non-empty window.
func (s *Set) HasData() bool {
	return s != nil
}

// Calculate computes all indicators for the last bar of the window.
// The window must be ordered ascending by date. Returns nil for an
// empty window; individual fields are nil when the window is shorter
// than that indicator's minimum.
func Calculate(bars []models.PriceBar) *Set {
	if len(bars) == 0 {
		return nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	set := &Set{
		CurrentPrice: closes[len(closes)-1],
		MA5:          MovingAverage(closes, 5),
		MA20:         MovingAverage(closes, 20),
		MA60:         MovingAverage(closes, 60),
		MA120:        MovingAverage(closes, 120),
		RSI14:        RSI(closes, RSIPeriod),
	}

	macd, signal, hist := MACDLine(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)
	set.MACD = macd
	set.MACDSignal = signal
	set.MACDHist = hist

	set.VolumeRatio = volumeRatio(bars, VolumePeriod)
	set.AvgTradingValue = avgTradingValue(bars, VolumePeriod)

	return set
}

// MovingAverage returns the arithmetic mean of the last n closes,
// or nil if fewer than n values are available.
func MovingAverage(closes []float64, n int) *float64 {
	if n <= 0 || len(closes) < n {
		return nil
	}
	sum := 0.0
	for _, c := range closes[len(closes)-n:] {
		sum += c
	}
	ma := sum / float64(n)
	return &ma
}

// RSI returns the relative strength index over the last period deltas.
// Average gain and loss are simple means of the last period one-day
// changes; an average loss of zero maps to RSI 100.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	gains := 0.0
	losses := 0.0
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	rsi := 100.0
	if avgLoss > 0 {
		rs := avgGain / avgLoss
		rsi = 100.0 - 100.0/(1.0+rs)
	}
	return &rsi
}

// EMA computes the exponential moving average series with smoothing
// 2/(n+1), seeded at the first value.
func EMA(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(n) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACDLine returns the last MACD, signal and histogram values.
// MACD requires at least slow bars; signal and histogram require
// slow+signal bars.
func MACDLine(closes []float64, fast, slow, signal int) (*float64, *float64, *float64) {
	if len(closes) < slow {
		return nil, nil, nil
	}

	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = emaFast[i] - emaSlow[i]
	}
	macd := macdSeries[len(macdSeries)-1]

	if len(closes) < slow+signal {
		return &macd, nil, nil
	}

	signalSeries := EMA(macdSeries, signal)
	sig := signalSeries[len(signalSeries)-1]
	hist := macd - sig
	return &macd, &sig, &hist
}

func volumeRatio(bars []models.PriceBar, period int) *float64 {
	if len(bars) < period {
		return nil
	}
	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += float64(b.Volume)
	}
	avg := sum / float64(period)
	if avg <= 0 {
		return nil
	}
	ratio := float64(bars[len(bars)-1].Volume) / avg
	return &ratio
}

// VolumeCV returns the coefficient of variation (sample stddev / mean)
// of volume over the last period bars, or nil when the window is short
// or the mean volume is zero.
func VolumeCV(bars []models.PriceBar, period int) *float64 {
	if len(bars) < period || period < 2 {
		return nil
	}
	window := bars[len(bars)-period:]
	mean := 0.0
	for _, b := range window {
		mean += float64(b.Volume)
	}
	mean /= float64(period)
	if mean <= 0 {
		return nil
	}

	variance := 0.0
	for _, b := range window {
		diff := float64(b.Volume) - mean
		variance += diff * diff
	}
	variance /= float64(period - 1)
	cv := math.Sqrt(variance) / mean
	return &cv
}

func avgTradingValue(bars []models.PriceBar, period int) *float64 {
	if len(bars) < period {
		return nil
	}
	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += b.ApproxTradingValue()
	}
	avg := sum / float64(period)
	return &avg
}
