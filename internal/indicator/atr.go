package indicator

import (
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// CalculateTrueRange returns the true range series. The first entry uses
// high-low only since there is no prior close.
func CalculateTrueRange(candles []candle.Candle) []float64 {
	if len(candles) == 0 {
		return nil
	}
	tr := make([]float64, len(candles))
	tr[0] = candles[0].High - candles[0].Low
	for i := 1; i < len(candles); i++ {
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - candles[i-1].Close)
		lc := math.Abs(candles[i].Low - candles[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// CalculateATR computes the Average True Range with Wilder smoothing.
// Entries before period-1 are NaN.
func CalculateATR(candles []candle.Candle, period int) []float64 {
	if len(candles) < period || period <= 0 {
		return nil
	}
	tr := CalculateTrueRange(candles)
	atr := make([]float64, len(candles))
	for i := 0; i < period-1; i++ {
		atr[i] = math.NaN()
	}
	var sum float64
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	atr[period-1] = sum / float64(period)
	for i := period; i < len(tr); i++ {
		atr[i] = (atr[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return atr
}
