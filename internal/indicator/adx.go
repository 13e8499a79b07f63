package indicator

import (
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// ADXResult holds the ADX line and the directional indicators.
type ADXResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// CalculateADX computes the Average Directional Index with Wilder smoothing.
// DI lines become valid at index period, ADX at index 2*period-1.
func CalculateADX(candles []candle.Candle, period int) *ADXResult {
	if len(candles) < 2*period || period <= 0 {
		return nil
	}

	n := len(candles)
	result := &ADXResult{
		ADX:     make([]float64, n),
		PlusDI:  make([]float64, n),
		MinusDI: make([]float64, n),
	}
	for i := range result.ADX {
		result.ADX[i] = math.NaN()
		result.PlusDI[i] = math.NaN()
		result.MinusDI[i] = math.NaN()
	}

	tr := CalculateTrueRange(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// Initial Wilder sums over the first period of movement values.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = math.NaN()
	}

	setDI := func(i int) {
		if smTR == 0 {
			result.PlusDI[i] = 0
			result.MinusDI[i] = 0
			dx[i] = 0
			return
		}
		result.PlusDI[i] = 100 * smPlus / smTR
		result.MinusDI[i] = 100 * smMinus / smTR
		sum := result.PlusDI[i] + result.MinusDI[i]
		if sum == 0 {
			dx[i] = 0
		} else {
			dx[i] = 100 * math.Abs(result.PlusDI[i]-result.MinusDI[i]) / sum
		}
	}
	setDI(period)

	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		setDI(i)
	}

	// ADX: Wilder-smoothed DX.
	var dxSum float64
	for i := period; i < 2*period; i++ {
		dxSum += dx[i]
	}
	result.ADX[2*period-1] = dxSum / float64(period)
	for i := 2 * period; i < n; i++ {
		result.ADX[i] = (result.ADX[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return result
}
