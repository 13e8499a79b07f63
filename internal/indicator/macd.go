package indicator

import "math"

// MACDResult holds the MACD line, its signal line, and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// CalculateMACD computes MACD(fast,slow,signal) over prices. Entries before
// slow+signal-2 are NaN.
func CalculateMACD(prices []float64, fast, slow, signalPeriod int) *MACDResult {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 || fast >= slow {
		return nil
	}
	if len(prices) < slow+signalPeriod-1 {
		return nil
	}

	fastEMA := CalculateEMA(prices, fast)
	slowEMA := CalculateEMA(prices, slow)

	n := len(prices)
	result := &MACDResult{
		MACD:      make([]float64, n),
		Signal:    make([]float64, n),
		Histogram: make([]float64, n),
	}

	for i := 0; i < n; i++ {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			result.MACD[i] = math.NaN()
		} else {
			result.MACD[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Signal line is an EMA over the valid MACD region.
	valid := result.MACD[slow-1:]
	signalEMA := CalculateEMA(valid, signalPeriod)
	for i := 0; i < n; i++ {
		result.Signal[i] = math.NaN()
		result.Histogram[i] = math.NaN()
	}
	for i, v := range signalEMA {
		idx := slow - 1 + i
		result.Signal[idx] = v
		if !math.IsNaN(v) && !math.IsNaN(result.MACD[idx]) {
			result.Histogram[idx] = result.MACD[idx] - v
		}
	}
	return result
}
