package indicator

import "math"

// CalculateEMA returns the exponential moving average of values over period.
// The first period-1 entries are NaN; the value at period-1 is seeded with the
// SMA of the first period values.
func CalculateEMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	ema := make([]float64, len(values))
	var seed float64
	for i := 0; i < period; i++ {
		if i < period-1 {
			ema[i] = math.NaN()
		}
		seed += values[i]
	}
	ema[period-1] = seed / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema[i] = alpha*values[i] + (1-alpha)*ema[i-1]
	}
	return ema
}
