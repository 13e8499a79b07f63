package indicator

import "math"

// CalculateSMA returns the simple moving average of values over period.
// The first period-1 entries are NaN, as is any window containing NaN,
// so the function composes with other NaN-padded indicator series.
func CalculateSMA(values []float64, period int) []float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	sma := make([]float64, len(values))
	for i := 0; i < period-1; i++ {
		sma[i] = math.NaN()
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		valid := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if valid {
			sma[i] = sum / float64(period)
		} else {
			sma[i] = math.NaN()
		}
	}
	return sma
}
