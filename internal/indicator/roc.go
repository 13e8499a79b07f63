package indicator

import "math"

// CalculateROC returns the rate of change over period as a percentage.
// The first period entries are NaN.
func CalculateROC(values []float64, period int) []float64 {
	if len(values) <= period || period <= 0 {
		return nil
	}
	roc := make([]float64, len(values))
	for i := 0; i < period; i++ {
		roc[i] = math.NaN()
	}
	for i := period; i < len(values); i++ {
		if values[i-period] == 0 {
			roc[i] = math.NaN()
			continue
		}
		roc[i] = (values[i] - values[i-period]) / values[i-period] * 100
	}
	return roc
}
