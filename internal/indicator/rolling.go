package indicator

import "math"

// RollingMax returns the maximum of each trailing window. Entries before
// window-1 are NaN.
func RollingMax(values []float64, window int) []float64 {
	if len(values) < window || window <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(values); i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

// RollingMin returns the minimum of each trailing window. Entries before
// window-1 are NaN.
func RollingMin(values []float64, window int) []float64 {
	if len(values) < window || window <= 0 {
		return nil
	}
	out := make([]float64, len(values))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}
	for i := window - 1; i < len(values); i++ {
		m := values[i-window+1]
		for j := i - window + 2; j <= i; j++ {
			if values[j] < m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}
