package indicator

import (
	"math"

	"github.com/montanaflynn/stats"
)

// BollingerResult holds the three Bollinger band series.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// CalculateBollinger computes Bollinger Bands over closes with the given
// period and standard deviation multiplier. Entries before period-1 are NaN.
func CalculateBollinger(closes []float64, period int, stdDev float64) (*BollingerResult, error) {
	if len(closes) < period || period <= 0 {
		return nil, errInsufficientData(period, len(closes))
	}

	n := len(closes)
	result := &BollingerResult{
		Upper:  make([]float64, n),
		Middle: make([]float64, n),
		Lower:  make([]float64, n),
	}
	for i := 0; i < period-1; i++ {
		result.Upper[i] = math.NaN()
		result.Middle[i] = math.NaN()
		result.Lower[i] = math.NaN()
	}

	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mean, err := stats.Mean(window)
		if err != nil {
			return nil, err
		}
		sd, err := stats.StandardDeviation(window)
		if err != nil {
			return nil, err
		}
		result.Middle[i] = mean
		result.Upper[i] = mean + stdDev*sd
		result.Lower[i] = mean - stdDev*sd
	}
	return result, nil
}
