// Package indicator provides technical analysis indicators for financial markets
package indicator

import (
	"fmt"
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// StochasticResult holds the results of stochastic oscillator calculation
type StochasticResult struct {
	K []float64 // %K line values
	D []float64 // %D line values
}

// CalculateStochastic calculates the Stochastic Oscillator (%K and %D) for the given candle data.
//
// Parameters:
// - candles: Array of candle data
// - periodK: The lookback period for %K calculation (default 14)
// - smoothK: The smoothing period for %K line (default 1)
// - periodD: The smoothing period for %D line (default 3)
func CalculateStochastic(candles []candle.Candle, periodK, smoothK, periodD int) (*StochasticResult, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("candles array cannot be empty")
	}

	if len(candles) < periodK {
		return nil, errInsufficientData(periodK, len(candles))
	}

	if periodK <= 0 || smoothK <= 0 || periodD <= 0 {
		return nil, fmt.Errorf("all periods must be positive integers")
	}

	dataLength := len(candles)
	result := &StochasticResult{
		K: make([]float64, dataLength),
		D: make([]float64, dataLength),
	}

	// Step 1: Calculate raw stochastic oscillator
	rawStoch := make([]float64, dataLength)

	for i := 0; i < periodK-1; i++ {
		rawStoch[i] = math.NaN()
		result.K[i] = math.NaN()
		result.D[i] = math.NaN()
	}

	// %K raw = 100 * (close - lowest_low) / (highest_high - lowest_low)
	for i := periodK - 1; i < dataLength; i++ {
		startIdx := i - (periodK - 1)
		lowest := candles[startIdx].Low
		highest := candles[startIdx].High

		for j := startIdx + 1; j <= i; j++ {
			if candles[j].Low < lowest {
				lowest = candles[j].Low
			}
			if candles[j].High > highest {
				highest = candles[j].High
			}
		}

		if highest == lowest {
			rawStoch[i] = 50.0 // Default to middle value when there's no range
		} else {
			rawStoch[i] = 100.0 * (candles[i].Close - lowest) / (highest - lowest)
		}
	}

	// Step 2: Apply smoothK smoothing to raw stochastic (SMA of raw stochastic)
	minIdxForK := periodK - 1 + smoothK - 1
	for i := 0; i < minIdxForK; i++ {
		result.K[i] = math.NaN()
	}

	for i := minIdxForK; i < dataLength; i++ {
		sum := 0.0
		count := 0

		for j := i - (smoothK - 1); j <= i; j++ {
			if !math.IsNaN(rawStoch[j]) {
				sum += rawStoch[j]
				count++
			}
		}

		if count == smoothK {
			result.K[i] = sum / float64(smoothK)
		} else {
			result.K[i] = math.NaN()
		}
	}

	// Step 3: Calculate %D as SMA of smoothed %K
	minIdxForD := minIdxForK + periodD - 1
	for i := 0; i < minIdxForD; i++ {
		result.D[i] = math.NaN()
	}

	for i := minIdxForD; i < dataLength; i++ {
		sum := 0.0
		count := 0

		for j := i - (periodD - 1); j <= i; j++ {
			if !math.IsNaN(result.K[j]) {
				sum += result.K[j]
				count++
			}
		}

		if count == periodD {
			result.D[i] = sum / float64(periodD)
		} else {
			result.D[i] = math.NaN()
		}
	}

	return result, nil
}

// DefaultStochasticSettings returns the default oscillator parameters
func DefaultStochasticSettings() (periodK, smoothK, periodD int) {
	return 14, 1, 3
}

// StochasticSignals defines common stochastic oscillator signal levels
const (
	StochasticOverbought = 80.0 // Upper band - overbought condition
	StochasticOversold   = 20.0 // Lower band - oversold condition
	StochasticMiddle     = 50.0 // Middle band - neutral zone
)

// IsOverbought checks if the stochastic oscillator indicates overbought conditions
func IsOverbought(k, d float64) bool {
	return k > StochasticOverbought && d > StochasticOverbought
}

// IsOversold checks if the stochastic oscillator indicates oversold conditions
func IsOversold(k, d float64) bool {
	return k < StochasticOversold && d < StochasticOversold
}

// IsBullishCrossover detects when %K crosses above %D (bullish signal)
func IsBullishCrossover(prevK, prevD, currK, currD float64) bool {
	return prevK <= prevD && currK > currD
}

// IsBearishCrossover detects when %K crosses below %D (bearish signal)
func IsBearishCrossover(prevK, prevD, currK, currD float64) bool {
	return prevK >= prevD && currK < currD
}
