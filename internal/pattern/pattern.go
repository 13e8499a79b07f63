// Package pattern detects candlestick patterns on OHLCV series.
package pattern

import (
	"time"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// Pattern is the interface for all candlestick pattern detectors.
type Pattern interface {
	Name() string
	Description() string
	Detect(candles []candle.Candle) ([]Match, error)
}

// Match represents a detected pattern occurrence.
type Match struct {
	Index       int       `json:"index"`
	Pattern     string    `json:"pattern"`
	Description string    `json:"description"`
	Strength    float64   `json:"strength"` // 0.0 to 1.0
	Direction   string    `json:"direction"`
	Timestamp   time.Time `json:"timestamp"`
}

// Direction constants for Match.Direction.
const (
	DirectionBullish = "bullish"
	DirectionBearish = "bearish"
	DirectionNeutral = "neutral"
)

// Strength levels for detected patterns.
const (
	StrengthWeak   = 0.3
	StrengthMedium = 0.6
	StrengthStrong = 0.9
)

// All returns the full set of pattern detectors.
func All() []Pattern {
	return []Pattern{
		NewDojiPattern(),
		NewHammerPattern(),
		NewEngulfingPattern(),
	}
}

// DetectAll runs every registered detector over the candles and merges
// the matches, skipping detectors that cannot run on the given series.
func DetectAll(candles []candle.Candle) []Match {
	var matches []Match
	for _, p := range All() {
		found, err := p.Detect(candles)
		if err != nil {
			continue
		}
		matches = append(matches, found...)
	}
	return matches
}

func bodyRatio(c candle.Candle) float64 {
	if c.TotalRange() == 0 {
		return 0
	}
	return c.BodySize() / c.TotalRange()
}

func upperShadowRatio(c candle.Candle) float64 {
	if c.TotalRange() == 0 {
		return 0
	}
	return c.UpperShadow() / c.TotalRange()
}

func lowerShadowRatio(c candle.Candle) float64 {
	if c.TotalRange() == 0 {
		return 0
	}
	return c.LowerShadow() / c.TotalRange()
}

// isDoji reports whether the body is under 10% of the total range.
func isDoji(c candle.Candle) bool {
	if c.TotalRange() == 0 {
		return false
	}
	return bodyRatio(c) < 0.1
}
