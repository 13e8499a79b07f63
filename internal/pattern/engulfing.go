package pattern

import (
	"fmt"
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// EngulfingPattern detects bullish and bearish engulfing pairs.
type EngulfingPattern struct {
	name        string
	description string
}

// NewEngulfingPattern creates a new engulfing pattern detector
func NewEngulfingPattern() *EngulfingPattern {
	return &EngulfingPattern{
		name:        "Engulfing",
		description: "Detects bullish and bearish engulfing patterns",
	}
}

// Name returns the pattern name
func (e *EngulfingPattern) Name() string {
	return e.name
}

// Description returns the pattern description
func (e *EngulfingPattern) Description() string {
	return e.description
}

// Detect finds engulfing patterns in the given candles
func (e *EngulfingPattern) Detect(candles []candle.Candle) ([]Match, error) {
	if len(candles) < 2 {
		return nil, fmt.Errorf("need at least 2 candles to detect engulfing patterns")
	}

	var matches []Match

	for i := 1; i < len(candles); i++ {
		prev := candles[i-1]
		current := candles[i]
		if err := prev.Validate(); err != nil {
			continue
		}
		if err := current.Validate(); err != nil {
			continue
		}

		if e.isBullishEngulfing(prev, current) {
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Bullish Engulfing",
				Description: fmt.Sprintf("Bullish engulfing at index %d", i),
				Strength:    e.strength(prev, current),
				Direction:   DirectionBullish,
				Timestamp:   current.Timestamp,
			})
		} else if e.isBearishEngulfing(prev, current) {
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Bearish Engulfing",
				Description: fmt.Sprintf("Bearish engulfing at index %d", i),
				Strength:    e.strength(prev, current),
				Direction:   DirectionBearish,
				Timestamp:   current.Timestamp,
			})
		}
	}

	return matches, nil
}

// isBullishEngulfing requires a bearish candle fully engulfed by the
// following bullish body.
func (e *EngulfingPattern) isBullishEngulfing(prev, current candle.Candle) bool {
	return prev.IsBearish() && current.IsBullish() &&
		current.Open <= prev.Close && current.Close >= prev.Open
}

// isBearishEngulfing requires a bullish candle fully engulfed by the
// following bearish body.
func (e *EngulfingPattern) isBearishEngulfing(prev, current candle.Candle) bool {
	return prev.IsBullish() && current.IsBearish() &&
		current.Open >= prev.Close && current.Close <= prev.Open
}

func (e *EngulfingPattern) strength(prev, current candle.Candle) float64 {
	if prev.BodySize() == 0 {
		return StrengthMedium
	}
	ratio := current.BodySize() / prev.BodySize()
	switch {
	case ratio > 2:
		return math.Min(StrengthStrong*1.1, 1.0)
	case ratio > 1.5:
		return StrengthStrong
	default:
		return StrengthMedium
	}
}
