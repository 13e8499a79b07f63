package pattern

import (
	"fmt"
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// DojiPattern detects standard, long-legged, dragonfly, and gravestone dojis.
type DojiPattern struct {
	name        string
	description string
}

// NewDojiPattern creates a new doji pattern detector
func NewDojiPattern() *DojiPattern {
	return &DojiPattern{
		name:        "Doji",
		description: "Detects standard, long-legged, dragonfly, and gravestone doji patterns",
	}
}

// Name returns the pattern name
func (d *DojiPattern) Name() string {
	return d.name
}

// Description returns the pattern description
func (d *DojiPattern) Description() string {
	return d.description
}

// Detect finds doji patterns in the given candles
func (d *DojiPattern) Detect(candles []candle.Candle) ([]Match, error) {
	if len(candles) < 1 {
		return nil, fmt.Errorf("need at least 1 candle to detect doji patterns")
	}

	var matches []Match

	for i := range candles {
		current := candles[i]
		if err := current.Validate(); err != nil {
			continue
		}

		// Most specific variants first.
		switch {
		case d.isDragonfly(current):
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Dragonfly Doji",
				Description: fmt.Sprintf("Dragonfly doji at index %d", i),
				Strength:    d.dragonflyStrength(current),
				Direction:   DirectionBullish,
				Timestamp:   current.Timestamp,
			})
		case d.isGravestone(current):
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Gravestone Doji",
				Description: fmt.Sprintf("Gravestone doji at index %d", i),
				Strength:    d.gravestoneStrength(current),
				Direction:   DirectionBearish,
				Timestamp:   current.Timestamp,
			})
		case d.isLongLegged(current):
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Long-Legged Doji",
				Description: fmt.Sprintf("Long-legged doji at index %d", i),
				Strength:    d.longLeggedStrength(current),
				Direction:   DirectionNeutral,
				Timestamp:   current.Timestamp,
			})
		case d.isStandard(current):
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Standard Doji",
				Description: fmt.Sprintf("Standard doji at index %d", i),
				Strength:    d.standardStrength(current),
				Direction:   DirectionNeutral,
				Timestamp:   current.Timestamp,
			})
		}
	}

	return matches, nil
}

func (d *DojiPattern) isStandard(c candle.Candle) bool {
	if !isDoji(c) {
		return false
	}
	upper := upperShadowRatio(c)
	lower := lowerShadowRatio(c)
	return upper > 0.1 && upper < 0.4 && lower > 0.1 && lower < 0.4
}

func (d *DojiPattern) isLongLegged(c candle.Candle) bool {
	if !isDoji(c) {
		return false
	}
	return upperShadowRatio(c) > 0.4 && lowerShadowRatio(c) > 0.4
}

func (d *DojiPattern) isDragonfly(c candle.Candle) bool {
	if !isDoji(c) {
		return false
	}
	return upperShadowRatio(c) <= 0.05 && lowerShadowRatio(c) > 0.3
}

func (d *DojiPattern) isGravestone(c candle.Candle) bool {
	if !isDoji(c) {
		return false
	}
	return upperShadowRatio(c) >= 0.3 && lowerShadowRatio(c) < 0.05
}

func baseDojiStrength(c candle.Candle) float64 {
	switch {
	case bodyRatio(c) < 0.05:
		return StrengthStrong
	case bodyRatio(c) < 0.1:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

func (d *DojiPattern) standardStrength(c candle.Candle) float64 {
	strength := baseDojiStrength(c)
	balance := 1.0 - math.Abs(upperShadowRatio(c)-lowerShadowRatio(c))
	if balance > 0.8 {
		strength = math.Min(strength*1.2, 1.0)
	}
	return strength
}

func (d *DojiPattern) longLeggedStrength(c candle.Candle) float64 {
	strength := baseDojiStrength(c)
	total := upperShadowRatio(c) + lowerShadowRatio(c)
	if total > 0.9 {
		strength = math.Min(strength*1.3, 1.0)
	} else if total > 0.8 {
		strength = math.Min(strength*1.2, 1.0)
	}
	return strength
}

func (d *DojiPattern) dragonflyStrength(c candle.Candle) float64 {
	strength := baseDojiStrength(c)
	if upperShadowRatio(c) < 0.02 {
		strength = math.Min(strength*1.2, 1.0)
	}
	if lowerShadowRatio(c) > 0.6 {
		strength = math.Min(strength*1.3, 1.0)
	} else if lowerShadowRatio(c) > 0.4 {
		strength = math.Min(strength*1.1, 1.0)
	}
	return strength
}

func (d *DojiPattern) gravestoneStrength(c candle.Candle) float64 {
	strength := baseDojiStrength(c)
	if lowerShadowRatio(c) < 0.02 {
		strength = math.Min(strength*1.2, 1.0)
	}
	if upperShadowRatio(c) > 0.6 {
		strength = math.Min(strength*1.3, 1.0)
	} else if upperShadowRatio(c) > 0.4 {
		strength = math.Min(strength*1.1, 1.0)
	}
	return strength
}
