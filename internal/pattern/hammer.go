package pattern

import (
	"fmt"
	"math"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// HammerPattern detects hammer and shooting star candles.
type HammerPattern struct {
	name        string
	description string
}

// NewHammerPattern creates a new hammer pattern detector
func NewHammerPattern() *HammerPattern {
	return &HammerPattern{
		name:        "Hammer",
		description: "Detects hammer and shooting star patterns",
	}
}

// Name returns the pattern name
func (h *HammerPattern) Name() string {
	return h.name
}

// Description returns the pattern description
func (h *HammerPattern) Description() string {
	return h.description
}

// Detect finds hammer and shooting star patterns in the given candles
func (h *HammerPattern) Detect(candles []candle.Candle) ([]Match, error) {
	if len(candles) < 1 {
		return nil, fmt.Errorf("need at least 1 candle to detect hammer patterns")
	}

	var matches []Match

	for i := range candles {
		current := candles[i]
		if err := current.Validate(); err != nil {
			continue
		}

		if h.isHammer(current) {
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Hammer",
				Description: fmt.Sprintf("Hammer at index %d", i),
				Strength:    h.strength(lowerShadowRatio(current), bodyRatio(current)),
				Direction:   DirectionBullish,
				Timestamp:   current.Timestamp,
			})
		} else if h.isShootingStar(current) {
			matches = append(matches, Match{
				Index:       i,
				Pattern:     "Shooting Star",
				Description: fmt.Sprintf("Shooting star at index %d", i),
				Strength:    h.strength(upperShadowRatio(current), bodyRatio(current)),
				Direction:   DirectionBearish,
				Timestamp:   current.Timestamp,
			})
		}
	}

	return matches, nil
}

// isHammer requires a small body at the top of the range with a long
// lower shadow at least twice the body.
func (h *HammerPattern) isHammer(c candle.Candle) bool {
	if c.TotalRange() == 0 {
		return false
	}
	body := bodyRatio(c)
	return body > 0 && body < 0.35 &&
		lowerShadowRatio(c) >= 2*body &&
		upperShadowRatio(c) < 0.1
}

// isShootingStar is the mirror image: small body at the bottom, long
// upper shadow.
func (h *HammerPattern) isShootingStar(c candle.Candle) bool {
	if c.TotalRange() == 0 {
		return false
	}
	body := bodyRatio(c)
	return body > 0 && body < 0.35 &&
		upperShadowRatio(c) >= 2*body &&
		lowerShadowRatio(c) < 0.1
}

func (h *HammerPattern) strength(shadow, body float64) float64 {
	strength := StrengthMedium
	if shadow > 0.7 {
		strength = StrengthStrong
	}
	if body < 0.1 {
		strength = math.Min(strength*1.1, 1.0)
	}
	return strength
}
