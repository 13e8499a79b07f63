package strategy

import (
	"fmt"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/indicator"
)

// Breakout enters when the close exceeds the prior rolling high and
// exits on a fixed stop or holding limit. The recorded take profit is
// advisory; exits are time and stop based.
type Breakout struct {
	symbol     string
	window     int
	holdDays   int
	stopPct    float64
	takePct    float64
	candles    []candle.Candle
	rollingMax []float64
}

// NewBreakout builds a rolling-high breakout strategy over the given
// window with a percentage stop and holding limit in calendar days.
func NewBreakout(symbol string, window, holdDays int, stopPct, takePct float64) *Breakout {
	return &Breakout{
		symbol:   symbol,
		window:   window,
		holdDays: holdDays,
		stopPct:  stopPct,
		takePct:  takePct,
	}
}

func (s *Breakout) Name() string      { return fmt.Sprintf("breakout-%d", s.window) }
func (s *Breakout) Symbol() string    { return s.symbol }
func (s *Breakout) WarmupPeriod() int { return s.window }

func (s *Breakout) Prepare(candles []candle.Candle) error {
	if len(candles) <= s.window {
		return fmt.Errorf("need more than %d candles, have %d", s.window, len(candles))
	}
	s.candles = candles
	s.rollingMax = indicator.RollingMax(candle.Highs(candles), s.window)
	return nil
}

func (s *Breakout) Advise(i int, pos *Position) Advice {
	price := s.candles[i].Close

	if pos != nil {
		switch {
		case pos.HoldingDays(s.candles[i].Timestamp) >= s.holdDays:
			return Advice{Action: Exit, Reason: fmt.Sprintf("%d-day holding limit", s.holdDays)}
		case price <= pos.EntryPrice*(1-s.stopPct):
			return Advice{Action: Exit, Reason: fmt.Sprintf("%.0f%% stop loss", s.stopPct*100)}
		}
		return Advice{Action: Hold}
	}

	if i > 0 && price > s.rollingMax[i-1] {
		return Advice{
			Action:     Enter,
			Reason:     fmt.Sprintf("%d-day high breakout", s.window),
			StopLoss:   price * (1 - s.stopPct),
			TakeProfit: price * (1 + s.takePct),
		}
	}
	return Advice{Action: Hold}
}
