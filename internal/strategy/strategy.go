// Package strategy implements the per-symbol trading strategies and the
// signal generation loop shared by the backtester and the API.
package strategy

import (
	"fmt"
	"time"

	"github.com/adani-quant/trading-dashboard/internal/candle"
)

// Strategy is the interface for all trading strategies. Prepare computes
// the indicator series once; Advise is then called bar by bar.
type Strategy interface {
	Name() string
	Symbol() string
	WarmupPeriod() int
	Prepare(candles []candle.Candle) error
	Advise(i int, pos *Position) Advice
}

// Action is the decision a strategy takes on a single bar.
type Action int

const (
	Hold Action = iota
	Enter
	Exit
)

// Advice is the outcome of evaluating one bar. StopLoss and TakeProfit
// are only meaningful on Enter.
type Advice struct {
	Action     Action
	Reason     string
	StopLoss   float64
	TakeProfit float64
}

// Position tracks an open long position during the signal loop.
type Position struct {
	EntryIndex int
	EntryPrice float64
	EntryTime  time.Time
}

// HoldingDays returns the number of calendar days the position has been
// open as of t.
func (p *Position) HoldingDays(t time.Time) int {
	return int(t.Sub(p.EntryTime).Hours() / 24)
}

// Signal sides.
const (
	SideLong = "LONG"
	SideExit = "EXIT"
)

// Signal represents a strategy decision at a specific bar.
type Signal struct {
	Index      int       `json:"index"`
	Time       time.Time `json:"time"`
	Symbol     string    `json:"symbol"`
	Strategy   string    `json:"strategy"`
	Side       string    `json:"side"`
	Price      float64   `json:"price"`
	StopLoss   float64   `json:"stop_loss,omitempty"`
	TakeProfit float64   `json:"take_profit,omitempty"`
	Reason     string    `json:"reason"`
}

// Run prepares the strategy and walks the candles, emitting an entry
// signal when a position opens and an exit signal when it closes. A bar
// that closes a position never reopens on the same bar.
func Run(s Strategy, candles []candle.Candle) ([]Signal, error) {
	if len(candles) <= s.WarmupPeriod() {
		return nil, fmt.Errorf("strategy %s needs more than %d candles, have %d",
			s.Name(), s.WarmupPeriod(), len(candles))
	}
	if err := s.Prepare(candles); err != nil {
		return nil, fmt.Errorf("preparing strategy %s: %w", s.Name(), err)
	}

	var signals []Signal
	var pos *Position

	for i := s.WarmupPeriod(); i < len(candles); i++ {
		advice := s.Advise(i, pos)
		switch advice.Action {
		case Enter:
			if pos != nil {
				continue
			}
			pos = &Position{
				EntryIndex: i,
				EntryPrice: candles[i].Close,
				EntryTime:  candles[i].Timestamp,
			}
			signals = append(signals, Signal{
				Index:      i,
				Time:       candles[i].Timestamp,
				Symbol:     s.Symbol(),
				Strategy:   s.Name(),
				Side:       SideLong,
				Price:      candles[i].Close,
				StopLoss:   advice.StopLoss,
				TakeProfit: advice.TakeProfit,
				Reason:     advice.Reason,
			})
		case Exit:
			if pos == nil {
				continue
			}
			pos = nil
			signals = append(signals, Signal{
				Index:    i,
				Time:     candles[i].Timestamp,
				Symbol:   s.Symbol(),
				Strategy: s.Name(),
				Side:     SideExit,
				Price:    candles[i].Close,
				Reason:   advice.Reason,
			})
		}
	}
	return signals, nil
}

// ForSymbol returns the strategy assigned to a symbol, or an error for
// symbols without one.
func ForSymbol(symbol string) (Strategy, error) {
	switch symbol {
	case "ACC":
		return NewTrendMomentum(symbol), nil
	case "ADANIENT":
		return NewBreakout(symbol, 20, 10, 0.03, 0.12), nil
	case "ADANIPOWER":
		return NewGoldenCross(symbol), nil
	case "ADANIPORTS":
		return NewBreakout(symbol, 30, 10, 0.05, 0.12), nil
	default:
		return nil, fmt.Errorf("no strategy registered for symbol %s", symbol)
	}
}

// Symbols returns the symbols that have a registered strategy.
func Symbols() []string {
	return []string{"ACC", "ADANIENT", "ADANIPOWER", "ADANIPORTS"}
}
