// Package backtest replays strategy signals over historical candles and
// computes trade, return, and equity statistics.
package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/strategy"
)

// Trade represents one completed round trip.
type Trade struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Strategy    string    `json:"strategy"`
	EntryIndex  int       `json:"entry_index"`
	ExitIndex   int       `json:"exit_index"`
	EntryTime   time.Time `json:"entry_time"`
	ExitTime    time.Time `json:"exit_time"`
	EntryPrice  float64   `json:"entry_price"`
	ExitPrice   float64   `json:"exit_price"`
	ReturnPct   float64   `json:"return_pct"`
	ExitReason  string    `json:"exit_reason"`
	HoldingDays int       `json:"holding_days"`
}

// Result holds everything a backtest produced for one symbol.
type Result struct {
	Symbol          string            `json:"symbol"`
	Strategy        string            `json:"strategy"`
	StartingCapital float64           `json:"starting_capital"`
	Signals         []strategy.Signal `json:"signals"`
	Trades          []Trade           `json:"trades"`
	Timestamps      []time.Time       `json:"timestamps"`
	Returns         []float64         `json:"returns"`
	Equity          []float64         `json:"equity"`
	Drawdown        []float64         `json:"drawdown"`
	Summary         Summary           `json:"summary"`
}

// Run generates signals for the strategy, pairs them into trades, and
// books each bar's return exactly once. A position still open on the
// last bar is closed there.
func Run(s strategy.Strategy, candles []candle.Candle, startingCapital float64) (*Result, error) {
	if startingCapital <= 0 {
		return nil, fmt.Errorf("starting capital must be positive, got %f", startingCapital)
	}

	signals, err := strategy.Run(s, candles)
	if err != nil {
		return nil, fmt.Errorf("running strategy %s on %s: %w", s.Name(), s.Symbol(), err)
	}

	result := &Result{
		Symbol:          s.Symbol(),
		Strategy:        s.Name(),
		StartingCapital: startingCapital,
		Signals:         signals,
		Timestamps:      make([]time.Time, len(candles)),
		Returns:         make([]float64, len(candles)),
	}
	for i, c := range candles {
		result.Timestamps[i] = c.Timestamp
	}

	var entry *strategy.Signal
	for i := range signals {
		sig := &signals[i]
		switch sig.Side {
		case strategy.SideLong:
			entry = sig
		case strategy.SideExit:
			if entry == nil {
				continue
			}
			result.bookTrade(candles, entry, sig.Index, sig.Price, sig.Reason)
			entry = nil
		}
	}
	if entry != nil {
		last := len(candles) - 1
		result.bookTrade(candles, entry, last, candles[last].Close, "open at end of data")
	}

	result.Equity = equityCurve(startingCapital, result.Returns)
	result.Drawdown = drawdownCurve(result.Equity)
	result.Summary = Summarize(result.Trades, result.Returns, result.Equity, result.Timestamps)

	log.WithFields(log.Fields{
		"symbol":   result.Symbol,
		"strategy": result.Strategy,
		"signals":  len(result.Signals),
		"trades":   len(result.Trades),
	}).Debug("backtest complete")

	return result, nil
}

// bookTrade records one round trip and its per-bar returns. Each bar
// between entry and exit is booked once, as close-to-close changes.
func (r *Result) bookTrade(candles []candle.Candle, entry *strategy.Signal, exitIndex int, exitPrice float64, reason string) {
	for i := entry.Index + 1; i <= exitIndex; i++ {
		r.Returns[i] = candles[i].Close/candles[i-1].Close - 1
	}
	r.Trades = append(r.Trades, Trade{
		ID:          uuid.NewString(),
		Symbol:      r.Symbol,
		Strategy:    r.Strategy,
		EntryIndex:  entry.Index,
		ExitIndex:   exitIndex,
		EntryTime:   entry.Time,
		ExitTime:    candles[exitIndex].Timestamp,
		EntryPrice:  entry.Price,
		ExitPrice:   exitPrice,
		ReturnPct:   (exitPrice - entry.Price) / entry.Price * 100,
		ExitReason:  reason,
		HoldingDays: int(candles[exitIndex].Timestamp.Sub(entry.Time).Hours() / 24),
	})
}

func equityCurve(capital float64, returns []float64) []float64 {
	equity := make([]float64, len(returns))
	prev := capital
	for i, r := range returns {
		prev *= 1 + r
		equity[i] = prev
	}
	return equity
}

// drawdownCurve returns the percentage decline from the running peak.
func drawdownCurve(equity []float64) []float64 {
	dd := make([]float64, len(equity))
	peak := 0.0
	for i, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd[i] = (e/peak - 1) * 100
		}
	}
	return dd
}
