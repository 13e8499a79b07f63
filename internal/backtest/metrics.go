package backtest

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

// tradingDaysPerYear annualizes the Sharpe ratio of daily returns.
const tradingDaysPerYear = 252

// Summary holds the headline performance metrics of one backtest.
type Summary struct {
	TotalReturnPct       float64 `json:"total_return_pct"`
	AnnualizedReturnPct  float64 `json:"annualized_return_pct"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"`
	Trades               int     `json:"trades"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	WinRatePct           float64 `json:"win_rate_pct"`
	AvgWinPct            float64 `json:"avg_win_pct"`
	AvgLossPct           float64 `json:"avg_loss_pct"`
	ProfitFactor         float64 `json:"profit_factor"`
	ExpectancyPct        float64 `json:"expectancy_pct"`
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	FinalEquity          float64 `json:"final_equity"`
}

// Summarize computes the summary metrics from booked trades, the
// per-bar return series, and the compounded equity curve.
func Summarize(trades []Trade, returns []float64, equity []float64, timestamps []time.Time) Summary {
	var s Summary
	if len(equity) == 0 || len(timestamps) == 0 {
		return s
	}

	s.FinalEquity = equity[len(equity)-1]

	base := equity[0]
	if 1+returns[0] != 0 {
		base = equity[0] / (1 + returns[0])
	}
	if base > 0 {
		s.TotalReturnPct = (s.FinalEquity/base - 1) * 100
	}

	days := timestamps[len(timestamps)-1].Sub(timestamps[0]).Hours() / 24
	if days > 0 {
		s.AnnualizedReturnPct = (math.Pow(1+s.TotalReturnPct/100, 365/days) - 1) * 100
	}

	mean, errMean := stats.Mean(returns)
	std, errStd := stats.StandardDeviationSample(returns)
	if errMean == nil && errStd == nil && std != 0 {
		s.SharpeRatio = math.Sqrt(tradingDaysPerYear) * mean / std
	}

	s.MaxDrawdownPct = maxDrawdown(equity)

	s.Trades = len(trades)
	var grossProfit, grossLoss float64
	var winStreak, lossStreak int
	for _, t := range trades {
		if t.ReturnPct > 0 {
			s.Wins++
			grossProfit += t.ReturnPct
			winStreak++
			lossStreak = 0
		} else {
			s.Losses++
			grossLoss += -t.ReturnPct
			lossStreak++
			winStreak = 0
		}
		if winStreak > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = winStreak
		}
		if lossStreak > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = lossStreak
		}
	}
	if s.Trades > 0 {
		s.WinRatePct = float64(s.Wins) / float64(s.Trades) * 100
	}
	if s.Wins > 0 {
		s.AvgWinPct = grossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLossPct = -grossLoss / float64(s.Losses)
	}
	if grossLoss != 0 {
		s.ProfitFactor = grossProfit / grossLoss
	}
	if s.Trades > 0 {
		winRate := float64(s.Wins) / float64(s.Trades)
		s.ExpectancyPct = winRate*s.AvgWinPct + (1-winRate)*s.AvgLossPct
	}
	return s
}

// maxDrawdown returns the deepest percentage decline from a running
// equity peak, as a negative number.
func maxDrawdown(equity []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (e/peak - 1) * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
