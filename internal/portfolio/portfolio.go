// Package portfolio combines per-symbol backtest results into an
// equal-weight portfolio and computes its performance metrics.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/adani-quant/trading-dashboard/internal/backtest"
)

// Metrics holds performance statistics computed from a cumulative
// return series. Win, loss, and profit figures are over the nonzero
// daily returns of the series.
type Metrics struct {
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	WinRatePct          float64 `json:"win_rate_pct"`
	AvgWinPct           float64 `json:"avg_win_pct"`
	AvgLossPct          float64 `json:"avg_loss_pct"`
	ProfitFactor        float64 `json:"profit_factor"`
}

// Analysis is the combined equal-weight portfolio. PerSymbol carries
// the same metric summary for each constituent on its own.
type Analysis struct {
	Symbols    []string           `json:"symbols"`
	Timestamps []string           `json:"timestamps"`
	Returns    []float64          `json:"returns"`
	Cumulative []float64          `json:"cumulative"`
	Metrics    Metrics            `json:"metrics"`
	PerSymbol  map[string]Metrics `json:"per_symbol"`

	times []time.Time
}

// Combine merges per-symbol strategy returns with equal weights over
// the union of their timestamps. A symbol without a bar on a given day
// contributes a zero return for that day.
func Combine(results []*backtest.Result) (*Analysis, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no backtest results to combine")
	}

	seen := make(map[time.Time]struct{})
	perSymbol := make([]map[time.Time]float64, len(results))
	symbols := make([]string, len(results))
	for i, r := range results {
		symbols[i] = r.Symbol
		perSymbol[i] = make(map[time.Time]float64, len(r.Timestamps))
		for j, ts := range r.Timestamps {
			perSymbol[i][ts] = r.Returns[j]
			seen[ts] = struct{}{}
		}
	}

	times := make([]time.Time, 0, len(seen))
	for ts := range seen {
		times = append(times, ts)
	}
	sort.Slice(times, func(a, b int) bool { return times[a].Before(times[b]) })

	a := &Analysis{
		Symbols:    symbols,
		Timestamps: make([]string, len(times)),
		Returns:    make([]float64, len(times)),
		Cumulative: make([]float64, len(times)),
		times:      times,
	}

	weight := 1.0 / float64(len(results))
	prev := 1.0
	for i, ts := range times {
		var combined float64
		for _, rets := range perSymbol {
			combined += rets[ts] * weight
		}
		a.Timestamps[i] = ts.Format(time.RFC3339)
		a.Returns[i] = combined
		prev *= 1 + combined
		a.Cumulative[i] = prev
	}

	a.Metrics = ComputeMetrics(a.Cumulative, times)

	a.PerSymbol = make(map[string]Metrics, len(results))
	for _, r := range results {
		cum := make([]float64, len(r.Returns))
		prev := 1.0
		for i, ret := range r.Returns {
			prev *= 1 + ret
			cum[i] = prev
		}
		a.PerSymbol[r.Symbol] = ComputeMetrics(cum, r.Timestamps)
	}
	return a, nil
}

// ComputeMetrics derives performance metrics from a cumulative return
// series and its timestamps.
func ComputeMetrics(cumulative []float64, timestamps []time.Time) Metrics {
	var m Metrics
	if len(cumulative) == 0 || len(timestamps) != len(cumulative) {
		return m
	}

	daily := make([]float64, len(cumulative))
	for i := 1; i < len(cumulative); i++ {
		if cumulative[i-1] != 0 {
			daily[i] = cumulative[i]/cumulative[i-1] - 1
		}
	}

	if cumulative[0] != 0 {
		m.TotalReturnPct = (cumulative[len(cumulative)-1]/cumulative[0] - 1) * 100
	}

	days := timestamps[len(timestamps)-1].Sub(timestamps[0]).Hours() / 24
	if days > 0 {
		m.AnnualizedReturnPct = (math.Pow(1+m.TotalReturnPct/100, 365/days) - 1) * 100
	}

	mean, errMean := stats.Mean(daily)
	std, errStd := stats.StandardDeviationSample(daily)
	if errMean == nil && errStd == nil && std != 0 {
		m.SharpeRatio = math.Sqrt(252) * mean / std
	}

	m.MaxDrawdownPct = maxDrawdown(cumulative)

	var wins, losses int
	var grossProfit, grossLoss float64
	for _, r := range daily {
		switch {
		case r > 0:
			wins++
			grossProfit += r
		case r < 0:
			losses++
			grossLoss += -r
		}
	}
	if active := wins + losses; active > 0 {
		m.WinRatePct = float64(wins) / float64(active) * 100
	}
	if wins > 0 {
		m.AvgWinPct = grossProfit / float64(wins) * 100
	}
	if losses > 0 {
		m.AvgLossPct = -grossLoss / float64(losses) * 100
	}
	if grossLoss != 0 {
		m.ProfitFactor = grossProfit / grossLoss
	}
	return m
}

func maxDrawdown(series []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, v := range series {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v/peak - 1) * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
