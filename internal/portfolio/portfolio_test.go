package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adani-quant/trading-dashboard/internal/backtest"
)

func TestCombineEqualWeight(t *testing.T) {
	t0 := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(100 * 24 * time.Hour)
	t2 := t0.Add(365 * 24 * time.Hour)

	results := []*backtest.Result{
		{
			Symbol:     "ACC",
			Timestamps: []time.Time{t0, t1, t2},
			Returns:    []float64{0, 0.1, 0},
		},
		{
			Symbol:     "ADANIENT",
			Timestamps: []time.Time{t0, t1, t2},
			Returns:    []float64{0, 0, -0.05},
		},
	}

	a, err := Combine(results)
	require.NoError(t, err)

	assert.Equal(t, []string{"ACC", "ADANIENT"}, a.Symbols)
	require.Len(t, a.Returns, 3)
	assert.InDelta(t, 0, a.Returns[0], 0.0001)
	assert.InDelta(t, 0.05, a.Returns[1], 0.0001)
	assert.InDelta(t, -0.025, a.Returns[2], 0.0001)

	require.Len(t, a.Cumulative, 3)
	assert.InDelta(t, 1.0, a.Cumulative[0], 0.0001)
	assert.InDelta(t, 1.05, a.Cumulative[1], 0.0001)
	assert.InDelta(t, 1.02375, a.Cumulative[2], 0.0001)

	m := a.Metrics
	assert.InDelta(t, 2.375, m.TotalReturnPct, 0.0001)
	assert.InDelta(t, 2.375, m.AnnualizedReturnPct, 0.01)
	assert.InDelta(t, 50.0, m.WinRatePct, 0.0001)
	assert.InDelta(t, 5.0, m.AvgWinPct, 0.0001)
	assert.InDelta(t, -2.5, m.AvgLossPct, 0.0001)
	assert.InDelta(t, 2.0, m.ProfitFactor, 0.0001)
	assert.InDelta(t, (1.02375/1.05-1)*100, m.MaxDrawdownPct, 0.0001)

	// Each constituent also gets its own summary.
	require.Len(t, a.PerSymbol, 2)
	acc := a.PerSymbol["ACC"]
	assert.InDelta(t, 10.0, acc.TotalReturnPct, 0.0001)
	assert.InDelta(t, 100.0, acc.WinRatePct, 0.0001)
	assert.InDelta(t, 10.0, acc.AvgWinPct, 0.0001)
	assert.Zero(t, acc.MaxDrawdownPct)

	ent := a.PerSymbol["ADANIENT"]
	assert.InDelta(t, -5.0, ent.TotalReturnPct, 0.0001)
	assert.Zero(t, ent.WinRatePct)
	assert.InDelta(t, -5.0, ent.AvgLossPct, 0.0001)
	assert.InDelta(t, -5.0, ent.MaxDrawdownPct, 0.0001)
}

func TestCombineAlignsMissingBars(t *testing.T) {
	t0 := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(24 * time.Hour)
	t2 := t0.Add(48 * time.Hour)

	results := []*backtest.Result{
		{
			Symbol:     "ACC",
			Timestamps: []time.Time{t0, t1, t2},
			Returns:    []float64{0, 0.1, 0},
		},
		{
			// No bar at t1; contributes zero that day.
			Symbol:     "ADANIPORTS",
			Timestamps: []time.Time{t0, t2},
			Returns:    []float64{0, 0.02},
		},
	}

	a, err := Combine(results)
	require.NoError(t, err)
	require.Len(t, a.Returns, 3)
	assert.InDelta(t, 0.05, a.Returns[1], 0.0001)
	assert.InDelta(t, 0.01, a.Returns[2], 0.0001)
}

func TestCombineEmpty(t *testing.T) {
	_, err := Combine(nil)
	assert.Error(t, err)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil, nil)
	assert.Zero(t, m.TotalReturnPct)
	assert.Zero(t, m.SharpeRatio)
}
