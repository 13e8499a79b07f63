package backtest

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/strategy"
)

func mkCandle(i int, close, high float64) candle.Candle {
	return candle.Candle{
		Timestamp: time.Date(2019, 1, 1, 9, 15, 0, 0, time.UTC).Add(time.Duration(i) * 24 * time.Hour),
		Open:      close,
		High:      high,
		Low:       close - 1,
		Close:     close,
		Volume:    1000,
		Symbol:    "TEST",
		Timeframe: "1d",
		Source:    "test",
	}
}

func breakoutCandles() []candle.Candle {
	return []candle.Candle{
		mkCandle(0, 9, 10),
		mkCandle(1, 9, 10),
		mkCandle(2, 9, 10),
		mkCandle(3, 11, 11),
		mkCandle(4, 10.8, 11),
		mkCandle(5, 10.8, 11),
		mkCandle(6, 10.7, 11),
	}
}

func TestRunBooksEachBarOnce(t *testing.T) {
	s := strategy.NewBreakout("TEST", 3, 2, 0.05, 0.12)
	result, err := Run(s, breakoutCandles(), 10000)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, 3, trade.EntryIndex)
	assert.Equal(t, 5, trade.ExitIndex)
	assert.InDelta(t, 11.0, trade.EntryPrice, 0.0001)
	assert.InDelta(t, 10.8, trade.ExitPrice, 0.0001)
	assert.InDelta(t, (10.8-11.0)/11.0*100, trade.ReturnPct, 0.0001)
	assert.Equal(t, "2-day holding limit", trade.ExitReason)
	assert.Equal(t, 2, trade.HoldingDays)
	assert.NotEmpty(t, trade.ID)

	// In-position bars carry close-to-close returns, everything else zero.
	require.Len(t, result.Returns, 7)
	assert.InDelta(t, 10.8/11.0-1, result.Returns[4], 0.0001)
	assert.InDelta(t, 0, result.Returns[5], 0.0001)
	for _, i := range []int{0, 1, 2, 3, 6} {
		assert.Zero(t, result.Returns[i], "unexpected return at index %d", i)
	}

	assert.InDelta(t, 10000*(10.8/11.0), result.Equity[4], 0.01)
	assert.InDelta(t, result.Equity[4], result.Summary.FinalEquity, 0.01)
	assert.InDelta(t, (10.8/11.0-1)*100, result.Summary.MaxDrawdownPct, 0.001)
}

func TestRunClosesOpenPositionAtEnd(t *testing.T) {
	candles := []candle.Candle{
		mkCandle(0, 9, 10),
		mkCandle(1, 9, 10),
		mkCandle(2, 9, 10),
		mkCandle(3, 11, 11),
		mkCandle(4, 11.2, 11.3),
	}

	s := strategy.NewBreakout("TEST", 3, 30, 0.05, 0.12)
	result, err := Run(s, candles, 10000)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	assert.Equal(t, 4, trade.ExitIndex)
	assert.Equal(t, "open at end of data", trade.ExitReason)
	assert.InDelta(t, (11.2-11.0)/11.0*100, trade.ReturnPct, 0.0001)

	assert.Equal(t, 1, result.Summary.Wins)
	assert.InDelta(t, 100.0, result.Summary.WinRatePct, 0.0001)
}

func TestRunRejectsNonPositiveCapital(t *testing.T) {
	s := strategy.NewBreakout("TEST", 3, 2, 0.05, 0.12)
	_, err := Run(s, breakoutCandles(), 0)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	trades := []Trade{
		{ReturnPct: 2},
		{ReturnPct: 4},
		{ReturnPct: -1},
	}
	returns := []float64{0, 0.1}
	equity := []float64{100, 110}
	timestamps := []time.Time{
		time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	s := Summarize(trades, returns, equity, timestamps)

	assert.Equal(t, 3, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	// Win rate is wins over total trades.
	assert.InDelta(t, 100.0*2.0/3.0, s.WinRatePct, 0.0001)
	assert.InDelta(t, 3.0, s.AvgWinPct, 0.0001)
	assert.InDelta(t, -1.0, s.AvgLossPct, 0.0001)
	assert.InDelta(t, 6.0, s.ProfitFactor, 0.0001)
	// Expectancy blends the averages by the win rate.
	assert.InDelta(t, 2.0/3.0*3.0+1.0/3.0*(-1.0), s.ExpectancyPct, 0.0001)
	assert.Equal(t, 2, s.MaxConsecutiveWins)
	assert.Equal(t, 1, s.MaxConsecutiveLosses)

	assert.InDelta(t, 10.0, s.TotalReturnPct, 0.0001)
	assert.InDelta(t, 10.0, s.AnnualizedReturnPct, 0.01)

	mean := 0.05
	std := math.Sqrt((math.Pow(0-mean, 2) + math.Pow(0.1-mean, 2)) / 1)
	assert.InDelta(t, math.Sqrt(252)*mean/std, s.SharpeRatio, 0.0001)
}

func TestMaxDrawdown(t *testing.T) {
	equity := []float64{100, 120, 90, 130}
	assert.InDelta(t, (90.0/120.0-1)*100, maxDrawdown(equity), 0.0001)

	assert.Zero(t, maxDrawdown([]float64{100, 110, 120}))
}

func TestWriteSummaryTable(t *testing.T) {
	s := strategy.NewBreakout("TEST", 3, 2, 0.05, 0.12)
	result, err := Run(s, breakoutCandles(), 10000)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteSummaryTable(&buf, []*Result{result})
	out := buf.String()
	assert.True(t, strings.Contains(out, "TEST"))
	assert.True(t, strings.Contains(out, "breakout-3"))

	buf.Reset()
	WriteTradesTable(&buf, result)
	assert.True(t, strings.Contains(buf.String(), "2-day holding limit"))
}

func TestExportCSV(t *testing.T) {
	s := strategy.NewBreakout("TEST", 3, 2, 0.05, 0.12)
	result, err := Run(s, breakoutCandles(), 10000)
	require.NoError(t, err)

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	require.NoError(t, ExportTradesCSV(tradesPath, result))
	require.NoError(t, ExportEquityCSV(equityPath, result))

	data, err := os.ReadFile(tradesPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "entry_price"))
	assert.True(t, strings.Contains(string(data), "2-day holding limit"))

	data, err = os.ReadFile(equityPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "drawdown_pct"))
}
