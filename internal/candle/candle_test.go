package candle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkCandle(ts time.Time, o, h, l, c, v float64) Candle {
	return Candle{
		Timestamp: ts,
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
		Symbol:    "ACC",
		Timeframe: "15m",
		Source:    "csv",
	}
}

func TestCandleValidate(t *testing.T) {
	base := mkCandle(time.Date(2015, 2, 2, 9, 15, 0, 0, time.UTC), 100, 110, 95, 105, 1000)

	tests := []struct {
		name    string
		mutate  func(*Candle)
		wantErr bool
	}{
		{"valid candle", func(c *Candle) {}, false},
		{"zero timestamp", func(c *Candle) { c.Timestamp = time.Time{} }, true},
		{"negative price", func(c *Candle) { c.Open = -1 }, true},
		{"high below low", func(c *Candle) { c.High = 90 }, true},
		{"open above high", func(c *Candle) { c.Open = 120 }, true},
		{"close below low", func(c *Candle) { c.Close = 90 }, true},
		{"negative volume", func(c *Candle) { c.Volume = -5 }, true},
		{"empty symbol", func(c *Candle) { c.Symbol = "" }, true},
		{"empty timeframe", func(c *Candle) { c.Timeframe = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateHeikenAshiCandles(t *testing.T) {
	ts := time.Date(2015, 2, 2, 9, 15, 0, 0, time.UTC)
	raw := []Candle{
		mkCandle(ts, 100, 110, 95, 105, 1000),
		mkCandle(ts.Add(15*time.Minute), 105, 115, 100, 110, 1200),
	}

	ha := GenerateHeikenAshiCandles(raw)
	require.Len(t, ha, 2)

	// First HA candle: open=(o+c)/2, close=(o+h+l+c)/4
	assert.InDelta(t, 102.5, ha[0].Open, 1e-9)
	assert.InDelta(t, 102.5, ha[0].Close, 1e-9)
	assert.Equal(t, "heiken_ashi", ha[0].Source)

	// Second HA candle opens at midpoint of previous HA body.
	assert.InDelta(t, (ha[0].Open+ha[0].Close)/2, ha[1].Open, 1e-9)
	assert.InDelta(t, (105.0+115.0+100.0+110.0)/4, ha[1].Close, 1e-9)
	assert.GreaterOrEqual(t, ha[1].High, ha[1].Close)
	assert.LessOrEqual(t, ha[1].Low, ha[1].Open)

	assert.Nil(t, GenerateHeikenAshiCandles(nil))
}

func TestAggregate(t *testing.T) {
	ts := time.Date(2015, 2, 2, 10, 0, 0, 0, time.UTC)
	var candles []Candle
	prices := []float64{100, 102, 101, 104}
	for i, p := range prices {
		candles = append(candles, mkCandle(ts.Add(time.Duration(i)*15*time.Minute), p, p+2, p-2, p+1, 100))
	}

	hourly, err := Aggregate(candles, "1h")
	require.NoError(t, err)
	require.Len(t, hourly, 1)

	agg := hourly[0]
	assert.Equal(t, ts, agg.Timestamp)
	assert.Equal(t, 100.0, agg.Open)
	assert.Equal(t, 106.0, agg.High)
	assert.Equal(t, 98.0, agg.Low)
	assert.Equal(t, 105.0, agg.Close)
	assert.Equal(t, 400.0, agg.Volume)
	assert.Equal(t, "1h", agg.Timeframe)
	assert.Equal(t, "aggregated", agg.Source)
}

func TestAggregateRejectsLowerTarget(t *testing.T) {
	ts := time.Date(2015, 2, 2, 10, 0, 0, 0, time.UTC)
	candles := []Candle{mkCandle(ts, 100, 110, 95, 105, 1000)}

	_, err := Aggregate(candles, "15m")
	assert.Error(t, err)
}

func TestAggregateToleratesSessionGaps(t *testing.T) {
	// Trading day ends at 15:30 and resumes next morning; the gap must not error.
	day1 := time.Date(2015, 2, 2, 15, 15, 0, 0, time.UTC)
	day2 := time.Date(2015, 2, 3, 9, 15, 0, 0, time.UTC)
	candles := []Candle{
		mkCandle(day1, 100, 102, 99, 101, 500),
		mkCandle(day2, 101, 103, 100, 102, 600),
	}

	daily, err := Aggregate(candles, "1d")
	require.NoError(t, err)
	assert.Len(t, daily, 2)
}

func TestLoadCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ACC-15minute.csv")
	data := "Date,Open,High,Low,Close,Volume\n" +
		"2015-02-02 09:15:00,1450.0,1460.0,1445.0,1455.0,12000\n" +
		"2015-02-02 09:30:00,1455.0,1465.0,1450.0,1460.0,9000\n" +
		"2015-02-02 09:30:00,1455.0,1465.0,1450.0,1460.0,9000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	candles, err := LoadCSVFile(path, "ACC", "15m")
	require.NoError(t, err)
	require.Len(t, candles, 2, "duplicate timestamp should be dropped")

	assert.Equal(t, time.Date(2015, 2, 2, 9, 15, 0, 0, time.UTC), candles[0].Timestamp)
	assert.Equal(t, 1450.0, candles[0].Open)
	assert.Equal(t, 1455.0, candles[0].Close)
	assert.Equal(t, "ACC", candles[0].Symbol)
	assert.Equal(t, "csv", candles[0].Source)
	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))
}

func TestLoadCSVFileMalformedRow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	data := "Date,Open,High,Low,Close,Volume\n" +
		"not-a-date,1450.0,1460.0,1445.0,1455.0,12000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadCSVFile(path, "ACC", "15m")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestLoadDirectoryMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ACC-15minute.csv")
	data := "Date,Open,High,Low,Close,Volume\n" +
		"2015-02-02 09:15:00,1450.0,1460.0,1445.0,1455.0,12000\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	loaded, failed := LoadDirectory(dir, map[string]string{
		"ACC":      "ACC-15minute.csv",
		"ADANIENT": "ADANIENT-15minute.csv",
	}, "15m")

	assert.Len(t, loaded["ACC"], 1)
	assert.NotContains(t, loaded, "ADANIENT")
	assert.Error(t, failed["ADANIENT"])
}

func TestFilterRange(t *testing.T) {
	ts := time.Date(2015, 2, 2, 9, 15, 0, 0, time.UTC)
	var candles []Candle
	for i := 0; i < 5; i++ {
		candles = append(candles, mkCandle(ts.Add(time.Duration(i)*15*time.Minute), 100, 110, 95, 105, 100))
	}

	got := FilterRange(candles, ts.Add(15*time.Minute), ts.Add(45*time.Minute))
	assert.Len(t, got, 3)

	all := FilterRange(candles, time.Time{}, time.Time{})
	assert.Len(t, all, 5)
}
