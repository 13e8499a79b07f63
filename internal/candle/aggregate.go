// Package candle
package candle

import (
	"fmt"
	"sort"
	"time"

	"github.com/adani-quant/trading-dashboard/internal/tfutils"
)

// Aggregate aggregates candles to a higher timeframe. Session gaps are
// allowed: equity markets do not trade around the clock, so buckets are
// formed from whatever bars fall inside them.
func Aggregate(candles []Candle, timeframe string) ([]Candle, error) {
	if len(candles) == 0 {
		return nil, nil
	}

	dur, err := tfutils.ParseTimeframe(timeframe)
	if err != nil {
		return nil, fmt.Errorf("invalid timeframe %s: %w", timeframe, err)
	}

	first := candles[0]
	srcDur, err := tfutils.ParseTimeframe(first.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("invalid source timeframe %s: %w", first.Timeframe, err)
	}
	if srcDur >= dur {
		return nil, fmt.Errorf("source timeframe %s must be smaller than target %s", first.Timeframe, timeframe)
	}

	sorted := make([]Candle, len(candles))
	copy(sorted, candles)
	SortByTimestamp(sorted)

	buckets := make(map[time.Time][]Candle)
	for i, c := range sorted {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid candle at index %d: %w", i, err)
		}
		if c.Symbol != first.Symbol {
			return nil, fmt.Errorf("candle at index %d has different symbol: %s, expected: %s", i, c.Symbol, first.Symbol)
		}
		if c.Timeframe != first.Timeframe {
			return nil, fmt.Errorf("candle at index %d has different timeframe: %s, expected: %s", i, c.Timeframe, first.Timeframe)
		}
		bucket := c.Timestamp.Truncate(dur)
		buckets[bucket] = append(buckets[bucket], c)
	}

	result := make([]Candle, 0, len(buckets))
	for bucket, group := range buckets {
		agg := Candle{
			Timestamp: bucket,
			Open:      group[0].Open,
			High:      group[0].High,
			Low:       group[0].Low,
			Close:     group[len(group)-1].Close,
			Symbol:    first.Symbol,
			Timeframe: timeframe,
			Source:    "aggregated",
		}
		for _, c := range group {
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Volume += c.Volume
		}
		result = append(result, agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
