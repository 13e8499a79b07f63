// Package candle
package candle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

// barDTO mirrors one row of a historical data file. Columns are matched
// case-insensitively against Date,Open,High,Low,Close,Volume.
type barDTO struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

func init() {
	gocsv.SetHeaderNormalizer(strings.ToLower)
}

// dateLayouts lists the timestamp formats seen in exported bar files.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseBarTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// LoadCSVFile reads one symbol's bar file and returns its candles sorted
// ascending with duplicate timestamps dropped.
func LoadCSVFile(path, symbol, timeframe string) ([]Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bar file for %s: %w", symbol, err)
	}
	defer f.Close()

	var rows []barDTO
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	candles := make([]Candle, 0, len(rows))
	for i, row := range rows {
		ts, err := parseBarTime(row.Date)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+2, err)
		}
		c := Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
			Symbol:    symbol,
			Timeframe: timeframe,
			Source:    "csv",
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+2, err)
		}
		candles = append(candles, c)
	}

	SortByTimestamp(candles)

	// Keep the first occurrence of each timestamp.
	deduped := candles[:0]
	var prev time.Time
	for i, c := range candles {
		if i > 0 && c.Timestamp.Equal(prev) {
			continue
		}
		deduped = append(deduped, c)
		prev = c.Timestamp
	}
	if len(deduped) < len(candles) {
		log.WithFields(log.Fields{
			"symbol":  symbol,
			"dropped": len(candles) - len(deduped),
		}).Warn("Dropped duplicate bars")
	}

	return deduped, nil
}

// LoadDirectory loads the bar file of every configured symbol. A missing or
// malformed file fails only that symbol; the returned error map is keyed by
// symbol so callers can surface per-symbol failures.
func LoadDirectory(dataDir string, files map[string]string, timeframe string) (map[string][]Candle, map[string]error) {
	loaded := make(map[string][]Candle, len(files))
	failed := make(map[string]error)

	for symbol, file := range files {
		path := filepath.Join(dataDir, file)
		candles, err := LoadCSVFile(path, symbol, timeframe)
		if err != nil {
			log.WithFields(log.Fields{"symbol": symbol, "path": path}).WithError(err).Error("Failed to load bar file")
			failed[symbol] = err
			continue
		}
		log.WithFields(log.Fields{"symbol": symbol, "bars": len(candles)}).Info("Loaded bar file")
		loaded[symbol] = candles
	}
	return loaded, failed
}
