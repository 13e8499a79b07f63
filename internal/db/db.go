// Package db provides candle and event storage. The in-memory store
// backs the dashboard; Postgres is an optional warm cache so repeated
// runs skip the CSV parse.
package db

import (
	"context"
	"time"

	"github.com/adani-quant/trading-dashboard/internal/candle"
	"github.com/adani-quant/trading-dashboard/internal/journal"
)

// Storage is the interface both stores implement. Event persistence is
// the journal.Journaler contract.
type Storage interface {
	SaveCandles(ctx context.Context, candles []candle.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe, source string, start, end time.Time) ([]candle.Candle, error)
	GetLatestCandle(ctx context.Context, symbol, timeframe string) (*candle.Candle, error)
	GetCandleCount(ctx context.Context, symbol, timeframe string, start, end time.Time) (int, error)

	journal.Journaler

	Close() error
}
