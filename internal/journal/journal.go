// Package journal defines the event records persisted alongside market
// data: data loads, signal generation, backtest runs, and errors.
package journal

import (
	"context"
	"time"
)

// Event represents a journaled event.
type Event struct {
	Time        time.Time      `json:"time"`
	Type        string         `json:"type"` // e.g. "load", "signal", "backtest", "error"
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

// Journaler interface for journaling events.
type Journaler interface {
	LogEvent(ctx context.Context, event Event) error
	GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error)
}
