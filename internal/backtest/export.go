package backtest

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

type tradeRow struct {
	Number      int     `csv:"trade"`
	Symbol      string  `csv:"symbol"`
	Strategy    string  `csv:"strategy"`
	EntryTime   string  `csv:"entry_time"`
	EntryPrice  float64 `csv:"entry_price"`
	ExitTime    string  `csv:"exit_time"`
	ExitPrice   float64 `csv:"exit_price"`
	ReturnPct   float64 `csv:"return_pct"`
	HoldingDays int     `csv:"holding_days"`
	ExitReason  string  `csv:"exit_reason"`
}

type equityRow struct {
	Date     string  `csv:"date"`
	Equity   float64 `csv:"equity"`
	Drawdown float64 `csv:"drawdown_pct"`
}

// ExportTradesCSV writes the trade log to a CSV file.
func ExportTradesCSV(path string, r *Result) error {
	rows := make([]tradeRow, 0, len(r.Trades))
	for i, t := range r.Trades {
		rows = append(rows, tradeRow{
			Number:      i + 1,
			Symbol:      t.Symbol,
			Strategy:    t.Strategy,
			EntryTime:   t.EntryTime.Format("2006-01-02 15:04:05"),
			EntryPrice:  t.EntryPrice,
			ExitTime:    t.ExitTime.Format("2006-01-02 15:04:05"),
			ExitPrice:   t.ExitPrice,
			ReturnPct:   t.ReturnPct,
			HoldingDays: t.HoldingDays,
			ExitReason:  t.ExitReason,
		})
	}
	return writeCSV(path, &rows)
}

// ExportEquityCSV writes the equity and drawdown curves to a CSV file.
func ExportEquityCSV(path string, r *Result) error {
	rows := make([]equityRow, 0, len(r.Equity))
	for i := range r.Equity {
		rows = append(rows, equityRow{
			Date:     r.Timestamps[i].Format("2006-01-02 15:04:05"),
			Equity:   r.Equity[i],
			Drawdown: r.Drawdown[i],
		})
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	log.WithField("path", path).Info("exported results")
	return nil
}
