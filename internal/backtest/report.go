package backtest

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteSummaryTable renders the headline metrics of each result as a
// text table, one row per symbol.
func WriteSummaryTable(w io.Writer, results []*Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Symbol", "Strategy", "Trades", "Win Rate", "Total Return",
		"Annualized", "Sharpe", "Max Drawdown", "Profit Factor",
	})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, r := range results {
		table.Append([]string{
			r.Symbol,
			r.Strategy,
			fmt.Sprintf("%d", r.Summary.Trades),
			fmt.Sprintf("%.2f%%", r.Summary.WinRatePct),
			fmt.Sprintf("%.2f%%", r.Summary.TotalReturnPct),
			fmt.Sprintf("%.2f%%", r.Summary.AnnualizedReturnPct),
			fmt.Sprintf("%.2f", r.Summary.SharpeRatio),
			fmt.Sprintf("%.2f%%", r.Summary.MaxDrawdownPct),
			fmt.Sprintf("%.2f", r.Summary.ProfitFactor),
		})
	}
	table.Render()
}

// WriteTradesTable renders the trade log of one result.
func WriteTradesTable(w io.Writer, r *Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"#", "Entry Time", "Entry", "Exit Time", "Exit", "Return", "Days", "Exit Reason",
	})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, t := range r.Trades {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			t.EntryTime.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.EntryPrice),
			t.ExitTime.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.ExitPrice),
			fmt.Sprintf("%.2f%%", t.ReturnPct),
			fmt.Sprintf("%d", t.HoldingDays),
			t.ExitReason,
		})
	}
	table.Render()
}
