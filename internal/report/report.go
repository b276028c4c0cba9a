// Package report renders scan and backtest output: terminal tables for
// humans, JSON for pipelines, and an HTML chart for backtest score history.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/quantjay/scorerun/internal/backtest"
	"github.com/quantjay/scorerun/internal/scoring"
)

// ScoredSymbol pairs a symbol with its scoring result for tabulation.
type ScoredSymbol struct {
	Symbol   string              `json:"symbol"`
	Category string              `json:"category"`
	Result   scoring.ScoreResult `json:"result"`
}

// WriteTable renders scored symbols as a terminal table, highest score first.
func WriteTable(w io.Writer, rows []ScoredSymbol) {
	sorted := make([]ScoredSymbol, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Result.Score > sorted[j].Result.Score
	})

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Symbol", "Category", "Score", "Regime", "Top Signals"})
	for _, r := range sorted {
		t.AppendRow(table.Row{
			r.Symbol,
			r.Category,
			fmt.Sprintf("%.2f", r.Result.Score),
			string(r.Result.Regime),
			topSignals(r.Result.Breakdown, 3),
		})
	}
	t.Render()
}

// topSignals names the n largest positive contributions.
func topSignals(l scoring.Ledger, n int) string {
	entries := l.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	var parts []string
	for _, e := range entries {
		if e.Value <= 0 || len(parts) == n {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %.1f", e.Name, e.Value))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// WriteJSON encodes scored symbols as indented JSON, sorted like the table.
func WriteJSON(w io.Writer, rows []ScoredSymbol) error {
	sorted := make([]ScoredSymbol, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Result.Score > sorted[j].Result.Score
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sorted); err != nil {
		return fmt.Errorf("encode scan report: %w", err)
	}
	return nil
}

// WriteBacktestTable renders the per-bucket statistics of a run.
func WriteBacktestTable(w io.Writer, result backtest.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("Backtest %s (%s, %s)", result.RunID, result.Category, result.Timeframe))
	t.AppendHeader(table.Row{"Score Band", "Samples", "Hit Rate", "Mean Fwd Return"})
	for _, b := range result.Buckets {
		t.AppendRow(table.Row{
			b.Label,
			b.Count,
			fmt.Sprintf("%.0f%%", b.HitRate*100),
			fmt.Sprintf("%+.2f%%", b.MeanReturnPct),
		})
	}
	t.AppendFooter(table.Row{"total", len(result.Samples), "", fmt.Sprintf("skipped %d", result.Skipped)})
	t.Render()
}
