package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/quantjay/scorerun/internal/backtest"
)

// WriteScoreChart renders an HTML line chart of score history per symbol from
// a backtest run.
func WriteScoreChart(w io.Writer, result backtest.RunResult) error {
	bySymbol := map[string][]backtest.Sample{}
	for _, s := range result.Samples {
		bySymbol[s.Symbol] = append(bySymbol[s.Symbol], s)
	}
	symbols := make([]string, 0, len(bySymbol))
	for sym := range bySymbol {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	// Shared x axis: every evaluation date seen in the run, in order.
	dateSet := map[string]struct{}{}
	for _, s := range result.Samples {
		dateSet[s.At.Format("2006-01-02")] = struct{}{}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Score history",
			Subtitle: fmt.Sprintf("%s · %s · run %s", result.Category, result.Timeframe, result.RunID),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(dates)

	for _, sym := range symbols {
		byDate := map[string]float64{}
		for _, s := range bySymbol[sym] {
			byDate[s.At.Format("2006-01-02")] = s.Score
		}
		points := make([]opts.LineData, len(dates))
		for i, d := range dates {
			if v, ok := byDate[d]; ok {
				points[i] = opts.LineData{Value: v}
			} else {
				points[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(sym, points)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render score chart: %w", err)
	}
	return nil
}
