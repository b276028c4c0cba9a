package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/report"
	"github.com/quantjay/scorerun/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	var category, timeframe string

	cmd := &cobra.Command{
		Use:   "score SYMBOL",
		Short: "Score one symbol at one timeframe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := args[0]
			tf, err := market.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}

			w, cleanup, err := buildWiring()
			if err != nil {
				return err
			}
			defer cleanup()

			series, err := w.source.Resampled(cmd.Context(), symbol, tf)
			if err != nil {
				return err
			}

			engine := scoring.NewEngine()
			res := engine.Score(series, category, tf, w.marketContext(cmd.Context()))
			w.metrics.ObserveScore(category, string(res.Regime), res.Score)

			if wantJSON() {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Printf("%s (%s, %s)\n", symbol, category, tf)
			report.WriteTable(os.Stdout, []report.ScoredSymbol{
				{Symbol: symbol, Category: category, Result: res},
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "default", "category profile to score under")
	cmd.Flags().StringVar(&timeframe, "timeframe", "1W", "bar timeframe (2D|1W|2W|1M)")
	return cmd
}
