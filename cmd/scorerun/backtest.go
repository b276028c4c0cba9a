package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantjay/scorerun/internal/backtest"
	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/report"
	"github.com/quantjay/scorerun/internal/scoring"
)

func newBacktestCmd() *cobra.Command {
	var timeframe, category, outDir, chartPath string
	var stride, horizon, parallelism int

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the scorer over history and bucket forward returns",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := market.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}
			if category == "" {
				return fmt.Errorf("--category is required")
			}

			w, cleanup, err := buildWiring()
			if err != nil {
				return err
			}
			defer cleanup()

			group, ok := w.cfg.Universe[category]
			if !ok || len(group.Symbols) == 0 {
				return fmt.Errorf("no symbols configured for category %q", category)
			}

			series := make(map[string]market.Series, len(group.Symbols))
			for _, sym := range group.Symbols {
				s, err := w.source.Resampled(cmd.Context(), sym, tf)
				if err != nil {
					w.metrics.FetchErrors.WithLabelValues(sym).Inc()
					log.Warn().Err(err).Str("symbol", sym).Msg("symbol skipped")
					continue
				}
				series[sym] = s
			}
			if len(series) == 0 {
				return fmt.Errorf("no data available for category %q", category)
			}

			runner := backtest.NewRunner(backtest.Config{
				Timeframe:   tf,
				Stride:      stride,
				Horizon:     horizon,
				Parallelism: parallelism,
			}, scoring.NewEngine(), log.Logger)

			result, err := runner.Run(cmd.Context(), category, series, w.marketContext(cmd.Context()))
			if err != nil {
				return err
			}

			path, err := runner.WriteArtifact(result, outDir)
			if err != nil {
				return err
			}
			log.Info().Str("artifact", path).Msg("backtest artifact written")

			if chartPath != "" {
				f, err := os.Create(chartPath)
				if err != nil {
					return fmt.Errorf("create chart %s: %w", chartPath, err)
				}
				defer f.Close()
				if err := report.WriteScoreChart(f, result); err != nil {
					return err
				}
			}

			report.WriteBacktestTable(os.Stdout, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", "1W", "bar timeframe (2D|1W|2W|1M)")
	cmd.Flags().StringVar(&category, "category", "", "category to replay")
	cmd.Flags().StringVar(&outDir, "out", "artifacts", "directory for the JSON artifact")
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write an HTML score chart here")
	cmd.Flags().IntVar(&stride, "stride", 0, "bars between evaluations (0 = default)")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "forward-return horizon in bars (0 = default)")
	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "concurrent symbols")
	return cmd
}
