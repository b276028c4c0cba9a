package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quantjay/scorerun/internal/config"
	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/report"
	"github.com/quantjay/scorerun/internal/scoring"
)

func newScanCmd() *cobra.Command {
	var timeframe, category string
	var parallelism int

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Score the configured symbol universe",
		Long:  "Scores every symbol in the configured universe (or one category of it) and prints a ranked table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := market.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}

			w, cleanup, err := buildWiring()
			if err != nil {
				return err
			}
			defer cleanup()

			pairs := w.cfg.Symbols()
			if category != "" {
				filtered := pairs[:0]
				for _, p := range pairs {
					if p.Category == category {
						filtered = append(filtered, p)
					}
				}
				pairs = filtered
			}
			if len(pairs) == 0 {
				return fmt.Errorf("no symbols configured for category %q", category)
			}

			started := time.Now()
			rows, err := scanSymbols(cmd.Context(), w, pairs, tf, parallelism)
			if err != nil {
				return err
			}
			w.metrics.ScanDuration.Observe(time.Since(started).Seconds())

			if wantJSON() {
				return report.WriteJSON(os.Stdout, rows)
			}
			report.WriteTable(os.Stdout, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", "1W", "bar timeframe (2D|1W|2W|1M)")
	cmd.Flags().StringVar(&category, "category", "", "limit the scan to one category")
	cmd.Flags().IntVar(&parallelism, "parallelism", 4, "concurrent symbols")
	return cmd
}

// scanSymbols scores all pairs concurrently. Symbols whose data cannot be
// fetched are logged and dropped; one dead ticker must not kill the scan.
func scanSymbols(ctx context.Context, w *wiring, pairs []config.CategorySymbol, tf market.Timeframe, parallelism int) ([]report.ScoredSymbol, error) {
	engine := scoring.NewEngine()
	mktCtx := w.marketContext(ctx)

	var mu sync.Mutex
	var rows []report.ScoredSymbol

	g, gctx := errgroup.WithContext(ctx)
	if parallelism < 1 {
		parallelism = 1
	}
	g.SetLimit(parallelism)

	for _, pair := range pairs {
		pair := pair
		g.Go(func() error {
			series, err := w.source.Resampled(gctx, pair.Symbol, tf)
			if err != nil {
				w.metrics.FetchErrors.WithLabelValues(pair.Symbol).Inc()
				log.Warn().Err(err).Str("symbol", pair.Symbol).Msg("symbol skipped")
				return nil
			}

			res := engine.Score(series, pair.Category, tf, mktCtx)
			w.metrics.ObserveScore(pair.Category, string(res.Regime), res.Score)

			mu.Lock()
			rows = append(rows, report.ScoredSymbol{
				Symbol:   pair.Symbol,
				Category: pair.Category,
				Result:   res,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return rows, nil
}
