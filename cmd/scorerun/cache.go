package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and refresh the bar cache",
	}
	cmd.AddCommand(newCacheListCmd(), newCacheRefreshCmd())
	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached symbols and their last refresh time",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cleanup, err := buildWiring()
			if err != nil {
				return err
			}
			defer cleanup()

			symbols, err := w.store.Symbols(cmd.Context())
			if err != nil {
				return err
			}
			if len(symbols) == 0 {
				fmt.Println("cache is empty")
				return nil
			}
			for _, sym := range symbols {
				fetched, err := w.store.LastRefresh(cmd.Context(), sym)
				if err != nil {
					return err
				}
				fmt.Printf("%-12s last refresh %s\n", sym, fetched.Format("2006-01-02 15:04 UTC"))
			}
			return nil
		},
	}
}

func newCacheRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [SYMBOL...]",
		Short: "Refresh cached symbols (all configured symbols when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, cleanup, err := buildWiring()
			if err != nil {
				return err
			}
			defer cleanup()

			symbols := args
			if len(symbols) == 0 {
				for _, pair := range w.cfg.Symbols() {
					symbols = append(symbols, pair.Symbol)
				}
			}

			var failed int
			for _, sym := range symbols {
				// Daily refreshes stale entries as a side effect.
				if _, err := w.source.Daily(cmd.Context(), sym); err != nil {
					failed++
					log.Warn().Err(err).Str("symbol", sym).Msg("refresh failed")
					continue
				}
				log.Info().Str("symbol", sym).Msg("refreshed")
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d symbols failed to refresh", failed, len(symbols))
			}
			return nil
		},
	}
}
