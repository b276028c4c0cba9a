package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/quantjay/scorerun/internal/config"
	"github.com/quantjay/scorerun/internal/data"
	"github.com/quantjay/scorerun/internal/marketctx"
	"github.com/quantjay/scorerun/internal/profile"
	"github.com/quantjay/scorerun/internal/telemetry"
)

// wiring bundles the collaborators every subcommand needs.
type wiring struct {
	cfg     config.Config
	source  *data.Source
	store   *data.Store
	metrics *telemetry.Metrics
}

func buildWiring() (*wiring, func(), error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	// Profile tunings apply before any scoring starts.
	profile.Override(cfg.ProfileOverrides())

	store, err := data.OpenStore(cfg.Cache.Path, log.Logger)
	if err != nil {
		return nil, nil, err
	}
	fetcher := data.NewFetcher(cfg.Source.BaseURL, cfg.Source.RequestsPerSec,
		cfg.Source.Burst, time.Duration(cfg.Source.Timeout), log.Logger)
	source := data.NewSource(store, fetcher, log.Logger)

	w := &wiring{cfg: cfg, source: source, store: store, metrics: telemetry.NewMetrics()}

	var metricsSrv *telemetry.Server
	if flags.metricsAddr != "" {
		metricsSrv = telemetry.NewServer(flags.metricsAddr, w.metrics, log.Logger)
		go metricsSrv.Start()
	}

	cleanup := func() {
		if metricsSrv != nil {
			metricsSrv.Shutdown(context.Background())
		}
		store.Close()
	}
	return w, cleanup, nil
}

// marketContext builds the macro snapshot from the configured benchmark and
// volatility symbols. Returns nil (neutral) when context is disabled or the
// inputs cannot be fetched; a missing macro feed never blocks a scan.
func (w *wiring) marketContext(ctx context.Context) *marketctx.MarketContext {
	cc := w.cfg.Context
	if !cc.Enabled {
		return nil
	}

	index, err := w.source.Daily(ctx, cc.IndexSymbol)
	if err != nil {
		log.Warn().Err(err).Msg("market context unavailable, scoring neutral")
		return nil
	}
	gold, err := w.source.Daily(ctx, cc.GoldSymbol)
	if err != nil {
		log.Warn().Err(err).Msg("market context unavailable, scoring neutral")
		return nil
	}
	vol, err := w.source.Daily(ctx, cc.VolSymbol)
	if err != nil {
		log.Warn().Err(err).Msg("market context unavailable, scoring neutral")
		return nil
	}

	// Join the index and gold series by calendar date before dividing.
	goldByDate := make(map[string]float64, gold.Len())
	for _, b := range gold.Bars {
		goldByDate[b.Timestamp.Format("2006-01-02")] = b.Close
	}
	var ratio []float64
	for _, b := range index.Bars {
		if g, ok := goldByDate[b.Timestamp.Format("2006-01-02")]; ok && g > 0 {
			ratio = append(ratio, b.Close/g)
		}
	}

	snapshot := marketctx.Compute(ratio, vol.Closes())
	log.Debug().
		Str("rs_trend", string(snapshot.RelativeStrengthTrend)).
		Str("vol_level", string(snapshot.VolatilityLevel)).
		Float64("adjustment", snapshot.AdditiveAdjustment).
		Msg("market context computed")
	return &snapshot
}

// wantJSON reports whether output should be JSON: forced by --json, or
// stdout is not a terminal.
func wantJSON() bool {
	if flags.jsonOut {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}
