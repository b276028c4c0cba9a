// Package backtest replays the scoring engine across historical windows and
// aggregates forward-return statistics by score bucket. It answers one
// question: did high scores actually precede positive forward returns.
package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/marketctx"
	"github.com/quantjay/scorerun/internal/scoring"
)

// Config controls a backtest run.
type Config struct {
	Timeframe   market.Timeframe
	Stride      int // bars between evaluation points
	Horizon     int // bars to measure forward return over
	MinWindow   int // bars of history before the first evaluation
	Parallelism int // concurrent symbols
}

// DefaultConfig returns the standard weekly replay settings.
func DefaultConfig() Config {
	return Config{
		Timeframe:   market.Timeframe1W,
		Stride:      4,
		Horizon:     8,
		MinWindow:   scoring.MinBars + 30,
		Parallelism: 4,
	}
}

// Sample is one historical scoring observation with its realized outcome.
type Sample struct {
	Symbol       string         `json:"symbol"`
	At           time.Time      `json:"at"`
	Score        float64        `json:"score"`
	Regime       scoring.Regime `json:"regime"`
	FwdReturnPct float64        `json:"fwd_return_pct"`
}

// BucketStat aggregates samples whose scores fall in one band.
type BucketStat struct {
	Label         string  `json:"label"`
	Count         int     `json:"count"`
	HitRate       float64 `json:"hit_rate"`
	MeanReturnPct float64 `json:"mean_return_pct"`
}

// RunResult is the full outcome of one backtest run.
type RunResult struct {
	RunID     string       `json:"run_id"`
	Category  string       `json:"category"`
	Timeframe string       `json:"timeframe"`
	Started   time.Time    `json:"started"`
	Skipped   int          `json:"skipped"`
	Samples   []Sample     `json:"samples"`
	Buckets   []BucketStat `json:"buckets"`
}

// Runner replays the engine. Safe for one run at a time per Runner.
type Runner struct {
	cfg    Config
	engine *scoring.Engine
	log    zerolog.Logger
}

// NewRunner builds a runner; zero or negative config fields fall back to the
// defaults.
func NewRunner(cfg Config, engine *scoring.Engine, log zerolog.Logger) *Runner {
	def := DefaultConfig()
	if cfg.Stride <= 0 {
		cfg.Stride = def.Stride
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = def.Horizon
	}
	if cfg.MinWindow < scoring.MinBars {
		cfg.MinWindow = def.MinWindow
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = def.Timeframe
	}
	return &Runner{cfg: cfg, engine: engine, log: log.With().Str("component", "backtest").Logger()}
}

// Run replays every series in parallel and aggregates the outcome. Series too
// short for even one evaluation are counted as skipped, never errors.
func (r *Runner) Run(ctx context.Context, category string, series map[string]market.Series, mktCtx *marketctx.MarketContext) (RunResult, error) {
	result := RunResult{
		RunID:     uuid.NewString(),
		Category:  category,
		Timeframe: string(r.cfg.Timeframe),
		Started:   time.Now().UTC(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)

	for symbol, s := range series {
		symbol, s := symbol, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			samples := r.replay(symbol, category, s, mktCtx)
			mu.Lock()
			if samples == nil {
				result.Skipped++
			} else {
				result.Samples = append(result.Samples, samples...)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunResult{}, fmt.Errorf("backtest %s: %w", category, err)
	}

	// Deterministic artifact: samples ordered by symbol then time.
	sort.Slice(result.Samples, func(i, j int) bool {
		if result.Samples[i].Symbol != result.Samples[j].Symbol {
			return result.Samples[i].Symbol < result.Samples[j].Symbol
		}
		return result.Samples[i].At.Before(result.Samples[j].At)
	})
	result.Buckets = bucketize(result.Samples)

	r.log.Info().
		Str("run_id", result.RunID).
		Int("samples", len(result.Samples)).
		Int("skipped", result.Skipped).
		Msg("backtest complete")
	return result, nil
}

// replay scores one symbol at each evaluation point. Returns nil when the
// series cannot host a single evaluation.
func (r *Runner) replay(symbol, category string, s market.Series, mktCtx *marketctx.MarketContext) []Sample {
	if s.Len() < r.cfg.MinWindow+r.cfg.Horizon {
		return nil
	}

	var samples []Sample
	for end := r.cfg.MinWindow; end+r.cfg.Horizon <= s.Len(); end += r.cfg.Stride {
		window := market.Series{Symbol: s.Symbol, Bars: s.Bars[:end]}
		res := r.engine.Score(window, category, r.cfg.Timeframe, mktCtx)

		entry := s.Bars[end-1].Close
		exit := s.Bars[end+r.cfg.Horizon-1].Close
		if entry <= 0 {
			continue
		}
		samples = append(samples, Sample{
			Symbol:       symbol,
			At:           s.Bars[end-1].Timestamp,
			Score:        res.Score,
			Regime:       res.Regime,
			FwdReturnPct: (exit/entry - 1) * 100,
		})
	}
	if samples == nil {
		return []Sample{}
	}
	return samples
}

// scoreBuckets are the aggregation bands, lowest first.
var scoreBuckets = []struct {
	label string
	min   float64
}{
	{"<0", -1e18},
	{"0-5", 0},
	{"5-10", 5},
	{"10-15", 10},
	{">=15", 15},
}

func bucketize(samples []Sample) []BucketStat {
	stats := make([]BucketStat, len(scoreBuckets))
	sums := make([]float64, len(scoreBuckets))
	hits := make([]int, len(scoreBuckets))
	for i := range stats {
		stats[i].Label = scoreBuckets[i].label
	}

	for _, s := range samples {
		idx := 0
		for i := len(scoreBuckets) - 1; i >= 0; i-- {
			if s.Score >= scoreBuckets[i].min {
				idx = i
				break
			}
		}
		stats[idx].Count++
		sums[idx] += s.FwdReturnPct
		if s.FwdReturnPct > 0 {
			hits[idx]++
		}
	}

	for i := range stats {
		if stats[i].Count > 0 {
			stats[i].MeanReturnPct = sums[i] / float64(stats[i].Count)
			stats[i].HitRate = float64(hits[i]) / float64(stats[i].Count)
		}
	}
	return stats
}

// WriteArtifact persists the run as JSON under dir, named by its run ID.
func (r *Runner) WriteArtifact(result RunResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("backtest_%s.json", result.RunID))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode backtest artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backtest artifact %s: %w", path, err)
	}
	return path, nil
}
