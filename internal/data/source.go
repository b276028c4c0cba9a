package data

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantjay/scorerun/internal/market"
)

// weeklyCloseCutoff is the weekly refresh boundary: Sunday 16:00 UTC. A cache
// entry fetched after the most recent cutoff is considered current.
const (
	cutoffWeekday = time.Sunday
	cutoffHourUTC = 16
)

// dailyFetcher is the piece of Fetcher the source needs; tests substitute it.
type dailyFetcher interface {
	Daily(ctx context.Context, symbol string) ([]market.Bar, error)
}

// Source serves daily series from the cache, refreshing from the fetcher when
// the cached copy predates the most recent weekly close.
type Source struct {
	store   *Store
	fetcher dailyFetcher
	now     func() time.Time
	log     zerolog.Logger
}

// NewSource wires the cache and the fetcher together.
func NewSource(store *Store, fetcher *Fetcher, log zerolog.Logger) *Source {
	return &Source{
		store:   store,
		fetcher: fetcher,
		now:     time.Now,
		log:     log.With().Str("component", "barsource").Logger(),
	}
}

// Daily returns the daily series for symbol, refreshing the cache first when
// it is stale. A refresh failure falls back to the cached copy when one
// exists, so a flaky source degrades instead of blanking the scan.
func (s *Source) Daily(ctx context.Context, symbol string) (market.Series, error) {
	fetched, err := s.store.LastRefresh(ctx, symbol)
	if err != nil {
		return market.Series{}, err
	}

	if stale(fetched, s.now()) {
		bars, ferr := s.fetcher.Daily(ctx, symbol)
		switch {
		case ferr == nil:
			if err := s.store.Put(ctx, symbol, bars, s.now()); err != nil {
				return market.Series{}, err
			}
		case fetched.IsZero():
			return market.Series{}, fmt.Errorf("no cached bars for %s and refresh failed: %w", symbol, ferr)
		default:
			s.log.Warn().Err(ferr).Str("symbol", symbol).Msg("refresh failed, serving cached bars")
		}
	}

	series, err := s.store.Bars(ctx, symbol)
	if err != nil {
		return market.Series{}, err
	}
	if err := series.Validate(); err != nil {
		return market.Series{}, fmt.Errorf("cached series invalid: %w", err)
	}
	return series, nil
}

// Resampled returns the series for symbol resampled to tf.
func (s *Source) Resampled(ctx context.Context, symbol string, tf market.Timeframe) (market.Series, error) {
	daily, err := s.Daily(ctx, symbol)
	if err != nil {
		return market.Series{}, err
	}
	return market.Resample(daily, tf), nil
}

// stale reports whether a cache stamped at fetched needs refreshing at now:
// it does when fetched falls before the most recent Sunday 16:00 UTC cutoff.
func stale(fetched, now time.Time) bool {
	if fetched.IsZero() {
		return true
	}
	return fetched.Before(lastCutoff(now))
}

// lastCutoff returns the most recent Sunday 16:00 UTC at or before now.
func lastCutoff(now time.Time) time.Time {
	now = now.UTC()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), cutoffHourUTC, 0, 0, 0, time.UTC)
	daysBack := int(now.Weekday() - cutoffWeekday)
	if daysBack < 0 {
		daysBack += 7
	}
	cutoff = cutoff.AddDate(0, 0, -daysBack)
	if cutoff.After(now) {
		cutoff = cutoff.AddDate(0, 0, -7)
	}
	return cutoff
}
