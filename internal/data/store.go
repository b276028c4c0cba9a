// Package data supplies daily bar series for the screener: an embedded sqlite
// cache fronting a rate-limited HTTP CSV source. The scoring engine never
// touches this package; it receives finished market.Series values.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/quantjay/scorerun/internal/market"
)

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	symbol  TEXT NOT NULL,
	ts      TIMESTAMP NOT NULL,
	open    REAL NOT NULL,
	high    REAL NOT NULL,
	low     REAL NOT NULL,
	close   REAL NOT NULL,
	volume  REAL NOT NULL,
	PRIMARY KEY (symbol, ts)
);
CREATE TABLE IF NOT EXISTS refreshes (
	symbol     TEXT PRIMARY KEY,
	fetched_at TIMESTAMP NOT NULL
);
`

// Store is the on-disk daily bar cache.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// OpenStore opens (and if needed initializes) the sqlite cache at path.
func OpenStore(path string, log zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open bar cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize bar cache %s: %w", path, err)
	}
	return &Store{db: db, log: log.With().Str("component", "barstore").Logger()}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Bars loads the full cached daily history for symbol, oldest first.
func (s *Store) Bars(ctx context.Context, symbol string) (market.Series, error) {
	var bars []market.Bar
	err := s.db.SelectContext(ctx, &bars,
		`SELECT ts, open, high, low, close, volume FROM bars WHERE symbol = ? ORDER BY ts ASC`,
		symbol)
	if err != nil {
		return market.Series{}, fmt.Errorf("load bars for %s: %w", symbol, err)
	}
	return market.Series{Symbol: symbol, Bars: bars}, nil
}

// Put upserts a batch of daily bars for symbol and stamps the refresh time.
func (s *Store) Put(ctx context.Context, symbol string, bars []market.Bar, fetchedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bar upsert for %s: %w", symbol, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bars (symbol, ts, open, high, low, close, volume)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (symbol, ts) DO UPDATE SET
		 open=excluded.open, high=excluded.high, low=excluded.low,
		 close=excluded.close, volume=excluded.volume`)
	if err != nil {
		return fmt.Errorf("prepare bar upsert for %s: %w", symbol, err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, b.Timestamp, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return fmt.Errorf("upsert bar %s @ %s: %w", symbol, b.Timestamp, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO refreshes (symbol, fetched_at) VALUES (?, ?)
		 ON CONFLICT (symbol) DO UPDATE SET fetched_at=excluded.fetched_at`,
		symbol, fetchedAt); err != nil {
		return fmt.Errorf("stamp refresh for %s: %w", symbol, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bar upsert for %s: %w", symbol, err)
	}
	s.log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("cache updated")
	return nil
}

// LastRefresh returns when symbol was last fetched, or the zero time when it
// never was.
func (s *Store) LastRefresh(ctx context.Context, symbol string) (time.Time, error) {
	var fetched []time.Time
	err := s.db.SelectContext(ctx, &fetched,
		`SELECT fetched_at FROM refreshes WHERE symbol = ?`, symbol)
	if err != nil {
		return time.Time{}, fmt.Errorf("load refresh time for %s: %w", symbol, err)
	}
	if len(fetched) == 0 {
		return time.Time{}, nil
	}
	return fetched[0], nil
}

// Symbols lists every symbol present in the cache.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	var out []string
	if err := s.db.SelectContext(ctx, &out,
		`SELECT DISTINCT symbol FROM bars ORDER BY symbol`); err != nil {
		return nil, fmt.Errorf("list cached symbols: %w", err)
	}
	return out, nil
}
