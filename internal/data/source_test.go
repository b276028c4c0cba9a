package data

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantjay/scorerun/internal/market"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "bars.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testBars(n int) []market.Bar {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		price := 50 + float64(i)
		bars[i] = market.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    500,
		}
	}
	return bars
}

type fakeFetcher struct {
	bars  []market.Bar
	err   error
	calls int
}

func (f *fakeFetcher) Daily(context.Context, string) ([]market.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func TestStorePutAndBarsRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	bars := testBars(5)

	require.NoError(t, store.Put(ctx, "SPY", bars, time.Now().UTC()))

	series, err := store.Bars(ctx, "SPY")
	require.NoError(t, err)
	require.Equal(t, 5, series.Len())
	assert.NoError(t, series.Validate())
	assert.Equal(t, bars[0].Close, series.Bars[0].Close)
}

func TestStorePutIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	bars := testBars(5)

	require.NoError(t, store.Put(ctx, "SPY", bars, time.Now().UTC()))
	bars[2].Close = 999
	require.NoError(t, store.Put(ctx, "SPY", bars, time.Now().UTC()))

	series, err := store.Bars(ctx, "SPY")
	require.NoError(t, err)
	require.Equal(t, 5, series.Len())
	assert.Equal(t, 999.0, series.Bars[2].Close)
}

func TestLastRefreshZeroWhenNeverFetched(t *testing.T) {
	store := testStore(t)
	fetched, err := store.LastRefresh(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.True(t, fetched.IsZero())
}

func TestLastCutoff(t *testing.T) {
	// Wednesday 2024-03-13 → previous Sunday 2024-03-10 16:00 UTC.
	wed := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC), lastCutoff(wed))

	// Sunday morning, before the cutoff hour → previous week's Sunday.
	sunAM := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 3, 16, 0, 0, 0, time.UTC), lastCutoff(sunAM))

	// Sunday evening, past the cutoff → same day.
	sunPM := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC), lastCutoff(sunPM))
}

func TestStale(t *testing.T) {
	now := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)

	assert.True(t, stale(time.Time{}, now))
	assert.True(t, stale(time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), now))   // before Sunday cutoff
	assert.False(t, stale(time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC), now)) // after cutoff
}

func TestSourceRefreshesStaleCache(t *testing.T) {
	store := testStore(t)
	fake := &fakeFetcher{bars: testBars(10)}
	src := &Source{store: store, fetcher: fake, log: zerolog.Nop()}
	src.now = func() time.Time { return time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC) }

	series, err := src.Daily(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 10, series.Len())
	assert.Equal(t, 1, fake.calls)

	// Second call inside the same week serves the cache.
	_, err = src.Daily(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestSourceFallsBackToCacheOnFetchError(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "SPY", testBars(10),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))) // stale stamp

	fake := &fakeFetcher{err: errors.New("boom")}
	src := &Source{store: store, fetcher: fake, log: zerolog.Nop()}
	src.now = func() time.Time { return time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC) }

	series, err := src.Daily(ctx, "SPY")
	require.NoError(t, err)
	assert.Equal(t, 10, series.Len())
	assert.Equal(t, 1, fake.calls)
}

func TestSourceErrorsWhenEmptyAndFetchFails(t *testing.T) {
	store := testStore(t)
	fake := &fakeFetcher{err: errors.New("boom")}
	src := &Source{store: store, fetcher: fake, log: zerolog.Nop()}
	src.now = time.Now

	_, err := src.Daily(context.Background(), "SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh failed")
}

func TestParseCSVSkipsMalformedRows(t *testing.T) {
	f := NewFetcher("http://example.invalid", 1, 1, time.Second, zerolog.Nop())
	doc := strings.Join([]string{
		"Date,Open,High,Low,Close,Volume",
		"2024-01-02,100,101,99,100.5,1200",
		"not-a-date,1,2,3,4,5",
		"2024-01-03,100.5,102,not-a-number,101,1100",
		"2024-01-04,101,103,100,102,900",
	}, "\n")

	bars, err := f.parseCSV(strings.NewReader(doc), "SPY")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
}
