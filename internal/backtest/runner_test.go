package backtest

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/scoring"
)

func risingSeries(symbol string, n int) market.Series {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		price := 100 + float64(i)*0.5
		bars[i] = market.Bar{
			Timestamp: start.AddDate(0, 0, 7*i),
			Open:      price,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1000,
		}
	}
	return market.Series{Symbol: symbol, Bars: bars}
}

func TestRunProducesSamplesAndBuckets(t *testing.T) {
	r := NewRunner(Config{Stride: 10, Horizon: 5, MinWindow: 60, Parallelism: 2},
		scoring.NewEngine(), zerolog.Nop())

	series := map[string]market.Series{
		"AAA": risingSeries("AAA", 150),
		"BBB": risingSeries("BBB", 150),
	}
	result, err := r.Run(context.Background(), "default", series, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "default", result.Category)
	assert.Zero(t, result.Skipped)
	require.NotEmpty(t, result.Samples)

	// Rising series: every forward return is positive.
	for _, s := range result.Samples {
		assert.Greater(t, s.FwdReturnPct, 0.0)
	}

	var counted int
	for _, b := range result.Buckets {
		counted += b.Count
		if b.Count > 0 {
			assert.Equal(t, 1.0, b.HitRate)
		}
	}
	assert.Equal(t, len(result.Samples), counted)
}

func TestRunSkipsShortSeries(t *testing.T) {
	r := NewRunner(DefaultConfig(), scoring.NewEngine(), zerolog.Nop())

	result, err := r.Run(context.Background(), "default",
		map[string]market.Series{"TINY": risingSeries("TINY", 20)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Samples)
}

func TestRunDeterministicSampleOrder(t *testing.T) {
	r := NewRunner(Config{Stride: 10, Horizon: 5, MinWindow: 60},
		scoring.NewEngine(), zerolog.Nop())
	series := map[string]market.Series{
		"BBB": risingSeries("BBB", 120),
		"AAA": risingSeries("AAA", 120),
	}

	first, err := r.Run(context.Background(), "default", series, nil)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), "default", series, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Samples, second.Samples)
	assert.Equal(t, first.Buckets, second.Buckets)
	assert.Equal(t, "AAA", first.Samples[0].Symbol)
}

func TestWriteArtifactRoundTrip(t *testing.T) {
	r := NewRunner(Config{Stride: 20, Horizon: 5, MinWindow: 60},
		scoring.NewEngine(), zerolog.Nop())
	result, err := r.Run(context.Background(), "default",
		map[string]market.Series{"AAA": risingSeries("AAA", 120)}, nil)
	require.NoError(t, err)

	dir := t.TempDir()
	path, err := r.WriteArtifact(result, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back RunResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, result.RunID, back.RunID)
	assert.Len(t, back.Samples, len(result.Samples))
}

func TestBucketizeBands(t *testing.T) {
	samples := []Sample{
		{Score: -2, FwdReturnPct: -1},
		{Score: 3, FwdReturnPct: 2},
		{Score: 7, FwdReturnPct: 4},
		{Score: 12, FwdReturnPct: -3},
		{Score: 18, FwdReturnPct: 9},
	}
	stats := bucketize(samples)
	require.Len(t, stats, 5)
	for _, b := range stats {
		assert.Equal(t, 1, b.Count, b.Label)
	}
	assert.Equal(t, 0.0, stats[0].HitRate)
	assert.Equal(t, 1.0, stats[4].HitRate)
	assert.InDelta(t, 9.0, stats[4].MeanReturnPct, 1e-12)
}
