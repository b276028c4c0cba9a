package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/quantjay/scorerun/internal/market"
)

// Fetcher pulls daily OHLCV history from an HTTP CSV endpoint. Requests share
// a token-bucket limiter and a circuit breaker so one misbehaving source
// cannot hammer or hang the whole scan.
type Fetcher struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewFetcher builds a fetcher against baseURL with the given request budget.
func NewFetcher(baseURL string, rps float64, burst int, timeout time.Duration, log zerolog.Logger) *Fetcher {
	if burst < 1 {
		burst = 1
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bar-source",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: breaker,
		log:     log.With().Str("component", "fetcher").Logger(),
	}
}

// Daily fetches the full daily history for symbol. Malformed CSV rows are
// skipped with a warning; the row order of the endpoint is preserved.
func (f *Fetcher) Daily(ctx context.Context, symbol string) ([]market.Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait for %s: %w", symbol, err)
	}

	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetchCSV(ctx, symbol)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars for %s: %w", symbol, err)
	}
	return result.([]market.Bar), nil
}

func (f *Fetcher) fetchCSV(ctx context.Context, symbol string) ([]market.Bar, error) {
	u := fmt.Sprintf("%s?s=%s&i=d", f.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned %s", resp.Status)
	}
	return f.parseCSV(resp.Body, symbol)
}

// parseCSV reads Date,Open,High,Low,Close,Volume rows. A header row is
// detected by its unparseable date and skipped silently.
func (f *Fetcher) parseCSV(r io.Reader, symbol string) ([]market.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var bars []market.Bar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv for %s: %w", symbol, err)
		}
		line++

		if len(record) < 6 {
			f.log.Warn().Str("symbol", symbol).Int("line", line).Msg("short csv row skipped")
			continue
		}
		ts, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			if line == 1 {
				continue // header
			}
			f.log.Warn().Str("symbol", symbol).Int("line", line).Str("date", record[0]).Msg("bad date skipped")
			continue
		}

		vals := make([]float64, 5)
		ok := true
		for i := 0; i < 5; i++ {
			vals[i], err = strconv.ParseFloat(record[i+1], 64)
			if err != nil {
				ok = false
				break
			}
		}
		if !ok {
			f.log.Warn().Str("symbol", symbol).Int("line", line).Msg("non-numeric csv row skipped")
			continue
		}

		bars = append(bars, market.Bar{
			Timestamp: ts.UTC(),
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return bars, nil
}
