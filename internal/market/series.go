package market

import (
	"fmt"
	"math"
	"time"
)

// Bar is one OHLCV sample at a fixed resampling granularity.
type Bar struct {
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Open      float64   `json:"open" db:"open"`
	High      float64   `json:"high" db:"high"`
	Low       float64   `json:"low" db:"low"`
	Close     float64   `json:"close" db:"close"`
	Volume    float64   `json:"volume" db:"volume"`
}

// Series is a strictly time-ordered, duplicate-free sequence of bars for one
// instrument at one timeframe. The scoring engine borrows it read-only for the
// duration of a call; callers own the backing slice.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Last returns the most recent bar. Callers must check Len first.
func (s Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high column.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low column.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// Validate checks the Series ordering invariant. Sanitizing malformed input is
// the data layer's job; the engine only relies on ordering.
func (s Series) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			return fmt.Errorf("series %s: bar %d timestamp %s not after previous %s",
				s.Symbol, i, s.Bars[i].Timestamp, s.Bars[i-1].Timestamp)
		}
	}
	return nil
}

// Timeframe identifies a resampling granularity.
type Timeframe string

const (
	Timeframe2D Timeframe = "2D"
	Timeframe1W Timeframe = "1W"
	Timeframe2W Timeframe = "2W"
	Timeframe1M Timeframe = "1M"
)

// Days returns the calendar-day width of one bucket at this timeframe.
func (tf Timeframe) Days() int {
	switch tf {
	case Timeframe2D:
		return 2
	case Timeframe1W:
		return 7
	case Timeframe2W:
		return 14
	case Timeframe1M:
		return 30
	default:
		return 7
	}
}

// ParseTimeframe validates a timeframe label.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case Timeframe2D, Timeframe1W, Timeframe2W, Timeframe1M:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("unknown timeframe %q (want 2D, 1W, 2W or 1M)", s)
}

// Resample aggregates daily bars into fixed calendar-day buckets:
// first open, max high, min low, last close, summed volume. Buckets are
// anchored at the first bar's timestamp. Empty buckets are dropped, so the
// output keeps the Series ordering invariant.
func Resample(daily Series, tf Timeframe) Series {
	if len(daily.Bars) == 0 {
		return Series{Symbol: daily.Symbol}
	}

	bars := make([]Bar, 0, len(daily.Bars)/tf.Days()+1)
	width := time.Duration(tf.Days()) * 24 * time.Hour
	anchor := daily.Bars[0].Timestamp

	var cur *Bar
	var curBucket int64 = -1
	for _, b := range daily.Bars {
		bucket := int64(b.Timestamp.Sub(anchor) / width)
		if cur == nil || bucket != curBucket {
			if cur != nil {
				bars = append(bars, *cur)
			}
			nb := Bar{
				Timestamp: anchor.Add(time.Duration(bucket) * width),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			}
			cur = &nb
			curBucket = bucket
			continue
		}
		cur.High = math.Max(cur.High, b.High)
		cur.Low = math.Min(cur.Low, b.Low)
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if cur != nil {
		bars = append(bars, *cur)
	}

	return Series{Symbol: daily.Symbol, Bars: bars}
}
