package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dailySeries(symbol string, n int) Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    1000,
		}
	}
	return Series{Symbol: symbol, Bars: bars}
}

func TestSeriesValidate(t *testing.T) {
	s := dailySeries("TEST", 10)
	require.NoError(t, s.Validate())

	s.Bars[5].Timestamp = s.Bars[4].Timestamp
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bar 5")
}

func TestParseTimeframe(t *testing.T) {
	for _, label := range []string{"2D", "1W", "2W", "1M"} {
		tf, err := ParseTimeframe(label)
		require.NoError(t, err)
		assert.Equal(t, label, string(tf))
	}

	_, err := ParseTimeframe("3H")
	assert.Error(t, err)
}

func TestResampleWeekly(t *testing.T) {
	s := dailySeries("TEST", 21)
	weekly := Resample(s, Timeframe1W)

	require.Equal(t, 3, weekly.Len())
	require.NoError(t, weekly.Validate())

	first := weekly.Bars[0]
	assert.Equal(t, s.Bars[0].Open, first.Open)
	assert.Equal(t, s.Bars[6].Close, first.Close)
	assert.Equal(t, s.Bars[6].High, first.High) // rising series: last high is max
	assert.Equal(t, s.Bars[0].Low, first.Low)
	assert.Equal(t, float64(7000), first.Volume)
}

func TestResampleDropsEmptyBuckets(t *testing.T) {
	s := dailySeries("TEST", 5)
	// Gap of three weeks between the two halves.
	for i := 3; i < 5; i++ {
		s.Bars[i].Timestamp = s.Bars[i].Timestamp.AddDate(0, 0, 21)
	}
	weekly := Resample(s, Timeframe1W)

	assert.Equal(t, 2, weekly.Len())
	assert.NoError(t, weekly.Validate())
}

func TestResampleEmpty(t *testing.T) {
	out := Resample(Series{Symbol: "TEST"}, Timeframe1M)
	assert.Equal(t, 0, out.Len())
	assert.Equal(t, "TEST", out.Symbol)
}

func TestTimeframeDays(t *testing.T) {
	assert.Equal(t, 2, Timeframe2D.Days())
	assert.Equal(t, 7, Timeframe1W.Days())
	assert.Equal(t, 14, Timeframe2W.Days())
	assert.Equal(t, 30, Timeframe1M.Days())
}
