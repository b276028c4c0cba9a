package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantjay/scorerun/internal/market"
)

func TestClassifyRibbonBullish(t *testing.T) {
	closes := make([]float64, 150)
	ramp(closes, 0, 149, 100, 250)

	sig := ClassifyRibbon(simpleSeries(closes), market.Timeframe1W)
	assert.Equal(t, RibbonBullish, sig.State)
	assert.Greater(t, sig.ShortAvg, sig.LongAvg)
}

func TestClassifyRibbonCompressedOnFlat(t *testing.T) {
	closes := make([]float64, 150)
	for i := range closes {
		closes[i] = 100
	}

	sig := ClassifyRibbon(simpleSeries(closes), market.Timeframe1W)
	assert.Equal(t, RibbonCompressed, sig.State)
}

func TestClassifyRibbonReversalAtBottomWeekly(t *testing.T) {
	closes := make([]float64, 150)
	ramp(closes, 0, 149, 250, 100)

	sig := ClassifyRibbon(simpleSeries(closes), market.Timeframe1W)
	assert.Equal(t, RibbonReversal, sig.State)
	assert.True(t, sig.AtBottom)
}

func TestClassifyRibbonBearishOnShortTimeframe(t *testing.T) {
	closes := make([]float64, 150)
	ramp(closes, 0, 149, 250, 100)

	// Same decline on a 2D chart needs the short group turning up, which a
	// straight decline never shows.
	sig := ClassifyRibbon(simpleSeries(closes), market.Timeframe2D)
	assert.Equal(t, RibbonBearish, sig.State)
}

func TestClassifyRibbonShortSeriesUnknown(t *testing.T) {
	closes := make([]float64, 30)
	ramp(closes, 0, 29, 100, 110)

	sig := ClassifyRibbon(simpleSeries(closes), market.Timeframe1W)
	assert.Equal(t, RibbonUnknown, sig.State)
}
