package scoring

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/marketctx"
)

func barsFrom(closes, volumes []float64) market.Series {
	start := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		v := 1000.0
		if volumes != nil {
			v = volumes[i]
		}
		bars[i] = market.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    v,
		}
	}
	return market.Series{Symbol: "TEST", Bars: bars}
}

func flatSeries(n int, price float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	s := barsFrom(closes, nil)
	// Perfectly flat: high == low == close.
	for i := range s.Bars {
		s.Bars[i].High = price
		s.Bars[i].Low = price
	}
	return s
}

// crashSeries falls monotonically by well over 30% and then keeps drifting
// down gently: deeply oversold with strong directional movement.
func crashSeries() market.Series {
	closes := make([]float64, 120)
	for i := 0; i < 40; i++ {
		closes[i] = 200
	}
	for i := 40; i < 100; i++ {
		closes[i] = 200 - float64(i-39)*80.0/60.0
	}
	for i := 100; i < 120; i++ {
		closes[i] = closes[99] - float64(i-99)*0.1
	}
	return barsFrom(closes, nil)
}

func trendSeries() market.Series {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	return barsFrom(closes, nil)
}

func TestScoreDeterministic(t *testing.T) {
	e := NewEngine()
	s := trendSeries()
	ctx := marketctx.Neutral()

	first := e.Score(s, "cryptocurrencies", market.Timeframe1W, &ctx)
	second := e.Score(s, "cryptocurrencies", market.Timeframe1W, &ctx)
	assert.Equal(t, first, second)
}

func TestScoreShortSeriesIsZero(t *testing.T) {
	e := NewEngine()
	s := trendSeries()
	s.Bars = s.Bars[:MinBars-1]

	res := e.Score(s, "default", market.Timeframe1W, nil)
	assert.Zero(t, res.Score)
	assert.Equal(t, 0, res.Breakdown.Len())
	assert.Equal(t, RegimeStandard, res.Regime)
}

func TestScoreFlatSeriesNearZero(t *testing.T) {
	e := NewEngine()
	res := e.Score(flatSeries(200, 100), "default", market.Timeframe1W, nil)

	assert.Equal(t, RegimeStandard, res.Regime)
	assert.InDelta(t, 50.0, res.Indicators.RSI, 1e-6)
	require.NotNil(t, res.Indicators.MomentumPct)
	assert.InDelta(t, 0.0, *res.Indicators.MomentumPct, 1e-9)
	assert.False(t, res.Indicators.VolatilityCompressed)
	assert.False(t, res.Indicators.VolumeBuilding)
	if res.Indicators.ADX != nil {
		assert.InDelta(t, 0.0, *res.Indicators.ADX, 1e-6)
	}
	assert.Less(t, res.Score, 1.5)
}

func TestScoreExplosiveBottom(t *testing.T) {
	e := NewEngine()
	res := e.Score(crashSeries(), "cryptocurrencies", market.Timeframe1W, nil)

	assert.Equal(t, RegimeExplosiveBottom, res.Regime)
	base, ok := res.Breakdown.Get("explosive_bottom_base")
	require.True(t, ok)
	assert.Greater(t, base, 0.0)

	// Regime exclusivity: no continuation or fallback entries.
	_, ok = res.Breakdown.Get("trend_continuation_strong")
	assert.False(t, ok)
	_, ok = res.Breakdown.Get("rsi_oversold")
	assert.False(t, ok)
}

func TestScoreTrendContinuationStrong(t *testing.T) {
	e := NewEngine()
	res := e.Score(trendSeries(), "default", market.Timeframe1W, nil)

	assert.Equal(t, RegimeTrendStrong, res.Regime)
	bonus, ok := res.Breakdown.Get("trend_continuation_strong")
	require.True(t, ok)
	assert.Greater(t, bonus, 0.0)

	_, ok = res.Breakdown.Get("explosive_bottom_base")
	assert.False(t, ok)
	_, ok = res.Breakdown.Get("golden_cross") // STANDARD-only entry
	assert.False(t, ok)
}

// overboughtSeries declines for a long stretch and then pops hard over the
// last 15 bars: RSI pinned near 100 while price is still far below any long
// average, so the fallback handler scores it.
func overboughtSeries() market.Series {
	closes := make([]float64, 135)
	for i := 0; i < 120; i++ {
		closes[i] = 300 - float64(i)*1.25
	}
	for i := 120; i < 135; i++ {
		closes[i] = closes[119] + float64(i-119)*4
	}
	return barsFrom(closes, nil)
}

func TestScoreOverboughtDivergesByCategory(t *testing.T) {
	e := NewEngine()
	s := overboughtSeries()

	meanRev := e.Score(s, "cryptocurrencies", market.Timeframe2W, nil)
	require.Equal(t, RegimeStandard, meanRev.Regime)
	assert.Greater(t, meanRev.Indicators.RSI, 70.0)

	trendFollow := e.Score(s, "precious_metals", market.Timeframe2W, nil)
	require.Equal(t, RegimeStandard, trendFollow.Regime)
	assert.Greater(t, trendFollow.Indicators.RSI, 70.0)

	// The same overbought reading is a setup for mean-reversion categories
	// and a warning for trend-following ones.
	bonus, ok := meanRev.Breakdown.Get("rsi_overbought_mean_reversion")
	require.True(t, ok)
	assert.Equal(t, 1.0, bonus)
	_, ok = meanRev.Breakdown.Get("rsi_overbought")
	assert.False(t, ok)

	penalty, ok := trendFollow.Breakdown.Get("rsi_overbought")
	require.True(t, ok)
	assert.Equal(t, -2.0, penalty)
	_, ok = trendFollow.Breakdown.Get("rsi_overbought_mean_reversion")
	assert.False(t, ok)
}

func TestScoreEqualsBreakdownSum(t *testing.T) {
	e := NewEngine()
	bear := marketctx.MarketContext{
		IsBearish:             true,
		RelativeStrengthTrend: marketctx.TrendDeclining,
		VolatilityLevel:       marketctx.VolHigh,
		VolatilityTrend:       marketctx.VolRising,
		AdditiveAdjustment:    -2.5,
	}

	for _, s := range []market.Series{trendSeries(), crashSeries(), flatSeries(200, 100)} {
		for _, ctx := range []*marketctx.MarketContext{nil, &bear} {
			res := e.Score(s, "cryptocurrencies", market.Timeframe1M, ctx)
			assert.InDelta(t, res.Breakdown.Total(), res.Score, 1e-9)
		}
	}
}

func TestScoreCapLaw(t *testing.T) {
	e := NewEngine()
	for _, s := range []market.Series{trendSeries(), crashSeries()} {
		for _, tf := range []market.Timeframe{market.Timeframe2D, market.Timeframe1W, market.Timeframe2W, market.Timeframe1M} {
			res := e.Score(s, "miner_hpc", tf, nil)
			assert.LessOrEqual(t, res.Score, ScoreCap)
		}
	}
}

func TestBearishContextReducesScore(t *testing.T) {
	e := NewEngine()
	s := trendSeries()

	neutral := e.Score(s, "default", market.Timeframe1W, nil)
	bear := marketctx.MarketContext{
		IsBearish:             true,
		RelativeStrengthTrend: marketctx.TrendCrashing,
		VolatilityLevel:       marketctx.VolLow,
		VolatilityTrend:       marketctx.VolStable,
		AdditiveAdjustment:    -2.0,
	}
	adjusted := e.Score(s, "default", market.Timeframe1W, &bear)

	require.Greater(t, neutral.Score, 0.0)
	assert.Less(t, adjusted.Score, neutral.Score)

	v, ok := adjusted.Breakdown.Get("market_adjustment")
	require.True(t, ok)
	assert.Equal(t, -2.0, v)
}

func TestNilContextMatchesNeutral(t *testing.T) {
	e := NewEngine()
	s := trendSeries()
	neutral := marketctx.Neutral()

	assert.Equal(t,
		e.Score(s, "tech_stocks", market.Timeframe2W, nil),
		e.Score(s, "tech_stocks", market.Timeframe2W, &neutral))
}

func TestScoreResultJSONRoundTrip(t *testing.T) {
	e := NewEngine()
	res := e.Score(trendSeries(), "cryptocurrencies", market.Timeframe1W, nil)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var back ScoreResult
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, res.Score, back.Score)
	assert.Equal(t, res.Regime, back.Regime)
	assert.Equal(t, res.Breakdown.Entries(), back.Breakdown.Entries())
	assert.Equal(t, res.Indicators, back.Indicators)
}

func TestNormalizeCapRecordsEntry(t *testing.T) {
	p := &pass{}
	p.ledger.Add("a", 15.0)
	p.ledger.Add("b", 12.0)

	total := normalize(p, market.Timeframe2W, nil)
	assert.Equal(t, ScoreCap, total)

	capEntry, ok := p.ledger.Get("score_capped")
	require.True(t, ok)
	assert.InDelta(t, ScoreCap-27.0, capEntry, 1e-9)
	assert.InDelta(t, ScoreCap, p.ledger.Total(), 1e-9)
}

func TestStrictnessMultipliers(t *testing.T) {
	assert.InDelta(t, 0.7, strictness(market.Timeframe2D, nil), 1e-12)
	assert.InDelta(t, 0.85, strictness(market.Timeframe1W, nil), 1e-12)
	assert.InDelta(t, 1.0, strictness(market.Timeframe2W, nil), 1e-12)
	assert.InDelta(t, 1.1, strictness(market.Timeframe1M, nil), 1e-12)

	ctx := &marketctx.MarketContext{
		IsBearish:       true,
		VolatilityLevel: marketctx.VolHigh,
		VolatilityTrend: marketctx.VolRising,
	}
	// 1.0 * 0.9 (bearish) * 0.85 (high vol) * 0.95 (rising while elevated).
	assert.InDelta(t, 0.9*0.85*0.95, strictness(market.Timeframe2W, ctx), 1e-12)
}
