// Package marketctx computes the macro-market snapshot the scorer consumes.
// The snapshot condenses a benchmark-ratio series (equity index over gold) and
// a volatility-index series into a handful of enums plus one additive score
// adjustment. The provider is pure over its two input series.
package marketctx

// RelativeStrengthTrend labels the slope of the benchmark ratio.
type RelativeStrengthTrend string

const (
	TrendCrashing  RelativeStrengthTrend = "crashing"
	TrendDeclining RelativeStrengthTrend = "declining"
	TrendNeutral   RelativeStrengthTrend = "neutral"
	TrendRising    RelativeStrengthTrend = "rising"
	TrendNearLow   RelativeStrengthTrend = "near_low"
)

// VolatilityLevel bands the volatility index reading.
type VolatilityLevel string

const (
	VolLow      VolatilityLevel = "low"
	VolModerate VolatilityLevel = "moderate"
	VolHigh     VolatilityLevel = "high"
)

// VolatilityTrend labels the short-horizon direction of the volatility index.
type VolatilityTrend string

const (
	VolRising  VolatilityTrend = "rising"
	VolFalling VolatilityTrend = "falling"
	VolStable  VolatilityTrend = "stable"
)

// MarketContext is the macro snapshot passed to the scoring engine. A nil
// context is treated as neutral: no adjustment, not bearish.
type MarketContext struct {
	VolatilityLevel       VolatilityLevel       `json:"volatility_level"`
	VolatilityTrend       VolatilityTrend       `json:"volatility_trend"`
	RelativeStrengthTrend RelativeStrengthTrend `json:"relative_strength_trend"`
	IsBearish             bool                  `json:"is_bearish"`
	AdditiveAdjustment    float64               `json:"additive_adjustment"`
}

// Neutral is the no-information snapshot used when macro data is unavailable.
func Neutral() MarketContext {
	return MarketContext{
		VolatilityLevel:       VolLow,
		VolatilityTrend:       VolStable,
		RelativeStrengthTrend: TrendNeutral,
	}
}

const (
	ratioSlopeWindow = 20
	ratioLowWindow   = 60
	ratioNearLowPct  = 0.05

	crashingSlopePct  = -5.0
	decliningSlopePct = -2.0
	neutralSlopePct   = 2.0

	volLowCeiling      = 20.0
	volModerateCeiling = 29.0
	volTrendLookback   = 5
	volTrendBandPct    = 0.03
)

// Compute derives the snapshot from a benchmark-ratio series and a volatility
// index series. Either input may be short or empty; missing pieces degrade to
// the neutral reading for that piece rather than an error.
func Compute(ratio, volIndex []float64) MarketContext {
	ctx := Neutral()

	if len(ratio) >= ratioSlopeWindow+1 {
		// Percent change of the ratio's 20-bar mean over one window.
		curr := windowMean(ratio, len(ratio), ratioSlopeWindow)
		prev := windowMean(ratio, len(ratio)-ratioSlopeWindow, ratioSlopeWindow)
		if prev > 0 {
			slopePct := (curr/prev - 1) * 100
			switch {
			case slopePct < crashingSlopePct:
				ctx.RelativeStrengthTrend = TrendCrashing
				ctx.AdditiveAdjustment -= 2.0
				ctx.IsBearish = true
			case slopePct < decliningSlopePct:
				ctx.RelativeStrengthTrend = TrendDeclining
				ctx.AdditiveAdjustment -= 1.0
				ctx.IsBearish = true
			case slopePct < neutralSlopePct:
				ctx.RelativeStrengthTrend = TrendNeutral
			default:
				ctx.RelativeStrengthTrend = TrendRising
			}
		}

		// Sitting on the 60-bar low only aggravates an already weak trend; a
		// flat ratio is by definition at its low and stays neutral.
		if ctx.IsBearish && len(ratio) >= ratioLowWindow {
			low := minTail(ratio, ratioLowWindow)
			last := ratio[len(ratio)-1]
			if low > 0 && last <= low*(1+ratioNearLowPct) {
				ctx.RelativeStrengthTrend = TrendNearLow
				ctx.AdditiveAdjustment -= 1.0
			}
		}
	}

	if len(volIndex) > 0 {
		last := volIndex[len(volIndex)-1]
		switch {
		case last < volLowCeiling:
			ctx.VolatilityLevel = VolLow
		case last < volModerateCeiling:
			ctx.VolatilityLevel = VolModerate
			ctx.AdditiveAdjustment -= 0.5
		default:
			ctx.VolatilityLevel = VolHigh
			ctx.AdditiveAdjustment -= 1.5
		}

		if len(volIndex) > volTrendLookback {
			prev := volIndex[len(volIndex)-1-volTrendLookback]
			switch {
			case prev > 0 && last > prev*(1+volTrendBandPct):
				ctx.VolatilityTrend = VolRising
			case prev > 0 && last < prev*(1-volTrendBandPct):
				ctx.VolatilityTrend = VolFalling
			default:
				ctx.VolatilityTrend = VolStable
			}
		}
	}

	return ctx
}

// windowMean averages x[end-n:end], clamped to valid bounds.
func windowMean(x []float64, end, n int) float64 {
	if end > len(x) {
		end = len(x)
	}
	start := end - n
	if start < 0 {
		start = 0
	}
	if end <= start {
		return 0
	}
	var sum float64
	for _, v := range x[start:end] {
		sum += v
	}
	return sum / float64(end-start)
}

func minTail(x []float64, n int) float64 {
	if len(x) > n {
		x = x[len(x)-n:]
	}
	low := x[0]
	for _, v := range x[1:] {
		if v < low {
			low = v
		}
	}
	return low
}
