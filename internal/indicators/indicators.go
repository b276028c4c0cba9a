// Package indicators derives as-of-last-bar technical indicators from a bar
// series. Every computation degrades to a nil value or false flag when history
// is too short or arithmetic goes degenerate; nothing here returns an error for
// a business condition.
package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/quantjay/scorerun/internal/market"
)

const (
	// RSIPeriod is the classic 14-bar oscillator window.
	RSIPeriod = 14
	// MomentumPeriod is the rate-of-change lookback.
	MomentumPeriod = 14
	// MomentumClamp bounds momentum so one outlier bar cannot dominate scoring.
	MomentumClamp = 50.0

	volShortWindow  = 20
	volLongWindow   = 40
	volCompression  = 0.8
	volBuildShort   = 10
	volBuildLong    = 30
	volBuildRatio   = 1.1
	volSurgeWindow  = 20
	volSurgeRatio   = 1.5
	supportLookback = 20

	epsilon = 1e-4
)

// Set is the as-of-last-bar indicator snapshot consumed by the score
// aggregator. Pointer fields are nil when history is too short for the window;
// the aggregator treats nil as "no opinion".
type Set struct {
	RSI                  float64  `json:"rsi"`
	ADX                  *float64 `json:"adx"`
	ADXRising            bool     `json:"adx_rising"`
	MomentumPct          *float64 `json:"momentum_pct"`
	EMA50                *float64 `json:"ema_50"`
	EMA200               *float64 `json:"ema_200"`
	SMA50                *float64 `json:"sma_50"`
	SMA200               *float64 `json:"sma_200"`
	VolatilityCompressed bool     `json:"volatility_compressed"`
	VolumeBuilding       bool     `json:"volume_building"`
	VolumeSurge          bool     `json:"volume_surge"`
	RecentLow            *float64 `json:"recent_low"`
	PriceIntensity       *float64 `json:"price_intensity"`
}

// Compute derives the full indicator set from one series. It never fails:
// indicators whose windows exceed the available history stay nil/false.
func Compute(s market.Series) Set {
	var set Set
	if s.Len() == 0 {
		set.RSI = 50
		return set
	}

	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()
	volumes := s.Volumes()

	set.RSI = RSI(closes, RSIPeriod)

	adxSeries := ADXSeries(highs, lows, closes, RSIPeriod)
	set.ADX = lastValid(adxSeries)
	set.ADXRising = ADXRising(adxSeries)

	set.MomentumPct = Momentum(closes, MomentumPeriod)

	set.EMA50 = lastWindowed(talibEMA, closes, 50)
	set.EMA200 = lastWindowed(talibEMA, closes, 200)
	set.SMA50 = lastWindowed(talibSMA, closes, 50)
	set.SMA200 = lastWindowed(talibSMA, closes, 200)

	set.VolatilityCompressed = VolatilityCompressed(closes)
	set.VolumeBuilding = VolumeBuilding(volumes)
	set.VolumeSurge = VolumeSurge(volumes)
	set.RecentLow = RecentLow(closes)
	set.PriceIntensity = PriceIntensity(closes, volumes, RSIPeriod)

	return set
}

// RSI computes the relative-strength oscillator with rolling-mean gain/loss
// smoothing and an epsilon-guarded denominator. A flat window (no gains and no
// losses) reads as neutral 50 rather than an artifact of the guard.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if math.IsNaN(delta) {
			return 50
		}
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	if gain < epsilon && loss < epsilon {
		return 50
	}
	rs := gain / (loss + epsilon)
	return 100 - 100/(1+rs)
}

// Momentum is the percentage rate of change over the lookback, clamped to
// ±MomentumClamp. Nil when history is shorter than the lookback.
func Momentum(closes []float64, period int) *float64 {
	if len(closes) < period+1 {
		return nil
	}
	roc := talib.Roc(closes, period)
	m := roc[len(roc)-1]
	if !isFinite(m) {
		return nil
	}
	if m > MomentumClamp {
		m = MomentumClamp
	} else if m < -MomentumClamp {
		m = -MomentumClamp
	}
	return &m
}

// VolatilityCompressed reports a squeeze: the short rolling deviation of close
// sits below 80% of its own longer rolling average.
func VolatilityCompressed(closes []float64) bool {
	if len(closes) < volShortWindow+volLongWindow {
		return false
	}
	dev := talib.StdDev(closes, volShortWindow, 1.0)
	valid := dev[volShortWindow-1:]
	avg := tailMean(valid, volLongWindow)
	last := valid[len(valid)-1]
	if !isFinite(last) || !isFinite(avg) {
		return false
	}
	return last < avg*volCompression
}

// VolumeBuilding reports whether the short volume average runs more than 10%
// above the long one.
func VolumeBuilding(volumes []float64) bool {
	if len(volumes) < volBuildLong {
		return false
	}
	short := talib.Sma(volumes, volBuildShort)
	long := talib.Sma(volumes, volBuildLong)
	s, l := short[len(short)-1], long[len(long)-1]
	if !isFinite(s) || !isFinite(l) {
		return false
	}
	return s > l*volBuildRatio
}

// VolumeSurge reports the latest bar trading more than 50% above the 20-bar
// volume average.
func VolumeSurge(volumes []float64) bool {
	if len(volumes) < volSurgeWindow {
		return false
	}
	avg := tailMean(volumes, volSurgeWindow)
	last := volumes[len(volumes)-1]
	if !isFinite(last) || !isFinite(avg) || avg <= 0 {
		return false
	}
	return last > avg*volSurgeRatio
}

// RecentLow returns the minimum close over the trailing support lookback.
func RecentLow(closes []float64) *float64 {
	if len(closes) < supportLookback {
		return nil
	}
	mins := talib.Min(closes, supportLookback)
	return lastValid(mins)
}

func talibEMA(x []float64, n int) []float64 { return talib.Ema(x, n) }
func talibSMA(x []float64, n int) []float64 { return talib.Sma(x, n) }

// lastWindowed returns the latest value of a windowed series, or nil when the
// input is shorter than the window.
func lastWindowed(fn func([]float64, int) []float64, x []float64, window int) *float64 {
	if len(x) < window {
		return nil
	}
	out := fn(x, window)
	return lastValid(out)
}

// lastValid returns the latest reading of a rolling series, or nil when the
// series is empty or its latest value is not finite.
func lastValid(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if !isFinite(v) {
		return nil
	}
	return &v
}

func tailMean(x []float64, n int) float64 {
	if len(x) < n {
		n = len(x)
	}
	if n == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range x[len(x)-n:] {
		sum += v
	}
	return sum / float64(n)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
