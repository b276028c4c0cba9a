package structure

import (
	"github.com/quantjay/scorerun/internal/market"
)

const (
	// WaveLookback is the window used to locate the most recent extreme.
	WaveLookback = 20

	impulseProximity = 0.05
)

// Trend labels the direction inferred from the more recent extreme.
type Trend string

const (
	TrendUp   Trend = "uptrend"
	TrendDown Trend = "downtrend"
)

// WavePosition classifies where the current price sits inside the most recent
// swing: near the extreme (impulse), between the 38.2% and 61.8% retracements
// (correction), or earlier/undefined.
type WavePosition string

const (
	WaveImpulse    WavePosition = "impulse"
	WaveCorrection WavePosition = "correction"
	WaveEarly      WavePosition = "early"
)

// FibLevels are retracement levels between a swing's start and extreme.
type FibLevels struct {
	F236 float64 `json:"fib_236"`
	F382 float64 `json:"fib_382"`
	F500 float64 `json:"fib_500"`
	F618 float64 `json:"fib_618"`
	F786 float64 `json:"fib_786"`
}

// WaveSignal is the wave-position classification plus forward extension
// targets at 1.618x and 2.618x of the detected swing.
type WaveSignal struct {
	Detected       bool         `json:"detected"`
	Trend          Trend        `json:"trend,omitempty"`
	Position       WavePosition `json:"position,omitempty"`
	Fib            FibLevels    `json:"fib_levels"`
	PrimaryTarget  float64      `json:"primary_target,omitempty"`
	ExtendedTarget float64      `json:"extended_target,omitempty"`
}

// fibRetracements computes standard retracement levels from high down to low.
func fibRetracements(high, low float64) FibLevels {
	diff := high - low
	return FibLevels{
		F236: high - diff*0.236,
		F382: high - diff*0.382,
		F500: high - diff*0.500,
		F618: high - diff*0.618,
		F786: high - diff*0.786,
	}
}

// ClassifyWave locates the most recent extreme over the lookback window,
// infers trend direction from whether the high or the low is more recent, and
// classifies the current close against the retracement ladder. Requires twice
// the lookback of history; otherwise the signal is empty.
func ClassifyWave(s market.Series, lookback int) WaveSignal {
	if lookback <= 0 {
		lookback = WaveLookback
	}
	closes := s.Closes()
	if len(closes) < lookback*2 {
		return WaveSignal{}
	}

	recent := tail(closes, lookback)
	highIdx, high := maxOf(recent)
	lowIdx, low := minOf(recent)
	price := closes[len(closes)-1]

	sig := WaveSignal{Detected: true}
	if highIdx > lowIdx {
		// High came after low: rising swing from low to high.
		sig.Trend = TrendUp
		sig.Fib = fibRetracements(high, low)
		swing := high - low
		sig.PrimaryTarget = high + swing*1.618
		sig.ExtendedTarget = high + swing*2.618

		switch {
		case price > high*(1-impulseProximity):
			sig.Position = WaveImpulse
		case price > sig.Fib.F618:
			sig.Position = WaveCorrection
		default:
			sig.Position = WaveEarly
		}
	} else {
		sig.Trend = TrendDown
		sig.Fib = fibRetracements(high, low)
		swing := high - low
		sig.PrimaryTarget = low - swing*1.618
		sig.ExtendedTarget = low - swing*2.618

		switch {
		case price < low*(1+impulseProximity):
			sig.Position = WaveImpulse
		case price < sig.Fib.F618:
			sig.Position = WaveCorrection
		default:
			sig.Position = WaveEarly
		}
	}
	return sig
}
