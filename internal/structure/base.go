package structure

import (
	"github.com/quantjay/scorerun/internal/market"
)

const (
	baseMinCupBars   = 6
	baseBreakoutPct  = 0.001
	baseRecentBars   = 5
	baseMinRecovery  = 1.01
	defaultRimWindow = 40
)

// BaseSignal describes a rounded base and its breakout state: a rim high early
// in the window, a base low at least a few bars later, a recovery toward the
// rim, and optionally a close above the rim.
type BaseSignal struct {
	Formed         bool    `json:"formed"`
	Breakout       bool    `json:"breakout"`
	RecentBreakout bool    `json:"recent_breakout"`
	RimLevel       float64 `json:"rim_level,omitempty"`
	BaseLow        float64 `json:"base_low,omitempty"`
	AboveRim       bool    `json:"above_rim"`
}

// RimLookback picks a rim search window sized to the timeframe; longer bars
// cover the same calendar span with fewer samples.
func RimLookback(tf market.Timeframe) int {
	switch tf {
	case market.Timeframe2D:
		return 90
	case market.Timeframe1W:
		return 52
	case market.Timeframe2W:
		return 40
	case market.Timeframe1M:
		return 24
	default:
		return defaultRimWindow
	}
}

// DetectBase scans the last rimLookback bars for a base-and-breakout
// structure. The rim is the highest close in the first half of the window; the
// base low must come at least baseMinCupBars after it; any later close above
// rim*(1+baseBreakoutPct) is a breakout, flagged recent when it happened in
// the last few bars. Short series return an empty signal.
func DetectBase(s market.Series, rimLookback int) BaseSignal {
	if rimLookback <= 0 {
		rimLookback = defaultRimWindow
	}
	closes := s.Closes()
	if len(closes) < rimLookback+baseMinCupBars+10 {
		return BaseSignal{}
	}

	window := tail(closes, rimLookback)
	half := rimLookback / 2

	rimPos, rim := maxOf(window[:half+1])

	afterRim := window[rimPos+baseMinCupBars:]
	if len(afterRim) < baseMinCupBars {
		return BaseSignal{}
	}
	bottomPos, bottom := minOf(afterRim)
	bottomPos += rimPos + baseMinCupBars

	afterBottom := window[bottomPos+1:]
	if len(afterBottom) < 2 {
		return BaseSignal{}
	}
	_, recoveryHigh := maxOf(afterBottom)

	sig := BaseSignal{
		RimLevel: rim,
		BaseLow:  bottom,
		Formed:   bottom < rim && recoveryHigh >= bottom*baseMinRecovery,
	}

	breakoutLevel := rim * (1 + baseBreakoutPct)
	breakoutPos := -1
	for i, v := range afterBottom {
		if v >= breakoutLevel {
			breakoutPos = bottomPos + 1 + i
			break
		}
	}
	sig.Breakout = breakoutPos >= 0
	sig.AboveRim = window[len(window)-1] >= breakoutLevel
	sig.RecentBreakout = sig.Breakout && breakoutPos >= len(window)-baseRecentBars

	return sig
}
