// Package scoring turns an indicator snapshot, structure signals and a
// category profile into a composite opportunity score with a named breakdown.
// The whole package is pure: no I/O, no shared mutable state, safe for
// concurrent callers.
package scoring

import (
	"github.com/quantjay/scorerun/internal/indicators"
	"github.com/quantjay/scorerun/internal/profile"
	"github.com/quantjay/scorerun/internal/structure"
)

// Regime labels which scoring branch handled the series.
type Regime string

const (
	RegimeExplosiveBottom Regime = "EXPLOSIVE_BOTTOM"
	RegimeTrendStrong     Regime = "TREND_CONTINUATION_STRONG"
	RegimeTrendModerate   Regime = "TREND_CONTINUATION_MODERATE"
	RegimeStandard        Regime = "STANDARD"
)

// ScoreResult is the scoring output: the capped total, the regime that
// handled the series, the indicator snapshot it was scored from, and the
// ordered contribution breakdown. The total always equals the breakdown sum.
type ScoreResult struct {
	Score      float64        `json:"score"`
	Regime     Regime         `json:"regime"`
	Indicators indicators.Set `json:"indicators"`
	Breakdown  Ledger         `json:"breakdown"`
}

// pass carries the state of one scoring call through the regime handler and
// the regime-independent layers. It lives for exactly one Score call.
type pass struct {
	prof   profile.CategoryProfile
	ind    indicators.Set
	price  float64
	regime Regime

	reversal structure.ReversalSignal
	wave     structure.WaveSignal
	base     structure.BaseSignal
	ribbon   structure.RibbonSignal

	ledger Ledger
}

// nearSupport reports price within 5% of the recent-low support level.
func (p *pass) nearSupport() bool {
	if p.ind.RecentLow == nil || *p.ind.RecentLow <= 0 {
		return false
	}
	return (p.price / *p.ind.RecentLow) < 1.05
}

// adxAbove reports a valid trend-strength reading above the threshold.
func (p *pass) adxAbove(threshold float64) bool {
	return p.ind.ADX != nil && *p.ind.ADX > threshold
}

// momentumBelow reports a valid momentum reading below the threshold.
func (p *pass) momentumBelow(threshold float64) bool {
	return p.ind.MomentumPct != nil && *p.ind.MomentumPct < threshold
}

// momentumAbove reports a valid momentum reading above the threshold.
func (p *pass) momentumAbove(threshold float64) bool {
	return p.ind.MomentumPct != nil && *p.ind.MomentumPct > threshold
}

func (p *pass) aboveEMA50() bool  { return p.ind.EMA50 != nil && p.price > *p.ind.EMA50 }
func (p *pass) aboveEMA200() bool { return p.ind.EMA200 != nil && p.price > *p.ind.EMA200 }

// goldenCross reports the 50-bar simple average above the 200-bar one.
func (p *pass) goldenCross() bool {
	return p.ind.SMA50 != nil && p.ind.SMA200 != nil && *p.ind.SMA50 > *p.ind.SMA200
}
