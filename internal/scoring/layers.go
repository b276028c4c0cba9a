package scoring

import "github.com/quantjay/scorerun/internal/structure"

// applyLayers runs the regime-independent contribution layers, in a fixed
// order so the breakdown reads the same for every call.
func applyLayers(p *pass) {
	applyTrendStrength(p)
	applyMomentumTiers(p)
	applyVolume(p)
	applyPriceIntensity(p)
	applyOverextension(p)
	applyNearSupport(p)
	applyStructure(p)
}

// Trend-strength magnitude tiers, doubled while the indicator is rising.
func applyTrendStrength(p *pass) {
	if p.ind.ADX == nil {
		return
	}
	adx := *p.ind.ADX

	var bonus float64
	var name string
	switch {
	case adx > 30:
		bonus, name = 2.0, "adx_very_strong"
	case adx > 25:
		bonus, name = 1.5, "adx_strong"
	default:
		return
	}
	if p.ind.ADXRising {
		bonus *= 2
		name += "_rising"
	}
	p.ledger.Add(name, bonus)
}

func applyMomentumTiers(p *pass) {
	switch {
	case p.momentumAbove(15):
		p.ledger.Add("very_strong_momentum", 1.0)
	case p.momentumAbove(8):
		p.ledger.Add("strong_momentum", 0.5)
	}
}

func applyVolume(p *pass) {
	if p.ind.VolumeBuilding {
		p.ledger.Add("volume_building", 1.5*p.prof.VolumeMultiplier)
	}
	// A volume surge into compressed volatility often precedes the expansion.
	if p.ind.VolumeSurge && p.ind.VolatilityCompressed {
		p.ledger.Add("volume_surge_consolidation", 1.5)
	}
}

func applyPriceIntensity(p *pass) {
	if p.ind.PriceIntensity == nil {
		return
	}
	switch {
	case *p.ind.PriceIntensity > 70:
		p.ledger.Add("pi_high", 2.0)
	case *p.ind.PriceIntensity > 50:
		p.ledger.Add("pi_moderate", 1.0)
	}
}

// Overextension: price stretched more than 30% above the 50-bar average.
// Skipped in the explosive-bottom regime, where price is below the average by
// construction.
func applyOverextension(p *pass) {
	if p.regime == RegimeExplosiveBottom {
		return
	}
	if p.ind.EMA50 == nil || *p.ind.EMA50 <= 0 || p.price <= *p.ind.EMA50 {
		return
	}
	extensionPct := (p.price / *p.ind.EMA50 - 1) * 100
	if extensionPct > 30 {
		p.ledger.Add("overextension", -1.0*p.prof.OverextensionMultiplier)
	}
}

// Near-support bonus outside the explosive regime, which scores support on
// its own terms.
func applyNearSupport(p *pass) {
	if p.regime == RegimeExplosiveBottom {
		return
	}
	if p.nearSupport() {
		p.ledger.Add("near_support", 1.0)
	}
}

// Structure-detector contributions: reversal pattern score and confidence,
// correction-zone wave position, a fresh base breakout, and the ribbon's
// bottom-reversal state.
func applyStructure(p *pass) {
	if p.reversal.PatternScore > 0 {
		p.ledger.Add("bottoming_pattern", p.reversal.PatternScore)
		if p.reversal.Confidence > 0.5 {
			p.ledger.Add("high_confidence_pattern", 1.0)
		}
	}
	if p.wave.Detected && p.wave.Position == structure.WaveCorrection {
		p.ledger.Add("wave_correction", 1.5)
	}
	if p.base.RecentBreakout {
		p.ledger.Add("base_breakout", 2.0)
	} else if p.base.Formed && !p.base.Breakout {
		p.ledger.Add("base_forming", 0.5)
	}
	if p.ribbon.State == structure.RibbonReversal {
		p.ledger.Add("ribbon_reversal", 1.5)
	}
}
