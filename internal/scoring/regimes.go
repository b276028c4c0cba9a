package scoring

// regimeRule pairs an entry predicate with the handler that scores the regime.
// Rules are evaluated in order; the first predicate that matches wins and no
// later rule runs. The STANDARD fallback matches unconditionally.
type regimeRule struct {
	regime Regime
	match  func(*pass) bool
	apply  func(*pass)
}

// regimeRules is the precedence-ordered regime table.
var regimeRules = []regimeRule{
	{RegimeExplosiveBottom, matchExplosiveBottom, applyExplosiveBottom},
	{RegimeTrendStrong, matchTrendStrong, applyTrendStrong},
	{RegimeTrendModerate, matchTrendModerate, applyTrendModerate},
	{RegimeStandard, func(*pass) bool { return true }, applyStandard},
}

// classify picks the regime, records it on the pass and runs its handler.
func classify(p *pass) {
	for _, rule := range regimeRules {
		if rule.match(p) {
			p.regime = rule.regime
			rule.apply(p)
			return
		}
	}
}

// EXPLOSIVE_BOTTOM: deeply oversold while trend strength is already elevated.
// The combination marks capitulation with directional energy behind it.
func matchExplosiveBottom(p *pass) bool {
	return p.ind.RSI < p.prof.OversoldThreshold && p.adxAbove(p.prof.TrendStrengthThreshold)
}

func applyExplosiveBottom(p *pass) {
	p.ledger.Add("explosive_bottom_base", 4.0*p.prof.ExplosiveMultiplier)

	if p.momentumBelow(p.prof.CapitulationThreshold) {
		p.ledger.Add("explosive_bottom_capitulation", 2.0*p.prof.ExplosiveMultiplier)
	}
	if p.nearSupport() {
		p.ledger.Add("explosive_bottom_support", 1.5)
	}
	if p.ind.VolatilityCompressed {
		p.ledger.Add("explosive_bottom_volatility", 1.0)
	}
	if p.ind.VolumeBuilding {
		p.ledger.Add("explosive_bottom_volume", 1.0*p.prof.VolumeMultiplier)
	}
	if p.ind.ADXRising {
		p.ledger.Add("explosive_bottom_adx_rising", 1.5)
	}

	// Extreme dislocation below the 50-bar average, for categories where deep
	// mean reversion is the play.
	if p.prof.ExtremeOversold && p.ind.EMA50 != nil && *p.ind.EMA50 > 0 && p.price < *p.ind.EMA50 {
		belowPct := (p.price / *p.ind.EMA50 - 1) * 100
		switch {
		case belowPct < -30:
			p.ledger.Add("extreme_oversold_ema_30pct", 3.0)
		case belowPct < -20:
			p.ledger.Add("extreme_oversold_ema_20pct", 2.0)
		}
	}
}

// TREND_CONTINUATION_STRONG: price above both long averages with trend
// strength past the continuation bar.
func matchTrendStrong(p *pass) bool {
	return p.aboveEMA50() && p.aboveEMA200() && p.adxAbove(p.prof.TrendStrengthThreshold)
}

func applyTrendStrong(p *pass) {
	p.ledger.Add("trend_continuation_strong", p.prof.TrendContinuationBonus)

	if p.adxAbove(p.prof.VeryStrongTrend) {
		p.ledger.Add("trend_continuation_very_strong", 1.5)
	}
	if p.momentumAbove(5) {
		p.ledger.Add("trend_continuation_momentum", 1.0)
	}

	// A healthy oscillator during a strong trend means the move is not
	// exhausted. Mean-reversion categories run hotter, so their band sits
	// higher.
	if p.prof.MeanReversion {
		if p.ind.RSI >= 50 && p.ind.RSI <= 70 {
			p.ledger.Add("trend_continuation_healthy_rsi", 1.0)
		}
	} else {
		if p.ind.RSI >= 40 && p.ind.RSI <= 60 {
			p.ledger.Add("trend_continuation_healthy_rsi", 1.0)
		}
	}

	if p.goldenCross() {
		p.ledger.Add("trend_continuation_golden_cross", 0.5)
	}
}

// TREND_CONTINUATION_MODERATE: same average alignment but trend strength only
// in the moderate band, before the indicator has spiked.
func matchTrendModerate(p *pass) bool {
	if !p.aboveEMA50() || !p.aboveEMA200() || p.ind.ADX == nil {
		return false
	}
	adx := *p.ind.ADX
	return adx >= p.prof.ModerateTrendThreshold && adx <= p.prof.TrendStrengthThreshold
}

func applyTrendModerate(p *pass) {
	p.ledger.Add("trend_continuation_moderate", p.prof.TrendContinuationBonus*0.5)
	if p.momentumAbove(0) {
		p.ledger.Add("trend_continuation_moderate_momentum", 0.5)
	}
}

// STANDARD: conventional oscillator scoring. Mean-reversion categories invert
// the usual reading of overbought; oversold without trend strength behind it
// is penalized instead of rewarded.
func applyStandard(p *pass) {
	strongTrend := p.adxAbove(p.prof.TrendStrengthThreshold)

	if p.prof.MeanReversion {
		switch {
		case p.ind.RSI > p.prof.OverboughtThreshold:
			p.ledger.Add("rsi_overbought_mean_reversion", 1.0)
		case p.ind.RSI >= p.prof.OversoldThreshold-10 && p.ind.RSI <= p.prof.OversoldThreshold:
			if strongTrend {
				p.ledger.Add("oversold_strong_trend", 1.5)
			} else {
				p.ledger.Add("oversold_weak_trend", -0.5)
			}
		case p.ind.RSI < p.prof.OversoldThreshold-10:
			if strongTrend {
				p.ledger.Add("very_oversold_strong_trend", 1.0)
			} else {
				p.ledger.Add("rsi_oversold_avoid", -1.5)
			}
		}
	} else {
		switch {
		case p.ind.RSI < p.prof.OversoldThreshold:
			p.ledger.Add("rsi_oversold", 2.0)
		case p.ind.RSI > p.prof.OverboughtThreshold:
			p.ledger.Add("rsi_overbought", -2.0)
		}
	}

	if p.aboveEMA50() {
		p.ledger.Add("price_above_ema50", 0.5)
	}
	if p.aboveEMA200() {
		p.ledger.Add("price_above_ema200", 1.0)
	}
	if p.goldenCross() {
		p.ledger.Add("golden_cross", 1.5)
	}
}
