package scoring

import (
	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/marketctx"
)

// ScoreCap is the hard ceiling on the final score. There is no floor.
const ScoreCap = 20.0

// timeframeMultiplier scores short timeframes more strictly. A signal on a
// 2-day chart is worth less than the same signal on a monthly chart.
func timeframeMultiplier(tf market.Timeframe) float64 {
	switch tf {
	case market.Timeframe2D:
		return 0.7
	case market.Timeframe1W:
		return 0.85
	case market.Timeframe2W:
		return 1.0
	case market.Timeframe1M:
		return 1.1
	default:
		return 1.0
	}
}

// strictness compounds the timeframe multiplier with macro reductions: a
// bearish regime, a high volatility level, and volatility still rising while
// already elevated each tighten the multiplier further.
func strictness(tf market.Timeframe, ctx *marketctx.MarketContext) float64 {
	mult := timeframeMultiplier(tf)
	if ctx == nil {
		return mult
	}
	if ctx.IsBearish {
		mult *= 0.9
	}
	if ctx.VolatilityLevel == marketctx.VolHigh {
		mult *= 0.85
	}
	if ctx.VolatilityTrend == marketctx.VolRising &&
		(ctx.VolatilityLevel == marketctx.VolModerate || ctx.VolatilityLevel == marketctx.VolHigh) {
		mult *= 0.95
	}
	return mult
}

// normalize applies the two final transforms in order: the strictness
// multiplier over every recorded entry, then the macro additive adjustment,
// then the cap. The cap is recorded as a negative entry so the total always
// equals the breakdown sum.
func normalize(p *pass, tf market.Timeframe, ctx *marketctx.MarketContext) float64 {
	p.ledger.Scale(strictness(tf, ctx))

	if ctx != nil && ctx.AdditiveAdjustment != 0 {
		p.ledger.Add("market_adjustment", ctx.AdditiveAdjustment)
	}

	total := p.ledger.Total()
	if total > ScoreCap {
		p.ledger.Add("score_capped", ScoreCap-total)
		total = ScoreCap
	}
	return total
}
