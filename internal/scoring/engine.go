package scoring

import (
	"math"

	"github.com/quantjay/scorerun/internal/indicators"
	"github.com/quantjay/scorerun/internal/market"
	"github.com/quantjay/scorerun/internal/marketctx"
	"github.com/quantjay/scorerun/internal/profile"
	"github.com/quantjay/scorerun/internal/structure"
)

// MinBars is the minimum series length the engine scores. Shorter histories
// produce a zero result with an empty breakdown.
const MinBars = 50

// Engine scores bar series. It holds only immutable tuning and is safe for
// concurrent use; every Score call is independent.
type Engine struct {
	reversalLookback int
	waveLookback     int
}

// NewEngine returns an engine with the default detector lookbacks.
func NewEngine() *Engine {
	return &Engine{
		reversalLookback: structure.ReversalLookback,
		waveLookback:     structure.WaveLookback,
	}
}

// Score computes the composite opportunity score for one series. Unknown
// categories resolve to the default profile; a nil market context is neutral.
// The call is pure: same inputs, same result.
func (e *Engine) Score(s market.Series, category string, tf market.Timeframe, ctx *marketctx.MarketContext) ScoreResult {
	if s.Len() < MinBars {
		return ScoreResult{Regime: RegimeStandard}
	}

	closes := s.Closes()
	price := closes[len(closes)-1]
	if math.IsNaN(price) || price <= 0 {
		return ScoreResult{Regime: RegimeStandard}
	}

	p := &pass{
		prof:     profile.Resolve(category),
		ind:      indicators.Compute(s),
		price:    price,
		reversal: structure.DetectReversal(s, e.reversalLookback),
		wave:     structure.ClassifyWave(s, e.waveLookback),
		base:     structure.DetectBase(s, structure.RimLookback(tf)),
		ribbon:   structure.ClassifyRibbon(s, tf),
	}

	classify(p)
	applyLayers(p)
	total := normalize(p, tf, ctx)

	return ScoreResult{
		Score:      total,
		Regime:     p.regime,
		Indicators: p.ind,
		Breakdown:  p.ledger,
	}
}
