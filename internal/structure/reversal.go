package structure

import (
	"math"
	"sort"

	"github.com/quantjay/scorerun/internal/market"
)

const (
	// ReversalLookback is the default scan window for reversal structures.
	ReversalLookback = 60

	swingWindow = 5

	doubleBottomTolerance = 0.03
	shoulderTolerance     = 0.05
	resistanceTolerance   = 0.02

	volumeConfirmRatio = 1.2
)

// ReversalSignal aggregates the four bottoming-structure detectors. Each hit
// contributes a fixed weight to PatternScore and raises Confidence; recent
// volume running hot against its 20-bar average adds a confirmation bump.
type ReversalSignal struct {
	DoubleBottom      bool     `json:"double_bottom"`
	InverseHS         bool     `json:"inverse_hs"`
	AscendingTriangle bool     `json:"ascending_triangle"`
	FallingWedge      bool     `json:"falling_wedge"`
	Support           *float64 `json:"support,omitempty"`
	Target            *float64 `json:"target,omitempty"`
	PatternScore      float64  `json:"pattern_score"`
	Confidence        float64  `json:"confidence"`
}

// Detected reports whether any reversal structure fired.
func (r ReversalSignal) Detected() bool {
	return r.DoubleBottom || r.InverseHS || r.AscendingTriangle || r.FallingWedge
}

// DetectReversal runs all four reversal-structure detectors over the last
// lookback bars of the series. Short series produce an empty signal.
func DetectReversal(s market.Series, lookback int) ReversalSignal {
	var sig ReversalSignal
	if lookback <= 0 {
		lookback = ReversalLookback
	}

	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()
	volumes := s.Volumes()

	if ok, support := detectDoubleBottom(closes, lookback); ok {
		sig.DoubleBottom = true
		sig.Support = &support
		sig.PatternScore += 2.0
		sig.Confidence += 0.3
	}
	if ok, neckline := detectInverseHS(closes, lookback); ok {
		sig.InverseHS = true
		sig.Support = &neckline
		sig.PatternScore += 2.5
		sig.Confidence += 0.4
	}
	if ok, breakout := detectAscendingTriangle(closes, highs, lookback); ok {
		sig.AscendingTriangle = true
		sig.Target = &breakout
		sig.PatternScore += 2.0
		sig.Confidence += 0.3
	}
	if ok, target := detectFallingWedge(highs, lows, lookback); ok {
		sig.FallingWedge = true
		sig.Target = &target
		sig.PatternScore += 2.0
		sig.Confidence += 0.3
	}

	// Volume confirmation: the last 10 bars trading >20% above the 20-bar mean.
	if len(volumes) >= 20 {
		recent := mean(tail(volumes, 10))
		avg := mean(tail(volumes, 20))
		if recent > avg*volumeConfirmRatio {
			sig.PatternScore += 0.5
			sig.Confidence += 0.1
		}
	}

	if sig.Confidence > 1 {
		sig.Confidence = 1
	}
	return sig
}

// detectDoubleBottom looks for two swing lows within 3% of each other, the
// second occurring after the first. The implied support is their midpoint.
func detectDoubleBottom(closes []float64, lookback int) (bool, float64) {
	if len(closes) < lookback {
		return false, 0
	}
	recent := tail(closes, lookback)

	lows := swingLows(recent, swingWindow)
	if len(lows) < 2 {
		return false, 0
	}

	byPrice := make([]SwingPoint, len(lows))
	copy(byPrice, lows)
	sort.Slice(byPrice, func(i, j int) bool { return byPrice[i].Price < byPrice[j].Price })

	lowest, second := byPrice[0], byPrice[1]
	if math.Abs((lowest.Price-second.Price)/lowest.Price) >= doubleBottomTolerance {
		return false, 0
	}
	first, last := lowest, second
	if last.Index < first.Index {
		first, last = last, first
	}
	if last.Index-first.Index < swingWindow {
		return false, 0
	}

	// The pattern needs a rebound between the two lows; without one the
	// "two bottoms" are just a flat floor.
	_, rebound := maxOf(recent[first.Index : last.Index+1])
	if rebound < first.Price*(1+doubleBottomTolerance) {
		return false, 0
	}
	return true, (first.Price + last.Price) / 2
}

// detectInverseHS looks for three swing lows where the middle one (the head)
// is the lowest and the flanking shoulders sit within 5% of each other. The
// shoulder midpoint approximates the neckline.
func detectInverseHS(closes []float64, lookback int) (bool, float64) {
	if len(closes) < lookback {
		return false, 0
	}
	recent := tail(closes, lookback)

	lows := swingLows(recent, swingWindow)
	if len(lows) < 3 {
		return false, 0
	}

	headIdx, head := 0, lows[0]
	for i, l := range lows {
		if l.Price < head.Price {
			headIdx, head = i, l
		}
	}
	if headIdx == 0 || headIdx == len(lows)-1 {
		return false, 0
	}

	left := lows[0]
	right := head
	for _, l := range lows[headIdx+1:] {
		if right == head || l.Price < right.Price {
			right = l
		}
	}
	if head.Price >= left.Price || head.Price >= right.Price {
		return false, 0
	}
	if math.Abs((left.Price-right.Price)/left.Price) >= shoulderTolerance {
		return false, 0
	}
	return true, (left.Price + right.Price) / 2
}

// detectAscendingTriangle looks for a horizontal resistance touched at least
// twice while sampled closes make rising lows.
func detectAscendingTriangle(closes, highs []float64, lookback int) (bool, float64) {
	if len(closes) < lookback || len(highs) < lookback {
		return false, 0
	}
	recentCloses := tail(closes, lookback)
	recentHighs := tail(highs, lookback)

	_, resistance := maxOf(recentHighs)
	touches := 0
	for _, h := range recentHighs {
		if math.Abs(h-resistance)/resistance < resistanceTolerance {
			touches++
		}
	}
	if touches < 2 {
		return false, 0
	}

	var sampled []float64
	for i := 0; i < len(recentCloses); i += swingWindow {
		sampled = append(sampled, recentCloses[i])
	}
	if len(sampled) < 3 {
		return false, 0
	}
	if slope(sampled) <= 0 {
		return false, 0
	}
	return true, resistance
}

// detectFallingWedge looks for declining swing highs and swing lows that
// converge (the upper line falling slower than the lower one).
func detectFallingWedge(highs, lows []float64, lookback int) (bool, float64) {
	if len(highs) < lookback || len(lows) < lookback {
		return false, 0
	}
	hs := swingHighs(tail(highs, lookback), swingWindow)
	ls := swingLows(tail(lows, lookback), swingWindow)
	if len(hs) < 2 || len(ls) < 2 {
		return false, 0
	}

	highSlope := pairSlope(hs[0], hs[len(hs)-1])
	lowSlope := pairSlope(ls[0], ls[len(ls)-1])
	if highSlope >= 0 || lowSlope >= 0 || highSlope <= lowSlope {
		return false, 0
	}
	return true, (hs[len(hs)-1].Price + ls[len(ls)-1].Price) / 2
}

func pairSlope(a, b SwingPoint) float64 {
	if b.Index == a.Index {
		return 0
	}
	return (b.Price - a.Price) / float64(b.Index-a.Index)
}

// slope fits a least-squares line over equally spaced samples.
func slope(y []float64) float64 {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / den
}
