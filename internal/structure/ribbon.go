package structure

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/quantjay/scorerun/internal/market"
)

// Ribbon periods for the short and long exponential-average groups.
var (
	ribbonShortPeriods = []int{3, 5, 8, 10, 12, 15}
	ribbonLongPeriods  = []int{30, 35, 40, 45, 50, 60}
)

const (
	ribbonCompressionPct = 2.5
	ribbonBottomLookback = 20
)

// RibbonState classifies the relationship between the two average groups.
type RibbonState string

const (
	// RibbonCompressed: the ribbons overlap inside a narrow band; no trend.
	RibbonCompressed RibbonState = "compressed"
	// RibbonBullish: the short group sits entirely above the long group.
	RibbonBullish RibbonState = "bullish"
	// RibbonBearish: the short group sits entirely below the long group.
	RibbonBearish RibbonState = "bearish"
	// RibbonReversal: bearish ribbons with price at a recent low and the short
	// group turning up or compressing into the long group. The bottom-reversal
	// signal.
	RibbonReversal RibbonState = "reversal"
	// RibbonUnknown: not enough history to classify.
	RibbonUnknown RibbonState = "unknown"
)

// RibbonSignal is the ribbon-state classification with its measurements.
type RibbonSignal struct {
	State          RibbonState `json:"state"`
	ShortAvg       float64     `json:"short_avg,omitempty"`
	LongAvg        float64     `json:"long_avg,omitempty"`
	SpreadPct      float64     `json:"spread_pct"`
	TotalSpreadPct float64     `json:"total_spread_pct"`
	AtBottom       bool        `json:"at_bottom"`
	TurningUp      bool        `json:"turning_up"`
}

// bottom proximity and turn detection relax on longer timeframes, where a
// single bar already spans weeks.
func ribbonBottomParams(tf market.Timeframe) (lookback int, nearLowPct float64, turnLookback int) {
	switch tf {
	case market.Timeframe2D:
		return 15, 10.0, 2
	case market.Timeframe1W:
		return 12, 12.0, 2
	case market.Timeframe2W:
		return 8, 15.0, 1
	case market.Timeframe1M:
		return 6, 18.0, 1
	default:
		return ribbonBottomLookback, 8.0, 3
	}
}

func longTimeframe(tf market.Timeframe) bool {
	return tf == market.Timeframe1W || tf == market.Timeframe2W || tf == market.Timeframe1M
}

// ClassifyRibbon computes the short and long exponential-average groups and
// classifies the current state. Needs enough history for the slowest average
// plus the bottom lookback; otherwise returns RibbonUnknown.
func ClassifyRibbon(s market.Series, tf market.Timeframe) RibbonSignal {
	closes := s.Closes()
	maxPeriod := ribbonLongPeriods[len(ribbonLongPeriods)-1]
	if len(closes) < maxPeriod+ribbonBottomLookback {
		return RibbonSignal{State: RibbonUnknown}
	}

	price := closes[len(closes)-1]
	if price <= 0 || math.IsNaN(price) {
		return RibbonSignal{State: RibbonUnknown}
	}

	short := ribbonGroup(closes, ribbonShortPeriods)
	long := ribbonGroup(closes, ribbonLongPeriods)

	last := len(closes) - 1
	shortAvg := groupMean(short, last)
	longAvg := groupMean(long, last)
	shortMin, shortMax := groupExtremes(short, last)
	longMin, longMax := groupExtremes(long, last)

	spreadPct := (longAvg - shortAvg) / price * 100
	totalSpreadPct := (math.Max(shortMax, longMax) - math.Min(shortMin, longMin)) / price * 100

	lookback, nearLowPct, turnLookback := ribbonBottomParams(tf)
	low := closes[len(closes)-1]
	for _, v := range tail(closes, lookback) {
		if v < low {
			low = v
		}
	}
	atBottom := low > 0 && price <= low*(1+nearLowPct/100)

	turningUp := false
	if last-turnLookback >= 0 {
		turningUp = shortAvg > groupMean(short, last-turnLookback)
	}
	if longTimeframe(tf) && last-2*turnLookback >= 0 {
		// On long timeframes a compressing ribbon at the bottom counts as a turn.
		prev := groupMean(short, last-2*turnLookback)
		compressing := math.Abs(shortAvg-longAvg) < math.Abs(prev-longAvg)*0.9
		turningUp = turningUp || (atBottom && compressing && spreadPct < 8)
	}

	sig := RibbonSignal{
		ShortAvg:       shortAvg,
		LongAvg:        longAvg,
		SpreadPct:      spreadPct,
		TotalSpreadPct: totalSpreadPct,
		AtBottom:       atBottom,
		TurningUp:      turningUp,
	}

	switch {
	case totalSpreadPct < ribbonCompressionPct:
		sig.State = RibbonCompressed
	case shortMin > longMax:
		sig.State = RibbonBullish
	case shortMax < longMin:
		sig.State = RibbonBearish
		if atBottom && (longTimeframe(tf) || turningUp) {
			sig.State = RibbonReversal
		}
	default:
		// Mixed ordering: expansion without clear dominance.
		switch {
		case atBottom && (longTimeframe(tf) || turningUp) && spreadPct < 5:
			sig.State = RibbonReversal
		case totalSpreadPct < ribbonCompressionPct*1.5:
			sig.State = RibbonCompressed
		case shortAvg > longAvg:
			sig.State = RibbonBullish
		default:
			sig.State = RibbonBearish
		}
	}
	return sig
}

func ribbonGroup(closes []float64, periods []int) [][]float64 {
	group := make([][]float64, len(periods))
	for i, p := range periods {
		group[i] = talib.Ema(closes, p)
	}
	return group
}

func groupMean(group [][]float64, idx int) float64 {
	var sum float64
	for _, series := range group {
		sum += series[idx]
	}
	return sum / float64(len(group))
}

func groupExtremes(group [][]float64, idx int) (min, max float64) {
	min, max = group[0][idx], group[0][idx]
	for _, series := range group[1:] {
		v := series[idx]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
