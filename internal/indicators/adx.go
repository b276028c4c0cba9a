package indicators

import "math"

const (
	adxRisingLookback = 5
	adxRisingRatio    = 1.05
	adxRisingFloor    = 20.0
)

// ADXSeries computes a directional-movement trend-strength series using
// rolling-mean smoothing. The warmup region is NaN. An empty slice is returned
// when history is shorter than twice the window.
func ADXSeries(highs, lows, closes []float64, window int) []float64 {
	n := len(closes)
	if n < window*2 || len(highs) != n || len(lows) != n {
		return nil
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr[0], plusDM[0], minusDM[0] = math.NaN(), math.NaN(), math.NaN()
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))

		plusDM[i] = math.Max(highs[i]-highs[i-1], 0)
		minusDM[i] = math.Max(lows[i-1]-lows[i], 0)
	}

	atr := rollingMean(tr, window)
	plusSm := rollingMean(plusDM, window)
	minusSm := rollingMean(minusDM, window)

	dx := make([]float64, n)
	for i := range dx {
		if !isFinite(atr[i]) || !isFinite(plusSm[i]) || !isFinite(minusSm[i]) {
			dx[i] = math.NaN()
			continue
		}
		plusDI := 100 * plusSm[i] / (atr[i] + epsilon)
		minusDI := 100 * minusSm[i] / (atr[i] + epsilon)
		dx[i] = 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI + epsilon)
	}

	return rollingMean(dx, window)
}

// ADXRising reports whether trend strength is accelerating: the latest value
// exceeds the value five bars prior by more than 5% and sits at or above 20.
func ADXRising(adx []float64) bool {
	if len(adx) <= adxRisingLookback {
		return false
	}
	latest := adx[len(adx)-1]
	prior := adx[len(adx)-1-adxRisingLookback]
	if !isFinite(latest) || !isFinite(prior) {
		return false
	}
	return latest > prior*adxRisingRatio && latest >= adxRisingFloor
}

// rollingMean produces a same-length series of trailing window means; entries
// whose window contains a NaN or falls off the front are NaN.
func rollingMean(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		if i+1 < window {
			out[i] = math.NaN()
			continue
		}
		var sum float64
		ok := true
		for j := i + 1 - window; j <= i; j++ {
			if !isFinite(x[j]) {
				ok = false
				break
			}
			sum += x[j]
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}
