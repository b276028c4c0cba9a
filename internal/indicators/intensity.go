package indicators

import (
	"math"
	"sort"

	talib "github.com/markcheno/go-talib"
)

// PriceIntensity combines absolute momentum, volume strength and inverse
// volatility, divided by price extension from its own average, then normalizes
// the latest reading to 0..100 against the 5th/95th percentile of the trailing
// distribution. Percentiles rather than min/max keep one blowout bar from
// flattening the scale. Nil when history is shorter than four periods or the
// latest reading is degenerate.
func PriceIntensity(closes, volumes []float64, period int) *float64 {
	n := len(closes)
	if n < period*4 || len(volumes) != n {
		return nil
	}

	volMA := rollingMean(volumes, period)
	priceMA := rollingMean(closes, period*2)

	vol := talib.StdDev(closes, period, 1.0)
	for i := 0; i < period-1 && i < n; i++ {
		vol[i] = math.NaN()
	}
	volAvg := rollingMean(vol, period*2)

	raw := make([]float64, 0, n)
	var latest float64 = math.NaN()
	for i := 0; i < n; i++ {
		if i < period || !isFinite(volMA[i]) || !isFinite(priceMA[i]) ||
			!isFinite(vol[i]) || !isFinite(volAvg[i]) || closes[i-period] == 0 {
			continue
		}
		momentum := math.Abs(closes[i]/closes[i-period] - 1)
		strength := volumes[i] / (volMA[i] + epsilon)
		compression := volAvg[i] / (vol[i] + epsilon)
		extension := math.Abs((closes[i]-priceMA[i])/(priceMA[i]+epsilon)) + 0.01

		pi := momentum * strength * compression / extension
		if !isFinite(pi) {
			continue
		}
		raw = append(raw, pi)
		if i == n-1 {
			latest = pi
		}
	}
	if len(raw) == 0 || !isFinite(latest) {
		return nil
	}

	lo := quantile(raw, 0.05)
	hi := quantile(raw, 0.95)
	norm := (latest - lo) / (hi - lo + epsilon) * 100
	if norm < 0 {
		norm = 0
	} else if norm > 100 {
		norm = 100
	}
	return &norm
}

// quantile computes the q-th quantile with linear interpolation between ranks.
func quantile(x []float64, q float64) float64 {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
