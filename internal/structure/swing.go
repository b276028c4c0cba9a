// Package structure holds the geometric pattern detectors: reversal
// structures, wave position, breakout-from-base and the moving-average ribbon
// state. All of them are built on the swing-point primitive below plus plain
// closing-price comparisons; none consult computed indicators. Detectors return
// a neutral signal instead of erroring when the series is too short.
package structure

// SwingPoint is a local extreme over a symmetric bar window.
type SwingPoint struct {
	Index int
	Price float64
}

// swingLows returns the indices where x[i] is the minimum of [i-k, i+k].
func swingLows(x []float64, k int) []SwingPoint {
	return swings(x, k, func(v, extreme float64) bool { return v <= extreme })
}

// swingHighs returns the indices where x[i] is the maximum of [i-k, i+k].
func swingHighs(x []float64, k int) []SwingPoint {
	return swings(x, k, func(v, extreme float64) bool { return v >= extreme })
}

func swings(x []float64, k int, beats func(v, other float64) bool) []SwingPoint {
	var out []SwingPoint
	for i := k; i < len(x)-k; i++ {
		isExtreme := true
		for j := i - k; j <= i+k; j++ {
			if j == i {
				continue
			}
			if !beats(x[i], x[j]) {
				isExtreme = false
				break
			}
		}
		if isExtreme {
			out = append(out, SwingPoint{Index: i, Price: x[i]})
		}
	}
	return out
}

// Signal is the common outcome shape shared by all detectors.
type Signal struct {
	Detected   bool     `json:"detected"`
	Confidence float64  `json:"confidence"`
	Support    *float64 `json:"support,omitempty"`
	Target     *float64 `json:"target,omitempty"`
}

func tail(x []float64, n int) []float64 {
	if len(x) <= n {
		return x
	}
	return x[len(x)-n:]
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func maxOf(x []float64) (int, float64) {
	idx, best := 0, x[0]
	for i, v := range x {
		if v > best {
			idx, best = i, v
		}
	}
	return idx, best
}

func minOf(x []float64) (int, float64) {
	idx, best := 0, x[0]
	for i, v := range x {
		if v < best {
			idx, best = i, v
		}
	}
	return idx, best
}
