package marketctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func trend(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestComputeNeutralOnFlatInputs(t *testing.T) {
	ctx := Compute(flat(100, 5.0), flat(100, 15.0))

	assert.Equal(t, TrendNeutral, ctx.RelativeStrengthTrend)
	assert.Equal(t, VolLow, ctx.VolatilityLevel)
	assert.Equal(t, VolStable, ctx.VolatilityTrend)
	assert.False(t, ctx.IsBearish)
	assert.Zero(t, ctx.AdditiveAdjustment)
}

func TestComputeEmptyInputsAreNeutral(t *testing.T) {
	assert.Equal(t, Neutral(), Compute(nil, nil))
}

func TestComputeCrashingRatio(t *testing.T) {
	// Ratio falling ~0.8%/bar: the 20-bar mean drops well over 5% per window.
	ratio := trend(100, 10.0, -0.08)
	ctx := Compute(ratio, flat(100, 15.0))

	// A steady decline also leaves the ratio at its 60-bar low.
	assert.Equal(t, TrendNearLow, ctx.RelativeStrengthTrend)
	assert.True(t, ctx.IsBearish)
	assert.InDelta(t, -3.0, ctx.AdditiveAdjustment, 1e-9) // -2.0 crashing, -1.0 near low
}

func TestComputeDecliningRatioOffItsLow(t *testing.T) {
	// A mild pullback after a long rise: declining slope but nowhere near the
	// 60-bar low.
	ratio := append(trend(80, 10.0, 0.2), trend(40, 26.0, -0.04)...)
	ctx := Compute(ratio, flat(120, 15.0))

	assert.Equal(t, TrendDeclining, ctx.RelativeStrengthTrend)
	assert.True(t, ctx.IsBearish)
	assert.InDelta(t, -1.0, ctx.AdditiveAdjustment, 1e-9)
}

func TestComputeRisingRatio(t *testing.T) {
	ctx := Compute(trend(100, 10.0, 0.05), flat(100, 15.0))

	assert.Equal(t, TrendRising, ctx.RelativeStrengthTrend)
	assert.False(t, ctx.IsBearish)
	assert.Zero(t, ctx.AdditiveAdjustment)
}

func TestVolatilityLevels(t *testing.T) {
	low := Compute(flat(100, 5.0), flat(100, 12.0))
	assert.Equal(t, VolLow, low.VolatilityLevel)
	assert.Zero(t, low.AdditiveAdjustment)

	moderate := Compute(flat(100, 5.0), flat(100, 25.0))
	assert.Equal(t, VolModerate, moderate.VolatilityLevel)
	assert.InDelta(t, -0.5, moderate.AdditiveAdjustment, 1e-9)

	high := Compute(flat(100, 5.0), flat(100, 35.0))
	assert.Equal(t, VolHigh, high.VolatilityLevel)
	assert.InDelta(t, -1.5, high.AdditiveAdjustment, 1e-9)
}

func TestVolatilityTrend(t *testing.T) {
	rising := Compute(flat(100, 5.0), trend(100, 10.0, 0.5))
	assert.Equal(t, VolRising, rising.VolatilityTrend)

	falling := Compute(flat(100, 5.0), trend(100, 60.0, -0.5))
	assert.Equal(t, VolFalling, falling.VolatilityTrend)
}
