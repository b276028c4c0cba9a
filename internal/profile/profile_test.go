package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownCategory(t *testing.T) {
	p := Resolve("cryptocurrencies")
	assert.Equal(t, "cryptocurrencies", p.Name)
	assert.Equal(t, 35.0, p.OversoldThreshold)
	assert.Equal(t, 20.0, p.TrendStrengthThreshold)
	assert.Equal(t, 2.0, p.VolumeMultiplier)
	assert.Equal(t, 1.5, p.ExplosiveMultiplier)
	assert.True(t, p.MeanReversion)
	assert.True(t, p.ExtremeOversold)
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	p := Resolve("no_such_category")
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, 40.0, p.OversoldThreshold)
	assert.Equal(t, 1.0, p.ExplosiveMultiplier)
	assert.False(t, p.MeanReversion)

	assert.Equal(t, Resolve(""), p)
}

func TestResolveReturnsCopy(t *testing.T) {
	p := Resolve("tech_stocks")
	p.OversoldThreshold = 99

	again := Resolve("tech_stocks")
	assert.Equal(t, 35.0, again.OversoldThreshold)
}

func TestExtremeOversoldOnlyForCryptocurrencies(t *testing.T) {
	for _, name := range Categories() {
		p := Resolve(name)
		if name == "cryptocurrencies" {
			assert.True(t, p.ExtremeOversold)
		} else {
			assert.False(t, p.ExtremeOversold, name)
		}
	}
}

func TestSemiconductorsMeanRevertOnBaselineNumbers(t *testing.T) {
	p := Resolve("semiconductors")
	assert.True(t, p.MeanReversion)

	base := defaultProfile()
	base.Name, base.MeanReversion = p.Name, p.MeanReversion
	assert.Equal(t, base, p)
}

func TestSharedGrowthProfiles(t *testing.T) {
	quantum := Resolve("quantum")
	renewable := Resolve("renewable_energy")

	require.NotEqual(t, quantum.Name, renewable.Name)
	quantum.Name, renewable.Name = "", ""
	assert.Equal(t, quantum, renewable)
}

func TestOverrideRegistersAndReplaces(t *testing.T) {
	original := Resolve("miner_hpc")
	t.Cleanup(func() {
		registry[original.Name] = original
		delete(registry, "custom_basket")
	})

	tuned := original
	tuned.VolumeMultiplier = 3.0
	fresh := defaultProfile()
	fresh.Name = "custom_basket"
	Override([]CategoryProfile{tuned, fresh, {}})

	assert.Equal(t, 3.0, Resolve("miner_hpc").VolumeMultiplier)
	assert.Equal(t, "custom_basket", Resolve("custom_basket").Name)
	// The unnamed entry is dropped rather than clobbering the default.
	assert.Equal(t, 40.0, Resolve("").OversoldThreshold)
}

func TestCategoriesIncludesDefault(t *testing.T) {
	names := Categories()
	assert.Contains(t, names, DefaultName)
	assert.Contains(t, names, "miner_hpc")
	assert.GreaterOrEqual(t, len(names), 12)
}
