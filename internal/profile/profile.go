// Package profile holds the per-category scoring parameter sets. Categories
// group instruments with similar volatility and trend behavior; each maps to a
// fixed parameter profile resolved by name. Resolution is pure: unknown names
// fall back to the default profile, never an error.
package profile

// CategoryProfile parameterizes the scoring engine for one instrument
// category. Thresholds shift where the oversold and trend-strength boundaries
// sit; multipliers scale the size of specific bonus and penalty layers.
type CategoryProfile struct {
	Name string `json:"name" yaml:"name"`

	// Threshold parameters.
	OversoldThreshold      float64 `json:"oversold_threshold" yaml:"oversold_threshold"`
	OverboughtThreshold    float64 `json:"overbought_threshold" yaml:"overbought_threshold"`
	TrendStrengthThreshold float64 `json:"trend_strength_threshold" yaml:"trend_strength_threshold"`
	ModerateTrendThreshold float64 `json:"moderate_trend_threshold" yaml:"moderate_trend_threshold"`
	VeryStrongTrend        float64 `json:"very_strong_trend" yaml:"very_strong_trend"`
	CapitulationThreshold  float64 `json:"capitulation_threshold" yaml:"capitulation_threshold"`

	// Multiplier parameters.
	VolumeMultiplier        float64 `json:"volume_multiplier" yaml:"volume_multiplier"`
	OverextensionMultiplier float64 `json:"overextension_multiplier" yaml:"overextension_multiplier"`
	ExplosiveMultiplier     float64 `json:"explosive_multiplier" yaml:"explosive_multiplier"`
	TrendContinuationBonus  float64 `json:"trend_continuation_bonus" yaml:"trend_continuation_bonus"`

	// Behavior switches.
	MeanReversion   bool `json:"mean_reversion" yaml:"mean_reversion"`
	ExtremeOversold bool `json:"extreme_oversold" yaml:"extreme_oversold"`
}

// DefaultName is the profile used when a category has no registration.
const DefaultName = "default"

// defaultProfile is the conservative baseline every unknown category gets.
func defaultProfile() CategoryProfile {
	return CategoryProfile{
		Name:                    DefaultName,
		OversoldThreshold:       40,
		OverboughtThreshold:     70,
		TrendStrengthThreshold:  25,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         40,
		CapitulationThreshold:   -20,
		VolumeMultiplier:        1.0,
		OverextensionMultiplier: 1.0,
		ExplosiveMultiplier:     1.0,
		TrendContinuationBonus:  2.0,
	}
}

// registry maps category names to their tuned profiles. Built once at init;
// Resolve never mutates it.
var registry = buildRegistry()

func buildRegistry() map[string]CategoryProfile {
	reg := make(map[string]CategoryProfile)

	add := func(p CategoryProfile) {
		reg[p.Name] = p
	}

	// High-beta crypto: deep oversold entries fire earlier, volume spikes and
	// explosive bottoms count double, overextension is tolerated.
	add(CategoryProfile{
		Name:                    "cryptocurrencies",
		OversoldThreshold:       35,
		OverboughtThreshold:     70,
		TrendStrengthThreshold:  20,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         40,
		CapitulationThreshold:   -20,
		VolumeMultiplier:        2.0,
		OverextensionMultiplier: 0.5,
		ExplosiveMultiplier:     1.5,
		TrendContinuationBonus:  2.0,
		MeanReversion:           true,
		ExtremeOversold:         true,
	})

	// Large-cap tech: mean-reverting, moderately volume-sensitive.
	tech := CategoryProfile{
		Name:                    "tech_stocks",
		OversoldThreshold:       35,
		OverboughtThreshold:     70,
		TrendStrengthThreshold:  25,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         40,
		CapitulationThreshold:   -20,
		VolumeMultiplier:        1.5,
		OverextensionMultiplier: 0.75,
		ExplosiveMultiplier:     1.0,
		TrendContinuationBonus:  2.0,
		MeanReversion:           true,
	}
	add(tech)
	tech.Name = "faang_hot_stocks"
	add(tech)

	// Semiconductors trade mean-reverting like the rest of tech but carry no
	// tuned parameter set; they run on the baseline numbers.
	semis := defaultProfile()
	semis.Name = "semiconductors"
	semis.MeanReversion = true
	add(semis)

	// Miners and HPC names: capitulation bar sits deeper, explosive bottoms
	// and trend continuation pay the most of any category.
	add(CategoryProfile{
		Name:                    "miner_hpc",
		OversoldThreshold:       40,
		OverboughtThreshold:     75,
		TrendStrengthThreshold:  25,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         35,
		CapitulationThreshold:   -30,
		VolumeMultiplier:        1.5,
		OverextensionMultiplier: 0.9,
		ExplosiveMultiplier:     2.0,
		TrendContinuationBonus:  2.5,
	})

	add(CategoryProfile{
		Name:                    "silver_miners_esg",
		OversoldThreshold:       40,
		OverboughtThreshold:     75,
		TrendStrengthThreshold:  25,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         35,
		CapitulationThreshold:   -20,
		VolumeMultiplier:        1.5,
		OverextensionMultiplier: 0.9,
		ExplosiveMultiplier:     2.0,
		TrendContinuationBonus:  2.5,
	})

	// Defensive/broad-market instruments: neutral multipliers across the
	// board, slightly tighter oversold bar.
	defensive := CategoryProfile{
		Name:                    "precious_metals",
		OversoldThreshold:       30,
		OverboughtThreshold:     70,
		TrendStrengthThreshold:  25,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         40,
		CapitulationThreshold:   -20,
		VolumeMultiplier:        1.0,
		OverextensionMultiplier: 1.0,
		ExplosiveMultiplier:     1.0,
		TrendContinuationBonus:  2.0,
	}
	add(defensive)
	defensive.Name = "index_etfs"
	add(defensive)

	// Emerging-theme growth baskets share one profile: wide overbought band,
	// elevated volume weight, mild overextension tolerance.
	growth := CategoryProfile{
		OversoldThreshold:       40,
		OverboughtThreshold:     75,
		TrendStrengthThreshold:  25,
		ModerateTrendThreshold:  15,
		VeryStrongTrend:         35,
		CapitulationThreshold:   -20,
		VolumeMultiplier:        1.5,
		OverextensionMultiplier: 0.9,
		ExplosiveMultiplier:     1.5,
		TrendContinuationBonus:  2.0,
	}
	for _, name := range []string{
		"quantum",
		"battery_storage",
		"clean_energy_materials",
		"renewable_energy",
		"next_gen_automotive",
	} {
		growth.Name = name
		add(growth)
	}

	add(defaultProfile())
	return reg
}

// Override registers or replaces profiles wholesale. Meant for config-driven
// tuning at startup; the registry is not synchronized, so call it before any
// Resolve traffic. Entries without a name are ignored.
func Override(profiles []CategoryProfile) {
	for _, p := range profiles {
		if p.Name == "" {
			continue
		}
		registry[p.Name] = p
	}
}

// Resolve returns the profile registered for category, or the default profile
// when the category is unknown or empty. The returned value is a copy; callers
// may mutate it freely.
func Resolve(category string) CategoryProfile {
	if p, ok := registry[category]; ok {
		return p
	}
	return registry[DefaultName]
}

// Categories lists every registered category name, default included. Order is
// unspecified.
func Categories() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
