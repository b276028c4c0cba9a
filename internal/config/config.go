// Package config loads the screener configuration: where the bar cache lives,
// which HTTP source serves daily bars, and which symbols belong to which
// category. A missing file yields the documented defaults rather than an
// error; a present but malformed file is an error.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantjay/scorerun/internal/profile"
)

// Config is the top-level screener configuration.
type Config struct {
	Cache      CacheConfig       `yaml:"cache"`
	Source     SourceConfig      `yaml:"source"`
	Context    ContextConfig     `yaml:"context"`
	Universe   map[string]Group  `yaml:"universe"`
	Timeframes []string          `yaml:"timeframes"`
	Profiles   []ProfileOverride `yaml:"profiles"`
}

// CacheConfig locates the embedded bar cache.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig describes the HTTP daily-bar endpoint and its client limits.
type SourceConfig struct {
	BaseURL        string   `yaml:"base_url"`
	RequestsPerSec float64  `yaml:"requests_per_sec"`
	Burst          int      `yaml:"burst"`
	Timeout        Duration `yaml:"timeout"`
}

// Duration is a time.Duration that reads from YAML in the usual "15s" form.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ContextConfig names the symbols the macro-context provider reads. When
// disabled, scoring runs with a neutral context.
type ContextConfig struct {
	Enabled     bool   `yaml:"enabled"`
	IndexSymbol string `yaml:"index_symbol"`
	GoldSymbol  string `yaml:"gold_symbol"`
	VolSymbol   string `yaml:"vol_symbol"`
}

// ProfileOverride is a partial category-profile tuning. Fields absent from the
// YAML keep the values of the registered profile of the same name (or of the
// default profile for a new category).
type ProfileOverride struct {
	profile.CategoryProfile
}

func (o *ProfileOverride) UnmarshalYAML(value *yaml.Node) error {
	var probe struct {
		Name string `yaml:"name"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}
	base := profile.Resolve(probe.Name)
	base.Name = probe.Name
	if err := value.Decode(&base); err != nil {
		return err
	}
	o.CategoryProfile = base
	return nil
}

// Group is one category's symbol universe.
type Group struct {
	Symbols []string `yaml:"symbols"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Cache: CacheConfig{Path: "scorerun.db"},
		Source: SourceConfig{
			BaseURL:        "https://stooq.com/q/d/l",
			RequestsPerSec: 2,
			Burst:          4,
			Timeout:        Duration(15 * time.Second),
		},
		Context: ContextConfig{
			IndexSymbol: "^SPX",
			GoldSymbol:  "XAUUSD",
			VolSymbol:   "^VIX",
		},
		Universe: map[string]Group{
			"cryptocurrencies": {Symbols: []string{"BTC-USD", "ETH-USD"}},
			"index_etfs":       {Symbols: []string{"SPY", "QQQ"}},
		},
		Timeframes: []string{"1W", "2W"},
	}
}

// Load reads the YAML config at path, overlaying the defaults. An empty path
// or a missing file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields other components rely on.
func (c Config) Validate() error {
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path must not be empty")
	}
	if c.Source.RequestsPerSec <= 0 {
		return fmt.Errorf("source.requests_per_sec must be positive, got %v", c.Source.RequestsPerSec)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be positive, got %v", time.Duration(c.Source.Timeout))
	}
	for _, tf := range c.Timeframes {
		switch tf {
		case "2D", "1W", "2W", "1M":
		default:
			return fmt.Errorf("unknown timeframe %q in config", tf)
		}
	}
	for i, o := range c.Profiles {
		if o.Name == "" {
			return fmt.Errorf("profiles[%d] is missing a name", i)
		}
	}
	return nil
}

// ProfileOverrides unwraps the configured tunings for profile.Override.
func (c Config) ProfileOverrides() []profile.CategoryProfile {
	out := make([]profile.CategoryProfile, 0, len(c.Profiles))
	for _, o := range c.Profiles {
		out = append(out, o.CategoryProfile)
	}
	return out
}

// Symbols flattens the universe into (category, symbol) pairs with a stable
// order per category.
func (c Config) Symbols() []CategorySymbol {
	var out []CategorySymbol
	for category, group := range c.Universe {
		for _, sym := range group.Symbols {
			out = append(out, CategorySymbol{Category: category, Symbol: sym})
		}
	}
	return out
}

// CategorySymbol pairs one symbol with the category it is screened under.
type CategorySymbol struct {
	Category string
	Symbol   string
}
