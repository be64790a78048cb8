// Package config holds the engine configuration. Values come from
// Default, optionally overlaid by a TOML file and then by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Weather configures the forecast service.
type Weather struct {
	Endpoint     string   `toml:"endpoint"`
	APIKey       string   `toml:"api_key"`
	SampleWindow int      `toml:"sample_window"`
	Timeout      Duration `toml:"timeout"`
}

// Yield configures the prediction service.
type Yield struct {
	Endpoint        string   `toml:"endpoint"`
	DefaultNutrient string   `toml:"default_nutrient"`
	Timeout         Duration `toml:"timeout"`
}

// Fetch bounds the per-cell fan-out.
type Fetch struct {
	MaxInFlight  int `toml:"max_in_flight"`
	CacheEntries int `toml:"cache_entries"`
}

// Rain tunes the raindrop pool.
type Rain struct {
	MaxDrops      int     `toml:"max_drops"`
	Speed         float64 `toml:"speed"`
	Variance      float64 `toml:"variance"`
	SpawnAttempts int     `toml:"spawn_attempts"`
	MinHeight     float64 `toml:"min_height"`
	MaxHeight     float64 `toml:"max_height"`
}

// Cloud tunes cloud elements.
type Cloud struct {
	Height float64 `toml:"height"`
	Bob    float64 `toml:"bob"`
}

// Wind tunes wind streaks.
type Wind struct {
	MinPerCell int     `toml:"min_per_cell"`
	MaxPerCell int     `toml:"max_per_cell"`
	WrapRadius float64 `toml:"wrap_radius"`
}

// View configures the interactive viewer.
type View struct {
	Width     int        `toml:"width"`
	Height    int        `toml:"height"`
	TPS       int        `toml:"tps"`
	Seed      int64      `toml:"seed"`
	Camera    [3]float64 `toml:"camera"`
	LogLevel  string     `toml:"log_level"`
	LogFormat string     `toml:"log_format"`
}

// Config is the root configuration.
type Config struct {
	Weather Weather `toml:"weather"`
	Yield   Yield   `toml:"yield"`
	Fetch   Fetch   `toml:"fetch"`
	Rain    Rain    `toml:"rain"`
	Cloud   Cloud   `toml:"cloud"`
	Wind    Wind    `toml:"wind"`
	View    View    `toml:"view"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Weather: Weather{
			Endpoint:     "https://api.open-meteo.com/v1/forecast",
			SampleWindow: 5,
			Timeout:      Duration(10 * time.Second),
		},
		Yield: Yield{
			Endpoint:        "http://localhost:8089/predict_yield",
			DefaultNutrient: "Calories",
			Timeout:         Duration(10 * time.Second),
		},
		Fetch: Fetch{MaxInFlight: 16, CacheEntries: 1024},
		Rain: Rain{
			MaxDrops:      500,
			Speed:         0.1,
			Variance:      0.05,
			SpawnAttempts: 5,
			MinHeight:     0,
			MaxHeight:     5,
		},
		Cloud: Cloud{Height: 5, Bob: 0.2},
		Wind:  Wind{MinPerCell: 5, MaxPerCell: 9, WrapRadius: 0.8},
		View: View{
			Width:     1280,
			Height:    800,
			TPS:       60,
			Seed:      42,
			Camera:    [3]float64{5, 13, -25},
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Weather.SampleWindow <= 0 {
		errs = append(errs, fmt.Errorf("weather.sample_window must be positive, got %d", c.Weather.SampleWindow))
	}
	if c.Fetch.MaxInFlight <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_in_flight must be positive, got %d", c.Fetch.MaxInFlight))
	}
	if c.Fetch.CacheEntries <= 0 {
		errs = append(errs, fmt.Errorf("fetch.cache_entries must be positive, got %d", c.Fetch.CacheEntries))
	}
	if c.Rain.MaxDrops < 0 {
		errs = append(errs, fmt.Errorf("rain.max_drops must be non-negative, got %d", c.Rain.MaxDrops))
	}
	if c.Rain.MaxHeight <= c.Rain.MinHeight {
		errs = append(errs, fmt.Errorf("rain.max_height (%g) must exceed rain.min_height (%g)", c.Rain.MaxHeight, c.Rain.MinHeight))
	}
	if c.Wind.MinPerCell < 0 || c.Wind.MaxPerCell < c.Wind.MinPerCell {
		errs = append(errs, fmt.Errorf("wind per-cell range [%d,%d] is invalid", c.Wind.MinPerCell, c.Wind.MaxPerCell))
	}
	if c.Wind.WrapRadius <= 0 {
		errs = append(errs, fmt.Errorf("wind.wrap_radius must be positive, got %g", c.Wind.WrapRadius))
	}
	return errors.Join(errs...)
}

// Bind attaches the command-line overridable fields to fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Weather.Endpoint, "weather-url", c.Weather.Endpoint, "forecast service endpoint")
	fs.StringVar(&c.Weather.APIKey, "weather-key", c.Weather.APIKey, "forecast service api key")
	fs.StringVar(&c.Yield.Endpoint, "yield-url", c.Yield.Endpoint, "yield prediction endpoint")
	fs.StringVar(&c.Yield.DefaultNutrient, "nutrient", c.Yield.DefaultNutrient, "initial nutrient")
	fs.IntVar(&c.Fetch.MaxInFlight, "inflight", c.Fetch.MaxInFlight, "maximum concurrent per-cell requests")
	fs.IntVar(&c.View.TPS, "tps", c.View.TPS, "ticks per second")
	fs.Int64Var(&c.View.Seed, "seed", c.View.Seed, "particle seed")
	fs.StringVar(&c.View.LogLevel, "log-level", c.View.LogLevel, "log level")
}

// Duration is a time.Duration that decodes from TOML strings like "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
