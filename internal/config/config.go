// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - New() returns defaults; Load layers .env, YAML and environment on top.
// - Engine constants are validated by the engines' own validators.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/okian/tipoff/internal/domain/elo"
	"github.com/okian/tipoff/internal/domain/rolling"
	"github.com/okian/tipoff/internal/domain/season"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" json:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" json:"addr"`

	// Input and output paths for the batch combiner. SQLitePath is optional.
	StatsPath  string `koanf:"stats_path" json:"stats_path"`
	LinesPath  string `koanf:"lines_path" json:"lines_path"`
	OutputPath string `koanf:"output_path" json:"output_path"`
	SQLitePath string `koanf:"sqlite_path" json:"sqlite_path"`

	// RollingWeights are applied most recent game first and must sum to 1.
	RollingWeights []float64 `koanf:"rolling_weights" json:"rolling_weights"`

	// SweepWeights lists extra weight vectors for the sweep, each written as
	// space-separated numbers ("0.5 0.5"). In env they are comma-separated.
	SweepWeights []string `koanf:"sweep_weights" json:"sweep_weights"`

	// Elo constants.
	EloMean             float64 `koanf:"elo_mean" json:"elo_mean"`
	EloK                float64 `koanf:"elo_k" json:"elo_k"`
	EloHomeAdvantage    float64 `koanf:"elo_home_advantage" json:"elo_home_advantage"`
	EloRegressionMean   float64 `koanf:"elo_regression_mean" json:"elo_regression_mean"`
	EloRegressionWeight float64 `koanf:"elo_regression_weight" json:"elo_regression_weight"`

	// Season boundary, month and day.
	SeasonCutoffMonth int `koanf:"season_cutoff_month" json:"season_cutoff_month"`
	SeasonCutoffDay   int `koanf:"season_cutoff_day" json:"season_cutoff_day"`

	// QueueSize bounds the producer/consumer game queue.
	QueueSize int `koanf:"queue_size" json:"queue_size"`

	// SweepWorkers sets how many passes run at once during a sweep.
	SweepWorkers int `koanf:"sweep_workers" json:"sweep_workers"`

	// SkipUnknownOutcomes drops undecided records instead of aborting.
	SkipUnknownOutcomes bool `koanf:"skip_unknown_outcomes" json:"skip_unknown_outcomes"`

	// MaxRequestGames caps the number of games in one HTTP request.
	MaxRequestGames int `koanf:"max_request_games" json:"max_request_games"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		StatsPath:           "stats_out.csv",
		LinesPath:           "bettingline_out.csv",
		OutputPath:          "combined_out.csv",
		RollingWeights:      append([]float64(nil), rolling.DefaultWeights...),
		EloMean:             elo.DefaultMean,
		EloK:                elo.DefaultK,
		EloHomeAdvantage:    elo.DefaultHomeAdvantage,
		EloRegressionMean:   elo.DefaultRegressionMean,
		EloRegressionWeight: elo.DefaultRegressionWeight,
		SeasonCutoffMonth:   int(season.DefaultMonth),
		SeasonCutoffDay:     season.DefaultDay,
		QueueSize:           1024,
		SweepWorkers:        runtime.NumCPU(),
		MaxRequestGames:     20_000,
	}
}

// EloOptions returns the Elo engine options described by c.
func (c *Config) EloOptions() []elo.Option {
	return []elo.Option{
		elo.WithMean(c.EloMean),
		elo.WithK(c.EloK),
		elo.WithHomeAdvantage(c.EloHomeAdvantage),
		elo.WithRegression(c.EloRegressionMean, c.EloRegressionWeight),
	}
}

// Cutoff returns the validated season cutoff.
func (c *Config) Cutoff() (season.Cutoff, error) {
	return season.New(c.SeasonCutoffMonth, c.SeasonCutoffDay)
}

// SweepVectors parses SweepWeights.
func (c *Config) SweepVectors() ([][]float64, error) {
	out := make([][]float64, 0, len(c.SweepWeights))
	for _, s := range c.SweepWeights {
		if strings.TrimSpace(s) == "" {
			continue
		}
		w, err := ParseWeights(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// ParseWeights parses one whitespace-separated weight vector and validates it
// as rolling weights. Commas separate vectors in a sweep list, so they are
// not accepted here.
func ParseWeights(s string) ([]float64, error) {
	fields := strings.Fields(s)
	w := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight %q: %w", ErrInvalidConfig, f, err)
		}
		w = append(w, v)
	}
	if err := rolling.ValidateWeights(w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return w, nil
}

// Validate checks every field, delegating engine constants to the engines.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if err := rolling.ValidateWeights(c.RollingWeights); err != nil {
		return fmt.Errorf("%w: rolling_weights: %w", ErrInvalidConfig, err)
	}
	if _, err := c.SweepVectors(); err != nil {
		return fmt.Errorf("sweep_weights: %w", err)
	}
	if _, err := elo.New(c.EloOptions()...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Cutoff(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if c.SweepWorkers < 1 {
		return fmt.Errorf("%w: sweep_workers must be positive", ErrInvalidConfig)
	}
	if c.MaxRequestGames < 1 {
		return fmt.Errorf("%w: max_request_games must be positive", ErrInvalidConfig)
	}
	return nil
}
