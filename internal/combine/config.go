package combine

import (
	"time"

	"github.com/okian/tipoff/internal/adapters/mq/worker"
	"github.com/okian/tipoff/internal/config"
	"github.com/okian/tipoff/internal/domain/elo"
	"github.com/okian/tipoff/internal/domain/season"
	"github.com/okian/tipoff/internal/domain/types"
)

// Config holds the inputs of one combine run.
type Config struct {
	StatsPath  string // box-score CSV
	LinesPath  string // betting-line CSV; empty skips the join
	OutputPath string // combined feature CSV
	SQLitePath string // optional feature store

	Weights             []float64   // rolling weights, most recent first
	SweepWeights        [][]float64 // extra vectors evaluated with -sweep
	Sweep               bool
	Workers             int
	QueueSize           int
	Elo                 []elo.Option
	Cutoff              season.Cutoff
	SkipUnknownOutcomes bool
	StrictTeams         bool
	Top                 int // standings rows to print; 0 prints all
}

// FromConfig builds a run configuration from process configuration.
func FromConfig(cfg *config.Config) (*Config, error) {
	cutoff, err := cfg.Cutoff()
	if err != nil {
		return nil, err
	}
	sweep, err := cfg.SweepVectors()
	if err != nil {
		return nil, err
	}
	return &Config{
		StatsPath:           cfg.StatsPath,
		LinesPath:           cfg.LinesPath,
		OutputPath:          cfg.OutputPath,
		SQLitePath:          cfg.SQLitePath,
		Weights:             append([]float64(nil), cfg.RollingWeights...),
		SweepWeights:        sweep,
		Workers:             cfg.SweepWorkers,
		QueueSize:           cfg.QueueSize,
		Elo:                 cfg.EloOptions(),
		Cutoff:              cutoff,
		SkipUnknownOutcomes: cfg.SkipUnknownOutcomes,
	}, nil
}

// Summary reports what a run read, joined and produced.
type Summary struct {
	RunID        string
	Games        int
	Lines        int
	LinesDropped int
	Matched      int
	Duplicates   []string
	Rows         int
	Skipped      int
	Regressions  int
	Standings    []types.Entry
	Sweep        []worker.Result
	Duration     time.Duration
}
