package app

import (
	"github.com/okian/tipoff/internal/domain/elo"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/season"
	"github.com/okian/tipoff/pkg/logger"
)

// Option applies a configuration option to the Assembler.
type Option func(*Assembler)

// WithWeights sets the rolling weights, most recent game first.
func WithWeights(weights []float64) Option {
	return func(a *Assembler) {
		a.weights = append([]float64(nil), weights...)
	}
}

// WithStats sets the statistic set carried by every record.
func WithStats(stats model.StatSet) Option {
	return func(a *Assembler) {
		a.stats = stats
	}
}

// WithElo forwards options to the Elo engine.
func WithElo(opts ...elo.Option) Option {
	return func(a *Assembler) {
		a.eloOpts = append(a.eloOpts, opts...)
	}
}

// WithCutoff sets the season boundary.
func WithCutoff(c season.Cutoff) Option {
	return func(a *Assembler) {
		a.cutoff = c
	}
}

// WithTeams seeds the Elo table with a known universe so regression and
// standings include teams before their first game.
func WithTeams(teams ...string) Option {
	return func(a *Assembler) {
		a.eloOpts = append(a.eloOpts, elo.WithTeams(teams...))
	}
}

// WithSkipUnknownOutcomes drops records without exactly one W and one L
// instead of aborting the pass.
func WithSkipUnknownOutcomes(skip bool) Option {
	return func(a *Assembler) {
		a.skipUnknown = skip
	}
}

// WithLogger sets a custom logger for the assembler.
func WithLogger(l logger.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRunID tags every emitted row.
func WithRunID(id string) Option {
	return func(a *Assembler) {
		if id != "" {
			a.runID = id
		}
	}
}
