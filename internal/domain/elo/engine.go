// Package elo maintains pairwise team strength ratings across a game stream.
package elo

import (
	"fmt"
	"math"
)

// Default rating constants.
const (
	DefaultMean             = 1500
	DefaultK                = 20
	DefaultHomeAdvantage    = 100
	DefaultRegressionMean   = 1505
	DefaultRegressionWeight = 0.25

	scale = 400
)

// Engine holds one live rating per team. It is not safe for concurrent use;
// a pass owns its engine exclusively.
type Engine struct {
	mean      float64
	k         float64
	homeAdv   float64
	regMean   float64
	regWeight float64
	seed      []string

	ratings map[string]float64
}

// New creates an engine with the default constants overridden by opts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		mean:      DefaultMean,
		k:         DefaultK,
		homeAdv:   DefaultHomeAdvantage,
		regMean:   DefaultRegressionMean,
		regWeight: DefaultRegressionWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	e.ratings = make(map[string]float64, len(e.seed))
	for _, team := range e.seed {
		e.ensure(team)
	}
	e.seed = nil
	return e, nil
}

func (e *Engine) validate() error {
	for name, v := range map[string]float64{
		"mean": e.mean, "k": e.k, "home advantage": e.homeAdv,
		"regression mean": e.regMean, "regression weight": e.regWeight,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
		}
	}
	if e.k <= 0 {
		return fmt.Errorf("%w: k must be positive, got %v", ErrInvalidConfig, e.k)
	}
	if e.regWeight < 0 || e.regWeight > 1 {
		return fmt.Errorf("%w: regression weight must be in [0,1], got %v", ErrInvalidConfig, e.regWeight)
	}
	return nil
}

// ensure inserts team at the mean rating if it has never been seen.
func (e *Engine) ensure(team string) float64 {
	r, ok := e.ratings[team]
	if !ok {
		r = e.mean
		e.ratings[team] = r
	}
	return r
}

// read returns the current rating without inserting.
func (e *Engine) read(team string) float64 {
	if r, ok := e.ratings[team]; ok {
		return r
	}
	return e.mean
}

// RatePreGame returns both current ratings. It never mutates state; an
// unseen team reads as the mean.
func (e *Engine) RatePreGame(home, away string) (homePre, awayPre float64) {
	return e.read(home), e.read(away)
}

// WinProbabilities returns P(home wins) and P(away wins) for the given
// ratings, with the home advantage applied to the home side only.
func (e *Engine) WinProbabilities(homeRating, awayRating float64) (pHome, pAway float64) {
	h := homeRating + e.homeAdv
	pHome = 1 / (1 + math.Pow(10, (awayRating-h)/scale))
	pAway = 1 / (1 + math.Pow(10, (h-awayRating)/scale))
	return pHome, pAway
}

// ApplyResult updates both teams from their pre-update ratings. Exactly one
// of homeWon/awayWon must be true.
func (e *Engine) ApplyResult(home, away string, homeWon, awayWon bool) error {
	if homeWon == awayWon {
		return fmt.Errorf("%w: %s vs %s (home won=%t, away won=%t)", ErrUnknownOutcome, home, away, homeWon, awayWon)
	}

	h := e.ensure(home)
	a := e.ensure(away)
	pHome, pAway := e.WinProbabilities(h, a)

	e.ratings[home] = h + e.k*(outcome(homeWon)-pHome)
	e.ratings[away] = a + e.k*(outcome(awayWon)-pAway)
	return nil
}

func outcome(won bool) float64 {
	if won {
		return 1
	}
	return 0
}

// ApplySeasonRegression pulls every known rating toward the regression mean.
func (e *Engine) ApplySeasonRegression() {
	keep := 1 - e.regWeight
	for team, r := range e.ratings {
		e.ratings[team] = r*keep + e.regMean*e.regWeight
	}
}

// Rating returns a team's stored rating and whether the team is known.
func (e *Engine) Rating(team string) (float64, bool) {
	r, ok := e.ratings[team]
	return r, ok
}

// Snapshot copies the current ratings.
func (e *Engine) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(e.ratings))
	for team, r := range e.ratings {
		out[team] = r
	}
	return out
}

// Len returns the number of known teams.
func (e *Engine) Len() int { return len(e.ratings) }

// Mean returns the starting rating.
func (e *Engine) Mean() float64 { return e.mean }
