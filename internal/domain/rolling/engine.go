// Package rolling computes per-team weighted rolling averages of per-game
// statistics using only games recorded before the one being featured.
package rolling

import (
	"fmt"
	"math"
)

// WeightTolerance bounds how far the weight sum may drift from 1.
const WeightTolerance = 1e-6

// DefaultWeights weights the last four games, most recent first.
var DefaultWeights = []float64{0.4, 0.3, 0.2, 0.1} //nolint:gochecknoglobals // default config

// ValidateWeights checks that weights are non-empty, finite, non-negative
// and sum to 1 within WeightTolerance.
func ValidateWeights(weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%w: no weights", ErrInvalidWeights)
	}
	var sum float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is not finite", ErrInvalidWeights, i)
		}
		if w < 0 {
			return fmt.Errorf("%w: weight %d is negative (%v)", ErrInvalidWeights, i, w)
		}
		sum += w
	}
	if sum < 1-WeightTolerance || sum > 1+WeightTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidWeights, sum)
	}
	return nil
}

// Engine keeps one Window of capacity W+1 per (team, statistic). It is not
// safe for concurrent use.
//
// Callers must read PreGameAverage for a game before calling RecordPostGame
// with that game's values; the engine cannot tell games apart.
type Engine struct {
	weights []float64
	stats   []string
	index   map[string]int
	teams   map[string][]*Window
}

// New validates weights and statistic names and returns an empty engine.
// weights[0] applies to the most recent prior game.
func New(weights []float64, stats []string) (*Engine, error) {
	if err := ValidateWeights(weights); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("%w: no statistics configured", ErrUnknownStat)
	}
	e := &Engine{
		weights: append([]float64(nil), weights...),
		stats:   append([]string(nil), stats...),
		index:   make(map[string]int, len(stats)),
		teams:   make(map[string][]*Window),
	}
	for i, s := range stats {
		if _, dup := e.index[s]; dup {
			return nil, fmt.Errorf("%w: duplicate statistic %q", ErrUnknownStat, s)
		}
		e.index[s] = i
	}
	return e, nil
}

// W returns the number of weights.
func (e *Engine) W() int { return len(e.weights) }

// Weights returns a copy of the weight vector.
func (e *Engine) Weights() []float64 { return append([]float64(nil), e.weights...) }

// Stats returns a copy of the statistic names.
func (e *Engine) Stats() []string { return append([]string(nil), e.stats...) }

// windows returns the team's windows, creating them on first sight.
func (e *Engine) windows(team string) []*Window {
	ws, ok := e.teams[team]
	if !ok {
		ws = make([]*Window, len(e.stats))
		for i := range ws {
			ws[i] = NewWindow(len(e.weights) + 1)
		}
		e.teams[team] = ws
	}
	return ws
}

func (e *Engine) average(w *Window) (float64, bool) {
	if w == nil || w.Len() < len(e.weights) {
		return 0, false
	}
	var sum float64
	for i, weight := range e.weights {
		v := w.Recent(i)
		if math.IsNaN(v) {
			return 0, false
		}
		sum += weight * v
	}
	return sum, true
}

// PreGameAverage returns the weighted average of the W most recent recorded
// values, or false when fewer than W exist or one of them is missing.
func (e *Engine) PreGameAverage(team, stat string) (float64, bool) {
	i, ok := e.index[stat]
	if !ok {
		return 0, false
	}
	ws, ok := e.teams[team]
	if !ok {
		return 0, false
	}
	return e.average(ws[i])
}

// PreGameAverages returns every statistic's average for team in Stats order;
// absent entries are nil.
func (e *Engine) PreGameAverages(team string) []*float64 {
	out := make([]*float64, len(e.stats))
	ws, ok := e.teams[team]
	if !ok {
		return out
	}
	for i, w := range ws {
		if v, ok := e.average(w); ok {
			out[i] = &v
		}
	}
	return out
}

// RecordPostGame appends a value after the game that produced it.
func (e *Engine) RecordPostGame(team, stat string, value float64) error {
	i, ok := e.index[stat]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	e.windows(team)[i].Push(value)
	return nil
}

// RecordPostGameAll records one value per statistic, in Stats order.
func (e *Engine) RecordPostGameAll(team string, values []float64) error {
	if len(values) != len(e.stats) {
		return fmt.Errorf("%w: got %d values for %d statistics", ErrStatCount, len(values), len(e.stats))
	}
	for i, w := range e.windows(team) {
		w.Push(values[i])
	}
	return nil
}

// WindowLen returns how many values are stored for (team, stat).
func (e *Engine) WindowLen(team, stat string) int {
	i, ok := e.index[stat]
	if !ok {
		return 0
	}
	ws, ok := e.teams[team]
	if !ok {
		return 0
	}
	return ws[i].Len()
}

// Teams returns the number of teams with windows.
func (e *Engine) Teams() int { return len(e.teams) }
