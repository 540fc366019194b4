// Package app folds a chronologically ordered game stream into point-in-time
// feature rows.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tipoff/internal/adapters/repository"
	"github.com/okian/tipoff/internal/domain/elo"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/rolling"
	"github.com/okian/tipoff/internal/domain/season"
	"github.com/okian/tipoff/internal/domain/types"
	"github.com/okian/tipoff/pkg/logger"
	"github.com/okian/tipoff/pkg/metrics"
)

// Sink receives enriched rows in input order.
type Sink interface {
	Write(ctx context.Context, row model.EnrichedGameRecord) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, row model.EnrichedGameRecord) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, row model.EnrichedGameRecord) error { //nolint:gocritic // hugeParam: rows are passed by value
	return f(ctx, row)
}

// Assembler owns one Elo engine and one rolling engine for a single pass.
// It is not safe for concurrent use; run one Assembler per pass.
type Assembler struct {
	// Configuration
	weights     []float64
	stats       model.StatSet
	eloOpts     []elo.Option
	cutoff      season.Cutoff
	skipUnknown bool
	runID       string

	// Engines
	elo     *elo.Engine
	rolling *rolling.Engine

	// Pass state
	started   bool
	lastSeen  time.Time
	lastKept  time.Time
	seen      int
	emitted   int
	skipped   int
	regressed int

	logger logger.Logger
}

// New validates the configuration and returns an assembler with fresh engines.
func New(opts ...Option) (*Assembler, error) {
	a := &Assembler{
		weights: append([]float64(nil), rolling.DefaultWeights...),
		stats:   model.DefaultStatSet(),
		cutoff:  season.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("assembler")
	}
	if a.runID == "" {
		a.runID = uuid.NewString()
	}

	if err := a.cutoff.Validate(); err != nil {
		return nil, err
	}
	if a.stats.Len() == 0 {
		return nil, fmt.Errorf("%w: empty statistic set", model.ErrInvalidStatSet)
	}

	var err error
	if a.rolling, err = rolling.New(a.weights, a.stats.Names()); err != nil {
		return nil, err
	}
	if a.elo, err = elo.New(a.eloOpts...); err != nil {
		return nil, err
	}
	return a, nil
}

// RunID returns the id stamped on every emitted row.
func (a *Assembler) RunID() string { return a.runID }

// Weights returns the rolling weights, most recent first.
func (a *Assembler) Weights() []float64 { return a.rolling.Weights() }

// Stats returns the statistic set.
func (a *Assembler) Stats() model.StatSet { return a.stats }

// Processed returns the number of rows emitted so far.
func (a *Assembler) Processed() int { return a.emitted }

// Skipped returns the number of records dropped by the skip policy.
func (a *Assembler) Skipped() int { return a.skipped }

// Regressions returns how many season boundaries were applied.
func (a *Assembler) Regressions() int { return a.regressed }

// Ratings returns a copy of the current Elo table.
func (a *Assembler) Ratings() map[string]float64 { return a.elo.Snapshot() }

// Standings ranks the current Elo table.
func (a *Assembler) Standings() []types.Entry { return repository.Rank(a.elo.Snapshot()) }

// Step enriches one game. Features are read before the game's own outcome
// and statistics are applied, so a row never sees its own game.
//
// Errors: *OrderingViolation when the game predates the previous one,
// *RecordError for malformed records, ErrSkipped when the skip policy drops
// an undecided record. ErrSkipped is not fatal; the others end the pass.
func (a *Assembler) Step(ctx context.Context, g model.GameRecord) (model.EnrichedGameRecord, error) { //nolint:gocritic // hugeParam: records are immutable values
	index := a.seen
	a.seen++

	if a.started && g.Date.Before(a.lastSeen) {
		metrics.RecordOrderingViolation()
		return model.EnrichedGameRecord{}, &OrderingViolation{
			Index:    index,
			Date:     g.Date,
			Previous: a.lastSeen,
			HomeTeam: g.HomeTeam,
			AwayTeam: g.AwayTeam,
		}
	}

	n := a.stats.Len()
	if len(g.HomeStats) != n || len(g.AwayStats) != n {
		return model.EnrichedGameRecord{}, recordError(index, &g,
			fmt.Errorf("%w: got %d home and %d away values for %d statistics",
				ErrStatCount, len(g.HomeStats), len(g.AwayStats), n))
	}

	if !g.Decisive() {
		err := recordError(index, &g, fmt.Errorf("%w: home=%q away=%q", ErrUnknownOutcome, g.HomeResult, g.AwayResult))
		if !a.skipUnknown {
			metrics.RecordErrorByComponent("assembler", "unknown_outcome")
			return model.EnrichedGameRecord{}, err
		}
		a.lastSeen, a.started = g.Date, true
		a.skipped++
		metrics.RecordGameSkipped("unknown_outcome")
		a.logger.Warn(ctx, "skipping record", logger.Error(err))
		return model.EnrichedGameRecord{}, fmt.Errorf("%w: %w", ErrSkipped, err)
	}

	if a.emitted > 0 && a.cutoff.Crossed(a.lastKept, g.Date) {
		a.elo.ApplySeasonRegression()
		a.regressed++
		metrics.RecordSeasonRegression()
		a.logger.Debug(ctx, "season boundary crossed",
			logger.Time("previous", a.lastKept),
			logger.Time("date", g.Date),
			logger.String("cutoff", a.cutoff.String()),
		)
	}
	a.lastSeen, a.lastKept, a.started = g.Date, g.Date, true

	homeElo, awayElo := a.elo.RatePreGame(g.HomeTeam, g.AwayTeam)
	homeRA := a.rolling.PreGameAverages(g.HomeTeam)
	awayRA := a.rolling.PreGameAverages(g.AwayTeam)

	actual := g.AwayScore - g.HomeScore
	var spread *float64
	if g.HomeSpread != nil {
		spread = model.Float(*g.HomeSpread)
	}
	row := model.EnrichedGameRecord{
		RunID:                      a.runID,
		Index:                      a.emitted,
		Date:                       g.Date,
		HomeTeam:                   g.HomeTeam,
		AwayTeam:                   g.AwayTeam,
		HomeResult:                 g.HomeResult,
		AwayResult:                 g.AwayResult,
		HomeScore:                  g.HomeScore,
		AwayScore:                  g.AwayScore,
		HomeSpread:                 spread,
		JoinCode:                   g.JoinCode,
		EloHome:                    homeElo,
		EloAway:                    awayElo,
		HomeRA:                     homeRA,
		AwayRA:                     awayRA,
		HomeSpreadActual:           actual,
		HomeSpreadCorrectDirection: model.SpreadDirectionAgrees(actual, spread),
	}

	if err := a.elo.ApplyResult(g.HomeTeam, g.AwayTeam, g.HomeResult.Won(), g.AwayResult.Won()); err != nil {
		return model.EnrichedGameRecord{}, recordError(index, &g, err)
	}
	if err := a.rolling.RecordPostGameAll(g.HomeTeam, g.HomeStats); err != nil {
		return model.EnrichedGameRecord{}, recordError(index, &g, err)
	}
	if err := a.rolling.RecordPostGameAll(g.AwayTeam, g.AwayStats); err != nil {
		return model.EnrichedGameRecord{}, recordError(index, &g, err)
	}

	a.emitted++
	metrics.RecordGameProcessed()
	metrics.RecordAbsentFeatures("home", countAbsent(homeRA))
	metrics.RecordAbsentFeatures("away", countAbsent(awayRA))
	metrics.UpdateTeamsTracked(a.elo.Len())
	return row, nil
}

// Run folds Step over games and returns the rows in input order. games is
// not modified. On an aborting error the rows emitted so far are returned
// with it.
func (a *Assembler) Run(ctx context.Context, games []model.GameRecord) ([]model.EnrichedGameRecord, error) {
	out := make([]model.EnrichedGameRecord, 0, len(games))
	err := a.fold(ctx, func(yield func(model.GameRecord) error) error {
		for i := range games {
			if err := yield(games[i]); err != nil {
				return err
			}
		}
		return nil
	}, SinkFunc(func(_ context.Context, row model.EnrichedGameRecord) error {
		out = append(out, row)
		return nil
	}))
	return out, err
}

// Consume drains in until it is closed, writing each row to sink.
func (a *Assembler) Consume(ctx context.Context, in <-chan model.GameRecord, sink Sink) error {
	return a.fold(ctx, func(yield func(model.GameRecord) error) error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case g, ok := <-in:
				if !ok {
					return nil
				}
				if err := yield(g); err != nil {
					return err
				}
			}
		}
	}, sink)
}

func (a *Assembler) fold(ctx context.Context, source func(yield func(model.GameRecord) error) error, sink Sink) error {
	start := time.Now()
	err := source(func(g model.GameRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := a.Step(ctx, g)
		if errors.Is(err, ErrSkipped) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, row); err != nil {
			return fmt.Errorf("write row %d: %w", row.Index, err)
		}
		return nil
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		a.logger.Error(ctx, "feature pass aborted",
			logger.String("run_id", a.runID),
			logger.Int("rows", a.emitted),
			logger.Error(err),
		)
	} else {
		a.logger.Info(ctx, "feature pass complete",
			logger.String("run_id", a.runID),
			logger.Int("rows", a.emitted),
			logger.Int("skipped", a.skipped),
			logger.Int("regressions", a.regressed),
			logger.Int("teams", a.elo.Len()),
		)
	}
	metrics.RecordPass(time.Since(start).Seconds(), outcome)
	return err
}

func countAbsent(vs []*float64) int {
	n := 0
	for _, v := range vs {
		if v == nil {
			n++
		}
	}
	return n
}
