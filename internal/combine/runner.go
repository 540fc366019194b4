// Package combine runs the batch feature pass: read the box-score and line
// tables, join them, enrich every game and write the combined table.
package combine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/tipoff/internal/adapters/csvio"
	"github.com/okian/tipoff/internal/adapters/mq/queue"
	"github.com/okian/tipoff/internal/adapters/mq/worker"
	"github.com/okian/tipoff/internal/adapters/repository"
	"github.com/okian/tipoff/internal/app"
	"github.com/okian/tipoff/internal/domain/market"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/teams"
	"github.com/okian/tipoff/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
)

// Run executes one combine. Standings and the sweep report are printed to
// out. When the pass aborts, the rows emitted before the failure are still
// written and the error is returned with the partial summary.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Summary, error) {
	log := logger.Get().Named("combine")
	start := time.Now()
	stats := model.DefaultStatSet()
	sum := &Summary{}

	log.Info(ctx, "starting combine",
		logger.String("stats", cfg.StatsPath),
		logger.String("lines", cfg.LinesPath),
		logger.String("out", cfg.OutputPath),
		logger.Any("weights", cfg.Weights),
	)

	// Step 1: read and join inputs
	games, err := loadGames(ctx, cfg, stats, sum, log)
	if err != nil {
		return sum, err
	}

	// Step 2: enrich
	a, err := app.New(
		app.WithWeights(cfg.Weights),
		app.WithStats(stats),
		app.WithElo(cfg.Elo...),
		app.WithCutoff(cfg.Cutoff),
		app.WithTeams(universe(games)...),
		app.WithSkipUnknownOutcomes(cfg.SkipUnknownOutcomes),
		app.WithLogger(log.Named("assembler")),
	)
	if err != nil {
		return sum, fmt.Errorf("invalid pass configuration: %w", err)
	}
	sum.RunID = a.RunID()

	passErr := writePass(ctx, cfg, a, games, stats, log)
	sum.Rows, sum.Skipped, sum.Regressions = a.Processed(), a.Skipped(), a.Regressions()

	// Step 3: standings, printed even for a partial pass
	standings := repository.NewStandings()
	if err := standings.Replace(ctx, a.Ratings()); err != nil {
		return sum, err
	}
	if sum.Standings, err = standings.TopN(ctx, cfg.Top); err != nil {
		return sum, err
	}
	printStandings(out, sum.Standings)
	if passErr != nil {
		sum.Duration = time.Since(start)
		return sum, passErr
	}

	// Step 4: optional weight sweep
	if cfg.Sweep {
		if sum.Sweep, err = sweep(ctx, cfg, games, stats, log); err != nil {
			return sum, err
		}
		printSweep(out, sum.Sweep, stats)
	}

	sum.Duration = time.Since(start)
	log.Info(ctx, "combine finished",
		logger.String("run_id", sum.RunID),
		logger.Int("games", sum.Games),
		logger.Int("matched_lines", sum.Matched),
		logger.Int("rows", sum.Rows),
		logger.String("duration", sum.Duration.String()),
	)
	return sum, nil
}

func loadGames(ctx context.Context, cfg *Config, stats model.StatSet, sum *Summary, log logger.Logger) ([]model.GameRecord, error) {
	f, err := os.Open(cfg.StatsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats: %w", err)
	}
	defer f.Close()

	games, err := csvio.ReadGames(f, stats, csvio.WithStrictTeams(cfg.StrictTeams))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.StatsPath, err)
	}
	sum.Games = len(games)

	if cfg.LinesPath != "" {
		lf, err := os.Open(cfg.LinesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open lines: %w", err)
		}
		defer lf.Close()

		lines, dropped, err := csvio.ReadLines(lf)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.LinesPath, err)
		}
		idx := market.NewIndex(lines)
		games, sum.Matched = idx.Attach(games)
		sum.Lines, sum.LinesDropped, sum.Duplicates = idx.Len(), dropped, idx.Duplicates()
		if len(sum.Duplicates) > 0 {
			log.Warn(ctx, "duplicate betting lines; keeping the first",
				logger.Int("count", len(sum.Duplicates)),
				logger.Strings("join_codes", sum.Duplicates),
			)
		}
		log.Info(ctx, "betting lines joined",
			logger.Int("lines", sum.Lines),
			logger.Int("dropped", dropped),
			logger.Int("matched", sum.Matched),
			logger.Int("games", len(games)),
		)
	}
	return model.SortChronological(games), nil
}

// writePass streams games through a into the CSV writer and, if configured,
// the SQLite store.
func writePass(ctx context.Context, cfg *Config, a *app.Assembler, games []model.GameRecord, stats model.StatSet, log logger.Logger) (err error) {
	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	w := csvio.NewWriter(f, stats)
	sinks := []app.Sink{w}
	if cfg.SQLitePath != "" {
		store, openErr := repository.OpenSQLite(ctx, cfg.SQLitePath, stats.Names(),
			repository.WithLogger(log.Named("sqlite")))
		if openErr != nil {
			return openErr
		}
		defer func() {
			if cerr := store.Close(ctx); cerr != nil && err == nil {
				err = cerr
			}
		}()
		sinks = append(sinks, store)
	}

	q := queue.NewGameQueue(queue.WithCapacity(cfg.QueueSize))
	passErr := app.Stream(ctx, a, q, games, fanOut(sinks))
	if err := w.Flush(); err != nil {
		return err
	}
	return passErr
}

func fanOut(sinks []app.Sink) app.Sink {
	return app.SinkFunc(func(ctx context.Context, row model.EnrichedGameRecord) error {
		for _, s := range sinks {
			if err := s.Write(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func sweep(ctx context.Context, cfg *Config, games []model.GameRecord, stats model.StatSet, log logger.Logger) ([]worker.Result, error) {
	ids := universe(games)
	pool := worker.NewPool(cfg.Workers, func(weights []float64, runID string) (*app.Assembler, error) {
		return app.New(
			app.WithWeights(weights),
			app.WithStats(stats),
			app.WithElo(cfg.Elo...),
			app.WithCutoff(cfg.Cutoff),
			app.WithTeams(ids...),
			app.WithSkipUnknownOutcomes(cfg.SkipUnknownOutcomes),
			app.WithRunID(runID),
			app.WithLogger(logger.Nop()),
		)
	}, worker.WithLogger(log.Named("sweep")))

	vectors := append([][]float64{cfg.Weights}, cfg.SweepWeights...)
	return pool.Sweep(ctx, games, worker.Jobs(vectors...))
}

func universe(games []model.GameRecord) []string {
	ids := make([]string, 0, 2*len(games))
	for i := range games {
		ids = append(ids, games[i].HomeTeam, games[i].AwayTeam)
	}
	return teams.Universe(ids...)
}
