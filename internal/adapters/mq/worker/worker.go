// Package worker runs independent feature passes concurrently, one per
// weight configuration.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tipoff/internal/app"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/internal/domain/types"
	"github.com/okian/tipoff/pkg/logger"
	"github.com/okian/tipoff/pkg/metrics"
)

// Factory builds a fresh assembler for one job. Assemblers are never shared
// between jobs.
type Factory func(weights []float64, runID string) (*app.Assembler, error)

// Job is one weight configuration to evaluate.
type Job struct {
	ID      string
	Weights []float64
}

// Result is the outcome of one job. Err is set when the pass failed; Rows
// then holds whatever was emitted before the failure.
type Result struct {
	JobID     string
	RunID     string
	Weights   []float64
	Rows      []model.EnrichedGameRecord
	Standings []types.Entry
	Complete  int // rows with every rolling feature present on both sides
	Duration  time.Duration
	Err       error
}

// Pool evaluates jobs with a fixed number of workers.
type Pool struct {
	workers int
	factory Factory
	logger  logger.Logger
}

// NewPool creates a pool. workerCount < 1 defaults to the number of CPUs.
func NewPool(workerCount int, factory Factory, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: workerCount,
		factory: factory,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("sweep")
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Jobs turns weight vectors into jobs with fresh ids.
func Jobs(weightSets ...[]float64) []Job {
	jobs := make([]Job, len(weightSets))
	for i, w := range weightSets {
		jobs[i] = Job{ID: uuid.NewString(), Weights: append([]float64(nil), w...)}
	}
	return jobs
}

// Sweep runs every job over games and returns results in job order. games
// is shared read-only between workers. Per-job failures are reported in
// Result.Err; Sweep itself fails only when ctx ends.
func (p *Pool) Sweep(ctx context.Context, games []model.GameRecord, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	indexes := make(chan int)

	n := min(p.workers, len(jobs))
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go p.run(ctx, "worker-"+strconv.Itoa(i), &wg, indexes, games, jobs, results)
	}

feed:
	for i := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("sweep interrupted: %w", err)
	}
	return results, nil
}

func (p *Pool) run(ctx context.Context, name string, wg *sync.WaitGroup, indexes <-chan int,
	games []model.GameRecord, jobs []Job, results []Result,
) {
	defer wg.Done()
	metrics.AddSweepWorkersActive(1)
	defer metrics.AddSweepWorkersActive(-1)

	log := p.logger.Named(name)
	for i := range indexes {
		results[i] = p.process(ctx, log, games, jobs[i])
	}
}

func (p *Pool) process(ctx context.Context, log logger.Logger, games []model.GameRecord, job Job) Result {
	start := time.Now()
	res := Result{JobID: job.ID, RunID: uuid.NewString(), Weights: job.Weights}

	a, err := p.factory(job.Weights, res.RunID)
	if err != nil {
		res.Err = fmt.Errorf("job %s: %w", job.ID, err)
		metrics.RecordSweepJob("invalid")
		log.Warn(ctx, "sweep job rejected", logger.String("job_id", job.ID), logger.Error(err))
		return res
	}

	res.Rows, err = a.Run(ctx, games)
	res.Standings = a.Standings()
	res.Complete = countComplete(res.Rows)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = fmt.Errorf("job %s: %w", job.ID, err)
		metrics.RecordSweepJob("failed")
		metrics.RecordErrorByComponent("sweep", "pass_failed")
		log.Error(ctx, "sweep job failed", logger.String("job_id", job.ID), logger.Error(err))
		return res
	}

	metrics.RecordSweepJob("ok")
	log.Debug(ctx, "sweep job done",
		logger.String("job_id", job.ID),
		logger.String("run_id", res.RunID),
		logger.Int("rows", len(res.Rows)),
		logger.Int("complete", res.Complete),
	)
	return res
}

func countComplete(rows []model.EnrichedGameRecord) int {
	n := 0
	for i := range rows {
		if allPresent(rows[i].HomeRA) && allPresent(rows[i].AwayRA) {
			n++
		}
	}
	return n
}

func allPresent(vs []*float64) bool {
	for _, v := range vs {
		if v == nil {
			return false
		}
	}
	return true
}
