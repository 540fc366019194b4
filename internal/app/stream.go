package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/tipoff/internal/adapters/mq/queue"
	"github.com/okian/tipoff/internal/domain/model"
)

// Stream runs one pass with a producer goroutine feeding games through q and
// the assembler consuming them on another. The first error from either side
// cancels the other; an ordering violation therefore stops the producer.
// Stream closes q.
func Stream(ctx context.Context, a *Assembler, q queue.Queue, games []model.GameRecord, sink Sink) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer q.Close()
		for i := range games {
			if err := q.Put(gctx, games[i]); err != nil {
				return fmt.Errorf("enqueue game %d: %w", i, err)
			}
		}
		return nil
	})

	g.Go(func() error {
		return a.Consume(gctx, q.Games(), sink)
	})

	return g.Wait()
}
