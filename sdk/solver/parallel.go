package solver

import (
	"context"

	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/internal/randutil"
	"golang.org/x/sync/errgroup"
)

type workerResult struct {
	regrets *RegretTable
	util    [game.NumPlayers]float64
	stats   TraversalStats
}

// parallelBatch runs up to Workers*SyncEvery iterations split across
// workers. Each worker trains a private copy of the regret table and the
// master table absorbs every worker's delta once all of them have joined.
// Cancelling ctx does not interrupt a batch; Run checks it between batches.
func (t *Trainer) parallelBatch(ctx context.Context, remaining int) (int, TraversalStats, error) {
	workers := t.cfg.Workers
	batch := min(remaining, workers*t.cfg.SyncEvery)

	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = t.rng.Int64()
	}

	base := t.regrets.Clone()
	results := make([]workerResult, workers)

	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	for i := 0; i < workers; i++ {
		n := batch / workers
		if i < batch%workers {
			n++
		}
		if n == 0 {
			continue
		}
		idx, seed := i, seeds[i]
		g.Go(func() error {
			w := &walker{rules: t.rules, regrets: base.Clone(), rng: randutil.New(seed)}
			monitor := randutil.New(randutil.Derive(seed, idx))
			res := &results[idx]
			for k := 0; k < n; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				util, err := w.iterate(monitor)
				if err != nil {
					return err
				}
				for p, u := range util {
					res.util[p] += u
				}
			}
			res.regrets = w.regrets
			res.stats = w.stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, TraversalStats{}, err
	}

	var stats TraversalStats
	for _, res := range results {
		if res.regrets == nil {
			continue
		}
		if err := t.regrets.MergeDelta(res.regrets, base); err != nil {
			return 0, TraversalStats{}, err
		}
		t.addUtilities(res.util)
		stats.add(res.stats)
	}
	t.logger.Debug().Int("iterations", batch).Int("workers", workers).Msg("merged worker batch")
	return batch, stats, nil
}
