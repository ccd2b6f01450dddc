package assoc

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// ScoreAll applies the scorer to every pair across concurrent workers.
// Scoring is embarrassingly parallel; the only synchronization is the final
// merge. The first scorer failure aborts the run and is returned as a
// ScoringError.
func ScoreAll(ctx context.Context, pairs []JoinedPair, scorer Scorer, maxWorkers int) ([]AssociationRecord, error) {
	workers := maxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers < 1 {
		workers = 1
	}

	shardRecords := make([][]AssociationRecord, workers)

	var aborted int32
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		atomic.StoreInt32(&aborted, 1)
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	pool := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		lo := w * len(pairs) / workers
		hi := (w + 1) * len(pairs) / workers

		pool.Add(1)
		go func(w, lo, hi int) {
			defer pool.Done()

			var out []AssociationRecord
			for _, pair := range pairs[lo:hi] {
				if atomic.LoadInt32(&aborted) != 0 {
					return
				}
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}

				records, err := scorer.Score(pair)
				if err != nil {
					fail(ScoringError{Pair: pair, Err: err})
					return
				}
				out = append(out, records...)
			}
			shardRecords[w] = out
		}(w, lo, hi)
	}
	pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var out []AssociationRecord
	for w := 0; w < workers; w++ {
		out = append(out, shardRecords[w]...)
	}

	return out, nil
}
