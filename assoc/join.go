package assoc

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/maduhu/gnocchi/genotypes"
	"github.com/maduhu/gnocchi/phenotypes"
)

// JoinStats summarizes a sample join. Unmatched keys on either side are not
// errors; they are the expected inner-join drop behavior and are surfaced
// here so the orchestrator can log them.
type JoinStats struct {
	Pairs             int
	DroppedGenotypes  int // genotype records whose sample has no phenotype
	DroppedPhenotypes int // phenotype records whose sample has no genotype
	DuplicatedSamples int // phenotype sample IDs appearing more than once
}

// JoinBySample inner-joins genotypes with phenotypes on sample ID. The
// phenotype side is loaded into an in-memory table (the broadcast side);
// genotype shards stream through concurrent workers. Every genotype of a
// sample pairs with every phenotype of that sample, so duplicate phenotype
// records fan out into a cross product. With requireUnique set, duplicates
// are a validation error before any pairing occurs.
func JoinBySample(ctx context.Context, g []genotypes.Record, p []phenotypes.Record, requireUnique bool) ([]JoinedPair, JoinStats, error) {
	var stats JoinStats

	bySample := make(map[string][]phenotypes.Record, len(p))
	for _, ph := range p {
		bySample[ph.SampleID] = append(bySample[ph.SampleID], ph)
	}

	var duplicated []string
	for id, records := range bySample {
		if len(records) > 1 {
			duplicated = append(duplicated, id)
		}
	}
	stats.DuplicatedSamples = len(duplicated)
	if requireUnique && len(duplicated) > 0 {
		sort.Strings(duplicated)
		return nil, stats, DuplicatePhenotypeError{Samples: duplicated}
	}

	workers := runtime.NumCPU()
	if workers > len(g) {
		workers = len(g)
	}
	if workers < 1 {
		workers = 1
	}

	// Shuffle boundary: genotype shards join against the shared read-only
	// phenotype table.
	shardPairs := make([][]JoinedPair, workers)
	shardDropped := make([]int, workers)

	pool := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		lo := w * len(g) / workers
		hi := (w + 1) * len(g) / workers

		pool.Add(1)
		go func(w, lo, hi int) {
			defer pool.Done()

			var out []JoinedPair
			for _, rec := range g[lo:hi] {
				matches, ok := bySample[rec.SampleID]
				if !ok {
					shardDropped[w]++
					continue
				}
				for _, ph := range matches {
					out = append(out, JoinedPair{Genotype: rec, Phenotype: ph})
				}
			}
			shardPairs[w] = out
		}(w, lo, hi)
	}
	pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	var pairs []JoinedPair
	for w := 0; w < workers; w++ {
		pairs = append(pairs, shardPairs[w]...)
		stats.DroppedGenotypes += shardDropped[w]
	}
	stats.Pairs = len(pairs)

	matched := make(map[string]struct{}, len(bySample))
	for _, rec := range g {
		if _, ok := bySample[rec.SampleID]; ok {
			matched[rec.SampleID] = struct{}{}
		}
	}
	for _, ph := range p {
		if _, ok := matched[ph.SampleID]; !ok {
			stats.DroppedPhenotypes++
		}
	}

	return pairs, stats, nil
}
