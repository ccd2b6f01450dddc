package regions

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/maduhu/gnocchi/genotypes"
)

// SweepJoiner relates genotypes to regions with a coordinate sweep: both
// sides are repartitioned by contig, each contig is sorted by start, and a
// single forward pass maintains the set of regions whose interval is still
// open at the current genotype's start. Contigs are swept concurrently.
type SweepJoiner struct {
	// MaxWorkers caps concurrent contig sweeps. Zero means NumCPU.
	MaxWorkers int
}

func (s SweepJoiner) JoinOverlaps(ctx context.Context, g []genotypes.Record, r []Region) ([]Overlap, error) {
	// Shuffle: bucket both sides by contig.
	gByContig := make(map[string][]int)
	for i, rec := range g {
		gByContig[rec.Contig] = append(gByContig[rec.Contig], i)
	}
	rByContig := make(map[string][]int)
	for i, reg := range r {
		rByContig[reg.Contig] = append(rByContig[reg.Contig], i)
	}

	workers := s.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	concurrencyLimit := make(chan struct{}, workers)

	var mu sync.Mutex
	var out []Overlap
	pool := sync.WaitGroup{}

	for contig, gIdx := range gByContig {
		rIdx, ok := rByContig[contig]
		if !ok {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		concurrencyLimit <- struct{}{}
		pool.Add(1)
		go func(gIdx, rIdx []int) {
			defer pool.Done()
			defer func() { <-concurrencyLimit }()

			found := sweepContig(g, r, gIdx, rIdx)
			if len(found) == 0 {
				return
			}

			mu.Lock()
			out = append(out, found...)
			mu.Unlock()
		}(gIdx, rIdx)
	}

	pool.Wait()

	return out, ctx.Err()
}

// sweepContig relates one contig's genotypes and regions, both given as
// index slices into the full inputs.
func sweepContig(g []genotypes.Record, r []Region, gIdx, rIdx []int) []Overlap {
	sort.Slice(gIdx, func(a, b int) bool { return g[gIdx[a]].Start < g[gIdx[b]].Start })
	sort.Slice(rIdx, func(a, b int) bool { return r[rIdx[a]].Start < r[rIdx[b]].Start })

	var out []Overlap

	// Regions whose end has not yet been passed by the sweep line.
	active := make([]int, 0, 8)
	next := 0

	for _, gi := range gIdx {
		rec := g[gi]

		// Open every region starting before this genotype ends.
		for next < len(rIdx) && r[rIdx[next]].Start < rec.End {
			active = append(active, rIdx[next])
			next++
		}

		// Retire regions that ended at or before this genotype's start.
		// Later genotypes start no earlier, so they cannot match either.
		live := active[:0]
		for _, ri := range active {
			if r[ri].End > rec.Start {
				live = append(live, ri)
			}
		}
		active = live

		for _, ri := range active {
			if r[ri].Start < rec.End {
				out = append(out, Overlap{Genotype: gi, Region: ri})
			}
		}
	}

	return out
}
