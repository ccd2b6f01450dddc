package regions

import (
	"context"

	"github.com/maduhu/gnocchi/genotypes"
)

// Overlap names one (genotype, region) match by index into the inputs. An
// interval join emits one overlap per matching region, so a genotype
// overlapping several regions appears several times.
type Overlap struct {
	Genotype int
	Region   int
}

// IntervalJoiner relates genotype loci to regions by interval overlap.
// Implementations partition both sides by genomic coordinate before
// comparing; a naive all-pairs comparison is not an acceptable strategy.
type IntervalJoiner interface {
	JoinOverlaps(ctx context.Context, g []genotypes.Record, r []Region) ([]Overlap, error)
}

// Filter returns the genotype records overlapping at least one region, in
// input order. Each record is retained at most once even when it overlaps
// several regions: the join emits one row per match, so deduplication
// happens here at the filter boundary.
func Filter(ctx context.Context, g []genotypes.Record, r []Region, joiner IntervalJoiner) ([]genotypes.Record, error) {
	overlaps, err := joiner.JoinOverlaps(ctx, g, r)
	if err != nil {
		return nil, err
	}

	keep := make([]bool, len(g))
	for _, o := range overlaps {
		keep[o.Genotype] = true
	}

	out := make([]genotypes.Record, 0, len(overlaps))
	for i, rec := range g {
		if keep[i] {
			out = append(out, rec)
		}
	}

	return out, nil
}
