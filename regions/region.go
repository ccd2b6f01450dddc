// Package regions restricts genotype records to genomic regions of
// interest. The overlap computation itself is delegated to an
// IntervalJoiner, which partitions both sides by genomic coordinate before
// comparing; callers choose the strategy.
package regions

import "fmt"

// Region is a half-open genomic interval [Start, End) on a contig.
type Region struct {
	Contig string
	Start  int
	End    int
}

func (r Region) String() string {
	return fmt.Sprintf("%s:[%d,%d)", r.Contig, r.Start, r.End)
}

// Overlaps reports whether the region intersects the half-open interval
// [start, end) on contig. Empty intersections do not count.
func (r Region) Overlaps(contig string, start, end int) bool {
	return r.Contig == contig && r.Start < end && start < r.End
}
