// Package phenotypes loads per-sample phenotype observations from delimited
// files.
package phenotypes

// Record is one sample's phenotype observation. The pipeline treats Value as
// opaque; only the sample ID participates in joins.
type Record struct {
	SampleID string  `csv:"sample_id"`
	Value    float64 `csv:"value"`
}

// DuplicateSamples returns the sample IDs that appear on more than one
// phenotype record, with their multiplicities. A non-empty result means a
// sample-keyed join will produce a cross product for those samples.
func DuplicateSamples(records []Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.SampleID]++
	}

	duplicated := make(map[string]int)
	for id, n := range counts {
		if n > 1 {
			duplicated[id] = n
		}
	}

	return duplicated
}
