// Package genotypes loads genotype calls from delimited, VCF, or BGEN
// sources into a uniform record stream keyed by sample ID and locus.
package genotypes

import (
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// Record is one observed genotype call at one locus for one sample. The
// locus is a half-open interval [Start, End) on Contig.
type Record struct {
	SampleID string
	Contig   string
	Start    int
	End      int
	Ref      string
	Alt      string

	// Call is the raw genotype call as read from the source, e.g. "0/1".
	Call string

	// Dosage is the expected count of the alternate allele. Invalid when
	// the call is missing.
	Dosage null.Float
}

// Overlaps reports whether the record's locus intersects the half-open
// interval [start, end) on contig.
func (r Record) Overlaps(contig string, start, end int) bool {
	return r.Contig == contig && r.Start < end && start < r.End
}

// DosageFromCall derives an alternate-allele dosage from a raw call string.
// Accepts diploid-style calls ("0/1", "1|1") and plain numeric dosages
// ("1.5"). Missing or unparseable calls yield an invalid dosage.
func DosageFromCall(call string) null.Float {
	if call == "" {
		return null.Float{}
	}

	if v, err := strconv.ParseFloat(call, 64); err == nil {
		return null.FloatFrom(v)
	}

	alleles := strings.FieldsFunc(call, func(r rune) bool {
		return r == '/' || r == '|'
	})
	if len(alleles) == 0 {
		return null.Float{}
	}

	dosage := 0.0
	for _, allele := range alleles {
		if allele == "." {
			return null.Float{}
		}

		n, err := strconv.Atoi(allele)
		if err != nil {
			return null.Float{}
		}
		if n > 0 {
			dosage++
		}
	}

	return null.FloatFrom(dosage)
}
