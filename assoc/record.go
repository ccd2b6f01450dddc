// Package assoc holds the core association entities and operations: the
// sample-keyed equi-join between genotypes and phenotypes, the scorer
// contract, and the pipeline error taxonomy.
package assoc

import (
	"fmt"

	"github.com/maduhu/gnocchi/genotypes"
	"github.com/maduhu/gnocchi/phenotypes"
)

// JoinedPair is a genotype and a phenotype sharing a sample ID. Pairs exist
// only in flight between the joiner and the scorer; they are never
// persisted.
type JoinedPair struct {
	Genotype  genotypes.Record
	Phenotype phenotypes.Record
}

// AssociationRecord summarizes the scored relationship of one joined pair.
// Each record traces to exactly one pair and is written exactly once.
type AssociationRecord struct {
	SampleID  string
	Contig    string
	Start     int
	End       int
	Allele    string
	Phenotype float64
	Score     float64
}

// NewRecord derives an association record from a pair and its score.
func NewRecord(p JoinedPair, score float64) AssociationRecord {
	return AssociationRecord{
		SampleID:  p.Genotype.SampleID,
		Contig:    p.Genotype.Contig,
		Start:     p.Genotype.Start,
		End:       p.Genotype.End,
		Allele:    p.Genotype.Alt,
		Phenotype: p.Phenotype.Value,
		Score:     score,
	}
}

func (r AssociationRecord) String() string {
	return fmt.Sprintf("%s %s:[%d,%d) score=%f", r.SampleID, r.Contig, r.Start, r.End, r.Score)
}
