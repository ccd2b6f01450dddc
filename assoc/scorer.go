package assoc

import "fmt"

// Scorer computes zero or more association records for one joined pair.
// Scoring runs independently per pair with no cross-pair state, and a scorer
// must not mutate its inputs. A scorer failure fails the whole run.
type Scorer interface {
	Name() string
	Score(pair JoinedPair) ([]AssociationRecord, error)
}

// IdentityScorer emits one zero-scored record per pair, carrying the pair
// through unchanged. Useful for materializing the joined set.
type IdentityScorer struct{}

func (IdentityScorer) Name() string { return "identity" }

func (IdentityScorer) Score(pair JoinedPair) ([]AssociationRecord, error) {
	return []AssociationRecord{NewRecord(pair, 0)}, nil
}

// AdditiveScorer scores a pair as alt-allele dosage times phenotype value,
// the additive single-site contribution a polygenic accumulator would sum.
// Pairs with a missing dosage contribute no records.
type AdditiveScorer struct{}

func (AdditiveScorer) Name() string { return "additive" }

func (AdditiveScorer) Score(pair JoinedPair) ([]AssociationRecord, error) {
	dosage := pair.Genotype.Dosage
	if !dosage.Valid {
		return nil, nil
	}
	if dosage.Float64 < 0 {
		return nil, fmt.Errorf("negative dosage %f", dosage.Float64)
	}

	return []AssociationRecord{NewRecord(pair, dosage.Float64*pair.Phenotype.Value)}, nil
}

// ScorerByName resolves the built-in scorer for a CLI-supplied name.
func ScorerByName(name string) (Scorer, error) {
	switch name {
	case "identity":
		return IdentityScorer{}, nil
	case "additive":
		return AdditiveScorer{}, nil
	}

	return nil, fmt.Errorf("unknown scorer %q (options: identity, additive)", name)
}
