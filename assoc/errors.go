package assoc

import (
	"fmt"
	"strings"
)

// InputLoadError reports an unreadable or malformed source location. It
// aborts the run before any join or score work begins.
type InputLoadError struct {
	Location string
	Err      error
}

func (e InputLoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Location, e.Err)
}

func (e InputLoadError) Unwrap() error { return e.Err }

// SchemaConflictError reports a destination dataset whose existing schema or
// partition strategy is incompatible with the one supplied. Nothing is
// written when it is raised.
type SchemaConflictError struct {
	Destination string
	Reason      string
}

func (e SchemaConflictError) Error() string {
	return fmt.Sprintf("dataset %s: %s", e.Destination, e.Reason)
}

// ScoringError reports a scorer failure on one pair. A single bad pair fails
// the whole run; there is no per-record skip.
type ScoringError struct {
	Pair JoinedPair
	Err  error
}

func (e ScoringError) Error() string {
	return fmt.Sprintf("scoring sample %s at %s:[%d,%d): %v",
		e.Pair.Genotype.SampleID, e.Pair.Genotype.Contig, e.Pair.Genotype.Start, e.Pair.Genotype.End, e.Err)
}

func (e ScoringError) Unwrap() error { return e.Err }

// WriteCommitError reports a failure of the underlying store during the
// partitioned write or its commit. The run is not retried here.
type WriteCommitError struct {
	Destination string
	Err         error
}

func (e WriteCommitError) Error() string {
	return fmt.Sprintf("writing dataset %s: %v", e.Destination, e.Err)
}

func (e WriteCommitError) Unwrap() error { return e.Err }

// DuplicatePhenotypeError reports sample IDs carrying more than one
// phenotype record when the caller demanded at-most-one per sample.
type DuplicatePhenotypeError struct {
	Samples []string
}

func (e DuplicatePhenotypeError) Error() string {
	return fmt.Sprintf("%d sample(s) have multiple phenotype records: %s",
		len(e.Samples), strings.Join(e.Samples, ", "))
}
