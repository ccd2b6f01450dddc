// Package partition maps association records to output partition buckets.
// The strategy is supplied by the caller as an opaque descriptor file and is
// fixed before any record is written; it governs dataset layout, never
// content.
package partition

import (
	"fmt"
	"math"
	"strconv"

	"github.com/maduhu/gnocchi/assoc"
)

// Strategy is a deterministic function from an association record to its
// partition bucket. Name identifies the strategy (including its parameters)
// and is recorded with the dataset so later runs can detect a conflicting
// layout.
type Strategy interface {
	Name() string
	Key(rec assoc.AssociationRecord) string
}

// ByContig buckets records by the contig of their locus.
type ByContig struct{}

func (ByContig) Name() string { return "contig" }

func (ByContig) Key(rec assoc.AssociationRecord) string {
	if rec.Contig == "" {
		return "unplaced"
	}
	return rec.Contig
}

// ByScoreBucket buckets records by fixed-width intervals of their score.
type ByScoreBucket struct {
	Width float64
}

func (s ByScoreBucket) Name() string {
	return fmt.Sprintf("score_bucket:%g", s.Width)
}

func (s ByScoreBucket) Key(rec assoc.AssociationRecord) string {
	bucket := int64(math.Floor(rec.Score / s.Width))
	return strconv.FormatInt(bucket, 10)
}

// BySamplePrefix buckets records by the leading characters of their sample
// ID, a cheap spread for cohorts with structured identifiers.
type BySamplePrefix struct {
	Length int
}

func (s BySamplePrefix) Name() string {
	return fmt.Sprintf("sample:%d", s.Length)
}

func (s BySamplePrefix) Key(rec assoc.AssociationRecord) string {
	if len(rec.SampleID) <= s.Length {
		return rec.SampleID
	}
	return rec.SampleID[:s.Length]
}
