package partition

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/maduhu/gnocchi/assoc"
)

func TestByContig(t *testing.T) {
	if got := (ByContig{}).Key(assoc.AssociationRecord{Contig: "chr7"}); got != "chr7" {
		t.Errorf("Key = %q, want chr7", got)
	}
	if got := (ByContig{}).Key(assoc.AssociationRecord{}); got != "unplaced" {
		t.Errorf("empty contig Key = %q, want unplaced", got)
	}
	if got := (ByContig{}).Name(); got != "contig" {
		t.Errorf("Name = %q", got)
	}
}

func TestByScoreBucket(t *testing.T) {
	s := ByScoreBucket{Width: 0.5}

	cases := []struct {
		score float64
		key   string
	}{
		{0, "0"},
		{0.49, "0"},
		{0.5, "1"},
		{1.25, "2"},
		{-0.1, "-1"}, // negative scores floor downward
	}
	for _, c := range cases {
		if got := s.Key(assoc.AssociationRecord{Score: c.score}); got != c.key {
			t.Errorf("score %f: Key = %q, want %q", c.score, got, c.key)
		}
	}

	if got := s.Name(); got != "score_bucket:0.5" {
		t.Errorf("Name = %q", got)
	}
}

func TestBySamplePrefix(t *testing.T) {
	s := BySamplePrefix{Length: 3}

	if got := s.Key(assoc.AssociationRecord{SampleID: "HG00096"}); got != "HG0" {
		t.Errorf("Key = %q, want HG0", got)
	}
	if got := s.Key(assoc.AssociationRecord{SampleID: "S1"}); got != "S1" {
		t.Errorf("short ID Key = %q, want S1", got)
	}
}

// The key function is pure: the same record always lands in the same bucket,
// independent of what came before it.
func TestStrategyDeterminism(t *testing.T) {
	strategies := []Strategy{
		ByContig{},
		ByScoreBucket{Width: 0.25},
		BySamplePrefix{Length: 2},
	}
	records := []assoc.AssociationRecord{
		{SampleID: "HG00096", Contig: "chr1", Score: 0.3},
		{SampleID: "NA12878", Contig: "chr2", Score: -1.7},
		{SampleID: "S1", Contig: "", Score: 0},
	}

	for _, s := range strategies {
		first := make([]string, len(records))
		for i, rec := range records {
			first[i] = s.Key(rec)
		}
		// Re-key in reverse order.
		for i := len(records) - 1; i >= 0; i-- {
			if got := s.Key(records[i]); got != first[i] {
				t.Errorf("%s: record %d keyed %q then %q", s.Name(), i, first[i], got)
			}
		}
	}
}

func writeDescriptor(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "partition.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDescriptor(t *testing.T) {
	path := writeDescriptor(t, "strategy = \"score_bucket\"\n\n[score_bucket]\nwidth = 0.25\n")

	s, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "score_bucket:0.25" {
		t.Errorf("Name = %q, want score_bucket:0.25", s.Name())
	}
}

func TestLoadDescriptorDefaults(t *testing.T) {
	path := writeDescriptor(t, "strategy = \"sample\"\n")

	s, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "sample:2" {
		t.Errorf("Name = %q, want sample:2", s.Name())
	}
}

func TestLoadDescriptorUnknownStrategy(t *testing.T) {
	path := writeDescriptor(t, "strategy = \"zorp\"\n")

	if _, err := Load(context.Background(), path, nil); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}
