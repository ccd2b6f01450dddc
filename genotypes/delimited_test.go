package genotypes

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDelimitedTSV(t *testing.T) {
	path := writeFile(t, "genotypes.tsv",
		"sample_id\tcontig\tstart\tend\tref\talt\tgenotype\n"+
			"S1\tchr1\t100\t101\tA\tG\t0/1\n"+
			"S2\tchr1\t150\t153\tGAT\tG\t1/1\n"+
			"S3\tchr2\t7\t8\tC\tT\t./.\n")

	records, err := LoadDelimited(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.SampleID != "S1" || first.Contig != "chr1" || first.Start != 100 || first.End != 101 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if !first.Dosage.Valid || first.Dosage.Float64 != 1 {
		t.Errorf("expected dosage 1, got %+v", first.Dosage)
	}

	if records[2].Dosage.Valid {
		t.Errorf("missing call should have invalid dosage: %+v", records[2])
	}
}

func TestLoadDelimitedHeaderAliasesAndDefaults(t *testing.T) {
	path := writeFile(t, "genotypes.csv",
		"sample,chrom,pos,ref,alt,gt\n"+
			"S1,1,500,A,T,0/1\n")

	records, err := LoadDelimited(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Contig != "1" || rec.Start != 500 || rec.End != 501 {
		t.Errorf("unexpected locus: %+v", rec)
	}
}

func TestLoadDelimitedMissingColumn(t *testing.T) {
	path := writeFile(t, "bad.tsv", "contig\tstart\nchr1\t5\n")

	if _, err := LoadDelimited(context.Background(), path, nil); err == nil {
		t.Error("expected an error for a file without sample_id")
	}
}
