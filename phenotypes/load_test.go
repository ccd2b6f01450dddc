package phenotypes

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

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "pheno.csv", "sample_id,value\nS1,1.5\nS2,-0.25\n")

	records, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SampleID != "S1" || records[0].Value != 1.5 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].SampleID != "S2" || records[1].Value != -0.25 {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestLoadTSV(t *testing.T) {
	path := writeFile(t, "pheno.tsv", "sample_id\tvalue\nS1\t2\n")

	records, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Value != 2 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestDuplicateSamples(t *testing.T) {
	records := []Record{
		{SampleID: "S1", Value: 1},
		{SampleID: "S2", Value: 2},
		{SampleID: "S1", Value: 3},
	}

	dup := DuplicateSamples(records)
	if len(dup) != 1 {
		t.Fatalf("expected 1 duplicated sample, got %d", len(dup))
	}
	if dup["S1"] != 2 {
		t.Errorf("expected S1 to appear twice, got %d", dup["S1"])
	}
}
