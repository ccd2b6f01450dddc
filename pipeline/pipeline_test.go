package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/dataset"
	"github.com/maduhu/gnocchi/regions"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testPipeline(t *testing.T, cfg Config, scorer assoc.Scorer) *Pipeline {
	t.Helper()

	return &Pipeline{
		Config:       cfg,
		Genotypes:    fileGenotypes{},
		Phenotypes:   filePhenotypes{},
		Regions:      fileRegions{},
		Partitioning: fileStrategy{},
		Joiner:       regions.SweepJoiner{},
		Scorer:       scorer,
		Store:        dataset.LocalStore{},
		Schema:       dataset.AssociationSchema(),
	}
}

func TestRunIdentityScorer(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		Genotypes: writeFile(t, dir, "genotypes.tsv",
			"sample_id\tcontig\tstart\tend\tref\talt\tgenotype\n"+
				"S1\tchr1\t100\t101\tA\tG\t0/1\n"+
				"S2\tchr1\t150\t151\tC\tT\t1/1\n"+
				"S3\tchr2\t50\t51\tG\tA\t0/0\n"),
		Phenotypes: writeFile(t, dir, "phenotypes.csv",
			"sample_id,value\nS1,1.5\nS2,2\nS3,-1\n"),
		Partitioning: writeFile(t, dir, "partition.toml", "strategy = \"contig\"\n"),
		Associations: filepath.Join(dir, "out"),
	}

	p := testPipeline(t, cfg, assoc.IdentityScorer{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.Stage() != StageDone {
		t.Errorf("Stage = %s, want %s", p.Stage(), StageDone)
	}

	got, err := dataset.ReadLocal(cfg.Associations)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 association records, got %d", len(got))
	}
	for _, pr := range got {
		if pr.Record.Score != 0 {
			t.Errorf("identity-scored record has score %f: %+v", pr.Record.Score, pr.Record)
		}
		if pr.Partition != pr.Record.Contig {
			t.Errorf("record in partition %q, want its contig %q", pr.Partition, pr.Record.Contig)
		}
	}
}

func TestRunJoinDropsUnmatchedSamples(t *testing.T) {
	dir := t.TempDir()

	// S1 carries two variants, S2 one; S3's genotype has no phenotype and
	// S4's phenotype has no genotype, so neither contributes a record.
	cfg := Config{
		Genotypes: writeFile(t, dir, "genotypes.tsv",
			"sample_id\tcontig\tstart\tend\tref\talt\tgenotype\n"+
				"S1\tchr1\t100\t101\tA\tG\t0/1\n"+
				"S1\tchr1\t200\t201\tC\tT\t1/1\n"+
				"S2\tchr1\t100\t101\tA\tG\t0/0\n"+
				"S3\tchr2\t50\t51\tG\tA\t0/1\n"),
		Phenotypes: writeFile(t, dir, "phenotypes.csv",
			"sample_id,value\nS1,1.5\nS2,2\nS4,9\n"),
		Partitioning: writeFile(t, dir, "partition.toml", "strategy = \"contig\"\n"),
		Associations: filepath.Join(dir, "out"),
	}

	p := testPipeline(t, cfg, assoc.IdentityScorer{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, err := dataset.ReadLocal(cfg.Associations)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 association records, got %d", len(got))
	}

	perSample := make(map[string]int)
	for _, pr := range got {
		perSample[pr.Record.SampleID]++
	}
	if perSample["S1"] != 2 || perSample["S2"] != 1 {
		t.Errorf("unexpected per-sample record counts: %v", perSample)
	}
	if perSample["S3"] != 0 || perSample["S4"] != 0 {
		t.Errorf("unmatched samples leaked into the output: %v", perSample)
	}
}

func TestRunRegionFilter(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		Genotypes: writeFile(t, dir, "genotypes.tsv",
			"sample_id\tcontig\tstart\tend\tref\talt\tgenotype\n"+
				"S1\tchr1\t150\t151\tA\tG\t0/1\n"+ // inside chr1:[100,200)
				"S2\tchr1\t500\t501\tC\tT\t1/1\n"+ // outside
				"S3\tchr2\t150\t151\tG\tA\t0/1\n"), // wrong contig
		Phenotypes: writeFile(t, dir, "phenotypes.csv",
			"sample_id,value\nS1,1\nS2,1\nS3,1\n"),
		Regions:      writeFile(t, dir, "regions.bed", "chr1\t100\t200\n"),
		Partitioning: writeFile(t, dir, "partition.toml", "strategy = \"contig\"\n"),
		Associations: filepath.Join(dir, "out"),
	}

	p := testPipeline(t, cfg, assoc.AdditiveScorer{})
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	got, err := dataset.ReadLocal(cfg.Associations)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record after the region filter, got %d", len(got))
	}
	rec := got[0].Record
	if rec.SampleID != "S1" || rec.Contig != "chr1" || rec.Start != 150 {
		t.Errorf("unexpected surviving record: %+v", rec)
	}
	if rec.Score != 1 { // dosage 1 x phenotype 1
		t.Errorf("Score = %f, want 1", rec.Score)
	}
}

func TestRunSecondRunStrategyConflict(t *testing.T) {
	dir := t.TempDir()

	genotypes := writeFile(t, dir, "genotypes.tsv",
		"sample_id\tcontig\tstart\tend\tref\talt\tgenotype\nS1\tchr1\t100\t101\tA\tG\t0/1\n")
	phenotypes := writeFile(t, dir, "phenotypes.csv", "sample_id,value\nS1,1\n")
	out := filepath.Join(dir, "out")

	first := Config{
		Genotypes:    genotypes,
		Phenotypes:   phenotypes,
		Partitioning: writeFile(t, dir, "p1.toml", "strategy = \"contig\"\n"),
		Associations: out,
	}
	if err := testPipeline(t, first, assoc.IdentityScorer{}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	second := first
	second.Partitioning = writeFile(t, dir, "p2.toml", "strategy = \"sample\"\n")

	p := testPipeline(t, second, assoc.IdentityScorer{})
	err := p.Run(context.Background())

	var conflict assoc.SchemaConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SchemaConflictError, got %v", err)
	}
	if p.Stage() != StageFailed {
		t.Errorf("Stage = %s, want %s", p.Stage(), StageFailed)
	}

	// The first run's data is untouched.
	got, err := dataset.ReadLocal(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected the original 1 record, got %d", len(got))
	}
}

func TestRunUniquePhenotypes(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		Genotypes: writeFile(t, dir, "genotypes.tsv",
			"sample_id\tcontig\tstart\tend\tref\talt\tgenotype\nS1\tchr1\t100\t101\tA\tG\t0/1\n"),
		Phenotypes: writeFile(t, dir, "phenotypes.csv",
			"sample_id,value\nS1,1\nS1,2\n"),
		Partitioning:     writeFile(t, dir, "partition.toml", "strategy = \"contig\"\n"),
		Associations:     filepath.Join(dir, "out"),
		UniquePhenotypes: true,
	}

	err := testPipeline(t, cfg, assoc.IdentityScorer{}).Run(context.Background())

	var dup assoc.DuplicatePhenotypeError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicatePhenotypeError, got %v", err)
	}

	// Without the flag the duplicates fan out instead.
	cfg.UniquePhenotypes = false
	cfg.Associations = filepath.Join(dir, "out2")
	if err := testPipeline(t, cfg, assoc.IdentityScorer{}).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, err := dataset.ReadLocal(cfg.Associations)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 fanned-out records, got %d", len(got))
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		Genotypes:    filepath.Join(dir, "does-not-exist.tsv"),
		Phenotypes:   writeFile(t, dir, "phenotypes.csv", "sample_id,value\nS1,1\n"),
		Partitioning: writeFile(t, dir, "partition.toml", "strategy = \"contig\"\n"),
		Associations: filepath.Join(dir, "out"),
	}

	p := testPipeline(t, cfg, assoc.IdentityScorer{})
	err := p.Run(context.Background())

	var load assoc.InputLoadError
	if !errors.As(err, &load) {
		t.Fatalf("expected InputLoadError, got %v", err)
	}
	if load.Location != cfg.Genotypes {
		t.Errorf("error blames %q, want %q", load.Location, cfg.Genotypes)
	}
	if p.Stage() != StageFailed {
		t.Errorf("Stage = %s, want %s", p.Stage(), StageFailed)
	}

	// Nothing was declared or written.
	if _, err := os.Stat(cfg.Associations); !os.IsNotExist(err) {
		t.Error("failed load must not create the destination")
	}
}
