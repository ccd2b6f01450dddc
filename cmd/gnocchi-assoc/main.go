// gnocchi-assoc computes genotype-to-phenotype associations: it joins each
// sample's genotype records with its phenotype record, optionally restricted
// to genomic regions of interest, scores each joined pair, and commits the
// scored associations to a partitioned dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/storage"
	_ "github.com/mattn/go-sqlite3"

	gnocchi "github.com/maduhu/gnocchi"
	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/buildinfo"
	"github.com/maduhu/gnocchi/pipeline"
)

func main() {
	buildinfo.PrintToStderr()

	var (
		regionsPath      string
		scorerName       string
		uniquePhenotypes bool
		maxWorkers       int
	)
	flag.StringVar(&regionsPath, "regions", "", "Optional path to a BED-style region file. When absent, no region filtering occurs.")
	flag.StringVar(&scorerName, "scorer", "additive", "Association scorer applied to each joined pair. Options: identity, additive")
	flag.BoolVar(&uniquePhenotypes, "unique-phenotypes", false, "Fail if any sample carries more than one phenotype record, instead of producing their cross product.")
	flag.IntVar(&maxWorkers, "workers", 0, "Maximum concurrent scoring workers. 0 uses the number of CPUs.")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 4 {
		usage()
		os.Exit(1)
	}

	cfg := pipeline.Config{
		Genotypes:        flag.Arg(0),
		Phenotypes:       flag.Arg(1),
		Associations:     flag.Arg(2),
		Partitioning:     flag.Arg(3),
		Regions:          regionsPath,
		UniquePhenotypes: uniquePhenotypes,
		MaxWorkers:       maxWorkers,
	}

	scorer, err := assoc.ScorerByName(scorerName)
	if err != nil {
		log.Fatalln(err)
	}

	ctx := context.Background()

	var client *storage.Client
	for _, location := range []string{cfg.Genotypes, cfg.Phenotypes, cfg.Partitioning, cfg.Regions} {
		if gnocchi.IsGoogleStorage(location) {
			if client, err = storage.NewClient(ctx); err != nil {
				log.Fatalln(err)
			}
			break
		}
	}

	p, err := pipeline.New(ctx, cfg, scorer, client)
	if err != nil {
		log.Fatalln(err)
	}

	if err := p.Run(ctx); err != nil {
		log.Fatalf("Pipeline failed during %s: %v\n", p.Stage(), err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: gnocchi-assoc [flags] GENOTYPES PHENOTYPES ASSOCIATIONS PARTITIONING

  GENOTYPES     genotype input (delimited table, .vcf[.gz], or .bgen; local or gs://)
  PHENOTYPES    phenotype input with sample_id and value columns (local or gs://)
  ASSOCIATIONS  output dataset destination (directory or bq://project/dataset/table)
  PARTITIONING  TOML partition-strategy descriptor

Flags:
`)
	flag.PrintDefaults()
}
