package pipeline

import (
	"context"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"

	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/dataset"
	"github.com/maduhu/gnocchi/genotypes"
	"github.com/maduhu/gnocchi/partition"
	"github.com/maduhu/gnocchi/phenotypes"
	"github.com/maduhu/gnocchi/regions"
)

// New wires a pipeline with the default collaborators: the file-format
// genotype/phenotype/region loaders, the irelate-backed interval join, and a
// store picked from the destination scheme (bq:// or local directory).
func New(ctx context.Context, cfg Config, scorer assoc.Scorer, gsClient *storage.Client) (*Pipeline, error) {
	store, err := storeFor(ctx, cfg.Associations)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Config:       cfg,
		Genotypes:    fileGenotypes{client: gsClient},
		Phenotypes:   filePhenotypes{client: gsClient},
		Regions:      fileRegions{client: gsClient},
		Partitioning: fileStrategy{client: gsClient},
		Joiner:       regions.IRelateJoiner{},
		Scorer:       scorer,
		Store:        store,
		Schema:       dataset.AssociationSchema(),
	}, nil
}

func storeFor(ctx context.Context, destination string) (dataset.Store, error) {
	if !dataset.IsBigQuery(destination) {
		return dataset.LocalStore{}, nil
	}

	project, _, _, err := dataset.ParseBigQueryDestination(destination)
	if err != nil {
		return nil, err
	}

	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, err
	}

	return dataset.BigQueryStore{Client: client}, nil
}

type fileGenotypes struct{ client *storage.Client }

func (s fileGenotypes) Load(ctx context.Context, location string) ([]genotypes.Record, error) {
	return genotypes.Load(ctx, location, s.client)
}

type filePhenotypes struct{ client *storage.Client }

func (s filePhenotypes) Load(ctx context.Context, location string) ([]phenotypes.Record, error) {
	return phenotypes.Load(ctx, location, s.client)
}

type fileRegions struct{ client *storage.Client }

func (s fileRegions) Load(ctx context.Context, location string) ([]regions.Region, error) {
	return regions.Load(ctx, location, s.client)
}

type fileStrategy struct{ client *storage.Client }

func (s fileStrategy) Load(ctx context.Context, location string) (partition.Strategy, error) {
	return partition.Load(ctx, location, s.client)
}
