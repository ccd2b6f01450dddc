// Package pipeline sequences the association computation: load inputs,
// optionally filter genotypes to regions of interest, join genotypes with
// phenotypes by sample, score each joined pair, and persist the scored
// associations into a partitioned dataset. The pipeline either commits the
// full association set or nothing.
package pipeline

import (
	"context"
	"log"

	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/dataset"
	"github.com/maduhu/gnocchi/genotypes"
	"github.com/maduhu/gnocchi/partition"
	"github.com/maduhu/gnocchi/phenotypes"
	"github.com/maduhu/gnocchi/regions"
)

// Stage names the orchestrator's position in its state machine:
// START → LOAD_INPUTS → (FILTER_REGIONS)? → JOIN → SCORE → DECLARE_DATASET
// → WRITE → DONE, with any stage transitioning to FAILED on unrecoverable
// error. FILTER_REGIONS appears only when a region set was supplied.
type Stage string

const (
	StageStart          Stage = "START"
	StageLoadInputs     Stage = "LOAD_INPUTS"
	StageFilterRegions  Stage = "FILTER_REGIONS"
	StageJoin           Stage = "JOIN"
	StageScore          Stage = "SCORE"
	StageDeclareDataset Stage = "DECLARE_DATASET"
	StageWrite          Stage = "WRITE"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// Config carries the run's locations and knobs. Regions is optional; when
// empty the filter stage is skipped entirely rather than run with an empty
// region set.
type Config struct {
	Genotypes    string
	Phenotypes   string
	Associations string
	Partitioning string
	Regions      string

	// UniquePhenotypes makes duplicate phenotype records per sample a
	// validation error instead of a cross-product fan-out.
	UniquePhenotypes bool

	// MaxWorkers caps scoring concurrency. Zero means NumCPU.
	MaxWorkers int
}

// Collaborator interfaces. All are injected so alternate sources, join
// strategies, scorers, and stores can be substituted without touching the
// orchestrator.
type (
	GenotypeSource interface {
		Load(ctx context.Context, location string) ([]genotypes.Record, error)
	}

	PhenotypeSource interface {
		Load(ctx context.Context, location string) ([]phenotypes.Record, error)
	}

	RegionSource interface {
		Load(ctx context.Context, location string) ([]regions.Region, error)
	}

	StrategySource interface {
		Load(ctx context.Context, location string) (partition.Strategy, error)
	}
)

// Pipeline owns one batch invocation. It is not reusable: the run is the
// unit of retry and cancellation.
type Pipeline struct {
	Config Config

	Genotypes    GenotypeSource
	Phenotypes   PhenotypeSource
	Regions      RegionSource
	Partitioning StrategySource
	Joiner       regions.IntervalJoiner
	Scorer       assoc.Scorer
	Store        dataset.Store
	Schema       dataset.Schema

	stage Stage
}

// Stage reports the pipeline's current state-machine position.
func (p *Pipeline) Stage() Stage {
	if p.stage == "" {
		return StageStart
	}
	return p.stage
}

func (p *Pipeline) to(s Stage) {
	p.stage = s
	log.Println("pipeline:", s)
}

func (p *Pipeline) fail(err error) error {
	p.stage = StageFailed
	return err
}

// Run executes the full pipeline. Any stage failure aborts the run; there is
// no partial-success mode.
func (p *Pipeline) Run(ctx context.Context) error {
	p.to(StageLoadInputs)

	g, err := p.Genotypes.Load(ctx, p.Config.Genotypes)
	if err != nil {
		return p.fail(assoc.InputLoadError{Location: p.Config.Genotypes, Err: err})
	}
	log.Println("Loaded", len(g), "genotype records from", p.Config.Genotypes)

	ph, err := p.Phenotypes.Load(ctx, p.Config.Phenotypes)
	if err != nil {
		return p.fail(assoc.InputLoadError{Location: p.Config.Phenotypes, Err: err})
	}
	log.Println("Loaded", len(ph), "phenotype records from", p.Config.Phenotypes)

	strategy, err := p.Partitioning.Load(ctx, p.Config.Partitioning)
	if err != nil {
		return p.fail(assoc.InputLoadError{Location: p.Config.Partitioning, Err: err})
	}
	log.Println("Partitioning associations by", strategy.Name())

	if p.Config.Regions != "" {
		p.to(StageFilterRegions)

		regionSet, err := p.Regions.Load(ctx, p.Config.Regions)
		if err != nil {
			return p.fail(assoc.InputLoadError{Location: p.Config.Regions, Err: err})
		}

		before := len(g)
		g, err = regions.Filter(ctx, g, regionSet, p.Joiner)
		if err != nil {
			return p.fail(err)
		}
		log.Printf("Region filter kept %d of %d genotype records (%d regions)\n", len(g), before, len(regionSet))
	}

	p.to(StageJoin)

	pairs, stats, err := assoc.JoinBySample(ctx, g, ph, p.Config.UniquePhenotypes)
	if err != nil {
		return p.fail(err)
	}
	// Unmatched keys are the expected inner-join drop, never fatal.
	log.Printf("Joined %d pairs; dropped %d genotype records and %d phenotype records without counterparts\n",
		stats.Pairs, stats.DroppedGenotypes, stats.DroppedPhenotypes)
	if stats.DuplicatedSamples > 0 {
		log.Printf("Warning: %d sample(s) have multiple phenotype records; their pairs fan out as a cross product\n",
			stats.DuplicatedSamples)
	}

	p.to(StageScore)

	records, err := assoc.ScoreAll(ctx, pairs, p.Scorer, p.Config.MaxWorkers)
	if err != nil {
		return p.fail(err)
	}
	log.Println("Scorer", p.Scorer.Name(), "produced", len(records), "association records")

	p.to(StageDeclareDataset)

	w, err := p.Store.Declare(ctx, p.Config.Associations, p.Schema, strategy)
	if err != nil {
		return p.fail(err)
	}

	p.to(StageWrite)

	for _, rec := range records {
		if err := w.Append(ctx, rec); err != nil {
			w.Abort()
			return p.fail(err)
		}
	}
	if err := w.Commit(ctx); err != nil {
		w.Abort()
		return p.fail(err)
	}
	log.Println("Committed", len(records), "association records to", p.Config.Associations)

	p.to(StageDone)

	return nil
}
