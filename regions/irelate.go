package regions

import (
	"context"
	"io"
	"sort"

	"github.com/brentp/irelate"
	"github.com/brentp/irelate/interfaces"

	"github.com/maduhu/gnocchi/genotypes"
)

// IRelateJoiner delegates the interval join to brentp/irelate's streaming
// merge: both sides are sorted by genomic coordinate and related in a single
// pass, with genotypes as the stream that collects its related regions.
type IRelateJoiner struct{}

const (
	genotypeSource uint32 = 0
	regionSource   uint32 = 1
)

func (IRelateJoiner) JoinOverlaps(ctx context.Context, g []genotypes.Record, r []Region) ([]Overlap, error) {
	gStream := make([]*joinInterval, len(g))
	for i, rec := range g {
		gStream[i] = &joinInterval{
			contig: rec.Contig,
			start:  uint32(rec.Start),
			end:    uint32(rec.End),
			source: genotypeSource,
			idx:    i,
		}
	}

	rStream := make([]*joinInterval, len(r))
	for i, reg := range r {
		rStream[i] = &joinInterval{
			contig: reg.Contig,
			start:  uint32(reg.Start),
			end:    uint32(reg.End),
			source: regionSource,
			idx:    i,
		}
	}

	sortIntervals(gStream)
	sortIntervals(rStream)

	merged := irelate.IRelate(irelate.CheckRelatedByOverlap, int(genotypeSource), irelate.Less,
		&intervalIterator{items: gStream}, &intervalIterator{items: rStream})
	defer merged.Close()

	var out []Overlap
	for {
		v, err := merged.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		iv, ok := v.(*joinInterval)
		if !ok || iv.source != genotypeSource {
			continue
		}

		for _, rel := range iv.related {
			out = append(out, Overlap{Genotype: iv.idx, Region: rel.(*joinInterval).idx})
		}
	}

	return out, nil
}

func sortIntervals(items []*joinInterval) {
	sort.Slice(items, func(a, b int) bool {
		if items[a].contig != items[b].contig {
			return items[a].contig < items[b].contig
		}
		return items[a].start < items[b].start
	})
}

// joinInterval satisfies irelate's Relatable so genotype loci and regions
// can flow through its merge.
type joinInterval struct {
	contig  string
	start   uint32
	end     uint32
	source  uint32
	idx     int
	related []interfaces.Relatable
}

func (iv *joinInterval) Chrom() string { return iv.contig }
func (iv *joinInterval) Start() uint32 { return iv.start }
func (iv *joinInterval) End() uint32   { return iv.end }

func (iv *joinInterval) Related() []interfaces.Relatable   { return iv.related }
func (iv *joinInterval) AddRelated(r interfaces.Relatable) { iv.related = append(iv.related, r) }

func (iv *joinInterval) Source() uint32       { return iv.source }
func (iv *joinInterval) SetSource(src uint32) { iv.source = src }

type intervalIterator struct {
	items []*joinInterval
	i     int
}

func (it *intervalIterator) Next() (interfaces.Relatable, error) {
	if it.i >= len(it.items) {
		return nil, io.EOF
	}

	v := it.items[it.i]
	it.i++

	return v, nil
}

func (it *intervalIterator) Close() error { return nil }
