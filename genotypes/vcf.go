package genotypes

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/carbocation/vcfgo"
	"gopkg.in/guregu/null.v3"

	gnocchi "github.com/maduhu/gnocchi"
)

var BufferSize = 4096 * 8

// LoadVCF linearizes a VCF into one genotype record per (variant, sample).
// Multiallelic sites are reduced to their first alternate allele; dosage
// counts copies of that allele. Missing calls are retained with an invalid
// dosage so downstream stages decide their fate.
func LoadVCF(ctx context.Context, path string, client *storage.Client) ([]Record, error) {
	rc, err := gnocchi.OpenLocation(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	rdr, err := vcfgo.NewReader(bufio.NewReaderSize(rc, BufferSize), false)
	if err != nil {
		if rdr == nil {
			return nil, pfx.Err(fmt.Errorf("%s: invalid VCF: %v", path, err))
		}
		// Header-level complaints that still yield a usable reader are
		// logged, mirroring how tolerant VCF consumers behave.
		log.Printf("%s: invalid VCF features, attempting to continue: %v\n", path, err)
		rdr.Clear()
	}

	var out []Record

	for i := 0; ; i++ {
		variant := rdr.Read()
		if variant == nil {
			break
		}

		if i == 0 {
			log.Println(len(variant.Header.SampleNames), "samples found in the VCF")
		}
		if i%10000 == 0 {
			log.Printf("Processed %d variants. Last %s:%d\n", i, variant.Chrom(), variant.Pos)
		}

		start := int(variant.Pos) - 1
		end := start + len(variant.Ref())

		alt := ""
		if alts := variant.Alt(); len(alts) > 0 {
			alt = alts[0]
		}

		for sampleLoc, sample := range variant.Samples {
			rec := Record{
				SampleID: variant.Header.SampleNames[sampleLoc],
				Contig:   variant.Chrom(),
				Start:    start,
				End:      end,
				Ref:      variant.Ref(),
				Alt:      alt,
			}
			rec.Call, rec.Dosage = vcfCall(sample)

			out = append(out, rec)
		}
	}

	if err := rdr.Error(); err != nil {
		log.Printf("%s: invalid VCF features were tolerated: %v\n", path, err)
		rdr.Clear()
	}

	return out, nil
}

// vcfCall renders a sample's GT as a call string and an alt-allele dosage.
// For the Nth alt allele, the genotype integer representing it is 1+N; only
// the first alt allele (N=0) contributes to the dosage here.
func vcfCall(sample *vcfgo.SampleGenotype) (string, null.Float) {
	if sample == nil || len(sample.GT) < 1 {
		return "./.", null.Float{}
	}

	parts := make([]string, 0, len(sample.GT))
	altAlleles, missing := 0, false
	for _, gt := range sample.GT {
		switch {
		case gt == -1:
			missing = true
			parts = append(parts, ".")
		case gt == 1:
			altAlleles++
			fallthrough
		default:
			parts = append(parts, strconv.Itoa(gt))
		}
	}

	call := strings.Join(parts, "/")
	if missing {
		return call, null.Float{}
	}

	return call, null.FloatFrom(float64(altAlleles))
}
