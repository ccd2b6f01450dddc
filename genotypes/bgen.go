package genotypes

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carbocation/bgen"
	"github.com/carbocation/pfx"
	"gopkg.in/guregu/null.v3"
)

// LoadBGEN reads every variant of a local BGEN file (via its .bgi index)
// into genotype records. Sample IDs come from an Oxford-format .sample file
// (two header rows; the first column holds the sample ID) expected next to
// the BGEN unless samplePath overrides it.
func LoadBGEN(path, samplePath string) ([]Record, error) {
	if samplePath == "" {
		samplePath = strings.TrimSuffix(path, ".bgen") + ".sample"
	}

	sampleIDs, err := readSampleFile(samplePath)
	if err != nil {
		return nil, err
	}

	bg, err := bgen.Open(path)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}
	defer bg.Close()

	bgi, err := bgen.OpenBGI(path + ".bgi?mode=ro")
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s.bgi: %v", path, err))
	}
	defer bgi.Close()
	bgi.Metadata.FirstThousandBytes = nil
	log.Printf("BGI Metadata: %+v\n", bgi.Metadata)

	var indexed []bgen.VariantIndex
	if err := bgi.DB.Select(&indexed, "SELECT * FROM Variant ORDER BY chromosome, position"); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s.bgi: %v", path, err))
	}

	var out []Record

	rdr := bg.NewVariantReader()
	for _, vi := range indexed {
		variant := rdr.ReadAt(int64(vi.FileStartPosition))
		if err := rdr.Error(); err != nil {
			return nil, pfx.Err(fmt.Errorf("%s at %s:%d: %v", path, vi.Chromosome, vi.Position, err))
		}

		if int(variant.NSamples) != len(sampleIDs) {
			return nil, pfx.Err(fmt.Errorf("%s: %d samples in BGEN but %d in %s", path, variant.NSamples, len(sampleIDs), samplePath))
		}

		ref, alt := "", ""
		if len(variant.Alleles) > 0 {
			ref = string(variant.Alleles[0])
		}
		if len(variant.Alleles) > 1 {
			alt = string(variant.Alleles[1])
		}

		start := int(variant.Position) - 1
		end := start + 1
		if len(ref) > 1 {
			end = start + len(ref)
		}

		for sampleRow, sp := range variant.SampleProbabilities {
			rec := Record{
				SampleID: sampleIDs[sampleRow],
				Contig:   variant.Chromosome,
				Start:    start,
				End:      end,
				Ref:      ref,
				Alt:      alt,
			}

			if !sp.Missing {
				// Expected alt-allele count: 0*P(AA) + 1*P(AB) + 2*P(BB)
				aac := 0.0
				for allele, prob := range sp.Probabilities {
					aac += float64(allele) * prob
				}
				rec.Dosage = null.FloatFrom(aac)
				rec.Call = fmt.Sprintf("%f", aac)
			} else {
				rec.Call = "./."
			}

			out = append(out, rec)
		}
	}

	return out, nil
}

func readSampleFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	var ids []string

	scanner := bufio.NewScanner(f)
	for line := 0; scanner.Scan(); line++ {
		// The sample file carries two header rows: the true header and a
		// second row indicating each column's value type.
		if line < 2 {
			continue
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		ids = append(ids, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	if len(ids) == 0 {
		return nil, pfx.Err(fmt.Errorf("%s: no sample IDs found", path))
	}

	return ids, nil
}
