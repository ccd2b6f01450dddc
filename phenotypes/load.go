package phenotypes

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"

	gnocchi "github.com/maduhu/gnocchi"
)

// Load reads phenotype records from a header-bearing CSV/TSV location with a
// sample_id column and a value column. The delimiter is sniffed; compressed
// and gs:// locations are handled transparently.
func Load(ctx context.Context, path string, client *storage.Client) ([]Record, error) {
	rc, err := gnocchi.OpenLocation(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}

	delim := gnocchi.DetermineDelimiter(raw)

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r
	})

	records := []*Record{}
	if err := gocsv.UnmarshalBytes(raw, &records); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.SampleID == "" {
			return nil, pfx.Err(fmt.Errorf("%s: phenotype record with empty sample_id", path))
		}
		out = append(out, *r)
	}

	return out, nil
}
