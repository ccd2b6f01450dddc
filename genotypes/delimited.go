package genotypes

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"

	gnocchi "github.com/maduhu/gnocchi"
)

// Column headers accepted by the delimited loader. contig/start/end describe
// the locus with half-open coordinates; end and the allele columns are
// optional.
var delimitedAliases = map[string]string{
	"sample_id":  "sample_id",
	"sample":     "sample_id",
	"iid":        "sample_id",
	"contig":     "contig",
	"chromosome": "contig",
	"chrom":      "contig",
	"chr":        "contig",
	"start":      "start",
	"position":   "start",
	"pos":        "start",
	"end":        "end",
	"ref":        "ref",
	"alt":        "alt",
	"genotype":   "call",
	"call":       "call",
	"gt":         "call",
}

// LoadDelimited reads genotype records from a header-bearing CSV/TSV
// location. The delimiter is sniffed, compression is handled transparently,
// and gs:// locations are supported.
func LoadDelimited(ctx context.Context, path string, client *storage.Client) ([]Record, error) {
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

	rdr := csv.NewReader(bytes.NewReader(raw))
	rdr.Comma = delim
	rdr.Comment = '#'
	rdr.TrimLeadingSpace = true

	head, err := rdr.Read()
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: header: %v", path, err))
	}

	cols := make(map[string]int)
	for i, name := range head {
		if canonical, ok := delimitedAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			if _, seen := cols[canonical]; !seen {
				cols[canonical] = i
			}
		}
	}
	for _, required := range []string{"sample_id", "contig", "start"} {
		if _, ok := cols[required]; !ok {
			return nil, pfx.Err(fmt.Errorf("%s: missing required column %q", path, required))
		}
	}

	var out []Record
	for line := 2; ; line++ {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: line %d: %v", path, line, err))
		}

		rec, err := delimitedRecord(cols, row)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: line %d: %v", path, line, err))
		}

		out = append(out, rec)
	}

	return out, nil
}

func delimitedRecord(cols map[string]int, row []string) (Record, error) {
	var rec Record

	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec.SampleID = field("sample_id")
	rec.Contig = field("contig")
	if rec.SampleID == "" || rec.Contig == "" {
		return rec, fmt.Errorf("empty sample_id or contig")
	}

	start, err := strconv.Atoi(field("start"))
	if err != nil {
		return rec, fmt.Errorf("start: %v", err)
	}
	rec.Start = start

	rec.Ref = field("ref")
	rec.Alt = field("alt")
	rec.Call = field("call")
	rec.Dosage = DosageFromCall(rec.Call)

	if endText := field("end"); endText != "" {
		end, err := strconv.Atoi(endText)
		if err != nil {
			return rec, fmt.Errorf("end: %v", err)
		}
		rec.End = end
	} else if len(rec.Ref) > 1 {
		rec.End = rec.Start + len(rec.Ref)
	} else {
		rec.End = rec.Start + 1
	}

	if rec.End <= rec.Start {
		return rec, fmt.Errorf("locus [%d, %d) is empty", rec.Start, rec.End)
	}

	return rec, nil
}
