// Package dataset persists association records into schema-governed,
// partition-organized columnar datasets. The schema and partition strategy
// are declared exactly once per run, before any record is written.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maduhu/gnocchi/assoc"
)

// Column types understood by the stores.
const (
	TypeString  = "STRING"
	TypeInteger = "INTEGER"
	TypeFloat   = "FLOAT"
)

type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema fixes the output columns before any data is persisted and is
// enforced at write time.
type Schema []Column

// AssociationSchema is the canonical schema for association records.
func AssociationSchema() Schema {
	return Schema{
		{Name: "sample_id", Type: TypeString},
		{Name: "contig", Type: TypeString},
		{Name: "start", Type: TypeInteger},
		{Name: "end", Type: TypeInteger},
		{Name: "allele", Type: TypeString},
		{Name: "phenotype", Type: TypeFloat},
		{Name: "score", Type: TypeFloat},
	}
}

// Fingerprint is a stable textual identity for conflict detection.
func (s Schema) Fingerprint() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		parts = append(parts, c.Name+":"+c.Type)
	}
	return strings.Join(parts, ",")
}

func (s Schema) Equal(other Schema) bool {
	return s.Fingerprint() == other.Fingerprint()
}

// Validate rejects schemas naming columns no association record can fill.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	for _, c := range s {
		if _, ok := columnValues[c.Name]; !ok {
			return fmt.Errorf("schema column %q does not map to an association field", c.Name)
		}
	}
	return nil
}

// Row renders a record into the schema's column order as text, for the
// TSV-shard store.
func (s Schema) Row(rec assoc.AssociationRecord) []string {
	row := make([]string, len(s))
	for i, c := range s {
		row[i] = formatValue(columnValues[c.Name](rec))
	}
	return row
}

// Value extracts one column's native (typed) value from a record.
func (s Schema) Value(name string, rec assoc.AssociationRecord) interface{} {
	return columnValues[name](rec)
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

var columnValues = map[string]func(assoc.AssociationRecord) interface{}{
	"sample_id": func(r assoc.AssociationRecord) interface{} { return r.SampleID },
	"contig":    func(r assoc.AssociationRecord) interface{} { return r.Contig },
	"start":     func(r assoc.AssociationRecord) interface{} { return r.Start },
	"end":       func(r assoc.AssociationRecord) interface{} { return r.End },
	"allele":    func(r assoc.AssociationRecord) interface{} { return r.Allele },
	"phenotype": func(r assoc.AssociationRecord) interface{} { return r.Phenotype },
	"score":     func(r assoc.AssociationRecord) interface{} { return r.Score },
}

// setColumn is the inverse of Row, used when re-reading local datasets.
func setColumn(rec *assoc.AssociationRecord, name, value string) error {
	var err error
	switch name {
	case "sample_id":
		rec.SampleID = value
	case "contig":
		rec.Contig = value
	case "start":
		rec.Start, err = strconv.Atoi(value)
	case "end":
		rec.End, err = strconv.Atoi(value)
	case "allele":
		rec.Allele = value
	case "phenotype":
		rec.Phenotype, err = strconv.ParseFloat(value, 64)
	case "score":
		rec.Score, err = strconv.ParseFloat(value, 64)
	default:
		err = fmt.Errorf("unknown column %q", name)
	}
	return err
}
