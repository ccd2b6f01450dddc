package dataset

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/pfx"
	"google.golang.org/api/googleapi"

	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/partition"
)

const strategyLabel = "gnocchi_partition_strategy"

// IsBigQuery reports whether the destination names a BigQuery table, in the
// form bq://project/dataset/table.
func IsBigQuery(destination string) bool {
	return strings.HasPrefix(destination, "bq://")
}

// BigQueryStore persists association records into a BigQuery table. The
// partition key travels as a dedicated bucket column, since BigQuery owns
// the physical layout; the declared strategy is recorded as a table label
// for conflict detection on later runs.
type BigQueryStore struct {
	Client *bigquery.Client
}

func (s BigQueryStore) Declare(ctx context.Context, destination string, schema Schema, strategy partition.Strategy) (Writer, error) {
	if err := schema.Validate(); err != nil {
		return nil, assoc.SchemaConflictError{Destination: destination, Reason: err.Error()}
	}

	project, datasetID, tableID, err := ParseBigQueryDestination(destination)
	if err != nil {
		return nil, err
	}

	table := s.Client.DatasetInProject(project, datasetID).Table(tableID)
	bqSchema := toBigQuerySchema(schema)
	label := sanitizeLabelValue(strategy.Name())

	md, err := table.Metadata(ctx)
	switch {
	case err == nil:
		if reason := compareBigQuerySchema(md.Schema, bqSchema); reason != "" {
			return nil, assoc.SchemaConflictError{Destination: destination, Reason: reason}
		}
		if existing := md.Labels[strategyLabel]; existing != label {
			return nil, assoc.SchemaConflictError{
				Destination: destination,
				Reason:      fmt.Sprintf("partition strategy %q does not match existing %q", label, existing),
			}
		}
	case isNotFound(err):
		meta := &bigquery.TableMetadata{
			Schema: bqSchema,
			Labels: map[string]string{strategyLabel: label},
		}
		if err := table.Create(ctx, meta); err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %v", destination, err))
		}
	default:
		return nil, pfx.Err(fmt.Errorf("%s: %v", destination, err))
	}

	return &bigQueryWriter{
		destination: destination,
		schema:      schema,
		bqSchema:    bqSchema,
		strategy:    strategy,
		inserter:    table.Inserter(),
	}, nil
}

// bigQueryWriter streams records to the insert API in batches.
type bigQueryWriter struct {
	destination string
	schema      Schema
	bqSchema    bigquery.Schema
	strategy    partition.Strategy
	inserter    *bigquery.Inserter
	pending     []*bigquery.ValuesSaver
	done        bool
}

const bigQueryBatchSize = 500

func (w *bigQueryWriter) Append(ctx context.Context, rec assoc.AssociationRecord) error {
	if w.done {
		return assoc.WriteCommitError{Destination: w.destination, Err: fmt.Errorf("append after commit or abort")}
	}

	row := make([]bigquery.Value, 0, len(w.schema)+1)
	for _, c := range w.schema {
		row = append(row, bigquery.Value(w.schema.Value(c.Name, rec)))
	}
	row = append(row, w.strategy.Key(rec))

	w.pending = append(w.pending, &bigquery.ValuesSaver{Schema: w.bqSchema, Row: row})
	if len(w.pending) >= bigQueryBatchSize {
		return w.flush(ctx)
	}

	return nil
}

func (w *bigQueryWriter) flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	if err := w.inserter.Put(ctx, w.pending); err != nil {
		return assoc.WriteCommitError{Destination: w.destination, Err: err}
	}
	w.pending = w.pending[:0]

	return nil
}

func (w *bigQueryWriter) Commit(ctx context.Context) error {
	if w.done {
		return assoc.WriteCommitError{Destination: w.destination, Err: fmt.Errorf("commit after commit or abort")}
	}

	if err := w.flush(ctx); err != nil {
		return err
	}
	w.done = true

	return nil
}

func (w *bigQueryWriter) Abort() error {
	w.pending = nil
	w.done = true

	return nil
}

// ParseBigQueryDestination splits a bq://project/dataset/table destination.
func ParseBigQueryDestination(destination string) (project, datasetID, tableID string, err error) {
	parts := strings.Split(strings.TrimPrefix(destination, "bq://"), "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", pfx.Err(fmt.Errorf("%s: expected bq://project/dataset/table", destination))
	}

	return parts[0], parts[1], parts[2], nil
}

func toBigQuerySchema(schema Schema) bigquery.Schema {
	out := make(bigquery.Schema, 0, len(schema)+1)
	for _, c := range schema {
		field := &bigquery.FieldSchema{Name: c.Name}
		switch c.Type {
		case TypeInteger:
			field.Type = bigquery.IntegerFieldType
		case TypeFloat:
			field.Type = bigquery.FloatFieldType
		default:
			field.Type = bigquery.StringFieldType
		}
		out = append(out, field)
	}

	out = append(out, &bigquery.FieldSchema{Name: "bucket", Type: bigquery.StringFieldType})

	return out
}

func compareBigQuerySchema(existing, declared bigquery.Schema) string {
	if len(existing) != len(declared) {
		return fmt.Sprintf("existing table has %d columns, declared schema has %d", len(existing), len(declared))
	}
	for i := range declared {
		if existing[i].Name != declared[i].Name || existing[i].Type != declared[i].Type {
			return fmt.Sprintf("column %d is %s:%s, declared %s:%s",
				i, existing[i].Name, existing[i].Type, declared[i].Name, declared[i].Type)
		}
	}

	return ""
}

// BigQuery label values permit lowercase letters, digits, dashes, and
// underscores only.
func sanitizeLabelValue(v string) string {
	v = strings.ToLower(v)
	out := make([]rune, 0, len(v))
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}

	return string(out)
}

func isNotFound(err error) bool {
	if gerr, ok := err.(*googleapi.Error); ok {
		return gerr.Code == 404
	}

	return false
}
