package dataset

import (
	"context"

	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/partition"
)

// Writer sinks one run's association records into a declared dataset.
// Records are routed to their partition bucket as they arrive; nothing is
// visible to readers until Commit. Abort releases resources without
// committing. Append takes the run's context so stores that flush batches
// mid-run observe cancellation.
type Writer interface {
	Append(ctx context.Context, rec assoc.AssociationRecord) error
	Commit(ctx context.Context) error
	Abort() error
}

// Store declares (or opens) a dataset at a destination with a fixed schema
// and partition strategy. Declaring a destination that already holds an
// incompatible schema or strategy fails with assoc.SchemaConflictError
// before anything is written; a compatible declaration appends new shards.
type Store interface {
	Declare(ctx context.Context, destination string, schema Schema, strategy partition.Strategy) (Writer, error)
}
