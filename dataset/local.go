package dataset

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/carbocation/pfx"
	"gonum.org/v1/gonum/stat"

	"github.com/maduhu/gnocchi/assoc"
	"github.com/maduhu/gnocchi/partition"

	gnocchi "github.com/maduhu/gnocchi"
)

const (
	datasetMetaFile = "_dataset.json"
	manifestFile    = "_manifest.json"
)

// datasetMeta is the one-time declaration persisted before any record.
type datasetMeta struct {
	Schema   Schema `json:"schema"`
	Strategy string `json:"strategy"`
	Created  string `json:"created"`
}

type manifestPartition struct {
	Key         string  `json:"key"`
	Path        string  `json:"path"`
	File        string  `json:"file"`
	Records     int     `json:"records"`
	ScoreMean   float64 `json:"score_mean"`
	ScoreStdDev float64 `json:"score_stddev"`
}

type manifest struct {
	CommittedAt string              `json:"committed_at"`
	Records     int                 `json:"records"`
	Partitions  []manifestPartition `json:"partitions"`
}

// LocalStore persists datasets as directories of per-partition gzipped TSV
// shards, one subdirectory per partition bucket, with a JSON declaration
// written up front and a JSON manifest written at commit.
type LocalStore struct{}

func (LocalStore) Declare(ctx context.Context, destination string, schema Schema, strategy partition.Strategy) (Writer, error) {
	destination, err := gnocchi.ExpandHome(destination)
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(); err != nil {
		return nil, assoc.SchemaConflictError{Destination: destination, Reason: err.Error()}
	}

	metaPath := filepath.Join(destination, datasetMetaFile)

	raw, err := os.ReadFile(metaPath)
	switch {
	case err == nil:
		var existing datasetMeta
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, assoc.SchemaConflictError{Destination: destination, Reason: fmt.Sprintf("unreadable dataset declaration: %v", err)}
		}
		if !existing.Schema.Equal(schema) {
			return nil, assoc.SchemaConflictError{
				Destination: destination,
				Reason:      fmt.Sprintf("declared schema %q does not match existing %q", schema.Fingerprint(), existing.Schema.Fingerprint()),
			}
		}
		if existing.Strategy != strategy.Name() {
			return nil, assoc.SchemaConflictError{
				Destination: destination,
				Reason:      fmt.Sprintf("partition strategy %q does not match existing %q", strategy.Name(), existing.Strategy),
			}
		}
	case os.IsNotExist(err):
		if err := os.MkdirAll(destination, 0o755); err != nil {
			return nil, pfx.Err(err)
		}

		meta := datasetMeta{Schema: schema, Strategy: strategy.Name(), Created: time.Now().UTC().Format(time.RFC3339)}
		raw, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return nil, pfx.Err(err)
		}
		if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
			return nil, pfx.Err(err)
		}
	default:
		// An existing declaration that cannot be read must never be
		// overwritten as if the dataset were new.
		return nil, assoc.SchemaConflictError{Destination: destination, Reason: fmt.Sprintf("unreadable dataset declaration: %v", err)}
	}

	return &localWriter{
		destination: destination,
		schema:      schema,
		strategy:    strategy,
		shards:      make(map[string]*localShard),
	}, nil
}

type localShard struct {
	key    string
	dir    string
	file   string
	f      *os.File
	gz     *gzip.Writer
	tsv    *csv.Writer
	count  int
	scores []float64
}

type localWriter struct {
	destination string
	schema      Schema
	strategy    partition.Strategy
	shards      map[string]*localShard
	records     int
	done        bool
}

func (w *localWriter) Append(ctx context.Context, rec assoc.AssociationRecord) error {
	if w.done {
		return assoc.WriteCommitError{Destination: w.destination, Err: fmt.Errorf("append after commit or abort")}
	}
	if err := ctx.Err(); err != nil {
		return assoc.WriteCommitError{Destination: w.destination, Err: err}
	}

	key := w.strategy.Key(rec)

	shard, ok := w.shards[key]
	if !ok {
		var err error
		if shard, err = w.openShard(key); err != nil {
			return assoc.WriteCommitError{Destination: w.destination, Err: err}
		}
		w.shards[key] = shard
	}

	if err := shard.tsv.Write(w.schema.Row(rec)); err != nil {
		return assoc.WriteCommitError{Destination: w.destination, Err: err}
	}
	shard.count++
	shard.scores = append(shard.scores, rec.Score)
	w.records++

	return nil
}

func (w *localWriter) openShard(key string) (*localShard, error) {
	dir := filepath.Join(w.destination, "key="+sanitizeKey(key))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	// Append-safe at partition granularity: each run writes a fresh shard
	// numbered after any existing ones.
	var file string
	for i := 0; ; i++ {
		file = fmt.Sprintf("part-%05d.tsv.gz", i)
		if _, err := os.Stat(filepath.Join(dir, file)); os.IsNotExist(err) {
			break
		}
	}

	f, err := os.Create(filepath.Join(dir, file))
	if err != nil {
		return nil, err
	}

	gz := gzip.NewWriter(f)
	tsv := csv.NewWriter(gz)
	tsv.Comma = '\t'

	header := make([]string, len(w.schema))
	for i, c := range w.schema {
		header[i] = c.Name
	}
	if err := tsv.Write(header); err != nil {
		f.Close()
		return nil, err
	}

	return &localShard{key: key, dir: dir, file: file, f: f, gz: gz, tsv: tsv}, nil
}

func (w *localWriter) Commit(ctx context.Context) error {
	if w.done {
		return assoc.WriteCommitError{Destination: w.destination, Err: fmt.Errorf("commit after commit or abort")}
	}
	w.done = true

	m := manifest{}
	manifestPath := filepath.Join(w.destination, manifestFile)
	if raw, err := os.ReadFile(manifestPath); err == nil {
		if err := json.Unmarshal(raw, &m); err != nil {
			return assoc.WriteCommitError{Destination: w.destination, Err: err}
		}
	}

	keys := make([]string, 0, len(w.shards))
	for key := range w.shards {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		shard := w.shards[key]
		if err := shard.close(); err != nil {
			return assoc.WriteCommitError{Destination: w.destination, Err: err}
		}

		entry := manifestPartition{
			Key:       shard.key,
			Path:      filepath.Base(shard.dir),
			File:      shard.file,
			Records:   shard.count,
			ScoreMean: stat.Mean(shard.scores, nil),
		}
		if len(shard.scores) > 1 {
			entry.ScoreStdDev = stat.StdDev(shard.scores, nil)
		}
		m.Partitions = append(m.Partitions, entry)
	}

	m.Records += w.records
	m.CommittedAt = time.Now().UTC().Format(time.RFC3339)

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return assoc.WriteCommitError{Destination: w.destination, Err: err}
	}
	if err := os.WriteFile(manifestPath, raw, 0o644); err != nil {
		return assoc.WriteCommitError{Destination: w.destination, Err: err}
	}

	return nil
}

func (w *localWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	// Uncommitted shards are removed so a failed run leaves no stray data,
	// only the declaration.
	for _, shard := range w.shards {
		shard.close()
		os.Remove(filepath.Join(shard.dir, shard.file))
	}

	return nil
}

func (s *localShard) close() error {
	s.tsv.Flush()
	if err := s.tsv.Error(); err != nil {
		s.f.Close()
		return err
	}
	if err := s.gz.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// sanitizeKey makes a partition key safe as a directory name. The raw key is
// preserved in the manifest.
func sanitizeKey(key string) string {
	if key == "" {
		return "_empty"
	}

	out := make([]rune, 0, len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			out = append(out, r)
		default:
			out = append(out, []rune(fmt.Sprintf("%%%02x", r))...)
		}
	}

	return string(out)
}
