package dataset

import (
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"

	"github.com/maduhu/gnocchi/assoc"
)

// PartitionedRecord pairs a re-read association record with the partition
// bucket it was stored under.
type PartitionedRecord struct {
	Partition string
	Record    assoc.AssociationRecord
}

// ReadLocal re-reads a committed local dataset: every record of every
// committed shard, tagged with its partition key. Used for verification and
// downstream tooling; uncommitted shards are invisible because only the
// manifest is consulted.
func ReadLocal(destination string) ([]PartitionedRecord, error) {
	meta, err := readDatasetMeta(destination)
	if err != nil {
		return nil, err
	}

	var m manifest
	raw, err := os.ReadFile(filepath.Join(destination, manifestFile))
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: dataset has no committed manifest: %v", destination, err))
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, pfx.Err(err)
	}

	var out []PartitionedRecord
	for _, part := range m.Partitions {
		records, err := readShard(filepath.Join(destination, part.Path, part.File), meta.Schema)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			out = append(out, PartitionedRecord{Partition: part.Key, Record: rec})
		}
	}

	return out, nil
}

func readDatasetMeta(destination string) (datasetMeta, error) {
	var meta datasetMeta

	raw, err := os.ReadFile(filepath.Join(destination, datasetMetaFile))
	if err != nil {
		return meta, pfx.Err(fmt.Errorf("%s: not a dataset: %v", destination, err))
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, pfx.Err(err)
	}

	return meta, nil
}

func readShard(path string, schema Schema) ([]assoc.AssociationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}
	defer gz.Close()

	tsv := csv.NewReader(gz)
	tsv.Comma = '\t'

	// Header
	if _, err := tsv.Read(); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
	}

	var out []assoc.AssociationRecord
	for {
		row, err := tsv.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
		}

		var rec assoc.AssociationRecord
		for i, c := range schema {
			if err := setColumn(&rec, c.Name, row[i]); err != nil {
				return nil, pfx.Err(fmt.Errorf("%s: %v", path, err))
			}
		}
		out = append(out, rec)
	}

	return out, nil
}
