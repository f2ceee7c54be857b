package lattice

import (
	"os"

	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/metastore"
)

// OpenWriter builds a Writer for a single partition rooted at basePath,
// restoring its table list from meta if one was already persisted there.
// It is the one entry point the partition-level latticectl subcommands
// (insert, commit, compact) and the server package use to get from "a path on disk" to a running Writer, so the
// bootstrap sequence only needs to be gotten right in one place.
func OpenWriter(meta *metastore.Store, namespace, tableName string, key RecordID, basePath string, schema cstable.TableSchema, codec cstable.Codec, opts ...WriterOption) (*Writer, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}

	snap := NewPartitionSnapshot(namespace, tableName, key, basePath)

	if meta != nil {
		if tl, ok, err := meta.ReadTableList(key); err != nil {
			return nil, err
		} else if ok {
			for _, fn := range tl.Filenames {
				snap.Tables = append(snap.Tables, LSMTableRef{Filename: fn})
			}
		}
	}

	ref := NewSnapshotRef(snap)
	return NewWriter(ref, meta, schema, codec, opts...), nil
}
