package lattice

import (
	"os"
	"path/filepath"
)

// CompactionStrategy is a pure function over the current on-disk table
// list: it returns the list that should replace it. It must either keep
// the list identical or replace a prefix of it. Compact does not inspect
// the strategy's output: it only checks that the current table list still
// begins with the list the strategy was given (failing with
// ErrConcurrentModification otherwise), then installs the output followed
// by any tables appended since. Strategies should therefore only ever
// touch the prefix they were handed.
type CompactionStrategy func(oldTables []LSMTableRef) []LSMTableRef

// KeepAll is the default compaction strategy: it never merges anything.
// This mirrors the distilled source's commented-out compaction call —
// compact() still performs its commit-then-install dance, it just never
// changes the table list.
func KeepAll(oldTables []LSMTableRef) []LSMTableRef {
	kept := make([]LSMTableRef, len(oldTables))
	copy(kept, oldTables)
	return kept
}

// SizeTiered merges the oldest tables in basePath whose combined .cst size
// does not exceed maxDatafileSize into a single logical entry, picking up where
// LSMPartitionWriter's dropped max_datafile_size_ field left off (see
// SPEC_FULL.md's "Supplemented from original_source"). It does not itself
// rewrite the flushed .cst contents — that remains a no-op in this spec,
// per the design note that compaction's actual merge policy is pluggable
// and unconstrained beyond preserving invariant I3 — it only decides which
// prefix of tables compact() should try to replace with a single merged
// LSMTableRef sharing the first table's filename.
func SizeTiered(basePath string, maxDatafileSize int64) CompactionStrategy {
	return func(oldTables []LSMTableRef) []LSMTableRef {
		if len(oldTables) < 2 {
			return KeepAll(oldTables)
		}

		var cumulative int64
		mergeUpTo := 0
		for i, tbl := range oldTables {
			cumulative += cstableSize(basePath, tbl.Filename)
			if cumulative > maxDatafileSize {
				break
			}
			mergeUpTo = i + 1
		}

		if mergeUpTo < 2 {
			return KeepAll(oldTables)
		}

		merged := make([]LSMTableRef, 0, len(oldTables)-mergeUpTo+1)
		merged = append(merged, oldTables[0])
		merged = append(merged, oldTables[mergeUpTo:]...)
		return merged
	}
}

func cstableSize(basePath, filename string) int64 {
	info, err := os.Stat(filepath.Join(basePath, filename+".cst"))
	if err != nil {
		return 0
	}
	return info.Size()
}
