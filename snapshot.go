package lattice

import (
	"go.uber.org/atomic"
)

// LSMTableRef identifies a flushed, immutable on-disk table by its random
// filename token (without extension): <base_path>/<filename>.cst and
// <base_path>/<filename>.idx.
type LSMTableRef struct {
	Filename string
}

// PartitionSnapshot is an immutable descriptor of a partition's state. A
// snapshot is never mutated in place; state transitions clone it, mutate
// the clone, persist any required on-disk metadata, and publish the clone
// through a SnapshotRef.
type PartitionSnapshot struct {
	BasePath  string
	Namespace string
	TableName string
	Key       RecordID

	// HeadArena is the writable arena; new inserts land here.
	HeadArena *RecordArena

	// CompactingArena, if non-nil, is a read-only arena currently being
	// flushed to disk. At most one exists per partition at a time.
	CompactingArena *RecordArena

	// Tables is the ordered list of on-disk LSM tables, oldest first.
	Tables []LSMTableRef
}

// NewPartitionSnapshot returns the initial, empty snapshot for a
// partition rooted at basePath.
func NewPartitionSnapshot(namespace, tableName string, key RecordID, basePath string) *PartitionSnapshot {
	return &PartitionSnapshot{
		BasePath:  basePath,
		Namespace: namespace,
		TableName: tableName,
		Key:       key,
		HeadArena: NewRecordArena(),
	}
}

// clone returns a shallow copy of the snapshot suitable for mutation: the
// Tables slice is copied (so appends/replacements on the clone never
// retroactively affect a published snapshot still being read), but the
// arenas and individual LSMTableRef values are shared by reference since
// they are themselves treated as immutable once published.
func (s *PartitionSnapshot) clone() *PartitionSnapshot {
	clone := *s
	clone.Tables = make([]LSMTableRef, len(s.Tables))
	copy(clone.Tables, s.Tables)
	return &clone
}

// SnapshotRef is the reference cell that owns a partition's current
// snapshot. Get is lock-free; Set is serialised by the writer's mutex
// (not by SnapshotRef itself — invariant I4 relies on the caller holding
// the write mutex across clone-mutate-persist-publish).
type SnapshotRef struct {
	v atomic.Value
}

// NewSnapshotRef returns a reference cell initialised to snap.
func NewSnapshotRef(snap *PartitionSnapshot) *SnapshotRef {
	r := &SnapshotRef{}
	r.v.Store(snap)
	return r
}

// Get returns the currently published snapshot.
func (r *SnapshotRef) Get() *PartitionSnapshot {
	return r.v.Load().(*PartitionSnapshot)
}

// Set publishes snap as the current snapshot.
func (r *SnapshotRef) Set(snap *PartitionSnapshot) {
	r.v.Store(snap)
}
