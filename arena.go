package lattice

import "sync"

// RecordArena is an in-memory, append-only, per-record-id versioned store
// of pending records. It dedupes by RecordID, keeping only the highest
// version seen for each id. An arena transitions from writable ("head") to
// read-only ("compacting") by reference, not by mutation: once a snapshot
// hands an arena off as compacting_arena, writers stop inserting into it
// and a fresh empty arena becomes the new head.
type RecordArena struct {
	mu      sync.RWMutex
	records map[RecordID]arenaRecord
}

type arenaRecord struct {
	version  uint64
	payload  []byte
	isUpdate bool
}

// NewRecordArena returns a new, empty arena.
func NewRecordArena() *RecordArena {
	return &RecordArena{records: make(map[RecordID]arenaRecord)}
}

// Insert retains r iff it replaces nothing or replaces a strictly older
// version. It returns true iff the record was retained.
func (a *RecordArena) Insert(r RecordRef) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.records[r.RecordID]
	if ok && r.RecordVersion <= existing.version {
		return false
	}

	a.records[r.RecordID] = arenaRecord{
		version:  r.RecordVersion,
		payload:  r.Payload,
		isUpdate: r.IsUpdate,
	}
	return true
}

// FetchRecordVersion returns the version currently held for id, or 0 if
// the id is absent.
func (a *RecordArena) FetchRecordVersion(id RecordID) uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.records[id].version
}

// Size returns the number of distinct record ids currently held.
func (a *RecordArena) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// FetchRecords invokes visit once per retained record, in unspecified
// order. visit must not call back into the arena.
func (a *RecordArena) FetchRecords(visit func(RecordRef)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for id, rec := range a.records {
		visit(RecordRef{
			RecordID:      id,
			RecordVersion: rec.version,
			Payload:       rec.payload,
			IsUpdate:      rec.isUpdate,
		})
	}
}
