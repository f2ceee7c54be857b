package lattice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/atomic"

	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/errors"
	"github.com/latticedb/lattice/logger"
	"github.com/latticedb/lattice/metastore"
	"github.com/latticedb/lattice/versionindex"
)

// DefaultMaxDatafileSize restores the max_datafile_size_ field dropped by
// the distillation (see SPEC_FULL.md, "Supplemented from original_source").
// It is the default threshold that NewConfig and latticectl compact pass
// to SizeTiered. A Writer records its own value (WithMaxDatafileSize) but
// does not read it; SizeTiered only uses the threshold it is given.
const DefaultMaxDatafileSize = 256 << 20 // 256MiB

// Writer is the LSM partition writer of spec.md section 4.5: it owns
// snapshot evolution for a single partition, ingesting records into the
// head arena and flushing/compacting them to disk.
type Writer struct {
	// mu is the write mutex: it guards snapshot publication and arena
	// mutation. commitMu serialises Commit calls, including the commit
	// step that opens Compact, but not inserts. Commit takes mu while
	// holding commitMu; mu is never held while commitMu is acquired.
	// Compact's strategy and install steps run without commitMu, so two
	// Compact calls can overlap there; the install step's table-list
	// check then fails the later one with ErrConcurrentModification.
	mu       sync.Mutex
	commitMu sync.Mutex

	ref    *SnapshotRef
	meta   *metastore.Store
	schema cstable.TableSchema
	codec  cstable.Codec

	logger             logger.Logger
	compactionStrategy CompactionStrategy
	maxDatafileSize    int64

	frozen atomic.Bool
}

// WriterOption configures optional Writer behavior.
type WriterOption func(*Writer)

func WithLogger(l logger.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

func WithCompactionStrategy(s CompactionStrategy) WriterOption {
	return func(w *Writer) { w.compactionStrategy = s }
}

func WithMaxDatafileSize(n int64) WriterOption {
	return func(w *Writer) { w.maxDatafileSize = n }
}

// NewWriter returns a writer for the partition whose current state is
// held by ref, with on-disk metadata persisted to meta.
func NewWriter(ref *SnapshotRef, meta *metastore.Store, schema cstable.TableSchema, codec cstable.Codec, opts ...WriterOption) *Writer {
	w := &Writer{
		ref:                ref,
		meta:               meta,
		schema:             schema,
		codec:              codec,
		logger:             logger.NopLogger,
		compactionStrategy: KeepAll,
		maxDatafileSize:    DefaultMaxDatafileSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Freeze marks the partition frozen: subsequent InsertRecords calls fail
// with ErrIllegalState. There is no Unfreeze — freezing a partition is a
// one-way transition in this spec (e.g. ahead of a partition split owned
// by an external collaborator).
func (w *Writer) Freeze() { w.frozen.Store(true) }

// InsertRecords ingests records into the partition's head arena, per
// spec.md section 4.5. It returns the set of record ids that were
// actually retained (replaced nothing, or replaced a strictly older
// version).
func (w *Writer) InsertRecords(records []RecordRef) (map[RecordID]struct{}, error) {
	span, _ := opentracing.StartSpanFromContext(context.Background(), "Writer.InsertRecords")
	defer span.Finish()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.frozen.Load() {
		return nil, errors.New(ErrIllegalState, "partition is frozen")
	}

	snap := w.ref.Get()
	w.logger.Debugf("insert %d records into partition %s/%s/%s", len(records), snap.Namespace, snap.TableName, snap.Key)

	// The lookup map is populated lazily: a record is only a candidate
	// for further lookups if its incoming version beats the head
	// arena's current version for that id. Records we'd reject anyway
	// are never looked up further (spec.md section 4.5).
	recVersions := make(map[[20]byte]uint64)
	for _, r := range records {
		if snap.HeadArena.FetchRecordVersion(r.RecordID) < r.RecordVersion {
			recVersions[r.RecordID] = 0
		}
	}

	if snap.CompactingArena != nil {
		for id := range recVersions {
			if v := snap.CompactingArena.FetchRecordVersion(id); v > recVersions[id] {
				recVersions[id] = v
			}
		}
	}

	// Consult on-disk tables newest first.
	for i := len(snap.Tables) - 1; i >= 0; i-- {
		idxPath := filepath.Join(snap.BasePath, snap.Tables[i].Filename+".idx")
		if err := versionindex.Lookup(recVersions, idxPath); err != nil {
			return nil, errors.Wrap(err, "lattice: version index lookup")
		}
	}

	inserted := make(map[RecordID]struct{})
	if len(recVersions) > 0 {
		for _, r := range records {
			headv := recVersions[r.RecordID]
			if headv > 0 {
				r.IsUpdate = true
			}
			if r.RecordVersion <= headv {
				continue
			}
			if snap.HeadArena.Insert(r) {
				inserted[r.RecordID] = struct{}{}
			}
		}
	}

	InsertedRecords.Add(float64(len(inserted)))
	return inserted, nil
}

// NeedsCommit reports whether the head arena holds at least one record.
func (w *Writer) NeedsCommit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ref.Get().HeadArena.Size() > 0
}

// NeedsCompaction reports whether compaction would have anything to do.
// Compaction implies commit; stricter thresholds are left to the
// CompactionStrategy (spec.md section 4.5, "Open questions").
func (w *Writer) NeedsCompaction() bool {
	return w.NeedsCommit()
}

// Commit flips the head arena into the compacting slot (if no compaction
// is already in flight), flushes it to a new on-disk table, and installs
// the result into the published snapshot. See spec.md section 4.5 for the
// three-phase protocol and its crash-safety properties.
func (w *Writer) Commit(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Writer.Commit")
	defer span.Finish()

	w.commitMu.Lock()
	defer w.commitMu.Unlock()

	arena := w.flip()
	if arena == nil || arena.Size() == 0 {
		return nil
	}

	snap := w.ref.Get()
	filename := randomHexToken()
	base := filepath.Join(snap.BasePath, filename)

	t0 := time.Now()
	if err := w.flushArena(arena, base); err != nil {
		return errors.Wrap(err, "lattice: flush arena")
	}
	elapsed := time.Since(t0)
	FlushDuration.Observe(elapsed.Seconds())

	w.logger.Debugf("committed partition %s/%s/%s (%d records), took %s",
		snap.Namespace, snap.TableName, snap.Key, arena.Size(), elapsed)

	return w.install(filename)
}

// flip is Commit's Phase A: under the write mutex, move the head arena
// into the compacting slot (if none is already compacting) and install a
// fresh empty head. It returns the arena to flush, or nil if there was
// nothing to do.
func (w *Writer) flip() *RecordArena {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := w.ref.Get().clone()
	if snap.CompactingArena == nil && snap.HeadArena.Size() > 0 {
		snap.CompactingArena = snap.HeadArena
		snap.HeadArena = NewRecordArena()
		w.ref.Set(snap)
	}
	return snap.CompactingArena
}

// install is Commit's Phase C: under the write mutex, clear the
// compacting arena, append the newly flushed table, persist metadata, and
// publish.
func (w *Writer) install(filename string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := w.ref.Get().clone()
	snap.CompactingArena = nil
	snap.Tables = append(snap.Tables, LSMTableRef{Filename: filename})

	if err := w.persist(snap); err != nil {
		return errors.Wrap(err, "lattice: persist snapshot metadata")
	}

	w.ref.Set(snap)
	Commits.Inc()
	return nil
}

// Compact runs commit() followed by the configured CompactionStrategy,
// then attempts to install the strategy's output in place of the table
// list it was computed from. If the table list changed underneath it in
// an incompatible way, Compact fails with ErrConcurrentModification and
// the caller is expected to retry (spec.md section 4.5).
func (w *Writer) Compact(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Writer.Compact")
	defer span.Finish()

	if err := w.Commit(ctx); err != nil {
		return err
	}

	oldTables := append([]LSMTableRef(nil), w.ref.Get().Tables...)
	newTables := w.compactionStrategy(oldTables)

	w.mu.Lock()
	defer w.mu.Unlock()

	snap := w.ref.Get().clone()
	if len(snap.Tables) < len(oldTables) {
		ConcurrentModificationErrors.Inc()
		return errors.New(ErrConcurrentModification, "can't commit compaction, aborting")
	}

	merged := append([]LSMTableRef(nil), newTables...)
	for i, tbl := range snap.Tables {
		if i < len(oldTables) {
			if oldTables[i].Filename != tbl.Filename {
				ConcurrentModificationErrors.Inc()
				return errors.New(ErrConcurrentModification, "can't commit compaction, aborting")
			}
			continue
		}
		merged = append(merged, tbl)
	}

	snap.Tables = merged
	if err := w.persist(snap); err != nil {
		return errors.Wrap(err, "lattice: persist snapshot metadata")
	}

	w.ref.Set(snap)
	Compactions.Inc()
	return nil
}

func (w *Writer) persist(snap *PartitionSnapshot) error {
	if w.meta == nil {
		return nil
	}

	filenames := make([]string, len(snap.Tables))
	for i, t := range snap.Tables {
		filenames[i] = t.Filename
	}

	return w.meta.WriteTableList(metastore.TableList{
		Key:       snap.Key,
		Namespace: snap.Namespace,
		TableName: snap.TableName,
		Filenames: filenames,
	})
}

// flushArena is the Columnar Table Writer path of spec.md section 4.3: it
// decodes every record's payload, shreds it (plus the three extension
// columns) into a new .cst, commits it, and only then writes the .idx
// sidecar. If decoding fails, the flush aborts and the compacting arena
// is left untouched (spec.md section 7, kind Decode) — it will be
// retried by the next Commit call.
func (w *Writer) flushArena(arena *RecordArena, base string) error {
	cw, err := cstable.CreateFile(base+".cst", w.schema)
	if err != nil {
		return errors.Wrap(err, "lattice: creating cstable")
	}

	var decodeErr error
	arena.FetchRecords(func(r RecordRef) {
		if decodeErr != nil {
			return
		}
		fields, err := w.codec.Decode(r.Payload)
		if err != nil {
			decodeErr = errors.WithMessagef(errors.New(ErrDecode, "decode failed"), "record %s: %v", r.RecordID, err)
			return
		}
		if err := cw.AddRecord(fields, r.IsUpdate, r.RecordID.String(), r.RecordVersion); err != nil {
			decodeErr = err
		}
	})
	if decodeErr != nil {
		return decodeErr
	}

	versions, err := cw.Commit()
	if err != nil {
		return errors.Wrap(err, "lattice: committing cstable")
	}

	rawVersions := make(map[[20]byte]uint64, len(versions))
	for idHex, v := range versions {
		id, err := RecordIDFromHex(idHex)
		if err != nil {
			return errors.Wrap(err, "lattice: decoding record id")
		}
		rawVersions[id] = v
	}

	return versionindex.Write(rawVersions, base+".idx")
}

func randomHexToken() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err) // crypto/rand failing is unrecoverable
	}
	return hex.EncodeToString(buf[:])
}
