package lattice_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/errors"
	"github.com/latticedb/lattice/metastore"
)

func newTestWriter(t *testing.T, opts ...lattice.WriterOption) (*lattice.Writer, *metastore.Store) {
	t.Helper()
	dir := t.TempDir()

	meta, err := metastore.Open(filepath.Join(dir, "meta.db"))
	require.NoError(t, err)
	t.Cleanup(func() { meta.Close() })

	key := mustID(t, "1000000000000000000000000000000000000000")
	schema := cstable.TableSchema{Columns: []cstable.Column{{Name: "v", Type: cstable.ColumnString}}}

	w, err := lattice.OpenWriter(meta, "ns", "events", key, dir, schema, cstable.GobCodec{}, opts...)
	require.NoError(t, err)
	return w, meta
}

func payload(t *testing.T, s string) []byte {
	t.Helper()
	b, err := cstable.EncodeGobPayload(map[string]interface{}{"v": s})
	require.NoError(t, err)
	return b
}

func TestWriter_InsertThenCommitProducesOneTable(t *testing.T) {
	w, _ := newTestWriter(t)

	id := mustID(t, "2000000000000000000000000000000000000000")
	inserted, err := w.InsertRecords([]lattice.RecordRef{
		{RecordID: id, RecordVersion: 1, Payload: payload(t, "hello")},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	require.True(t, w.NeedsCommit())

	require.NoError(t, w.Commit(context.Background()))
	require.False(t, w.NeedsCommit())
}

func TestWriter_InsertRejectsStaleAndAppliesUpdates(t *testing.T) {
	w, _ := newTestWriter(t)
	id := mustID(t, "3000000000000000000000000000000000000000")

	inserted, err := w.InsertRecords([]lattice.RecordRef{
		{RecordID: id, RecordVersion: 1, Payload: payload(t, "v1")},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	require.NoError(t, w.Commit(context.Background()))

	// Stale version after commit: the on-disk .idx must reject it.
	inserted, err = w.InsertRecords([]lattice.RecordRef{
		{RecordID: id, RecordVersion: 1, Payload: payload(t, "stale")},
	})
	require.NoError(t, err)
	require.Empty(t, inserted)

	// Newer version is accepted and marked as an update.
	inserted, err = w.InsertRecords([]lattice.RecordRef{
		{RecordID: id, RecordVersion: 2, Payload: payload(t, "v2")},
	})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
}

func TestWriter_FreezeRejectsFurtherInserts(t *testing.T) {
	w, _ := newTestWriter(t)
	w.Freeze()

	id := mustID(t, "4000000000000000000000000000000000000000")
	_, err := w.InsertRecords([]lattice.RecordRef{
		{RecordID: id, RecordVersion: 1, Payload: payload(t, "v1")},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, lattice.ErrIllegalState))
}

func TestWriter_CommitWithEmptyArenaIsNoop(t *testing.T) {
	w, _ := newTestWriter(t)
	require.NoError(t, w.Commit(context.Background()))
	require.False(t, w.NeedsCommit())
}

// TestWriter_CompactDetectsConcurrentModification exercises spec.md
// section 8's P4: of two compactions racing on the same partition, the
// one that installs first wins, and the other fails with
// ErrConcurrentModification instead of silently corrupting the table
// list (writer.go's Compact, the len(snap.Tables) < len(oldTables) and
// per-index filename checks).
func TestWriter_CompactDetectsConcurrentModification(t *testing.T) {
	dir := t.TempDir()
	schema := cstable.TableSchema{Columns: []cstable.Column{{Name: "v", Type: cstable.ColumnString}}}
	codec := cstable.GobCodec{}
	key := mustID(t, "8000000000000000000000000000000000000000")

	ref := lattice.NewSnapshotRef(lattice.NewPartitionSnapshot("ns", "events", key, dir))
	seed := lattice.NewWriter(ref, nil, schema, codec)

	for i := 0; i < 2; i++ {
		id := mustID(t, fmt.Sprintf("%040d", i+1))
		_, err := seed.InsertRecords([]lattice.RecordRef{
			{RecordID: id, RecordVersion: 1, Payload: payload(t, "x")},
		})
		require.NoError(t, err)
		require.NoError(t, seed.Commit(context.Background()))
	}
	require.Len(t, ref.Get().Tables, 2)

	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := lattice.CompactionStrategy(func(tables []lattice.LSMTableRef) []lattice.LSMTableRef {
		close(entered)
		<-release
		return lattice.KeepAll(tables)
	})

	slow := lattice.NewWriter(ref, nil, schema, codec, lattice.WithCompactionStrategy(blocking))
	fast := lattice.NewWriter(ref, nil, schema, codec, lattice.WithCompactionStrategy(lattice.SizeTiered(dir, 1<<30)))

	errCh := make(chan error, 1)
	go func() { errCh <- slow.Compact(context.Background()) }()

	<-entered
	require.NoError(t, fast.Compact(context.Background()))
	require.Len(t, ref.Get().Tables, 1, "fast compaction should have merged both tables into one")
	close(release)

	err := <-errCh
	require.Error(t, err)
	require.True(t, errors.Is(err, lattice.ErrConcurrentModification))

	// The winning compaction's result stands: each table exactly once.
	require.Len(t, ref.Get().Tables, 1)
}

func TestWriter_Compact_KeepAllPreservesTableCount(t *testing.T) {
	w, meta := newTestWriter(t, lattice.WithCompactionStrategy(lattice.KeepAll))

	for i := 0; i < 3; i++ {
		id := mustID(t, fmt.Sprintf("%040d", i+1))
		_, err := w.InsertRecords([]lattice.RecordRef{
			{RecordID: id, RecordVersion: 1, Payload: payload(t, "x")},
		})
		require.NoError(t, err)
		require.NoError(t, w.Compact(context.Background()))
	}

	tl, ok, err := meta.ReadTableList(mustID(t, "1000000000000000000000000000000000000000"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, tl.Filenames, 3)
}
