package versionindex_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/versionindex"
)

func TestWriteLookup_MaxMergesKnownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "table.idx")

	var id1, id2 [20]byte
	id1[0] = 1
	id2[0] = 2

	require.NoError(t, versionindex.Write(map[[20]byte]uint64{id1: 5, id2: 9}, path))

	lookup := map[[20]byte]uint64{id1: 3}
	require.NoError(t, versionindex.Lookup(lookup, path))

	require.Equal(t, uint64(5), lookup[id1])
	require.NotContains(t, lookup, id2)
}

func TestLookup_MissingFileIsNotError(t *testing.T) {
	lookup := map[[20]byte]uint64{}
	require.NoError(t, versionindex.Lookup(lookup, filepath.Join(t.TempDir(), "missing.idx")))
}
