package metastore_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/metastore"
)

func TestStore_WriteReadTableList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.db")
	store, err := metastore.Open(path)
	require.NoError(t, err)
	defer store.Close()

	var key [20]byte
	key[0] = 0x42

	tl := metastore.TableList{
		Key:       key,
		Namespace: "ns",
		TableName: "events",
		Filenames: []string{"aa11", "bb22"},
	}
	require.NoError(t, store.WriteTableList(tl))

	got, ok, err := store.ReadTableList(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tl, got)
}

func TestStore_ReadTableList_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.db")
	store, err := metastore.Open(path)
	require.NoError(t, err)
	defer store.Close()

	var key [20]byte
	_, ok, err := store.ReadTableList(key)
	require.NoError(t, err)
	require.False(t, ok)
}
