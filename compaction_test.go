package lattice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	lattice "github.com/latticedb/lattice"
)

func TestKeepAll_ReturnsCopyNotAlias(t *testing.T) {
	old := []lattice.LSMTableRef{{Filename: "a"}, {Filename: "b"}}
	kept := lattice.KeepAll(old)

	require.Equal(t, old, kept)

	kept[0].Filename = "mutated"
	require.Equal(t, "a", old[0].Filename)
}

func TestSizeTiered_MergesTablesUnderThreshold(t *testing.T) {
	dir := t.TempDir()
	sizes := map[string]int{"t1": 10, "t2": 10, "t3": 1000}
	tables := []lattice.LSMTableRef{{Filename: "t1"}, {Filename: "t2"}, {Filename: "t3"}}
	for _, tbl := range tables {
		require.NoError(t, os.WriteFile(filepath.Join(dir, tbl.Filename+".cst"), make([]byte, sizes[tbl.Filename]), 0o644))
	}

	strategy := lattice.SizeTiered(dir, 25)
	merged := strategy(tables)

	require.Len(t, merged, 2)
	require.Equal(t, "t1", merged[0].Filename)
	require.Equal(t, "t3", merged[1].Filename)
}

func TestSizeTiered_LeavesSingleTableAlone(t *testing.T) {
	strategy := lattice.SizeTiered(t.TempDir(), 1<<20)
	merged := strategy([]lattice.LSMTableRef{{Filename: "solo"}})
	require.Len(t, merged, 1)
}
