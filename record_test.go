package lattice_test

import (
	"testing"

	lattice "github.com/latticedb/lattice"
	"github.com/stretchr/testify/require"
)

func TestRecordIDFromHex(t *testing.T) {
	id, err := lattice.RecordIDFromHex("0102030405060708090a0b0c0d0e0f1011121314")
	require.NoError(t, err)
	require.Equal(t, "0102030405060708090a0b0c0d0e0f1011121314", id.String())
}

func TestRecordIDFromHex_BadLength(t *testing.T) {
	_, err := lattice.RecordIDFromHex("ab")
	require.Error(t, err)
}

func TestRecordIDFromHex_BadHex(t *testing.T) {
	_, err := lattice.RecordIDFromHex("not-hex-at-all-not-hex-at-all-not-hex!!")
	require.Error(t, err)
}
