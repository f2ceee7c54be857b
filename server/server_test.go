package server_test

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/server"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	cfg := lattice.NewConfig()
	cfg.DataDir = t.TempDir()
	cfg.Bind = "127.0.0.1:0"

	s := server.NewServer(cfg, nil)
	require.NoError(t, s.Open())
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestServer_OpenBindsListenerAndMetastore(t *testing.T) {
	s := newTestServer(t)
	require.NotNil(t, s.Addr())
	require.NotNil(t, s.Meta)
}

func TestServer_WriterCachesByNamespaceTableAndKey(t *testing.T) {
	s := newTestServer(t)
	schema := cstable.TableSchema{Columns: []cstable.Column{{Name: "v", Type: cstable.ColumnString}}}
	key := mustKey(t, "1000000000000000000000000000000000000000")

	w1, err := s.Writer("ns", "events", key, schema, cstable.GobCodec{})
	require.NoError(t, err)

	w2, err := s.Writer("ns", "events", key, schema, cstable.GobCodec{})
	require.NoError(t, err)

	require.Same(t, w1, w2)
}

func TestServer_WriterIsDistinctPerPartitionKey(t *testing.T) {
	s := newTestServer(t)
	schema := cstable.TableSchema{Columns: []cstable.Column{{Name: "v", Type: cstable.ColumnString}}}
	keyA := mustKey(t, "1000000000000000000000000000000000000000")
	keyB := mustKey(t, "2000000000000000000000000000000000000000")

	wA, err := s.Writer("ns", "events", keyA, schema, cstable.GobCodec{})
	require.NoError(t, err)

	wB, err := s.Writer("ns", "events", keyB, schema, cstable.GobCodec{})
	require.NoError(t, err)

	require.NotSame(t, wA, wB)

	id := mustKey(t, "3000000000000000000000000000000000000000")
	_, err = wA.InsertRecords([]lattice.RecordRef{{RecordID: id, RecordVersion: 1}})
	require.NoError(t, err)
	require.True(t, wA.NeedsCommit())
	require.False(t, wB.NeedsCommit(), "inserting into one partition key must not affect another partition's writer")
}

func TestServer_AnswersNoContentWithoutRunReduce(t *testing.T) {
	s := newTestServer(t)

	resp, err := http.Get("http://" + s.Addr().String() + "/api/v1/mapreduce/tasks/reduce?program_source=p&method_name=m&input_table=a")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServer_RunsConfiguredReduceProgram(t *testing.T) {
	s := newTestServer(t)
	want := bytes.Repeat([]byte{0xab}, 20)
	var wantID [20]byte
	copy(wantID[:], want)

	s.RunReduce = func(programSource, methodName string, inputTables []string) ([20]byte, bool, error) {
		return wantID, true, nil
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/api/v1/mapreduce/tasks/reduce?program_source=p&method_name=m&input_table=a")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want), string(body))
}

func mustKey(t *testing.T, hexStr string) lattice.RecordID {
	t.Helper()
	id, err := lattice.RecordIDFromHex(hexStr)
	require.NoError(t, err)
	return id
}
