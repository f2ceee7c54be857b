package ctl_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/ctl"
)

func TestInsertCommitCompactInspect_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	key := "1000000000000000000000000000000000000000"

	insert := ctl.NewInsertCommand(strings.NewReader(
		`{"id":"2000000000000000000000000000000000000000","version":1,"payload":"aGVsbG8="}`+"\n",
	), &bytes.Buffer{}, &bytes.Buffer{})
	insert.DataDir, insert.Namespace, insert.Table, insert.Key = dir, "ns", "events", key
	require.NoError(t, insert.Run(context.Background()))

	var commitOut bytes.Buffer
	commit := ctl.NewCommitCommand(nil, &commitOut, &bytes.Buffer{})
	commit.DataDir, commit.Namespace, commit.Table, commit.Key = dir, "ns", "events", key
	require.NoError(t, commit.Run(context.Background()))
	require.Contains(t, commitOut.String(), "committed ns/events/"+key)

	var compactOut bytes.Buffer
	compact := ctl.NewCompactCommand(nil, &compactOut, &bytes.Buffer{})
	compact.DataDir, compact.Namespace, compact.Table, compact.Key = dir, "ns", "events", key
	require.NoError(t, compact.Run(context.Background()))
	require.Contains(t, compactOut.String(), "compacted ns/events/"+key)
}

func TestInsertCommand_ReportsPartialAcceptance(t *testing.T) {
	dir := t.TempDir()
	key := "1000000000000000000000000000000000000000"
	id := "2000000000000000000000000000000000000000"

	first := ctl.NewInsertCommand(strings.NewReader(
		`{"id":"`+id+`","version":1,"payload":"YQ=="}`+"\n",
	), &bytes.Buffer{}, &bytes.Buffer{})
	first.DataDir, first.Namespace, first.Table, first.Key = dir, "ns", "events", key
	require.NoError(t, first.Run(context.Background()))

	var out bytes.Buffer
	stale := ctl.NewInsertCommand(strings.NewReader(
		`{"id":"`+id+`","version":1,"payload":"Yg=="}`+"\n",
	), &out, &bytes.Buffer{})
	stale.DataDir, stale.Namespace, stale.Table, stale.Key = dir, "ns", "events", key
	require.NoError(t, stale.Run(context.Background()))
	require.Contains(t, out.String(), "inserted 0 of 1 records")
}

func TestGenerateConfigCommand_PrintsDefaults(t *testing.T) {
	var out bytes.Buffer
	cmd := ctl.NewGenerateConfigCommand(nil, &out, &bytes.Buffer{})
	require.NoError(t, cmd.Run(context.Background()))
	require.Contains(t, out.String(), "data-dir")
}
