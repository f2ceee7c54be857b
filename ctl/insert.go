package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/errors"
	"github.com/latticedb/lattice/metastore"
)

// InsertCommand reads newline-delimited JSON records from stdin (or Path,
// if set) and inserts them into a single partition, for local testing and
// scripted loads against a lattice data directory.
type InsertCommand struct {
	*lattice.CmdIO

	DataDir   string
	Namespace string
	Table     string
	Key       string
	Path      string
}

// jsonRecord is the wire shape InsertCommand reads, one per line.
type jsonRecord struct {
	ID      string          `json:"id"`
	Version uint64          `json:"version"`
	Payload json.RawMessage `json:"payload"`
}

// NewInsertCommand returns a new instance of InsertCommand.
func NewInsertCommand(stdin io.Reader, stdout, stderr io.Writer) *InsertCommand {
	return &InsertCommand{
		CmdIO: lattice.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run inserts every record read from the input into the named partition,
// commits the retained records to disk, and reports how many were
// retained.
func (cmd *InsertCommand) Run(ctx context.Context) error {
	key, err := lattice.RecordIDFromHex(cmd.Key)
	if err != nil {
		return errors.Wrap(err, "parsing key")
	}

	meta, err := metastore.Open(cmd.DataDir + "/meta.db")
	if err != nil {
		return errors.Wrap(err, "opening metastore")
	}
	defer meta.Close()

	basePath := cmd.DataDir + "/" + cmd.Namespace + "/" + cmd.Table + "/" + key.String()
	schema := cstable.TableSchema{Columns: []cstable.Column{
		{Name: "payload", Type: cstable.ColumnBytes},
	}}

	w, err := lattice.OpenWriter(meta, cmd.Namespace, cmd.Table, key, basePath, schema, cstable.GobCodec{})
	if err != nil {
		return errors.Wrap(err, "opening writer")
	}

	in := cmd.Stdin
	if cmd.Path != "" {
		f, err := os.Open(cmd.Path)
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	}

	dec := json.NewDecoder(in)
	var records []lattice.RecordRef
	for dec.More() {
		var jr jsonRecord
		if err := dec.Decode(&jr); err != nil {
			return errors.Wrap(err, "decoding record")
		}
		id, err := lattice.RecordIDFromHex(jr.ID)
		if err != nil {
			return errors.Wrap(err, "decoding record id")
		}
		payload, err := cstable.EncodeGobPayload(map[string]interface{}{"payload": []byte(jr.Payload)})
		if err != nil {
			return errors.Wrap(err, "encoding record payload")
		}
		records = append(records, lattice.RecordRef{
			RecordID:      id,
			RecordVersion: jr.Version,
			Payload:       payload,
		})
	}

	inserted, err := w.InsertRecords(records)
	if err != nil {
		return errors.Wrap(err, "inserting records")
	}
	if err := w.Commit(ctx); err != nil {
		return errors.Wrap(err, "committing inserted records")
	}

	fmt.Fprintf(cmd.Stdout, "inserted %d of %d records\n", len(inserted), len(records))
	return nil
}
