package ctl

import (
	"context"
	"fmt"
	"io"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/errors"
	"github.com/latticedb/lattice/metastore"
)

// CompactCommand runs a commit followed by size-tiered compaction (with
// MaxDatafileSize as the threshold) against a single partition.
type CompactCommand struct {
	*lattice.CmdIO

	DataDir         string
	Namespace       string
	Table           string
	Key             string
	MaxDatafileSize int64
}

// NewCompactCommand returns a new instance of CompactCommand.
func NewCompactCommand(stdin io.Reader, stdout, stderr io.Writer) *CompactCommand {
	return &CompactCommand{
		CmdIO:           lattice.NewCmdIO(stdin, stdout, stderr),
		MaxDatafileSize: lattice.DefaultMaxDatafileSize,
	}
}

// Run compacts the named partition.
func (cmd *CompactCommand) Run(ctx context.Context) error {
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

	w, err := lattice.OpenWriter(meta, cmd.Namespace, cmd.Table, key, basePath, schema, cstable.GobCodec{},
		lattice.WithCompactionStrategy(lattice.SizeTiered(basePath, cmd.MaxDatafileSize)),
	)
	if err != nil {
		return errors.Wrap(err, "opening writer")
	}

	if err := w.Compact(ctx); err != nil {
		return errors.Wrap(err, "compacting partition")
	}

	fmt.Fprintf(cmd.Stdout, "compacted %s/%s/%s\n", cmd.Namespace, cmd.Table, cmd.Key)
	return nil
}
