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

// CommitCommand flushes a single partition's head arena to disk, for
// operators driving a commit out of band of the normal write path.
type CommitCommand struct {
	*lattice.CmdIO

	DataDir   string
	Namespace string
	Table     string
	Key       string
}

// NewCommitCommand returns a new instance of CommitCommand.
func NewCommitCommand(stdin io.Reader, stdout, stderr io.Writer) *CommitCommand {
	return &CommitCommand{
		CmdIO: lattice.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run commits the named partition.
func (cmd *CommitCommand) Run(ctx context.Context) error {
	w, meta, err := cmd.openWriter()
	if err != nil {
		return err
	}
	defer meta.Close()

	if err := w.Commit(ctx); err != nil {
		return errors.Wrap(err, "committing partition")
	}
	fmt.Fprintf(cmd.Stdout, "committed %s/%s/%s\n", cmd.Namespace, cmd.Table, cmd.Key)
	return nil
}

func (cmd *CommitCommand) openWriter() (*lattice.Writer, *metastore.Store, error) {
	key, err := lattice.RecordIDFromHex(cmd.Key)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing key")
	}

	meta, err := metastore.Open(cmd.DataDir + "/meta.db")
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening metastore")
	}

	basePath := cmd.DataDir + "/" + cmd.Namespace + "/" + cmd.Table + "/" + key.String()
	schema := cstable.TableSchema{Columns: []cstable.Column{
		{Name: "payload", Type: cstable.ColumnBytes},
	}}

	w, err := lattice.OpenWriter(meta, cmd.Namespace, cmd.Table, key, basePath, schema, cstable.GobCodec{})
	if err != nil {
		meta.Close()
		return nil, nil, err
	}
	return w, meta, nil
}
