package ctl

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/errors"
)

// InspectCommand prints the row count and per-column contents of a single
// .cst file, for operators debugging a partition's on-disk tables.
type InspectCommand struct {
	*lattice.CmdIO

	Path string
}

// NewInspectCommand returns a new instance of InspectCommand.
func NewInspectCommand(stdin io.Reader, stdout, stderr io.Writer) *InspectCommand {
	return &InspectCommand{
		CmdIO: lattice.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run opens Path and renders its columns as a table.
func (cmd *InspectCommand) Run(_ context.Context) error {
	r, err := cstable.OpenFile(cmd.Path)
	if err != nil {
		return errors.Wrap(err, "opening cstable")
	}
	defer r.Close()

	names := r.ColumnNames()
	columns := make([][]interface{}, len(names))
	for i, name := range names {
		col, err := r.Column(name)
		if err != nil {
			return errors.Wrapf(err, "reading column %q", name)
		}
		columns[i] = col
	}

	fmt.Fprintf(cmd.Stdout, "rows: %d\n", r.NumRows())

	t := table.NewWriter()
	t.SetOutputMirror(cmd.Stdout)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(names))
	for i, name := range names {
		header[i] = name
	}
	t.AppendHeader(header)

	for row := 0; row < r.NumRows(); row++ {
		rowValues := make(table.Row, len(names))
		for i := range names {
			rowValues[i] = columns[i][row]
		}
		t.AppendRow(rowValues)
	}
	t.Render()

	return nil
}
