package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/ctl"
)

func newInsertCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	inserter := ctl.NewInsertCommand(stdin, stdout, stderr)
	insertCmd := &cobra.Command{
		Use:   "insert",
		Short: "Insert newline-delimited JSON records into a partition.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return inserter.Run(context.Background())
		},
	}
	flags := insertCmd.Flags()
	flags.StringVarP(&inserter.DataDir, "data-dir", "d", "./data", "Lattice data directory.")
	flags.StringVarP(&inserter.Namespace, "namespace", "n", "", "Partition namespace.")
	flags.StringVarP(&inserter.Table, "table", "t", "", "Partition table name.")
	flags.StringVarP(&inserter.Key, "key", "k", "", "Partition key, as hex.")
	flags.StringVarP(&inserter.Path, "file", "f", "", "Input file; defaults to stdin.")
	return insertCmd
}
