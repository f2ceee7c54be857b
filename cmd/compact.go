package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/ctl"
)

func newCompactCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	compactor := ctl.NewCompactCommand(stdin, stdout, stderr)
	compactCmd := &cobra.Command{
		Use:   "compact",
		Short: "Commit and compact a partition.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return compactor.Run(context.Background())
		},
	}
	flags := compactCmd.Flags()
	flags.StringVarP(&compactor.DataDir, "data-dir", "d", "./data", "Lattice data directory.")
	flags.StringVarP(&compactor.Namespace, "namespace", "n", "", "Partition namespace.")
	flags.StringVarP(&compactor.Table, "table", "t", "", "Partition table name.")
	flags.StringVarP(&compactor.Key, "key", "k", "", "Partition key, as hex.")
	flags.Int64VarP(&compactor.MaxDatafileSize, "max-datafile-size", "", lattice.DefaultMaxDatafileSize, "Cumulative .cst size threshold for size-tiered compaction.")
	return compactCmd
}
