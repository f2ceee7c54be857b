package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/ctl"
)

func newCommitCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	committer := ctl.NewCommitCommand(stdin, stdout, stderr)
	commitCmd := &cobra.Command{
		Use:   "commit",
		Short: "Flush a partition's head arena to disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return committer.Run(context.Background())
		},
	}
	flags := commitCmd.Flags()
	flags.StringVarP(&committer.DataDir, "data-dir", "d", "./data", "Lattice data directory.")
	flags.StringVarP(&committer.Namespace, "namespace", "n", "", "Partition namespace.")
	flags.StringVarP(&committer.Table, "table", "t", "", "Partition table name.")
	flags.StringVarP(&committer.Key, "key", "k", "", "Partition key, as hex.")
	return commitCmd
}
