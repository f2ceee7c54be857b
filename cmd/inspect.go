package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/ctl"
)

func newInspectCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	inspecter := ctl.NewInspectCommand(stdin, stdout, stderr)
	return &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print the rows of a single .cst file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one path required")
			}
			inspecter.Path = args[0]
			return inspecter.Run(context.Background())
		},
	}
}
