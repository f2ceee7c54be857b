package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/latticedb/lattice/ctl"
)

func newGenerateConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	generateConf := ctl.NewGenerateConfigCommand(stdin, stdout, stderr)
	return &cobra.Command{
		Use:   "generate-config",
		Short: "Print the default configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateConf.Run(context.Background())
		},
	}
}
