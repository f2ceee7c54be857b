package ctl

import (
	"context"
	"fmt"
	"io"

	"github.com/pelletier/go-toml"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/errors"
)

// GenerateConfigCommand prints the default configuration to stdout.
type GenerateConfigCommand struct {
	*lattice.CmdIO
}

// NewGenerateConfigCommand returns a new instance of GenerateConfigCommand.
func NewGenerateConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *GenerateConfigCommand {
	return &GenerateConfigCommand{
		CmdIO: lattice.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run prints out the default config.
func (cmd *GenerateConfigCommand) Run(_ context.Context) error {
	conf := lattice.NewConfig()
	ret, err := toml.Marshal(*conf)
	if err != nil {
		return errors.Wrap(err, "marshalling default config")
	}
	fmt.Fprintf(cmd.Stdout, "%s\n", ret)
	return nil
}
