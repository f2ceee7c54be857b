package lattice

import (
	"io"

	"github.com/latticedb/lattice/logger"
)

// CmdIO holds the standard unix inputs and outputs every latticectl
// subcommand is built around, mirroring the teacher's CmdIO.
type CmdIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	logger logger.Logger
}

// NewCmdIO returns a CmdIO writing diagnostic logs to stderr.
func NewCmdIO(stdin io.Reader, stdout, stderr io.Writer) *CmdIO {
	return &CmdIO{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		logger: logger.NewStandardLogger(stderr),
	}
}

func (c *CmdIO) Logger() logger.Logger {
	return c.logger
}
