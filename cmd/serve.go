package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/logger"
	"github.com/latticedb/lattice/server"
)

// Serve is global so that tests can control and verify it, mirroring the
// teacher's package-level Server variable in cmd/server.go.
var Serve *server.Server

func newServeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cfg := lattice.NewConfig()

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a lattice node.",
		Long: `serve starts a lattice node: it opens the metadata store in
the configured data directory and begins listening for MapReduce executor
requests on the configured bind address. Partitions are opened on first use.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			Serve = server.NewServer(cfg, logger.NewStandardLogger(stderr))
			if err := Serve.Open(); err != nil {
				return fmt.Errorf("opening server: %w", err)
			}
			fmt.Fprintf(stderr, "lattice node listening on %s\n", Serve.Addr())

			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			sig := <-c
			fmt.Fprintf(stderr, "received %s; shutting down\n", sig)

			return Serve.Close()
		},
	}

	flags := serveCmd.Flags()
	flags.StringVarP(&cfg.DataDir, "data-dir", "d", cfg.DataDir, "Directory to store lattice data files.")
	flags.StringVarP(&cfg.Bind, "bind", "b", cfg.Bind, "Address to bind the MapReduce executor surface to.")
	flags.StringVarP(&cfg.Partition.Compaction, "partition.compaction", "", cfg.Partition.Compaction, "Compaction strategy: keep-all or size-tiered.")
	flags.Int64VarP(&cfg.Partition.MaxDatafileSize, "partition.max-datafile-size", "", cfg.Partition.MaxDatafileSize, "Cumulative .cst size threshold for size-tiered compaction.")
	flags.IntVarP(&cfg.Cluster.ReplicaN, "cluster.replicas", "", cfg.Cluster.ReplicaN, "Number of hosts each shard's output is replicated to.")
	flags.StringSliceVarP(&cfg.Cluster.Hosts, "cluster.hosts", "", cfg.Cluster.Hosts, "Comma separated list of hosts in the cluster.")

	return serveCmd
}
