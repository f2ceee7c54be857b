package mapreduce

import "github.com/prometheus/client_golang/prometheus"

// Metrics for the shard scheduler's replica failover behavior (spec.md
// section 4.8), registered separately from the root package's storage
// metrics to avoid an import cycle between the two.
var (
	ShardExecutions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lattice_shard_executions_total",
		Help: "Number of MapReduce shard execution attempts, across all replicas.",
	})

	ShardFailovers = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lattice_shard_failovers_total",
		Help: "Number of times shard execution had to fail over to the next replica.",
	})
)

func init() {
	prometheus.MustRegister(ShardExecutions, ShardFailovers)
}
