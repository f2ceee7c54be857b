package lattice

import "github.com/prometheus/client_golang/prometheus"

// Metric name constants, mirroring the teacher's Metric* catalogue in
// metrics.go (there: plain strings fed to a StatsD-style reporter; here:
// names registered directly against prometheus/client_golang, a real
// teacher dependency, without the extra StatsD indirection layer — see
// SPEC_FULL.md's ambient-stack section for why).
const (
	MetricInsertedRecords  = "lattice_inserted_records_total"
	MetricCommits          = "lattice_commits_total"
	MetricCompactions      = "lattice_compactions_total"
	MetricConcurrentModErr = "lattice_concurrent_modification_total"
	MetricFlushDuration    = "lattice_flush_duration_seconds"
)

var (
	InsertedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricInsertedRecords,
		Help: "Number of records accepted by insertRecords across all partitions.",
	})

	Commits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricCommits,
		Help: "Number of completed commit() calls.",
	})

	Compactions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricCompactions,
		Help: "Number of completed compact() calls.",
	})

	ConcurrentModificationErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricConcurrentModErr,
		Help: "Number of compact() calls that aborted on concurrent modification.",
	})

	FlushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricFlushDuration,
		Help:    "Wall-clock time spent flushing a compacting arena to disk.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		InsertedRecords,
		Commits,
		Compactions,
		ConcurrentModificationErrors,
		FlushDuration,
	)
}
