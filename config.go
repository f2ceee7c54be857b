package lattice

import (
	"github.com/latticedb/lattice/errors"
	"github.com/latticedb/lattice/toml"
)

var (
	// ErrConfigCompactionInvalid is returned by Config.Validate when
	// Partition.Compaction names a strategy this engine doesn't implement.
	ErrConfigCompactionInvalid = errors.New(ErrIllegalState, "partition.compaction must be \"keep-all\" or \"size-tiered\"")

	// ErrConfigReplicaNInvalid is returned by Config.Validate when
	// cluster.replicas is out of range for the configured host list.
	ErrConfigReplicaNInvalid = errors.New(ErrIllegalState, "cluster.replicas must be between 1 and len(cluster.hosts)")
)

const (
	// DefaultHost is the default hostname to use.
	DefaultHost = "localhost"

	// DefaultPort is the default port for a lattice node's MapReduce
	// executor surface.
	DefaultPort = "14100"

	// DefaultReplicaN is the number of replica hosts a ReplicationPolicy
	// selects per output id.
	DefaultReplicaN = 3

	// DefaultNumShards is a suggested shard count for a Task. MapTask and
	// ReduceTask do not fall back to it: a NumShards of 0 builds no shards.
	DefaultNumShards = 1
)

// Config represents the configuration for a lattice node, mirroring the
// teacher's top-level Config in shape: a flat bind address plus nested
// per-component tables decoded from a single TOML document.
type Config struct {
	DataDir string `toml:"data-dir"`
	Bind    string `toml:"bind"`

	Partition struct {
		MaxDatafileSize int64  `toml:"max-datafile-size"`
		Compaction      string `toml:"compaction"` // "keep-all" or "size-tiered"
	} `toml:"partition"`

	Cluster struct {
		ReplicaN int      `toml:"replicas"`
		Hosts    []string `toml:"hosts"`
	} `toml:"cluster"`

	MapReduce struct {
		AuthToken    string        `toml:"auth-token"`
		ExecuteTimeo toml.Duration `toml:"execute-timeout"`
	} `toml:"mapreduce"`

	LogPath string `toml:"log-path"`

	Metric struct {
		Service string `toml:"service"`
		Bind    string `toml:"bind"`
	} `toml:"metric"`
}

// NewConfig returns a Config populated with the same style of baked-in
// defaults as the teacher's NewConfig.
func NewConfig() *Config {
	c := &Config{
		DataDir: "./data",
		Bind:    DefaultHost + ":" + DefaultPort,
	}
	c.Partition.MaxDatafileSize = DefaultMaxDatafileSize
	c.Partition.Compaction = "size-tiered"
	c.Cluster.ReplicaN = DefaultReplicaN
	c.Cluster.Hosts = []string{}
	c.Metric.Service = "nop"
	return c
}

// Validate checks that configuration permutations are compatible with
// each other, in the same spirit as the teacher's Config.Validate.
func (c *Config) Validate() error {
	if c.Partition.Compaction != "keep-all" && c.Partition.Compaction != "size-tiered" {
		return ErrConfigCompactionInvalid
	}
	if c.Cluster.ReplicaN < 1 {
		return ErrConfigReplicaNInvalid
	}
	if len(c.Cluster.Hosts) > 0 && c.Cluster.ReplicaN > len(c.Cluster.Hosts) {
		return ErrConfigReplicaNInvalid
	}
	return nil
}
