package mapreduce

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/latticedb/lattice/auth"
	"github.com/latticedb/lattice/errors"
	"github.com/latticedb/lattice/replication"
)

// ReduceTask fans in the results of one or more source tasks and runs a
// single reduce program over them on a remote executor, mirroring
// fnord::dproc::ReduceTask in original_source/fnord-dproc/ReduceTask.h/.cc
// (spec.md section 4.7/4.8 restores the program_source/method_name
// parameters the distillation dropped).
type ReduceTask struct {
	BaseTask

	// Session identifies the customer this reduce runs on behalf of;
	// ProgramSource and MethodName name the user program to invoke.
	Session       auth.Session
	ProgramSource string
	MethodName    string

	// Sources are the upstream tasks whose shard outputs feed every one
	// of this task's reduce shards.
	Sources []Task

	// NumShards is the number of independent reduce shards to allocate,
	// each depending on the full fan-in of Sources.
	NumShards int

	// Auth issues the bearer token sent with each remote execution
	// request.
	Auth auth.TokenIssuer

	// Replication chooses the replica hosts a reduce shard may run on.
	Replication replication.Policy

	// Executor performs the actual remote call. Defaults to
	// NewHTTPRemoteExecutor() if nil.
	Executor RemoteExecutor
}

// Build appends the shards of every source task, then NumShards reduce
// shards, each depending on the full fan-in of the sources — exactly
// ReduceTask::build in original_source/src/zbase/mapreduce/tasks/ReduceTask.cc.
func (t *ReduceTask) Build(shards *ShardList) []int {
	var deps []int
	for _, src := range t.Sources {
		deps = append(deps, src.Build(shards)...)
	}

	out := make([]int, 0, t.NumShards)
	for i := 0; i < t.NumShards; i++ {
		out = append(out, shards.Append(t, deps))
	}
	return out
}

// Execute gathers the result URLs of every dependency shard, picks an
// output id for this shard's result, and tries each replica host in
// order until one succeeds, per spec.md section 4.8's per-shard failover.
func (t *ReduceTask) Execute(ctx context.Context, shard *Shard, sched *Scheduler) (*ShardResult, error) {
	var inputTables []string
	for _, dep := range shard.Dependencies {
		if url := sched.ResultURL(dep); url != "" {
			inputTables = append(inputTables, url)
		}
	}

	var outputID [20]byte
	if _, err := rand.Read(outputID[:]); err != nil {
		return nil, errors.Wrap(err, "mapreduce: generating output id")
	}

	hosts := t.Replication.ReplicasFor(outputID)
	if len(hosts) == 0 {
		return nil, errors.New(ErrRuntime, "mapreduce: replication policy returned no hosts")
	}

	token, err := t.Auth.IssueToken(t.Session)
	if err != nil {
		return nil, errors.Wrap(err, "mapreduce: issuing token")
	}

	executor := t.Executor
	if executor == nil {
		executor = NewHTTPRemoteExecutor()
	}

	var causes []string
	for i, host := range hosts {
		ShardExecutions.Inc()
		res, err := executor.ExecuteRemote(ctx, host, t.ProgramSource, t.MethodName, inputTables, token)
		if err == nil {
			return res, nil
		}
		if i+1 < len(hosts) {
			ShardFailovers.Inc()
		}
		causes = append(causes, fmt.Sprintf("%s: %v", host, err))
	}

	return nil, errors.New(ErrRuntime, fmt.Sprintf("mapreduce: all replicas failed for shard %d: %s", shard.Index, strings.Join(causes, "; ")))
}
