package mapreduce_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/auth"
	"github.com/latticedb/lattice/mapreduce"
	"github.com/latticedb/lattice/replication"
)

var errFakeExec = errors.New("fake remote execution failure")

type fixedPolicy struct{ hosts []string }

func (f fixedPolicy) ReplicasFor(key [20]byte) []string { return f.hosts }

type fakeExecutor struct {
	fail map[string]bool
	got  []string
}

func (f *fakeExecutor) ExecuteRemote(ctx context.Context, host, programSource, methodName string, inputTables []string, token string) (*mapreduce.ShardResult, error) {
	f.got = append(f.got, host)
	if f.fail[host] {
		return nil, errFakeExec
	}
	return &mapreduce.ShardResult{Host: host, ResultID: [20]byte{0x01}}, nil
}

func TestReduceTask_FailsOverToNextReplica(t *testing.T) {
	exec := &fakeExecutor{fail: map[string]bool{"h1:9000": true}}

	task := &mapreduce.ReduceTask{
		ProgramSource: "analytics.py",
		MethodName:    "reduce",
		NumShards:     1,
		Auth:          auth.StaticIssuer{Token: "tok"},
		Replication:   fixedPolicy{hosts: []string{"h1:9000", "h2:9000"}},
		Executor:      exec,
	}

	shards := &mapreduce.ShardList{}
	indices := task.Build(shards)
	require.Len(t, indices, 1)

	sched := mapreduce.NewScheduler()
	require.NoError(t, sched.Run(context.Background(), shards.Shards()))
	require.Equal(t, []string{"h1:9000", "h2:9000"}, exec.got)
}

func TestReduceTask_FansInSourceShards(t *testing.T) {
	src := &mapreduce.MapTask{NumShards: 2}
	task := &mapreduce.ReduceTask{
		ProgramSource: "x.py",
		MethodName:    "m",
		NumShards:     1,
		Sources:       []mapreduce.Task{src},
		Auth:          auth.StaticIssuer{Token: "tok"},
		Replication:   replication.NewStaticPolicy([]string{"h1:9000"}, 1),
		Executor:      &fakeExecutor{},
	}

	shards := &mapreduce.ShardList{}
	indices := task.Build(shards)
	require.Len(t, indices, 1)

	reduceShard := shards.Shards()[indices[0]]
	require.Equal(t, []int{0, 1}, reduceShard.Dependencies)
}

// TestReduceTask_AllocatesNumShardsEachFullyFannedIn reproduces spec.md
// section 8 scenario 4: a map task with 4 leaf shards feeding a reduce
// task with num_shards=3 produces 3 reduce shards (indices 4..6), each
// depending on all 4 leaf shards (dependencies=[0,1,2,3]).
func TestReduceTask_AllocatesNumShardsEachFullyFannedIn(t *testing.T) {
	src := &mapreduce.MapTask{NumShards: 4}
	task := &mapreduce.ReduceTask{
		ProgramSource: "x.py",
		MethodName:    "m",
		NumShards:     3,
		Sources:       []mapreduce.Task{src},
		Auth:          auth.StaticIssuer{Token: "tok"},
		Replication:   replication.NewStaticPolicy([]string{"h1:9000"}, 1),
		Executor:      &fakeExecutor{},
	}

	shards := &mapreduce.ShardList{}
	indices := task.Build(shards)

	require.Equal(t, []int{4, 5, 6}, indices)
	require.Len(t, shards.Shards(), 7)
	for _, idx := range indices {
		require.Equal(t, []int{0, 1, 2, 3}, shards.Shards()[idx].Dependencies)
	}
}
