package mapreduce_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/mapreduce"
)

func TestMapTask_BuildsShardsWithoutDependencies(t *testing.T) {
	task := &mapreduce.MapTask{NumShards: 3}
	shards := &mapreduce.ShardList{}

	indices := task.Build(shards)
	require.Equal(t, []int{0, 1, 2}, indices)
	require.Equal(t, 3, shards.Len())

	for _, s := range shards.Shards() {
		require.Empty(t, s.Dependencies)
	}
}

func TestScheduler_RunsLevelsInDependencyOrder(t *testing.T) {
	var mu sync.Mutex
	var order []int

	record := func(idx int) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, idx)
	}

	mapA := &mapreduce.MapTask{NumShards: 2, Run: func(ctx context.Context, shard *mapreduce.Shard) (*mapreduce.ShardResult, error) {
		record(shard.Index)
		return &mapreduce.ShardResult{Host: "host-a", ResultID: [20]byte{byte(shard.Index)}}, nil
	}}

	shards := &mapreduce.ShardList{}
	mapIndices := mapA.Build(shards)

	reduceIdx := shards.Append(&mapreduce.MapTask{Run: func(ctx context.Context, shard *mapreduce.Shard) (*mapreduce.ShardResult, error) {
		record(shard.Index)
		require.Len(t, shard.Dependencies, len(mapIndices))
		return nil, nil
	}}, mapIndices)

	sched := mapreduce.NewScheduler()
	require.NoError(t, sched.Run(context.Background(), shards.Shards()))

	require.Equal(t, reduceIdx, order[len(order)-1])
	require.ElementsMatch(t, append([]int{}, mapIndices...), order[:len(mapIndices)])
}

func TestScheduler_RecordsResultURLs(t *testing.T) {
	task := &mapreduce.MapTask{NumShards: 1, Run: func(ctx context.Context, shard *mapreduce.Shard) (*mapreduce.ShardResult, error) {
		return &mapreduce.ShardResult{Host: "worker-1:9000", ResultID: [20]byte{0xaa}}, nil
	}}
	shards := &mapreduce.ShardList{}
	task.Build(shards)

	sched := mapreduce.NewScheduler()
	require.NoError(t, sched.Run(context.Background(), shards.Shards()))

	require.Equal(t, "lattice://worker-1:9000/results/aa00000000000000000000000000000000000000", sched.ResultURL(0))
}
