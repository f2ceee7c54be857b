package mapreduce

import "context"

// MapTask is the zero-source base case of the shard graph: a leaf
// producer with no upstream dependencies. The distilled spec (spec.md
// section 4.7) only describes the reduce case in detail, but ReduceTask's
// sources are themselves Tasks that must Build something — a complete
// shard graph needs a leaf, which original_source's ReduceTask.cc implies
// via `sources_ Vector<RefPtr<MapReduceTask>>` without spelling out.
// MapTask restores that leaf case in the same idiom as ReduceTask.
type MapTask struct {
	BaseTask

	// NumShards is the number of independent, dependency-free shards
	// this task produces (e.g. one per input file/partition).
	NumShards int

	// Run produces this task's result for a single shard. It is
	// supplied by the caller since map work is inherently
	// domain-specific (spec.md section 1 treats the task framework as
	// an external collaborator).
	Run func(ctx context.Context, shard *Shard) (*ShardResult, error)
}

// Build allocates NumShards shards with no dependencies and returns their
// indices.
func (t *MapTask) Build(shards *ShardList) []int {
	out := make([]int, 0, t.NumShards)
	for i := 0; i < t.NumShards; i++ {
		out = append(out, shards.Append(t, nil))
	}
	return out
}

// Execute runs Run for shard, or returns nil, nil if no Run was supplied.
func (t *MapTask) Execute(ctx context.Context, shard *Shard, sched *Scheduler) (*ShardResult, error) {
	if t.Run == nil {
		return nil, nil
	}
	return t.Run(ctx, shard)
}
