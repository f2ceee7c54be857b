package mapreduce

// ShardResult holds the location of a shard's output blob on the replica
// that produced it (spec.md section 3: MapReduceShardResult).
type ShardResult struct {
	Host     string
	ResultID [20]byte
}

// Shard is one unit of work bound to a Task, with its upstream
// dependencies expressed as indices into the owning ShardList (spec.md
// section 3: MapReduceTaskShard).
type Shard struct {
	Index        int
	Task         Task
	Dependencies []int
}

// ShardList accumulates shards during a Build pass. Appends are the only
// mutation, so indices handed out by Append never change — this is what
// gives the build pass its topological ordering guarantee (invariant I6):
// a task always builds its sources before appending its own shards, so
// every dependency index is strictly less than the indices that depend on
// it.
type ShardList struct {
	shards []*Shard
}

// Append adds a new shard for task with the given dependency indices and
// returns the index it was assigned.
func (l *ShardList) Append(task Task, dependencies []int) int {
	idx := len(l.shards)
	l.shards = append(l.shards, &Shard{
		Index:        idx,
		Task:         task,
		Dependencies: dependencies,
	})
	return idx
}

// Shards returns the accumulated shards in build (topological) order.
func (l *ShardList) Shards() []*Shard {
	return l.shards
}

// Len reports how many shards have been appended so far.
func (l *ShardList) Len() int {
	return len(l.shards)
}
