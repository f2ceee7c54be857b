// Package mapreduce implements the shard graph builder and scheduler of
// spec.md sections 4.7-4.8: a Task tree is built into a flat, topologically
// ordered shard list, then driven to completion across replicated
// executors with per-shard failover.
package mapreduce

import "context"

// TaskDependency names an upstream task this task needs built first,
// mirroring fnord::dproc::TaskDependency in
// _examples/original_source/fnord-dproc/Task.h. The generic task-graph
// framework that resolves these names into Task instances is an external
// collaborator (spec.md section 1); this package only needs the shape.
type TaskDependency struct {
	TaskName string
	Params   []byte
}

// Task is the Go shape of fnord::dproc::Task: it declares upstream
// dependencies, builds itself (and its sources) into the shard list, and
// executes a single shard of itself.
type Task interface {
	// Dependencies lists named upstream tasks outside this task's own
	// source tree (e.g. configuration or side-input tasks resolved by
	// the external task framework). Most tasks have none.
	Dependencies() []TaskDependency

	// Build appends this task's shards (and, transitively, its
	// sources') to shards and returns the indices it produced.
	Build(shards *ShardList) []int

	// Execute runs one shard of this task and returns its result, or
	// nil if the shard produced no output.
	Execute(ctx context.Context, shard *Shard, sched *Scheduler) (*ShardResult, error)

	// PreferredLocations optionally names hosts this task would prefer
	// to run near (e.g. where its inputs already live).
	PreferredLocations() []string
}

// TaskFactory constructs a Task from its encoded parameters, mirroring
// fnord::dproc::TaskFactory.
type TaskFactory func(params []byte) (Task, error)

// BaseTask supplies the zero-value defaults Task.h gives in C++ via
// virtual method bodies, so concrete tasks only need to implement Build
// and Execute.
type BaseTask struct{}

func (BaseTask) Dependencies() []TaskDependency { return nil }
func (BaseTask) PreferredLocations() []string   { return nil }
