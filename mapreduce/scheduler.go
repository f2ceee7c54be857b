package mapreduce

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/latticedb/lattice/errors"
)

// Scheduler drives a built ShardList to completion, level by level, and
// remembers where each shard's output landed so downstream shards can
// look it up by index (spec.md section 4.8: Scheduler).
type Scheduler struct {
	mu      sync.RWMutex
	results map[int]string
}

// NewScheduler returns an empty Scheduler ready to Run a shard list.
func NewScheduler() *Scheduler {
	return &Scheduler{results: make(map[int]string)}
}

// ResultURL returns the lattice:// locator for shard index's result, or
// "" if that shard produced no output (or has not run yet).
func (s *Scheduler) ResultURL(index int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[index]
}

func (s *Scheduler) setResultURL(index int, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[index] = url
}

// Run executes every shard in shards, grouping shards into dependency
// levels and running each level's shards concurrently via errgroup —
// mirroring the teacher's level-concurrent, errgroup-based execution
// style. It relies on invariant I6: every shard's dependency indices are
// strictly less than its own index, so a single forward pass over
// ascending levels is always dependency-safe.
func (s *Scheduler) Run(ctx context.Context, shards []*Shard) error {
	levels, err := levelize(shards)
	if err != nil {
		return err
	}

	for _, level := range levels {
		g, gctx := errgroup.WithContext(ctx)
		for _, shard := range level {
			shard := shard
			g.Go(func() error {
				return s.runShard(gctx, shard)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// runShard executes a single shard and records its result URL, if any.
func (s *Scheduler) runShard(ctx context.Context, shard *Shard) error {
	res, err := shard.Task.Execute(ctx, shard, s)
	if err != nil {
		return err
	}
	if res != nil {
		s.setResultURL(shard.Index, resultURL(*res))
	}
	return nil
}

// resultURL formats a ShardResult as the lattice:// locator downstream
// shards pass along as an input_table query parameter.
func resultURL(r ShardResult) string {
	return fmt.Sprintf("lattice://%s/results/%x", r.Host, r.ResultID)
}

// levelize groups shards into dependency levels: level 0 has no
// dependencies, level N's shards depend only on shards in levels < N.
func levelize(shards []*Shard) ([][]*Shard, error) {
	level := make([]int, len(shards))
	maxLevel := 0

	for _, shard := range shards {
		lv := 0
		for _, dep := range shard.Dependencies {
			if dep < 0 || dep >= shard.Index {
				return nil, errors.New(ErrRuntime, fmt.Sprintf("mapreduce: shard %d depends on %d, violating build order", shard.Index, dep))
			}
			if level[dep]+1 > lv {
				lv = level[dep] + 1
			}
		}
		level[shard.Index] = lv
		if lv > maxLevel {
			maxLevel = lv
		}
	}

	levels := make([][]*Shard, maxLevel+1)
	for _, shard := range shards {
		levels[level[shard.Index]] = append(levels[level[shard.Index]], shard)
	}
	return levels, nil
}
