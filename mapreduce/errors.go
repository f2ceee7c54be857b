package mapreduce

import "github.com/latticedb/lattice/errors"

// Error codes for the MapReduce half of spec.md section 7's taxonomy.
const (
	// ErrRemoteExec is raised by a single replica's remote execution
	// attempt: a non-201/204 response, or a transport failure.
	ErrRemoteExec errors.Code = "RemoteExec"

	// ErrRuntime is raised once every replica for a shard has failed;
	// its message joins the per-host causes.
	ErrRuntime errors.Code = "Runtime"
)
