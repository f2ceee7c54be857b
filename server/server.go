// Package server wires a Config, a set of partition Writers, a metastore,
// and the MapReduce executor HTTP surface into one running node, the way
// the teacher's own Server type wires an Index and a Handler together.
package server

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"sync"

	lattice "github.com/latticedb/lattice"
	"github.com/latticedb/lattice/cstable"
	"github.com/latticedb/lattice/logger"
	"github.com/latticedb/lattice/mapreduce"
	"github.com/latticedb/lattice/metastore"
)

// Server represents a lattice node: a set of partition writers addressed
// by namespace/table/key, fronted by the MapReduce executor HTTP handler.
type Server struct {
	ln net.Listener
	wg sync.WaitGroup

	Config *lattice.Config
	Logger logger.Logger

	Meta *metastore.Store

	mu      sync.Mutex
	writers map[writerKey]*lattice.Writer

	// RunReduce executes a single reduce program for the MapReduce HTTP
	// surface; supplied by the embedder since the program runtime is an
	// external collaborator (spec.md section 1).
	RunReduce mapreduce.ShardExecutorFunc

	// CheckToken authorizes an incoming MapReduce request's bearer token.
	CheckToken func(token string) bool

	httpServer *http.Server
}

// writerKey identifies a single partition: a table is sharded into many
// partitions, each addressed by its own key (the glossary's "unit of
// storage and locking"), so namespace/table alone is not enough to pick
// a Writer.
type writerKey struct {
	namespace string
	tableName string
	recordKey lattice.RecordID
}

// NewServer returns an unopened Server for cfg.
func NewServer(cfg *lattice.Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger
	}
	return &Server{
		Config:  cfg,
		Logger:  log,
		writers: make(map[writerKey]*lattice.Writer),
	}
}

// Open opens the metastore, binds the listener, and starts serving the
// MapReduce executor HTTP handler in the background, mirroring the
// teacher's Server.Open: bind first, then hand the listener to an HTTP
// goroutine.
func (s *Server) Open() error {
	metaPath := s.Config.DataDir + "/meta.db"
	meta, err := metastore.Open(metaPath)
	if err != nil {
		return err
	}
	s.Meta = meta

	ln, err := net.Listen("tcp", s.Config.Bind)
	if err != nil {
		return err
	}
	s.ln = ln

	mux := mapreduce.Handler(s.runReduce, s.CheckToken, s.Logger)
	s.httpServer = &http.Server{Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.Logger.Errorf("lattice: http server stopped: %s", err)
		}
	}()

	return nil
}

// runReduce delegates to the embedder's RunReduce. If none was
// configured it reports no output, which the handler answers with 204.
func (s *Server) runReduce(programSource, methodName string, inputTables []string) ([20]byte, bool, error) {
	var empty [20]byte
	if s.RunReduce == nil {
		return empty, false, nil
	}
	return s.RunReduce(programSource, methodName, inputTables)
}

// Close shuts down the HTTP listener and the metastore, waiting for the
// serve goroutine to exit.
func (s *Server) Close() error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			return err
		}
	}
	s.wg.Wait()
	if s.Meta != nil {
		return s.Meta.Close()
	}
	return nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Writer returns the partition Writer for namespace/tableName/recordKey,
// opening and bootstrapping one from the metastore on first use.
func (s *Server) Writer(namespace, tableName string, recordKey lattice.RecordID, schema cstable.TableSchema, codec cstable.Codec) (*lattice.Writer, error) {
	key := writerKey{namespace: namespace, tableName: tableName, recordKey: recordKey}

	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.writers[key]; ok {
		return w, nil
	}

	basePath := filepath.Join(s.Config.DataDir, namespace, tableName, recordKey.String())
	strategy := lattice.KeepAll
	if s.Config.Partition.Compaction == "size-tiered" {
		strategy = lattice.SizeTiered(basePath, s.Config.Partition.MaxDatafileSize)
	}

	w, err := lattice.OpenWriter(s.Meta, namespace, tableName, recordKey, basePath, schema, codec,
		lattice.WithLogger(s.Logger),
		lattice.WithMaxDatafileSize(s.Config.Partition.MaxDatafileSize),
		lattice.WithCompactionStrategy(strategy),
	)
	if err != nil {
		return nil, err
	}
	s.writers[key] = w
	return w, nil
}
