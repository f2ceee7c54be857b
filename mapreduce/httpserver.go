package mapreduce

import (
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/latticedb/lattice/logger"
)

// ShardExecutorFunc runs a single reduce program, named by programSource
// and methodName, over inputTables, and returns the 20-byte id of the
// output it produced, or ok=false if the program produced no output.
// It is supplied by whatever embeds this package's HTTP surface; the
// MapReduce program runtime itself is an external collaborator.
type ShardExecutorFunc func(programSource, methodName string, inputTables []string) (resultID [20]byte, ok bool, err error)

// Handler wires the executor-side MapReduce HTTP surface described by
// spec.md section 6: a single GET endpoint accepting program_source,
// method_name, and one-or-more input_table query parameters, authorized
// by an Authorization: Token header, in the same router-and-server-struct
// shape as the teacher's dax/writelogger/http handler.
func Handler(run ShardExecutorFunc, checkToken func(token string) bool, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NopLogger
	}
	svr := &server{run: run, checkToken: checkToken, logger: log}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/mapreduce/tasks/reduce", svr.getReduce).Methods("GET").Name("GetReduceTask")
	return router
}

type server struct {
	run        ShardExecutorFunc
	checkToken func(token string) bool
	logger     logger.Logger
}

func (s *server) getReduce(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get("Authorization"))
	if s.checkToken != nil && !s.checkToken(token) {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	programSource := q.Get("program_source")
	methodName := q.Get("method_name")
	inputTables := q["input_table"]

	s.logger.Debugf("mapreduce: executing method=%s inputs=%d", methodName, len(inputTables))

	resultID, ok, err := s.run(programSource, methodName, inputTables)
	if err != nil {
		s.logger.Printf("mapreduce: reduce execution failed: %s", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusCreated)
	fmt.Fprint(w, hex.EncodeToString(resultID[:]))
}

func bearerToken(header string) string {
	const prefix = "Token "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
