package mapreduce

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/latticedb/lattice/errors"
)

// RemoteExecutor issues the actual network call of spec.md section 4.8's
// execute_remote: a GET against a single host's MapReduce HTTP surface.
// It is an interface so tests can substitute a fake without a real
// listener.
type RemoteExecutor interface {
	ExecuteRemote(ctx context.Context, host, programSource, methodName string, inputTables []string, token string) (*ShardResult, error)
}

// httpRemoteExecutor is the production RemoteExecutor: a
// retryablehttp.Client (a real teacher dependency) issuing the GET
// request documented in spec.md section 6.
type httpRemoteExecutor struct {
	client *retryablehttp.Client
}

// NewHTTPRemoteExecutor returns a RemoteExecutor that talks the real HTTP
// contract. Per-host retries (transient network blips against the *same*
// host) are handled by retryablehttp; failover to the *next* host is
// handled one level up, by ReduceTask.Execute.
func NewHTTPRemoteExecutor() RemoteExecutor {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = 2
	return &httpRemoteExecutor{client: c}
}

func (e *httpRemoteExecutor) ExecuteRemote(ctx context.Context, host, programSource, methodName string, inputTables []string, token string) (*ShardResult, error) {
	q := url.Values{}
	q.Set("program_source", programSource)
	q.Set("method_name", methodName)
	for _, t := range inputTables {
		q.Add("input_table", t)
	}

	u := fmt.Sprintf("http://%s/api/v1/mapreduce/tasks/reduce?%s", host, q.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "mapreduce: building request")
	}
	req.Header.Set("Authorization", "Token "+token)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.New(ErrRemoteExec, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(ErrRemoteExec, err.Error())
	}

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusCreated:
		id, err := decodeResultID(string(body))
		if err != nil {
			return nil, errors.New(ErrRemoteExec, err.Error())
		}
		return &ShardResult{Host: host, ResultID: id}, nil
	default:
		return nil, errors.New(ErrRemoteExec, fmt.Sprintf("received non-201 response: %s", body))
	}
}

func decodeResultID(s string) ([20]byte, error) {
	var id [20]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("mapreduce: result id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}
