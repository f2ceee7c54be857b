// Package auth defines the minimal shape of the authentication
// collaborator referenced by spec.md section 6 ("Authentication token
// formats ... out of scope") and exercised at its boundary by
// mapreduce.ReduceTask.Execute, which needs *some* session and token
// issuer to call. Token formats themselves remain unspecified, per
// spec.md's non-goals; TokenIssuer is an interface precisely so this
// package never has to pick one.
package auth

import "github.com/google/uuid"

// Session identifies the analytics session a MapReduce job runs under,
// generalizing the teacher's customer-scoped sessions
// (original_source/src/zbase/mapreduce/tasks/ReduceTask.cc's
// AnalyticsSession).
type Session struct {
	ID       uuid.UUID
	Customer string
}

// NewSession returns a fresh session for customer.
func NewSession(customer string) Session {
	return Session{ID: uuid.New(), Customer: customer}
}

// TokenIssuer encodes a Session into an opaque bearer token, the Go
// shape of AnalyticsAuth::encodeAuthToken.
type TokenIssuer interface {
	IssueToken(Session) (string, error)
}

// StaticIssuer issues the same fixed token for every session. It exists
// for tests and for deployments that front this engine with their own
// auth proxy and just need a placeholder.
type StaticIssuer struct {
	Token string
}

func (s StaticIssuer) IssueToken(Session) (string, error) {
	return s.Token, nil
}
