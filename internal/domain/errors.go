package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery      = errors.New("empty query")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoClarification = errors.New("no pending clarification")
	ErrUnknownOption   = errors.New("unknown clarification option")
)

// NetworkError is a transport or connectivity failure of a backend call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a malformed or semantically invalid backend response:
// a missing required field, an unrecognized mode tag, or ok=false.
type BackendError struct {
	Op     string
	Reason string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: bad backend response: %s", e.Op, e.Reason)
}
