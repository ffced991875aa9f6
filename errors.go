package tdasync

import (
	"errors"
	"fmt"
)

// Kind classifies a synchronization failure.
type Kind string

const (
	KindFetch Kind = "fetch" // the brokerage API or the transport failed.
	KindParse Kind = "parse" // a timestamp or a record could not be decoded.
	KindStore Kind = "store" // the local store could not be queried or written.
)

// Sentinels to test an error kind with errors.Is.
var (
	ErrFetch = errors.New("fetch error")
	ErrParse = errors.New("parse error")
	ErrStore = errors.New("store error")
)

// Error is the error type returned by the synchronization and its collaborators.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "decode timestamp" or "GET transactions".
	Op  string
	Err error
	// Retryable is true when the same operation may succeed if attempted again.
	// Only fetch errors are ever retried.
	Retryable bool
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrFetch:
		return e.Kind == KindFetch
	case ErrParse:
		return e.Kind == KindParse
	case ErrStore:
		return e.Kind == KindStore
	}
	return false
}

// NewFetchError returns a fetch error, retryable or not.
func NewFetchError(op string, retryable bool, err error) *Error {
	return &Error{Kind: KindFetch, Op: op, Err: err, Retryable: retryable}
}

// NewParseError returns a parse error.
func NewParseError(op string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Err: err}
}

// NewStoreError returns a store error.
func NewStoreError(op string, err error) *Error {
	return &Error{Kind: KindStore, Op: op, Err: err}
}

// IsRetryable reports whether err, or any error it wraps, is a retryable *Error.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
