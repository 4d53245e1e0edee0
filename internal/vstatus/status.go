// Package vstatus defines the tagged error variants used throughout the
// router and shard services, in place of the status-code-plus-string
// pattern from the original implementation. A Code is attached at the
// point an error is produced; it is mapped onto an HTTP status code only
// at the transport boundary (see cmd/router and cmd/shard), the same place
// the teacher maps errors onto http.Error calls.
package vstatus

import (
	"errors"
	"fmt"
)

// Code classifies why an operation failed, mirroring the four outcomes
// spec.md §7 requires: ok (no error), invalid-argument, resource-exhausted,
// and unavailable.
type Code int

const (
	// OK is never carried by an *Error; it exists so Code has a documented
	// zero value distinct from the failure codes.
	OK Code = iota
	// InvalidArgument marks a request rejected before any mutation, e.g. a
	// vector whose length does not match the configured dimension.
	InvalidArgument
	// ResourceExhausted marks a write that would exceed remaining cluster
	// or shard capacity. No mutation occurs.
	ResourceExhausted
	// Unavailable marks a downstream shard RPC failure. Mutations already
	// committed to other shards in the same request remain committed.
	Unavailable
)

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid-argument"
	case ResourceExhausted:
		return "resource-exhausted"
	case Unavailable:
		return "unavailable"
	default:
		return "ok"
	}
}

// Error is the sum-type error carried between layers: a Code plus enough
// context to log or translate it at the transport boundary.
type Error struct {
	Code Code
	// Shard identifies the offending shard for Unavailable errors. Zero
	// value (0) is a valid shard index, so check Code before relying on it.
	Shard int
	Msg   string
	// Cause is the underlying error, if any (e.g. a transport failure).
	Cause error
}

func (e *Error) Error() string {
	if e.Code == Unavailable && e.Cause != nil {
		return fmt.Sprintf("%s: shard %d: %s: %v", e.Code, e.Shard, e.Msg, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// InvalidArgumentf builds an InvalidArgument error.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Code: InvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// ResourceExhaustedf builds a ResourceExhausted error.
func ResourceExhaustedf(format string, args ...any) *Error {
	return &Error{Code: ResourceExhausted, Msg: fmt.Sprintf(format, args...)}
}

// Unavailablef builds an Unavailable error naming the offending shard.
func Unavailablef(shard int, cause error, format string, args ...any) *Error {
	return &Error{Code: Unavailable, Shard: shard, Cause: cause, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Code from err if it is (or wraps) a *vstatus.Error.
// It returns OK for a nil error and Unavailable for any other error.
// Callers at the transport boundary use this to pick the HTTP status to
// respond with.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unavailable
}
