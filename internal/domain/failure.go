package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why an operation was refused.
type FailureKind string

const (
	FailureNotFound     FailureKind = "NOT_FOUND"
	FailureInvalidState FailureKind = "INVALID_STATE"
	FailurePrecondition FailureKind = "PRECONDITION_FAILED"
	FailureRateLimited  FailureKind = "RATE_LIMITED"
	FailureValidation   FailureKind = "VALIDATION"
	FailureConflict     FailureKind = "CONFLICT"
	FailureTransient    FailureKind = "TRANSIENT_IO"
)

// Failure is a refused operation with a machine-readable kind and a
// human-readable reason. Handlers never collapse failures into booleans.
type Failure struct {
	Kind   FailureKind
	Reason string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

// Failf builds a Failure with a formatted reason.
func Failf(kind FailureKind, format string, args ...any) error {
	return &Failure{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// AsFailure attempts to unwrap an error into a Failure.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf returns the failure kind for err, or FailureTransient when err is
// not a classified failure.
func KindOf(err error) FailureKind {
	if f, ok := AsFailure(err); ok {
		return f.Kind
	}
	return FailureTransient
}
