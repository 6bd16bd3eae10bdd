// Package errs defines the error taxonomy shared across the pipeline.
// Callers receive either a complete Document or exactly one kinded error
// naming the stage that failed.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes a pipeline failure.
type Kind int

const (
	// Configuration marks an invalid or unsupported profile/engine selector.
	Configuration Kind = iota + 1
	// Document marks a missing, unreadable or structurally invalid PDF.
	Document
	// Processing marks a recognition or table-extraction failure.
	Processing
	// Storage marks a filesystem or artifact write failure.
	Storage
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case Document:
		return "document"
	case Processing:
		return "processing"
	case Storage:
		return "storage"
	}
	return "unknown"
}

// Error is a kinded, wrapped pipeline error.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "classify" or "store"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err as a kinded error for op.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Ef is E with fmt.Errorf-style formatting of the cause.
func Ef(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether any error in err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind == kind {
			return true
		}
		err = e.Err
		if err == nil {
			return false
		}
	}
	return false
}

// KindOf returns the kind of the outermost kinded error, or zero.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
