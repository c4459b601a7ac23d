package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGeometry marks a descriptor that failed validation. Nothing was stored.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrNotFound marks a lookup or removal of an unknown client or entity.
	ErrNotFound = errors.New("not found")

	// ErrFatal marks an internal invariant violation. Only the offending call is aborted.
	ErrFatal = errors.New("fatal")
)

// InvalidGeometryError names the descriptor field that failed validation.
type InvalidGeometryError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid geometry: %s.%s %s", e.Kind, e.Field, e.Reason)
}

func (e *InvalidGeometryError) Unwrap() error { return ErrInvalidGeometry }

func invalid(kind Kind, field, format string, args ...any) *InvalidGeometryError {
	return &InvalidGeometryError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// FatalError is raised as a panic value when an internal invariant is broken, such as tessellating
// a descriptor that never passed validation. Call paths that accept remote input recover it with
// RecoverFatal.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string { return "fatal: " + e.Msg }

func (e *FatalError) Unwrap() error { return ErrFatal }

// RecoverFatal converts a recovered *FatalError into an error stored in errp.
// Any other panic value is re-raised.
//
// Usage:
//
//	defer geometry.RecoverFatal(&err)
func RecoverFatal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if fe, ok := r.(*FatalError); ok {
		*errp = fe
		return
	}
	panic(r)
}
