package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a store failure. Handlers map kinds to HTTP status codes.
type Kind int

const (
	// KindStore is any persistence failure that is neither of the others.
	KindStore Kind = iota
	// KindValidation means a field was missing or invalid.
	KindValidation
	// KindNotFound means the identifier is absent or malformed.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

// FieldError names one offending field.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return f.Field + " " + f.Reason
}

// Error is returned by every ListingStore operation that fails.
type Error struct {
	Kind   Kind
	Op     string
	ID     string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.ID != "" {
		fmt.Fprintf(&b, " %s", e.ID)
	}
	switch e.Kind {
	case KindValidation:
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.String())
		}
		fmt.Fprintf(&b, ": invalid listing: %s", strings.Join(parts, ", "))
	case KindNotFound:
		b.WriteString(": listing not found")
	default:
		b.WriteString(": store failure")
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that no listing has the given identifier.
func NotFound(op, id string) error {
	return &Error{Kind: KindNotFound, Op: op, ID: id}
}

// StoreFailure wraps an engine error.
func StoreFailure(op, id string, err error) error {
	return &Error{Kind: KindStore, Op: op, ID: id, Err: err}
}

// Invalid reports offending fields.
func Invalid(op, id string, fields ...FieldError) error {
	return &Error{Kind: KindValidation, Op: op, ID: id, Fields: fields}
}

// KindOf returns the kind carried by err. Errors that are not *Error are
// treated as store failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStore
}

func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

// withOp fills in op and id on a validation error produced without context.
func withOp(err error, op, id string) error {
	var de *Error
	if errors.As(err, &de) {
		de.Op = op
		de.ID = id
	}
	return err
}
