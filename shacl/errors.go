package shacl

import (
	"errors"
	"fmt"

	"github.com/geoknoesis/shacl-go/rdf"
)

// ErrMalformedShape is the sentinel matched by every *ShapeError.
var ErrMalformedShape = errors.New("shacl: malformed shape")

// ShapeError reports a shapes graph that cannot be compiled.
type ShapeError struct {
	Shape     rdf.Term // Shape being compiled, nil if unknown
	Parameter rdf.IRI  // Offending parameter, zero if not parameter specific
	Err       error
}

func (e *ShapeError) Error() string {
	msg := "shacl: malformed shape"
	if e.Shape != nil {
		msg += " " + e.Shape.String()
	}
	if e.Parameter.Value != "" {
		msg += ": " + e.Parameter.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShapeError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrMalformedShape.
func (e *ShapeError) Is(target error) bool { return target == ErrMalformedShape }

func shapeErrorf(shape rdf.Term, param rdf.IRI, format string, args ...any) *ShapeError {
	return &ShapeError{Shape: shape, Parameter: param, Err: fmt.Errorf(format, args...)}
}
