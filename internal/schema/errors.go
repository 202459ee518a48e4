package schema

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Reason classifies a validation failure.
type Reason string

const (
	ReasonMissingField    Reason = "missing_field"
	ReasonTypeMismatch    Reason = "type_mismatch"
	ReasonUnexpectedField Reason = "unexpected_field"
)

// ErrMalformedBody is returned by ValidateJSON when the body is not a single
// well-formed JSON value.
var ErrMalformedBody = errors.New("malformed JSON body")

// ValidationError is the structured failure of Validate.
//
// Path is dotted for object members and indexed for array elements
// ("address.city", "tags[2]"). The empty path is the body itself.
type ValidationError struct {
	Reason   Reason
	Path     string
	Expected Type
	Actual   string
}

func MissingField(path string) *ValidationError {
	return &ValidationError{Reason: ReasonMissingField, Path: path}
}

func TypeMismatch(path string, expected Type, actual string) *ValidationError {
	return &ValidationError{Reason: ReasonTypeMismatch, Path: path, Expected: expected, Actual: actual}
}

func UnexpectedField(path string) *ValidationError {
	return &ValidationError{Reason: ReasonUnexpectedField, Path: path}
}

// Field returns the path to report to clients; "body" stands for the root.
func (e *ValidationError) Field() string {
	if e.Path == "" {
		return "body"
	}
	return e.Path
}

// Detail is the message without the field prefix.
func (e *ValidationError) Detail() string {
	switch e.Reason {
	case ReasonMissingField:
		return "missing field"
	case ReasonUnexpectedField:
		return "unexpected field"
	default:
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
	}
}

func (e *ValidationError) Error() string {
	return e.Field() + ": " + e.Detail()
}

// SerializationError reports a response value that cannot be represented
// under the response schema selected for its status code.
type SerializationError struct {
	Status int
	Err    error
}

func (e *SerializationError) Error() string {
	return "serialize response for status " + strconv.Itoa(e.Status) + ": " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func indexPath(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}
