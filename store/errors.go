package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodePathNotFound indicates a path segment does not exist on the
	// object encountered at that point in the walk.
	ErrCodePathNotFound ErrorCode = "PATH_NOT_FOUND"

	// ErrCodeTypeMismatch indicates the target slot's type is incompatible
	// with the requested operation.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// PathError reports a path that does not resolve against the current
// state model. It names both the offending segment and the full path for
// diagnosability.
type PathError struct {
	// Path is the full dotted path that was being resolved.
	Path string

	// Segment is the first segment that failed to resolve.
	Segment string

	// Message describes why the segment failed (unknown field, index out
	// of range, missing key).
	Message string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("%s: segment %q in path %q: %s", ErrCodePathNotFound, e.Segment, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: path %q: %s", ErrCodePathNotFound, e.Path, e.Message)
}

// TypeError reports an operation applied to a slot whose type cannot
// accept it, such as appending to a non-slice or assigning an
// incompatible value.
type TypeError struct {
	// Path is the dotted path of the target slot.
	Path string

	// Op names the operation that failed ("update", "list_add", ...).
	Op string

	// Want is the declared type of the slot.
	Want string

	// Got describes the supplied value's type.
	Got string

	// Message carries additional context when Want/Got alone do not
	// explain the failure.
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Want != "" || e.Got != "" {
		return fmt.Sprintf("%s: %s at %q: want %s, got %s", ErrCodeTypeMismatch, e.Op, e.Path, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: %s at %q: %s", ErrCodeTypeMismatch, e.Op, e.Path, e.Message)
}

// IsPathNotFound returns true if the error is a path resolution failure.
// Uses errors.As to handle wrapped errors.
func IsPathNotFound(err error) bool {
	var pe *PathError
	return errors.As(err, &pe)
}

// IsTypeMismatch returns true if the error is a type mismatch.
// Uses errors.As to handle wrapped errors.
func IsTypeMismatch(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}
