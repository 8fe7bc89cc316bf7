package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDependency is returned for a malformed dependency string.
	ErrInvalidDependency = errors.New("invalid dependency")

	// ErrInvalidFlag is returned for a malformed flag assignment.
	ErrInvalidFlag = errors.New("invalid flag assignment")

	// ErrInvalidCondition is returned for a malformed condition expression.
	ErrInvalidCondition = errors.New("invalid condition")
)

// Position is a location in a manifest file.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// ParseError is returned when manifest bytes do not form a valid package
// descriptor. It is never recoverable.
type ParseError struct {
	Pos     Position
	Message string
	Wrapped error
}

func (e *ParseError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	if e.Pos.Filename != "" {
		return e.Pos.Filename + ": " + e.Message
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}
