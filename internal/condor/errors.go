package condor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is matched by every AmbiguousResultError.
	ErrAmbiguous = errors.New("ambiguous result")
)

// ParseError is returned when scheduler output does not have the expected shape.
type ParseError struct {
	Message string
	Output  string
}

func (e *ParseError) Error() string {
	if e.Output == "" {
		return e.Message
	}
	return fmt.Sprintf("%s from output:\n%s", e.Message, e.Output)
}

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousResultError reports a unique lookup that matched more than once.
type AmbiguousResultError struct {
	Message string
	Count   int
}

func (e *AmbiguousResultError) Error() string { return e.Message }

func (e *AmbiguousResultError) Is(target error) bool { return target == ErrAmbiguous }
