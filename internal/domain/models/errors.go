package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is matched by every EmptyInputError.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoData is returned by fetchers when the upstream has nothing for a symbol.
	ErrNoData = errors.New("no data")
	// ErrNotConfigured is returned when a collaborator has no API key.
	ErrNotConfigured = errors.New("not configured")
)

// ParseError reports a malformed field in a snapshot row.
type ParseError struct {
	File   string
	Line   int
	Symbol string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s line %d (%s) field %q value %q: %v", e.File, e.Line, e.Symbol, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DivisionByZeroError reports a degenerate quote value used as a divisor.
type DivisionByZeroError struct {
	Symbol string
	Field  string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("%s: %s is zero", e.Symbol, e.Field)
}

// EmptyInputError is returned when there is nothing to aggregate.
type EmptyInputError struct {
	Op string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, ErrEmptyInput)
}

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }
