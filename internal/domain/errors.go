package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrMalformedValue    = errors.New("malformed value")
	ErrInvalidWeights    = errors.New("invalid weights")
	ErrUnsupportedFormat = errors.New("unsupported table format")
	ErrMissingTable      = errors.New("missing input table")
)

// TableError points at the place in an input table that could not be read.
type TableError struct {
	Table  string
	Row    int // 1-based data row, 0 for header problems
	Column string
	Err    error
}

func (e *TableError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: column %q: %v", e.Table, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: row %d, column %q: %v", e.Table, e.Row, e.Column, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}
