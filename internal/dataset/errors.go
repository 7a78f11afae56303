package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when the input holds no data rows.
	ErrEmpty = errors.New("no data rows")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
)

// LoadError is fatal: nothing can be shown without a valid dataset.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError reports an unparseable timestamp. Row is 1-based and excludes the header.
type ParseError struct {
	Row   int
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: unparseable timestamp %q", e.Row, e.Value)
}

// CellCoercionWarning records a cell that could not be coerced to a number.
type CellCoercionWarning struct {
	Row    int
	Column Column
	Value  string
}

// EmptyGroupMean records a city whose column had no value to impute from.
type EmptyGroupMean struct {
	City   string
	Column Column
}
