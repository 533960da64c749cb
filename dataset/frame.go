package dataset

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

// DefaultFeaturesCol is the column read by the trainer unless configured
// otherwise.
const DefaultFeaturesCol = "features"

var (
	// ErrColumnNotFound is returned when a requested column does not exist.
	ErrColumnNotFound = errors.New("column not found")

	// ErrRowCountMismatch is returned when a column is added whose row count
	// differs from the frame's.
	ErrRowCountMismatch = errors.New("row count mismatch")
)

// Source yields dense vectors from a named column.
//
// The returned sequence may be iterated more than once and must yield the
// same contents each time. Consumers must not modify yielded slices.
type Source interface {
	Vectors(column string) (iter.Seq[[]float64], error)
}

// Frame is an in-memory table of named dense-vector columns.
// All columns have the same number of rows; vectors within a column are
// not required to share a dimensionality.
type Frame struct {
	names   []string
	columns map[string][][]float64
	rows    int
}

// NewFrame creates an empty frame.
func NewFrame() *Frame {
	return &Frame{columns: make(map[string][][]float64)}
}

// FromVectors creates a single-column frame.
func FromVectors(column string, rows [][]float64) *Frame {
	f := NewFrame()
	_ = f.WithColumn(column, rows) // cannot fail on an empty frame
	return f
}

// WithColumn adds or replaces a column. The rows are copied.
func (f *Frame) WithColumn(name string, rows [][]float64) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	_, exists := f.columns[name]
	replacingOnly := exists && len(f.columns) == 1
	if len(f.columns) > 0 && !replacingOnly && len(rows) != f.rows {
		return fmt.Errorf("%w: column %q has %d rows, frame has %d", ErrRowCountMismatch, name, len(rows), f.rows)
	}

	cp := make([][]float64, len(rows))
	for i, r := range rows {
		cp[i] = slices.Clone(r)
	}
	if !exists {
		f.names = append(f.names, name)
	}
	f.columns[name] = cp
	f.rows = len(rows)
	return nil
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	return slices.Clone(f.names)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Vectors implements Source.
func (f *Frame) Vectors(column string) (iter.Seq[[]float64], error) {
	rows, ok := f.columns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	return func(yield func([]float64) bool) {
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	}, nil
}

// Demo returns the six-row example table used by the CLI.
func Demo() *Frame {
	return FromVectors(DefaultFeaturesCol, [][]float64{
		{0.1, 0.1, 0.1},
		{0.3, 0.3, 0.25},
		{0.1, 0.1, -0.1},
		{20.3, 20.1, 19.9},
		{20.2, 20.1, 19.7},
		{18.9, 20.0, 19.7},
	})
}
