package bkmeans

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when the trainer configuration is
	// invalid (k < 2, non-positive iteration bound, bad threshold, unknown
	// distance measure or column).
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInsufficientData is returned when the dataset has fewer rows than k.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerate is returned when training runs out of divisible leaves
	// before reaching k.
	ErrDegenerate = errors.New("degenerate clustering")

	// ErrCancelled is returned when the context is done during training.
	// The context's error is wrapped alongside it.
	ErrCancelled = errors.New("cancelled")

	// ErrInvalidInput is returned for empty vectors or non-finite values.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrDimensionMismatch indicates a vector dimensionality mismatch.
//
// Row is the zero-based row index in the dataset, or -1 for a single
// vector passed to Predict.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	Row      int
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("dimension mismatch at row %d: expected %d, got %d", e.Row, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Kind classifies errors returned by this package.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidConfig
	KindDimensionMismatch
	KindInsufficientData
	KindDegenerate
	KindCancelled
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindDimensionMismatch:
		return "DimensionMismatch"
	case KindInsufficientData:
		return "InsufficientData"
	case KindDegenerate:
		return "Degenerate"
	case KindCancelled:
		return "Cancelled"
	case KindInvalidInput:
		return "InvalidInput"
	default:
		return "Unknown"
	}
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var dm *ErrDimensionMismatch
	switch {
	case errors.As(err, &dm):
		return KindDimensionMismatch
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrDegenerate):
		return KindDegenerate
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindUnknown
	}
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
