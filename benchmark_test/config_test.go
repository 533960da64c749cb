package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/bkmeans"
	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

// Standard dimensions used across benchmarks for consistency.
const (
	dimSmall  = 8
	dimMedium = 64
)

// Standard dataset sizes.
const (
	sizeSmall  = 1_000
	sizeMedium = 20_000
)

// Seed for deterministic benchmarks - enables reproducible comparisons.
const benchSeed = 42

// ============================================================================
// Benchmark Helpers
// ============================================================================

// benchData generates a reproducible dataset of size rows.
func benchData(size, dim int) *dataset.Frame {
	rows := testutil.NewRNG(benchSeed).GaussianVectors(size, dim)
	return dataset.FromVectors(dataset.DefaultFeaturesCol, rows)
}

// fitModel trains a model for benchmarks that need one.
func fitModel(b *testing.B, data dataset.Source, opts ...bkmeans.Option) *bkmeans.Model {
	b.Helper()
	model, err := bkmeans.Fit(context.Background(), data, opts...)
	if err != nil {
		b.Fatalf("failed to fit: %v", err)
	}
	return model
}
