// Package testutil provides testing utilities for bkmeans.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible datasets.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.GaussianVectors(500, 3)       // standard normal
//	blobs := rng.Blobs(centers, 40, 0.5)      // uniform noise around centers
//	rng.Shuffle(rows)                         // permute rows in place
package testutil
