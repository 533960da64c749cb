// Package bkmeans implements bisecting k-means clustering.
//
// Bisecting k-means is a divisive hierarchical algorithm: it starts with a
// single cluster holding every row and repeatedly splits the divisible leaf
// with the highest cost by running 2-means on its members, until k leaves
// exist.
//
// # Quick Start
//
//	ctx := context.Background()
//	model, err := bkmeans.Fit(ctx, dataset.Demo(), bkmeans.WithK(2))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cost, _ := model.ComputeCost(dataset.Demo())
//	for i, c := range model.ClusterCenters() {
//	    fmt.Println(i, c)
//	}
//
// # Determinism
//
// Training rows are sorted before any decision is made and every split
// draws its initial centers from a source seeded with seed XOR split index.
// The same rows, configuration and seed therefore yield the same model
// regardless of row order or WithParallelism.
//
// # Distance Measures
//
// distance.MetricEuclidean (default) uses squared Euclidean distance and
// arithmetic means. distance.MetricCosine uses 1 - cosine similarity and
// L2-normalized means.
//
// # Errors
//
// Errors carry a Kind (see KindOf): InvalidConfig, DimensionMismatch,
// InsufficientData, Degenerate, Cancelled and InvalidInput. Configuration
// errors are reported by New before any data is read.
package bkmeans
