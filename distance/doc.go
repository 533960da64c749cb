// Package distance provides the distance measures used for clustering.
//
// # Supported Metrics
//
//   - MetricEuclidean: squared Euclidean distance (default)
//   - MetricCosine: 1 - cosine similarity
//
// Each metric pairs a pointwise distance with a centroid update rule
// (Metric.Centroid), so training and prediction stay consistent.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	c := distance.Cosine(a, b)
//	center, ok := distance.MetricCosine.Centroid(sum, n)
package distance
