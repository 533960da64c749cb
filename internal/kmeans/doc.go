// Package kmeans implements the Lloyd refinement used to bisect clusters.
//
// Used internally by the bisecting trainer: each split runs Train with two
// centers sampled by Bisect. The assignment step works on fixed-size
// chunks whose partial sums are merged in chunk order, so results do not
// depend on the degree of parallelism.
package kmeans
