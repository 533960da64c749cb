// Package distance provides the distance measures used by bisecting k-means.
// Vector arithmetic is delegated to gonum's floats package.
package distance

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Norm returns the L2 norm of v.
func Norm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
//
// The sum is accumulated directly rather than squaring floats.Distance,
// whose square root does not round-trip and would perturb reported costs.
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Cosine returns 1 - cos(a, b), clamped to [0, 2].
// A zero vector has no direction; its distance to anything is 1.
func Cosine(a, b []float64) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - floats.Dot(a, b)/(na*nb)
	switch {
	case d < 0:
		return 0
	case d > 2:
		return 2
	}
	return d
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float64) bool {
	if len(v) == 0 {
		return false
	}
	norm := floats.Norm(v, 2)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return false
	}
	floats.Scale(1/norm, v)
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float64) ([]float64, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Metric represents the distance measure used for clustering.
type Metric int

const (
	// MetricEuclidean measures squared Euclidean distance; centroids are
	// arithmetic means.
	MetricEuclidean Metric = iota
	// MetricCosine measures 1 - cosine similarity; centroids are
	// L2-normalized means of L2-normalized members.
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricCosine:
		return "cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	return m == MetricEuclidean || m == MetricCosine
}

// ParseMetric parses a metric name. Matching is case-insensitive and
// accepts "l2" as an alias for euclidean.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean", "l2":
		return MetricEuclidean, nil
	case "cosine":
		return MetricCosine, nil
	default:
		return 0, fmt.Errorf("unsupported distance measure: %q", s)
	}
}

// Distance returns the distance between a and b under m.
// Unknown metrics fall back to squared Euclidean.
func (m Metric) Distance(a, b []float64) float64 {
	if m == MetricCosine {
		return Cosine(a, b)
	}
	return SquaredL2(a, b)
}

// Prepare returns the working copy of v used during training.
// Cosine vectors are L2-normalized; zero vectors stay zero.
func (m Metric) Prepare(v []float64) []float64 {
	dst := slices.Clone(v)
	if m == MetricCosine {
		NormalizeL2InPlace(dst)
	}
	return dst
}

// Centroid turns a component-wise sum over count members into a center.
// It returns false when the center is undefined: no members, or a cosine
// mean with zero norm.
func (m Metric) Centroid(sum []float64, count int) ([]float64, bool) {
	if count <= 0 {
		return nil, false
	}
	c := slices.Clone(sum)
	floats.Scale(1/float64(count), c)
	if m == MetricCosine {
		if !NormalizeL2InPlace(c) {
			return nil, false
		}
	}
	return c, true
}

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return SquaredL2, nil
	case MetricCosine:
		return Cosine, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
