package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/bkmeans/distance"
)

var (
	// ErrSplitFailed is returned when a cluster cannot be divided into two
	// non-empty sides, even after one perturbation.
	ErrSplitFailed = errors.New("kmeans: split failed")

	// ErrNoPoints is returned when training is called without data.
	ErrNoPoints = errors.New("kmeans: no points")
)

// Config controls a refinement run.
type Config struct {
	Metric        distance.Metric
	MaxIterations int
	// Parallelism bounds the goroutines used by the assignment step.
	// Values < 1 mean 1.
	Parallelism int
}

// Result is the outcome of a refinement run.
type Result struct {
	// Assignments maps each input point to its center index.
	Assignments []int
	// Centers are the centers after the final update step.
	Centers [][]float64
	// Counts holds the member count per center.
	Counts []int
	// Iterations is the number of assignment passes executed.
	Iterations int
	// Perturbed reports whether an empty center had to be reseeded.
	Perturbed bool
}

// Train refines the given initial centers with Lloyd's algorithm.
//
// Iteration stops when no assignment changes or MaxIterations passes have
// run. If a center ends up empty (or its cosine mean has zero norm), the
// member farthest from its own center reseeds it once; a second empty
// center yields ErrSplitFailed. The reseed grants one extra pass so the
// returned centers always match the returned assignments.
func Train(ctx context.Context, points [][]float64, initial [][]float64, cfg Config) (*Result, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if len(initial) == 0 {
		return nil, fmt.Errorf("kmeans: no initial centers")
	}
	distFunc, err := distance.Provider(cfg.Metric)
	if err != nil {
		return nil, err
	}
	maxIter := cfg.MaxIterations
	if maxIter < 1 {
		maxIter = 1
	}

	centers := make([][]float64, len(initial))
	for i, c := range initial {
		centers[i] = slices.Clone(c)
	}

	assignments := make([]int, len(points))
	for i := range assignments {
		assignments[i] = -1
	}

	res := &Result{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st, err := assign(ctx, points, centers, distFunc, assignments, cfg.Parallelism)
		if err != nil {
			return nil, err
		}
		res.Iterations++

		// Update step
		empty := -1
		for j := range centers {
			c, ok := cfg.Metric.Centroid(st.sums[j], st.counts[j])
			if !ok {
				if empty < 0 {
					empty = j
				}
				continue
			}
			centers[j] = c
		}

		if empty >= 0 {
			if res.Perturbed {
				return nil, ErrSplitFailed
			}
			res.Perturbed = true
			far := farthest(points, assignments, centers, empty, cfg.Metric, distFunc)
			if far < 0 {
				return nil, ErrSplitFailed
			}
			centers[empty] = slices.Clone(points[far])
			continue
		}

		res.Counts = st.counts
		if !st.changed || res.Iterations >= maxIter {
			break
		}
	}

	res.Assignments = assignments
	res.Centers = centers
	return res, nil
}

// farthest returns the index of the point that lies farthest from its own
// center, ignoring members of the center being reseeded and points that
// cannot act as a center (zero vectors under cosine). Ties resolve to the
// lowest index. Returns -1 if no point qualifies.
func farthest(points [][]float64, assignments []int, centers [][]float64, skip int, metric distance.Metric, distFunc distance.Func) int {
	best := -1
	bestDist := -1.0
	for i, p := range points {
		a := assignments[i]
		if a == skip || centers[a] == nil {
			continue
		}
		if _, ok := metric.Centroid(p, 1); !ok {
			continue
		}
		d := distFunc(p, centers[a])
		if d > bestDist {
			bestDist = d
			best = i
		}
	}
	if bestDist <= 0 {
		// Every candidate already sits on its center; moving one cannot
		// create a distinct side.
		return -1
	}
	return best
}

// Bisect splits points into two clusters.
//
// The two initial centers are distinct members sampled with rng. The first
// sampled member seeds center 0. Points must be prepared for the metric
// (see distance.Metric.Prepare).
func Bisect(ctx context.Context, points [][]float64, rng *rand.Rand, cfg Config) (*Result, error) {
	n := len(points)
	if n < 2 {
		return nil, ErrSplitFailed
	}

	first := rng.IntN(n)
	distinct := 0
	for _, p := range points {
		if !slices.Equal(p, points[first]) {
			distinct++
		}
	}
	if distinct == 0 {
		return nil, ErrSplitFailed
	}

	r := rng.IntN(distinct)
	second := -1
	for i, p := range points {
		if slices.Equal(p, points[first]) {
			continue
		}
		if r == 0 {
			second = i
			break
		}
		r--
	}

	return Train(ctx, points, [][]float64{points[first], points[second]}, cfg)
}

// NewRand returns the deterministic source used for a split.
// The seed is mixed with the split index so each split draws from its own
// stream.
func NewRand(seed int64, split int) *rand.Rand {
	s := uint64(seed ^ int64(split))
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Nearest returns the closest center and the distance to it.
func Nearest(vec []float64, centers [][]float64, distFunc distance.Func) (int, float64) {
	return nearest(vec, centers, distFunc)
}

func nearest(vec []float64, centers [][]float64, distFunc distance.Func) (int, float64) {
	bestCluster := -1
	minDist := math.Inf(1)

	for j, center := range centers {
		d := distFunc(vec, center)
		if d < minDist {
			minDist = d
			bestCluster = j
		}
	}
	if bestCluster < 0 && len(centers) > 0 {
		// Every distance was NaN or +Inf.
		return 0, minDist
	}

	return bestCluster, minDist
}
