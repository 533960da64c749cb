package bkmeans

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/distance"
	"github.com/hupe1980/bkmeans/internal/kmeans"
)

// Summary describes a training run.
type Summary struct {
	// K is the number of leaf clusters.
	K int
	// Rows is the number of training rows.
	Rows int
	// ClusterSizes holds the member count per leaf, in center order.
	ClusterSizes []int
	// TrainingCost is the sum of the leaf costs.
	TrainingCost float64
	// CostHistory holds the total leaf cost before the first split and
	// after each successful split.
	CostHistory []float64
	// Splits counts bisection attempts, including abandoned ones.
	Splits int
	// Iterations counts refinement passes over all splits.
	Iterations int
}

// Model is a fitted bisecting k-means model.
//
// A Model is immutable and safe for concurrent use.
type Model struct {
	metric      distance.Metric
	distFunc    distance.Func
	dim         int
	centers     [][]float64
	tree        *Tree
	summary     Summary
	featuresCol string
	parallelism int
	metrics     MetricsCollector
}

func newModel(o *options, dim int, tree *Tree, summary Summary) *Model {
	// Valid metrics always have a provider.
	distFunc, _ := distance.Provider(o.metric)

	leaves := tree.Leaves()
	centers := make([][]float64, len(leaves))
	summary.K = len(leaves)
	summary.ClusterSizes = make([]int, len(leaves))
	summary.TrainingCost = 0
	for i, n := range leaves {
		centers[i] = n.Center
		summary.ClusterSizes[i] = n.Size
		summary.TrainingCost += n.Cost
	}

	return &Model{
		metric:      o.metric,
		distFunc:    distFunc,
		dim:         dim,
		centers:     centers,
		tree:        tree,
		summary:     summary,
		featuresCol: o.featuresCol,
		parallelism: o.parallelism,
		metrics:     o.metricsCollector,
	}
}

// K returns the number of clusters.
func (m *Model) K() int {
	return len(m.centers)
}

// Dim returns the dimensionality of the training vectors.
func (m *Model) Dim() int {
	return m.dim
}

// Metric returns the distance measure.
func (m *Model) Metric() distance.Metric {
	return m.metric
}

// FeaturesCol returns the column read by ComputeCost and Transform.
func (m *Model) FeaturesCol() string {
	return m.featuresCol
}

// Tree returns the cluster tree.
func (m *Model) Tree() *Tree {
	return m.tree
}

// Summary returns a copy of the training summary.
func (m *Model) Summary() Summary {
	s := m.summary
	s.ClusterSizes = slices.Clone(s.ClusterSizes)
	s.CostHistory = slices.Clone(s.CostHistory)
	return s
}

// ClusterCenters returns copies of the k centers in left-to-right leaf
// order.
func (m *Model) ClusterCenters() [][]float64 {
	out := make([][]float64, len(m.centers))
	for i, c := range m.centers {
		out[i] = slices.Clone(c)
	}
	return out
}

// Predict returns the index of the nearest center. Ties resolve to the
// lowest index.
func (m *Model) Predict(vec []float64) (idx int, err error) {
	start := time.Now()
	defer func() {
		m.metrics.RecordPredict(time.Since(start), err)
	}()

	if len(vec) != m.dim {
		return -1, &ErrDimensionMismatch{Expected: m.dim, Actual: len(vec), Row: -1}
	}
	if j := nonFinite(vec); j >= 0 {
		return -1, fmt.Errorf("%w: component %d is %v", ErrInvalidInput, j, vec[j])
	}
	idx, _ = kmeans.Nearest(vec, m.centers, m.distFunc)
	return idx, nil
}

// ComputeCost returns the sum of distances from each vector in src to its
// nearest center: squared Euclidean distance, or 1 - cosine similarity.
// The model is not modified.
func (m *Model) ComputeCost(src dataset.Source) (float64, error) {
	_, cost, err := m.evaluate(src)
	if err != nil {
		return 0, err
	}
	return cost, nil
}

// Transform returns the predicted cluster of every vector in src, in the
// order src yields them.
func (m *Model) Transform(src dataset.Source) ([]int, error) {
	preds, _, err := m.evaluate(src)
	if err != nil {
		return nil, err
	}
	return preds, nil
}

func (m *Model) evaluate(src dataset.Source) ([]int, float64, error) {
	if src == nil {
		return nil, 0, invalidConfig("dataset source is nil")
	}
	seq, err := src.Vectors(m.featuresCol)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	// Validate the whole column first so a bad row leaves no partial result.
	var vecs [][]float64
	for vec := range seq {
		if len(vec) != m.dim {
			return nil, 0, &ErrDimensionMismatch{Expected: m.dim, Actual: len(vec), Row: len(vecs)}
		}
		if j := nonFinite(vec); j >= 0 {
			return nil, 0, fmt.Errorf("%w: row %d component %d is %v", ErrInvalidInput, len(vecs), j, vec[j])
		}
		vecs = append(vecs, vec)
	}

	return kmeans.Evaluate(context.Background(), vecs, m.centers, m.distFunc, m.parallelism)
}
