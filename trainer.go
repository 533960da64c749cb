package bkmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/internal/kmeans"
	"gonum.org/v1/gonum/floats"
)

// BisectingKMeans trains bisecting k-means models.
//
// Starting from a single cluster holding every row, the trainer repeatedly
// splits the divisible leaf with the highest cost by running 2-means on its
// members, until k leaves exist. A trainer is immutable and may be used for
// several Fit calls concurrently.
type BisectingKMeans struct {
	opts options
}

// New creates a trainer. Configuration errors are reported here, before any
// data is touched.
func New(optFns ...Option) (*BisectingKMeans, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &BisectingKMeans{opts: o}, nil
}

// Fit is shorthand for New(optFns...) followed by Fit(ctx, src).
func Fit(ctx context.Context, src dataset.Source, optFns ...Option) (*Model, error) {
	bkm, err := New(optFns...)
	if err != nil {
		return nil, err
	}
	return bkm.Fit(ctx, src)
}

// K returns the configured number of leaf clusters.
func (b *BisectingKMeans) K() int {
	return b.opts.k
}

// working is the canonical, sorted view of the training rows.
type working struct {
	points [][]float64 // prepared for the metric
	rows   []int       // original row index per position
	dim    int
}

type leaf struct {
	id        NodeID
	positions []int // ascending indices into working
	failed    bool
}

// Fit trains a model on the features column of src.
//
// Rows are sorted before training, so the model does not depend on the
// order in which src yields them. ctx is checked between splits and
// between refinement passes.
func (b *BisectingKMeans) Fit(ctx context.Context, src dataset.Source) (model *Model, err error) {
	o := &b.opts
	start := time.Now()
	logger := o.logger.WithK(o.k)
	rows := 0

	defer func() {
		o.metricsCollector.RecordFit(rows, time.Since(start), err)
		if model != nil {
			logger.LogFit(ctx, model.K(), model.summary.TrainingCost, nil)
		} else {
			logger.LogFit(ctx, 0, 0, err)
		}
	}()

	if src == nil {
		return nil, invalidConfig("dataset source is nil")
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	data, err := load(src, o.featuresCol)
	if err != nil {
		return nil, err
	}
	rows = len(data)
	if rows < o.k {
		return nil, fmt.Errorf("%w: %d rows, k=%d", ErrInsufficientData, rows, o.k)
	}

	w := b.canonicalize(data)
	logger = logger.WithDimension(w.dim).WithCount(rows)

	minSize := o.minDivisible(rows)
	cfg := kmeans.Config{
		Metric:        o.metric,
		MaxIterations: o.maxIterations,
		Parallelism:   o.parallelism,
	}

	all := make([]int, rows)
	for i := range all {
		all[i] = i
	}
	center, cost := b.cluster(w, all)
	tree := newTree(center, cost, w.members(all))

	leaves := []*leaf{{id: 0, positions: all}}
	history := []float64{cost}
	splits, iterations := 0, 0

	for len(leaves) < o.k {
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}

		best := -1
		for i, l := range leaves {
			if l.failed || len(l.positions) < minSize || !w.distinct(l.positions) {
				continue
			}
			if best < 0 || tree.nodes[l.id].Cost > tree.nodes[leaves[best].id].Cost {
				best = i
			}
		}
		if best < 0 {
			return nil, fmt.Errorf("%w: %d of %d leaves and no divisible cluster remains", ErrDegenerate, len(leaves), o.k)
		}

		l := leaves[best]
		sub := make([][]float64, len(l.positions))
		for i, p := range l.positions {
			sub[i] = w.points[p]
		}

		splitStart := time.Now()
		res, err := kmeans.Bisect(ctx, sub, kmeans.NewRand(o.seed, splits), cfg)
		split := splits
		splits++

		resIters := 0
		if res != nil {
			resIters = res.Iterations
		}
		o.metricsCollector.RecordSplit(resIters, time.Since(splitStart), err)

		if err != nil {
			if ctx.Err() != nil {
				return nil, cancelled(ctx)
			}
			if errors.Is(err, kmeans.ErrSplitFailed) {
				logger.LogSplit(ctx, split, l.id, len(l.positions), 0, 0, 0, err)
				l.failed = true
				continue
			}
			return nil, err
		}
		iterations += res.Iterations

		var left, right []int
		for i, a := range res.Assignments {
			if a == 0 {
				left = append(left, l.positions[i])
			} else {
				right = append(right, l.positions[i])
			}
		}
		// The left child holds the canonically first member, so leaf order
		// does not depend on which centers were sampled.
		if right[0] < left[0] {
			left, right = right, left
		}

		lc, lcost := b.cluster(w, left)
		rc, rcost := b.cluster(w, right)
		lid := tree.add(l.id, lc, lcost, w.members(left))
		rid := tree.add(l.id, rc, rcost, w.members(right))
		tree.attach(l.id, lid, rid)

		leaves = slices.Delete(leaves, best, best+1)
		leaves = append(leaves, &leaf{id: lid, positions: left}, &leaf{id: rid, positions: right})

		total := 0.0
		for _, lf := range leaves {
			total += tree.nodes[lf.id].Cost
		}
		history = append(history, total)

		logger.LogSplit(ctx, split, l.id, len(l.positions), len(left), len(right), res.Iterations, nil)
	}

	tree.seal()
	return newModel(o, w.dim, tree, Summary{
		Rows:        rows,
		Splits:      splits,
		Iterations:  iterations,
		CostHistory: history,
	}), nil
}

// load reads and validates the training rows.
func load(src dataset.Source, column string) ([][]float64, error) {
	seq, err := src.Vectors(column)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var data [][]float64
	dim := -1
	row := 0
	for v := range seq {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: row %d is empty", ErrInvalidInput, row)
		}
		if dim < 0 {
			dim = len(v)
		} else if len(v) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(v), Row: row}
		}
		if j := nonFinite(v); j >= 0 {
			return nil, fmt.Errorf("%w: row %d component %d is %v", ErrInvalidInput, row, j, v[j])
		}
		data = append(data, slices.Clone(v))
		row++
	}
	return data, nil
}

// nonFinite returns the index of the first NaN or infinite component of v,
// or -1.
func nonFinite(v []float64) int {
	for j, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return j
		}
	}
	return -1
}

// canonicalize prepares rows for the metric and sorts them
// lexicographically, prepared vector first, raw vector second.
func (b *BisectingKMeans) canonicalize(data [][]float64) *working {
	type entry struct {
		raw, prep []float64
		row       int
	}
	entries := make([]entry, len(data))
	for i, v := range data {
		entries[i] = entry{raw: v, prep: b.opts.metric.Prepare(v), row: i}
	}
	slices.SortStableFunc(entries, func(x, y entry) int {
		if c := slices.Compare(x.prep, y.prep); c != 0 {
			return c
		}
		return slices.Compare(x.raw, y.raw)
	})

	w := &working{
		points: make([][]float64, len(entries)),
		rows:   make([]int, len(entries)),
		dim:    len(data[0]),
	}
	for i, e := range entries {
		w.points[i] = e.prep
		w.rows[i] = e.row
	}
	return w
}

// distinct reports whether the positions hold at least two different
// prepared vectors. Positions are ascending, so the sorted order makes the
// first and last vectors the extremes.
func (w *working) distinct(positions []int) bool {
	if len(positions) < 2 {
		return false
	}
	return !slices.Equal(w.points[positions[0]], w.points[positions[len(positions)-1]])
}

func (w *working) members(positions []int) *roaring.Bitmap {
	bm := roaring.New()
	for _, p := range positions {
		bm.Add(uint32(w.rows[p]))
	}
	bm.RunOptimize()
	return bm
}

// cluster computes the center and cost of the given positions.
// A cosine cluster whose mean has no direction keeps the plain mean.
func (b *BisectingKMeans) cluster(w *working, positions []int) ([]float64, float64) {
	sum := make([]float64, w.dim)
	for _, p := range positions {
		floats.Add(sum, w.points[p])
	}
	center, ok := b.opts.metric.Centroid(sum, len(positions))
	if !ok {
		center = sum
		floats.Scale(1/float64(len(positions)), center)
	}

	var cost float64
	for _, p := range positions {
		cost += b.opts.metric.Distance(w.points[p], center)
	}
	return center, cost
}
