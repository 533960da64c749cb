package bkmeans

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/distance"
	"github.com/hupe1980/bkmeans/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demoRows = [][]float64{
	{0.1, 0.1, 0.1},
	{0.3, 0.3, 0.25},
	{0.1, 0.1, -0.1},
	{20.3, 20.1, 19.9},
	{20.2, 20.1, 19.7},
	{18.9, 20.0, 19.7},
}

func features(rows [][]float64) *dataset.Frame {
	return dataset.FromVectors(dataset.DefaultFeaturesCol, rows)
}

func TestFit_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("S1 WellSeparated", func(t *testing.T) {
		model, err := Fit(ctx, features(demoRows), WithK(2))
		require.NoError(t, err)

		centers := model.ClusterCenters()
		require.Len(t, centers, 2)
		assert.InDeltaSlice(t, []float64{0.1667, 0.1667, 0.0833}, centers[0], 1e-3)
		assert.InDeltaSlice(t, []float64{19.8, 20.0667, 19.7667}, centers[1], 1e-3)

		for i, row := range demoRows {
			idx, err := model.Predict(row)
			require.NoError(t, err)
			assert.Equal(t, i/3, idx, "row %d", i)
		}

		cost, err := model.ComputeCost(features(demoRows))
		require.NoError(t, err)
		assert.Less(t, cost, 5.0)
		assert.InDelta(t, 1.3683333333333358, cost, 1e-12)
	})

	t.Run("S2 Duplicates", func(t *testing.T) {
		var rows [][]float64
		for i := 0; i < 100; i++ {
			rows = append(rows, []float64{1, 0})
		}
		for i := 0; i < 100; i++ {
			rows = append(rows, []float64{0, 1})
		}

		model, err := Fit(ctx, features(rows), WithK(2))
		require.NoError(t, err)
		assert.ElementsMatch(t, [][]float64{{1, 0}, {0, 1}}, model.ClusterCenters())

		cost, err := model.ComputeCost(features(rows))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cost)
	})

	t.Run("S3 Identical", func(t *testing.T) {
		rows := slices.Repeat([][]float64{{1, 2, 3}}, 5)

		_, err := Fit(ctx, features(rows), WithK(3))
		assert.ErrorIs(t, err, ErrDegenerate)
		assert.Equal(t, KindDegenerate, KindOf(err))
	})

	t.Run("S4 DimensionMismatch", func(t *testing.T) {
		rows := [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {1, 2}}

		_, err := Fit(ctx, features(rows), WithK(2))
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 3, dm.Expected)
		assert.Equal(t, 2, dm.Actual)
		assert.Equal(t, 3, dm.Row)
		assert.Equal(t, KindDimensionMismatch, KindOf(err))
	})

	t.Run("S5 InvalidK", func(t *testing.T) {
		_, err := New(WithK(1))
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = Fit(ctx, features(demoRows), WithK(1))
		assert.Equal(t, KindInvalidConfig, KindOf(err))
	})

	t.Run("S6 TwoPoints", func(t *testing.T) {
		rows := [][]float64{{0, 0}, {10, 10}}

		model, err := Fit(ctx, features(rows), WithK(2))
		require.NoError(t, err)
		assert.Equal(t, rows, model.ClusterCenters())

		cost, err := model.ComputeCost(features(rows))
		require.NoError(t, err)
		assert.Equal(t, 0.0, cost)

		for i, row := range rows {
			idx, err := model.Predict(row)
			require.NoError(t, err)
			assert.Equal(t, i, idx)
		}
	})
}

func TestFit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("InsufficientData", func(t *testing.T) {
		_, err := Fit(ctx, features(demoRows[:2]), WithK(3))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("EmptyDataset", func(t *testing.T) {
		_, err := Fit(ctx, features(nil))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("NonFinite", func(t *testing.T) {
		rows := slices.Clone(demoRows)
		rows[2] = []float64{0.1, math.NaN(), 0}
		_, err := Fit(ctx, features(rows))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("EmptyVector", func(t *testing.T) {
		_, err := Fit(ctx, features([][]float64{{}, {}}))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		_, err := Fit(ctx, features(demoRows), WithFeaturesCol("vec"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorIs(t, err, dataset.ErrColumnNotFound)
	})

	t.Run("NilSource", func(t *testing.T) {
		_, err := Fit(ctx, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := Fit(cctx, features(demoRows))
		assert.ErrorIs(t, err, ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, KindCancelled, KindOf(err))
	})
}

func TestFit_MinDivisible(t *testing.T) {
	ctx := context.Background()

	t.Run("SizeBlocksSplit", func(t *testing.T) {
		_, err := Fit(ctx, features(demoRows), WithK(3), WithMinDivisibleClusterSize(4))
		assert.ErrorIs(t, err, ErrDegenerate)
	})

	t.Run("FractionAllowsSplit", func(t *testing.T) {
		model, err := Fit(ctx, features(demoRows), WithK(3), WithMinDivisibleClusterFraction(0.5))
		require.NoError(t, err)
		assert.Equal(t, 3, model.K())
	})

	t.Run("FractionBlocksSplit", func(t *testing.T) {
		_, err := Fit(ctx, features(demoRows), WithK(3), WithMinDivisibleClusterFraction(0.9))
		assert.ErrorIs(t, err, ErrDegenerate)
	})
}

func TestFit_Cosine(t *testing.T) {
	ctx := context.Background()
	rows := [][]float64{
		{1, 0.1}, {2, 0.1}, {3, -0.2},
		{0.1, 1}, {-0.1, 3}, {0.2, 2},
	}

	model, err := Fit(ctx, features(rows), WithK(2), WithDistanceMeasure(distance.MetricCosine))
	require.NoError(t, err)
	assert.Equal(t, distance.MetricCosine, model.Metric())

	for _, c := range model.ClusterCenters() {
		assert.InDelta(t, 1.0, distance.Norm(c), 1e-12)
	}

	preds, err := model.Transform(features(rows))
	require.NoError(t, err)
	assert.Equal(t, preds[0], preds[1])
	assert.Equal(t, preds[0], preds[2])
	assert.Equal(t, preds[3], preds[4])
	assert.Equal(t, preds[3], preds[5])
	assert.NotEqual(t, preds[0], preds[3])

	// Scale does not matter for cosine.
	idx, err := model.Predict([]float64{100, 0})
	require.NoError(t, err)
	assert.Equal(t, preds[0], idx)
}

func TestFit_CosineZeroVector(t *testing.T) {
	ctx := context.Background()
	rows := [][]float64{{1, 0}, {2, 0}, {0, 1}, {0, 3}, {0, 0}}

	for seed := int64(0); seed < 32; seed++ {
		model, err := Fit(ctx, features(rows), WithK(2), WithDistanceMeasure(distance.MetricCosine), WithSeed(seed))
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, 2, model.K())
	}
}

func TestFit_Properties(t *testing.T) {
	ctx := context.Background()

	t.Run("PartitionCompleteness", func(t *testing.T) {
		rows := testutil.NewRNG(1).GaussianVectors(500, 3)
		model, err := Fit(ctx, features(rows), WithK(5))
		require.NoError(t, err)

		seen := make([]bool, len(rows))
		total := 0
		for _, leaf := range model.Tree().Leaves() {
			members := leaf.Members()
			assert.Equal(t, leaf.Size, len(members))
			for _, r := range members {
				assert.False(t, seen[r], "row %d in two leaves", r)
				seen[r] = true
			}
			total += len(members)
		}
		assert.Equal(t, len(rows), total)

		preds, err := model.Transform(features(rows))
		require.NoError(t, err)
		for _, p := range preds {
			assert.GreaterOrEqual(t, p, 0)
			assert.Less(t, p, 5)
		}
	})

	t.Run("CentroidConsistency", func(t *testing.T) {
		rows := testutil.NewRNG(2).Blobs([][]float64{{0, 0}, {50, 0}, {0, 50}, {50, 50}}, 40, 0.5)
		model, err := Fit(ctx, features(rows), WithK(4))
		require.NoError(t, err)

		preds, err := model.Transform(features(rows))
		require.NoError(t, err)

		centers := model.ClusterCenters()
		for k, c := range centers {
			sum := make([]float64, len(c))
			n := 0
			for i, p := range preds {
				if p != k {
					continue
				}
				for j := range sum {
					sum[j] += rows[i][j]
				}
				n++
			}
			require.Positive(t, n)
			for j := range sum {
				assert.InDelta(t, sum[j]/float64(n), c[j], 1e-9)
			}
		}
	})

	t.Run("PermutationInvariance", func(t *testing.T) {
		rows := testutil.NewRNG(3).GaussianVectors(300, 4)
		shuffled := slices.Clone(rows)
		testutil.NewRNG(9).Shuffle(shuffled)

		a, err := Fit(ctx, features(rows), WithK(6), WithSeed(17))
		require.NoError(t, err)
		b, err := Fit(ctx, features(shuffled), WithK(6), WithSeed(17))
		require.NoError(t, err)

		assert.Equal(t, a.ClusterCenters(), b.ClusterCenters())
		assert.Equal(t, a.Summary().TrainingCost, b.Summary().TrainingCost)

		ca, err := a.ComputeCost(features(rows))
		require.NoError(t, err)
		cb, err := b.ComputeCost(features(shuffled))
		require.NoError(t, err)
		assert.InDelta(t, ca, cb, 1e-9)
	})

	t.Run("ParallelismInvariance", func(t *testing.T) {
		rows := testutil.NewRNG(4).GaussianVectors(2000, 3)

		a, err := Fit(ctx, features(rows), WithK(4), WithParallelism(1))
		require.NoError(t, err)
		b, err := Fit(ctx, features(rows), WithK(4), WithParallelism(8))
		require.NoError(t, err)

		assert.Equal(t, a.ClusterCenters(), b.ClusterCenters())
	})

	t.Run("CostMonotonicity", func(t *testing.T) {
		for _, metric := range []distance.Metric{distance.MetricEuclidean, distance.MetricCosine} {
			rows := testutil.NewRNG(5).GaussianVectors(400, 3)
			model, err := Fit(ctx, features(rows), WithK(8), WithDistanceMeasure(metric))
			require.NoError(t, err, metric.String())

			history := model.Summary().CostHistory
			require.Len(t, history, 8)
			for i := 1; i < len(history); i++ {
				assert.LessOrEqual(t, history[i], history[i-1]+1e-9, "%s split %d", metric, i)
			}
		}
	})

	t.Run("KRespect", func(t *testing.T) {
		rows := testutil.NewRNG(6).GaussianVectors(300, 2)
		for _, k := range []int{2, 3, 5, 8, 13} {
			model, err := Fit(ctx, features(rows), WithK(k))
			require.NoError(t, err)
			assert.Equal(t, k, model.K())
			assert.Len(t, model.ClusterCenters(), k)
			assert.Len(t, model.Tree().Leaves(), k)
			assert.Equal(t, 2*k-1, model.Tree().Len())
		}
	})

	t.Run("DimensionSafety", func(t *testing.T) {
		model, err := Fit(ctx, features(demoRows))
		require.NoError(t, err)
		before := model.ClusterCenters()

		_, err = model.Predict([]float64{1, 2})
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, -1, dm.Row)

		_, err = model.ComputeCost(features([][]float64{{1, 2, 3}, {1, 2}}))
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 1, dm.Row)

		assert.Equal(t, before, model.ClusterCenters())
	})
}

func TestFit_TrainerReuse(t *testing.T) {
	ctx := context.Background()
	bkm, err := New(WithK(2))
	require.NoError(t, err)
	assert.Equal(t, 2, bkm.K())

	_, err = bkm.Fit(ctx, features([][]float64{{1, 2}, {1}}))
	require.Error(t, err)

	model, err := bkm.Fit(ctx, features(demoRows))
	require.NoError(t, err)
	assert.Equal(t, 2, model.K())
}

func TestFit_Metrics(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}

	model, err := Fit(ctx, features(demoRows), WithK(3), WithMetricsCollector(mc))
	require.NoError(t, err)

	_, err = model.Predict(demoRows[0])
	require.NoError(t, err)
	_, err = model.Predict([]float64{1})
	require.Error(t, err)

	_, err = Fit(ctx, features(demoRows[:1]), WithMetricsCollector(mc))
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.FitCount)
	assert.Equal(t, int64(1), stats.FitErrors)
	assert.Equal(t, int64(7), stats.FitRows)
	assert.Equal(t, int64(2), stats.SplitCount)
	assert.Equal(t, int64(0), stats.SplitFailures)
	assert.Positive(t, stats.SplitIterations)
	assert.Equal(t, int64(2), stats.PredictCount)
	assert.Equal(t, int64(1), stats.PredictErrors)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindInsufficientData, KindOf(ErrInsufficientData))
	assert.Equal(t, "Degenerate", KindDegenerate.String())
	assert.Equal(t, "Unknown", Kind(99).String())

	err := &ErrDimensionMismatch{Expected: 3, Actual: 2, Row: -1}
	assert.Equal(t, "dimension mismatch: expected 3, got 2", err.Error())
	err.Row = 4
	assert.Equal(t, "dimension mismatch at row 4: expected 3, got 2", err.Error())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"KZero", []Option{WithK(0)}},
		{"MaxIterations", []Option{WithMaxIterations(0)}},
		{"MinSize", []Option{WithMinDivisibleClusterSize(0)}},
		{"FractionZeroIsUnset", nil},
		{"FractionNegative", []Option{WithMinDivisibleClusterFraction(-0.1)}},
		{"FractionAboveOne", []Option{WithMinDivisibleClusterFraction(1.5)}},
		{"BothThresholds", []Option{WithMinDivisibleClusterSize(2), WithMinDivisibleClusterFraction(0.5)}},
		{"Metric", []Option{WithDistanceMeasure(distance.Metric(7))}},
		{"FeaturesCol", []Option{WithFeaturesCol("")}},
		{"Parallelism", []Option{WithParallelism(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.opts == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("NilOptions", func(t *testing.T) {
		bkm, err := New(nil, WithLogger(nil), WithMetricsCollector(nil))
		require.NoError(t, err)
		assert.Equal(t, DefaultK, bkm.K())
	})
}

func TestFit_EqualCostSplitsEarlierLeaf(t *testing.T) {
	ctx := context.Background()
	// Two mirrored pairs: whichever way the first split goes, both children
	// hold two points with the same cost.
	rows := [][]float64{{0, 0}, {0, 1}, {100, 0}, {100, 1}}

	model, err := Fit(ctx, features(rows), WithK(3))
	require.NoError(t, err)

	tree := model.Tree()
	first, ok := tree.Node(1)
	require.True(t, ok)
	second, ok := tree.Node(2)
	require.True(t, ok)
	assert.Equal(t, first.Cost, second.Cost)

	leaves := tree.Leaves()
	require.Len(t, leaves, 3)
	assert.Equal(t, NodeID(1), leaves[0].Parent)
	assert.Equal(t, NodeID(1), leaves[1].Parent)
	assert.Equal(t, NodeID(2), leaves[2].ID)
	assert.False(t, first.IsLeaf())
	assert.True(t, second.IsLeaf())
}

func TestModel_NonFiniteInput(t *testing.T) {
	ctx := context.Background()
	model, err := Fit(ctx, features(demoRows), WithK(2))
	require.NoError(t, err)

	for _, x := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		idx, err := model.Predict([]float64{0, x, 0})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, -1, idx)
	}

	bad := features([][]float64{{0, 0, 0}, {1, math.NaN(), 1}})
	_, err = model.ComputeCost(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = model.Transform(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestModel_ComputeCostParallelism(t *testing.T) {
	ctx := context.Background()
	rows := testutil.NewRNG(5).GaussianVectors(3000, 4)

	var costs []float64
	var preds [][]int
	for _, p := range []int{1, 3, 8} {
		model, err := Fit(ctx, features(rows), WithK(5), WithSeed(11), WithParallelism(p))
		require.NoError(t, err)

		cost, err := model.ComputeCost(features(rows))
		require.NoError(t, err)
		costs = append(costs, cost)

		pr, err := model.Transform(features(rows))
		require.NoError(t, err)
		preds = append(preds, pr)
	}

	assert.Equal(t, costs[0], costs[1])
	assert.Equal(t, costs[0], costs[2])
	assert.Equal(t, preds[0], preds[1])
	assert.Equal(t, preds[0], preds[2])
	assert.Len(t, preds[0], len(rows))
}
