package kmeans

import (
	"context"

	"github.com/hupe1980/bkmeans/distance"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// chunkSize is the number of points assigned per task. It is fixed so the
// shape of the reduction never depends on Parallelism.
const chunkSize = 256

type assignStats struct {
	changed bool
	sums    [][]float64
	counts  []int
}

func newAssignStats(k, dim int) assignStats {
	sums := make([][]float64, k)
	for j := range sums {
		sums[j] = make([]float64, dim)
	}
	return assignStats{sums: sums, counts: make([]int, k)}
}

// assign moves every point to its nearest center and accumulates per-center
// sums. Chunks run concurrently; their partial sums are merged in chunk
// order.
func assign(ctx context.Context, points [][]float64, centers [][]float64, distFunc distance.Func, assignments []int, parallelism int) (assignStats, error) {
	n := len(points)
	k := len(centers)
	dim := len(points[0])
	numChunks := (n + chunkSize - 1) / chunkSize

	parts := make([]assignStats, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallelism))

	for c := 0; c < numChunks; c++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lo := c * chunkSize
			hi := min(lo+chunkSize, n)

			p := newAssignStats(k, dim)
			for i := lo; i < hi; i++ {
				best, _ := nearest(points[i], centers, distFunc)
				if assignments[i] != best {
					assignments[i] = best
					p.changed = true
				}
				floats.Add(p.sums[best], points[i])
				p.counts[best]++
			}
			parts[c] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return assignStats{}, err
	}

	total := newAssignStats(k, dim)
	for _, p := range parts {
		total.changed = total.changed || p.changed
		for j := 0; j < k; j++ {
			floats.Add(total.sums[j], p.sums[j])
			total.counts[j] += p.counts[j]
		}
	}
	return total, nil
}

// Evaluate returns the nearest center of every point and the sum of the
// distances to them. Chunk sums are added in chunk order, so the total does
// not depend on parallelism.
func Evaluate(ctx context.Context, points [][]float64, centers [][]float64, distFunc distance.Func, parallelism int) ([]int, float64, error) {
	n := len(points)
	numChunks := (n + chunkSize - 1) / chunkSize

	assignments := make([]int, n)
	sums := make([]float64, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallelism))

	for c := 0; c < numChunks; c++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lo := c * chunkSize
			hi := min(lo+chunkSize, n)

			var sum float64
			for i := lo; i < hi; i++ {
				best, d := nearest(points[i], centers, distFunc)
				assignments[i] = best
				sum += d
			}
			sums[c] = sum
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var total float64
	for _, s := range sums {
		total += s
	}
	return assignments, total, nil
}
