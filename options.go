package bkmeans

import (
	"log/slog"
	"math"

	"github.com/hupe1980/bkmeans/dataset"
	"github.com/hupe1980/bkmeans/distance"
)

const (
	// DefaultK is the default number of leaf clusters.
	DefaultK = 2

	// DefaultMaxIterations bounds the 2-means refinement of each split.
	DefaultMaxIterations = 20

	// DefaultMinDivisibleClusterSize is the default minimum member count of
	// a divisible cluster.
	DefaultMinDivisibleClusterSize = 1

	// DefaultSeed seeds the split sampling when no seed is configured.
	DefaultSeed int64 = 0x5eed_b15e
)

type options struct {
	k                   int
	maxIterations       int
	minDivisibleSize    int
	minDivisibleSizeSet bool
	minDivisibleFrac    float64
	seed                int64
	metric              distance.Metric
	featuresCol         string
	parallelism         int
	metricsCollector    MetricsCollector
	logger              *Logger
}

// Option configures the bisecting k-means trainer.
type Option func(*options)

// WithK sets the number of leaf clusters. Must be at least 2.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithMaxIterations bounds the Lloyd iterations run for each split.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithMinDivisibleClusterSize sets the minimum member count a leaf needs to
// be split further. Mutually exclusive with WithMinDivisibleClusterFraction.
func WithMinDivisibleClusterSize(n int) Option {
	return func(o *options) {
		o.minDivisibleSize = n
		o.minDivisibleSizeSet = true
	}
}

// WithMinDivisibleClusterFraction expresses the divisibility threshold as a
// fraction in (0, 1] of the dataset size. The resolved threshold is
// ceil(f * n).
func WithMinDivisibleClusterFraction(f float64) Option {
	return func(o *options) {
		o.minDivisibleFrac = f
	}
}

// WithSeed sets the seed of the split sampler.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithDistanceMeasure selects the distance measure.
func WithDistanceMeasure(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithFeaturesCol sets the dataset column holding the feature vectors.
func WithFeaturesCol(name string) Option {
	return func(o *options) {
		o.featuresCol = name
	}
}

// WithParallelism bounds the goroutines used to assign points during a
// split. Results do not depend on this value.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := bkmeans.NewJSONLogger(slog.LevelInfo)
//	bkm, _ := bkmeans.New(bkmeans.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		k:                DefaultK,
		maxIterations:    DefaultMaxIterations,
		minDivisibleSize: DefaultMinDivisibleClusterSize,
		seed:             DefaultSeed,
		metric:           distance.MetricEuclidean,
		featuresCol:      dataset.DefaultFeaturesCol,
		parallelism:      1,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o *options) validate() error {
	if o.k < 2 {
		return invalidConfig("k must be at least 2, got %d", o.k)
	}
	if o.maxIterations < 1 {
		return invalidConfig("max iterations must be positive, got %d", o.maxIterations)
	}
	if o.minDivisibleSize < 1 {
		return invalidConfig("min divisible cluster size must be at least 1, got %d", o.minDivisibleSize)
	}
	if o.minDivisibleFrac != 0 {
		if o.minDivisibleSizeSet {
			return invalidConfig("min divisible cluster size and fraction are mutually exclusive")
		}
		if math.IsNaN(o.minDivisibleFrac) || o.minDivisibleFrac <= 0 || o.minDivisibleFrac > 1 {
			return invalidConfig("min divisible cluster fraction must be in (0, 1], got %v", o.minDivisibleFrac)
		}
	}
	if !o.metric.Valid() {
		return invalidConfig("unsupported distance measure %v", o.metric)
	}
	if o.featuresCol == "" {
		return invalidConfig("features column must not be empty")
	}
	if o.parallelism < 1 {
		return invalidConfig("parallelism must be positive, got %d", o.parallelism)
	}
	return nil
}

// minDivisible resolves the divisibility threshold against the dataset size.
func (o *options) minDivisible(n int) int {
	if o.minDivisibleFrac > 0 {
		return max(1, int(math.Ceil(o.minDivisibleFrac*float64(n))))
	}
	return o.minDivisibleSize
}
