package bkmeans

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordFit is called after each training run.
	// rows is the dataset size, duration is the total time taken,
	// err is nil if successful.
	RecordFit(rows int, duration time.Duration, err error)

	// RecordSplit is called after each bisection attempt.
	// iterations is the number of refinement passes that ran.
	RecordSplit(iterations int, duration time.Duration, err error)

	// RecordPredict is called after each Predict call.
	RecordPredict(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFit(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordSplit(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPredict(time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FitCount          atomic.Int64
	FitErrors         atomic.Int64
	FitRows           atomic.Int64
	FitTotalNanos     atomic.Int64
	SplitCount        atomic.Int64
	SplitFailures     atomic.Int64
	SplitIterations   atomic.Int64
	SplitTotalNanos   atomic.Int64
	PredictCount      atomic.Int64
	PredictErrors     atomic.Int64
	PredictTotalNanos atomic.Int64
}

// RecordFit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFit(rows int, duration time.Duration, err error) {
	b.FitCount.Add(1)
	b.FitRows.Add(int64(rows))
	b.FitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FitErrors.Add(1)
	}
}

// RecordSplit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSplit(iterations int, duration time.Duration, err error) {
	b.SplitCount.Add(1)
	b.SplitIterations.Add(int64(iterations))
	b.SplitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SplitFailures.Add(1)
	}
}

// RecordPredict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPredict(duration time.Duration, err error) {
	b.PredictCount.Add(1)
	b.PredictTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PredictErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FitCount:        b.FitCount.Load(),
		FitErrors:       b.FitErrors.Load(),
		FitRows:         b.FitRows.Load(),
		FitAvgNanos:     avg(b.FitTotalNanos.Load(), b.FitCount.Load()),
		SplitCount:      b.SplitCount.Load(),
		SplitFailures:   b.SplitFailures.Load(),
		SplitIterations: b.SplitIterations.Load(),
		SplitAvgNanos:   avg(b.SplitTotalNanos.Load(), b.SplitCount.Load()),
		PredictCount:    b.PredictCount.Load(),
		PredictErrors:   b.PredictErrors.Load(),
		PredictAvgNanos: avg(b.PredictTotalNanos.Load(), b.PredictCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of metrics from BasicMetricsCollector.
type BasicMetricsStats struct {
	FitCount        int64
	FitErrors       int64
	FitRows         int64
	FitAvgNanos     int64
	SplitCount      int64
	SplitFailures   int64
	SplitIterations int64
	SplitAvgNanos   int64
	PredictCount    int64
	PredictErrors   int64
	PredictAvgNanos int64
}
