package lexgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    commitCounter   prometheus.Counter
//	    commitHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCommit(duration time.Duration, bytes uint64, err error) {
//	    p.commitCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordCommit is called after each segment commit.
	// bytes is the size of the written store file, err is nil on success.
	RecordCommit(duration time.Duration, bytes uint64, err error)

	// RecordSegmentOpen is called after each segment open.
	// bytes is the size of the materialized store file.
	RecordSegmentOpen(duration time.Duration, bytes uint64, err error)

	// RecordAbort is called when a segment build is abandoned.
	RecordAbort()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCommit(time.Duration, uint64, error)      {}
func (NoopMetricsCollector) RecordSegmentOpen(time.Duration, uint64, error) {}
func (NoopMetricsCollector) RecordAbort()                                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	CommitCount      atomic.Int64
	CommitErrors     atomic.Int64
	CommitBytes      atomic.Int64
	CommitTotalNanos atomic.Int64
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	OpenBytes        atomic.Int64
	OpenTotalNanos   atomic.Int64
	AbortCount       atomic.Int64
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(duration time.Duration, bytes uint64, err error) {
	b.CommitCount.Add(1)
	b.CommitTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CommitErrors.Add(1)
	} else {
		b.CommitBytes.Add(int64(bytes))
	}
}

// RecordSegmentOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSegmentOpen(duration time.Duration, bytes uint64, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
	} else {
		b.OpenBytes.Add(int64(bytes))
	}
}

// RecordAbort implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAbort() {
	b.AbortCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CommitCount:    b.CommitCount.Load(),
		CommitErrors:   b.CommitErrors.Load(),
		CommitBytes:    b.CommitBytes.Load(),
		CommitAvgNanos: b.getAvgCommitNanos(),
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		OpenBytes:      b.OpenBytes.Load(),
		OpenAvgNanos:   b.getAvgOpenNanos(),
		AbortCount:     b.AbortCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgCommitNanos() int64 {
	count := b.CommitCount.Load()
	if count == 0 {
		return 0
	}
	return b.CommitTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgOpenNanos() int64 {
	count := b.OpenCount.Load()
	if count == 0 {
		return 0
	}
	return b.OpenTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CommitCount    int64
	CommitErrors   int64
	CommitBytes    int64
	CommitAvgNanos int64
	OpenCount      int64
	OpenErrors     int64
	OpenBytes      int64
	OpenAvgNanos   int64
	AbortCount     int64
}
