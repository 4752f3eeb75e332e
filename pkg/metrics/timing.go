// Package metrics provides lightweight timing instrumentation for the
// engine's hot paths: tree rebuilds, slot projection, sorting and grouping.
//
// Metrics are collected in-memory with atomic operations. Collection is
// enabled by default and can be disabled via ARBOR_METRICS=0.
//
// Usage:
//
//	func rebuild() {
//	    defer metrics.Timer(metrics.SlotRebuild)()
//	    // ... operation body
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

// enabled controls whether metrics are collected.
var enabled = os.Getenv("ARBOR_METRICS") != "0"

// Enabled returns whether metrics collection is enabled.
func Enabled() bool { return enabled }

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) { enabled = e }

// TimingMetric tracks timing statistics for a named operation. All methods
// are safe for concurrent use via atomic operations.
type TimingMetric struct {
	name    string
	count   int64
	totalNs int64
	maxNs   int64
	minNs   int64 // 0 means not set
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record records a single measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled {
		return
	}
	ns := d.Nanoseconds()
	atomic.AddInt64(&m.count, 1)
	atomic.AddInt64(&m.totalNs, ns)
	for {
		old := atomic.LoadInt64(&m.maxNs)
		if ns <= old || atomic.CompareAndSwapInt64(&m.maxNs, old, ns) {
			break
		}
	}
	for {
		old := atomic.LoadInt64(&m.minNs)
		if old != 0 && ns >= old {
			break
		}
		if atomic.CompareAndSwapInt64(&m.minNs, old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of recorded measurements.
func (m *TimingMetric) Count() int64 { return atomic.LoadInt64(&m.count) }

// TotalNs returns the total recorded time in nanoseconds.
func (m *TimingMetric) TotalNs() int64 { return atomic.LoadInt64(&m.totalNs) }

// MaxNs returns the maximum recorded time in nanoseconds.
func (m *TimingMetric) MaxNs() int64 { return atomic.LoadInt64(&m.maxNs) }

// MinNs returns the minimum recorded time, or 0 when nothing was recorded.
func (m *TimingMetric) MinNs() int64 { return atomic.LoadInt64(&m.minNs) }

// AvgNs returns the average recorded time, or 0 when nothing was recorded.
func (m *TimingMetric) AvgNs() int64 {
	count := atomic.LoadInt64(&m.count)
	if count == 0 {
		return 0
	}
	return atomic.LoadInt64(&m.totalNs) / count
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	atomic.StoreInt64(&m.count, 0)
	atomic.StoreInt64(&m.totalNs, 0)
	atomic.StoreInt64(&m.maxNs, 0)
	atomic.StoreInt64(&m.minNs, 0)
}

// TimingStats holds a snapshot of one metric's statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Stats returns all timing statistics at once.
func (m *TimingMetric) Stats() TimingStats {
	count := atomic.LoadInt64(&m.count)
	totalNs := atomic.LoadInt64(&m.totalNs)
	var avgNs int64
	if count > 0 {
		avgNs = totalNs / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(totalNs) / 1e6,
		AvgMs:   float64(avgNs) / 1e6,
		MaxMs:   float64(atomic.LoadInt64(&m.maxNs)) / 1e6,
		MinMs:   float64(atomic.LoadInt64(&m.minNs)) / 1e6,
	}
}

// Timer returns a function that records the elapsed time when called. Use
// with defer for automatic timing.
func Timer(m *TimingMetric) func() {
	if !enabled || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Global timing metrics for engine operations.
var (
	TreeBuild     = newTimingMetric("tree_build")
	SlotRebuild   = newTimingMetric("slot_rebuild")
	SortItems     = newTimingMetric("sort_items")
	GroupBuild    = newTimingMetric("group_build")
	SnapshotCodec = newTimingMetric("snapshot_codec")
	PageLoad      = newTimingMetric("page_load")
)

// AllTimingMetrics returns every registered timing metric.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{
		TreeBuild,
		SlotRebuild,
		SortItems,
		GroupBuild,
		SnapshotCodec,
		PageLoad,
	}
}

// ResetAll clears every registered metric.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}
