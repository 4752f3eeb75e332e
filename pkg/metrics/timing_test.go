package metrics

import (
	"testing"
	"time"
)

func TestTimerRecords(t *testing.T) {
	SetEnabled(true)
	defer ResetAll()

	m := newTimingMetric("test_op")
	done := Timer(m)
	time.Sleep(time.Millisecond)
	done()

	if m.Count() != 1 {
		t.Fatalf("count = %d, want 1", m.Count())
	}
	if m.TotalNs() <= 0 {
		t.Error("total not recorded")
	}
	if m.MinNs() == 0 || m.MaxNs() < m.MinNs() {
		t.Errorf("min/max inconsistent: min=%d max=%d", m.MinNs(), m.MaxNs())
	}
}

func TestRecordAggregates(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("agg")
	m.Record(10 * time.Millisecond)
	m.Record(30 * time.Millisecond)

	if m.Count() != 2 {
		t.Fatalf("count = %d", m.Count())
	}
	if got := m.AvgNs(); got != (20 * time.Millisecond).Nanoseconds() {
		t.Errorf("avg = %d", got)
	}
	if m.MaxNs() != (30 * time.Millisecond).Nanoseconds() {
		t.Errorf("max = %d", m.MaxNs())
	}
	if m.MinNs() != (10 * time.Millisecond).Nanoseconds() {
		t.Errorf("min = %d", m.MinNs())
	}

	stats := m.Stats()
	if stats.Name != "agg" || stats.Count != 2 || stats.AvgMs != 20 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDisabledIsNoOp(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Second)
	if m.Count() != 0 {
		t.Errorf("disabled metric recorded %d samples", m.Count())
	}
}

func TestResetAll(t *testing.T) {
	SetEnabled(true)
	TreeBuild.Record(time.Millisecond)
	ResetAll()
	for _, m := range AllTimingMetrics() {
		if m.Count() != 0 {
			t.Errorf("%s not reset", m.Name())
		}
	}
}
