package dispatch

import "sync/atomic"

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Scheduled int64
	Completed int64
	Failed    int64
	Panicked  int64
}

// Metrics counts task outcomes. Completed includes failed and panicked tasks.
type Metrics struct {
	scheduled atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	panicked  atomic.Int64
}

func (m *Metrics) recordScheduled() { m.scheduled.Add(1) }
func (m *Metrics) recordCompleted() { m.completed.Add(1) }
func (m *Metrics) recordFailed()    { m.failed.Add(1) }
func (m *Metrics) recordPanicked()  { m.panicked.Add(1) }

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Scheduled: m.scheduled.Load(),
		Completed: m.completed.Load(),
		Failed:    m.failed.Load(),
		Panicked:  m.panicked.Load(),
	}
}
