package realmsched

import "sync/atomic"

// SchedulerMetrics is a point-in-time snapshot of scheduler activity,
// modeled on the teacher worker pool's Metrics struct but tracking
// work-stealing-specific counters instead of job latencies -- this
// scheduler makes no promise about per-task duration, only about
// completion propagation.
type SchedulerMetrics struct {
	TasksCreated        int64
	TasksExecuted       int64
	TasksStolen         int64
	StealAttemptsFailed int64
	ArenaResets         int64
}

// metricsCounters is the live, atomically-updated counter set a
// Scheduler mutates from worker goroutines; SchedulerMetrics is the
// read-only snapshot handed to callers.
type metricsCounters struct {
	tasksCreated        atomic.Int64
	tasksExecuted       atomic.Int64
	tasksStolen         atomic.Int64
	stealAttemptsFailed atomic.Int64
	arenaResets         atomic.Int64
}

func (m *metricsCounters) snapshot() SchedulerMetrics {
	return SchedulerMetrics{
		TasksCreated:        m.tasksCreated.Load(),
		TasksExecuted:       m.tasksExecuted.Load(),
		TasksStolen:         m.tasksStolen.Load(),
		StealAttemptsFailed: m.stealAttemptsFailed.Load(),
		ArenaResets:         m.arenaResets.Load(),
	}
}
