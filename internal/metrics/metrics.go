package metrics

import (
	"sync"
	"time"
)

type actionStats struct {
	accepted    int
	rejected    int
	lastLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about the simulation
// service. It is intentionally simple so it can be swapped for a real
// backend later; when otel instruments are attached it mirrors every record
// into them.
type Recorder struct {
	mu        sync.Mutex
	actions   map[string]*actionStats
	ticks     int
	conflicts int
	retries   int
	streams   int
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		actions: make(map[string]*actionStats),
		otel:    otel,
	}
}

// RecordAction tracks one handled action call and its outcome.
func (r *Recorder) RecordAction(action string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(action)
	r.mu.Lock()
	if err != nil {
		stats.rejected++
	} else {
		stats.accepted++
	}
	stats.lastLatency = duration
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordAction(action, duration, err)
	}
}

// RecordTicks tracks how many physics ticks a catch-up pass executed.
func (r *Recorder) RecordTicks(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.mu.Lock()
	r.ticks += n
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordTicks(n)
	}
}

// RecordConflictRetry tracks an optimistic-concurrency loss and whether the
// driver will retry.
func (r *Recorder) RecordConflictRetry(willRetry bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.conflicts++
	if willRetry {
		r.retries++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordConflict(willRetry)
	}
}

// RecordStreamSession tracks a completed websocket snapshot session.
func (r *Recorder) RecordStreamSession(duration time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.streams++
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordStreamSession(duration)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks simulation sweep cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// Snapshot is a copy of the counters for one action.
type Snapshot struct {
	Accepted    int
	Rejected    int
	LastLatency time.Duration
}

// ActionSnapshot returns a copy of the current stats for the action.
func (r *Recorder) ActionSnapshot(action string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.actions[action]; ok && stats != nil {
		return Snapshot{Accepted: stats.accepted, Rejected: stats.rejected, LastLatency: stats.lastLatency}
	}
	return Snapshot{}
}

// TicksExecuted returns the total physics ticks recorded.
func (r *Recorder) TicksExecuted() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Conflicts returns the total optimistic-concurrency losses recorded.
func (r *Recorder) Conflicts() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conflicts
}

// StreamSessions returns the total completed stream sessions.
func (r *Recorder) StreamSessions() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams
}

func (r *Recorder) ensureStats(action string) *actionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.actions[action]
	if !ok {
		stats = &actionStats{}
		r.actions[action] = stats
	}
	return stats
}
