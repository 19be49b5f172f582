package metrics

import (
	"sync"
	"time"
)

// Registry collects in-memory run counters and timings. The process is
// short-lived, so metrics are not exported anywhere; the final snapshot is
// logged before exit and picked up by whatever runs the scheduler.
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]int64
	timings   map[string]time.Duration
	startTime time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]int64),
		timings:   make(map[string]time.Duration),
		startTime: time.Now(),
	}
}

var globalRegistry = NewRegistry()

// IncrementCounter increments a counter metric by one.
func (r *Registry) IncrementCounter(name string) {
	r.AddToCounter(name, 1)
}

// AddToCounter adds a value to a counter metric.
func (r *Registry) AddToCounter(name string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += value
}

// RecordDuration stores the elapsed time of a named phase. Phases run once
// per process, so the last written value wins.
func (r *Registry) RecordDuration(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timings[name] = d
}

// Counter returns the current value of a counter.
func (r *Registry) Counter(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Snapshot returns all collected metrics as flat logging fields.
func (r *Registry) Snapshot() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]interface{}, len(r.counters)+len(r.timings)+1)
	for name, value := range r.counters {
		out[name] = value
	}
	for name, d := range r.timings {
		out[name+"_ms"] = d.Milliseconds()
	}
	out["uptime_ms"] = time.Since(r.startTime).Milliseconds()
	return out
}

// Convenience functions for the global registry.

func IncrementCounter(name string) {
	globalRegistry.IncrementCounter(name)
}

func AddToCounter(name string, value int64) {
	globalRegistry.AddToCounter(name, value)
}

func RecordDuration(name string, d time.Duration) {
	globalRegistry.RecordDuration(name, d)
}

func Snapshot() map[string]interface{} {
	return globalRegistry.Snapshot()
}

// Counter names used across the run.
const (
	CounterRunsStarted     = "runs_started"
	CounterPostsForwarded  = "posts_forwarded"
	CounterPublishFailures = "publish_failures"
	CounterFloodWaits      = "flood_waits"
	CounterSkippedActive   = "skipped_destination_active"
	CounterNoCandidate     = "no_eligible_candidate"
)
