package chain

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Circuit breaker thresholds
	failureThreshold = 3               // Number of consecutive failures before marking unhealthy
	recoveryTimeout  = 5 * time.Minute // Time before retrying an unhealthy endpoint
)

// healthState represents the state of an endpoint
type healthState struct {
	failures      int32
	lastFailureAt time.Time
}

// endpointHealth tracks health of a single JSON-RPC endpoint.
// Reads go through atomic.Value, updates hold the mutex.
type endpointHealth struct {
	mu    sync.Mutex
	state atomic.Value // stores *healthState
}

func (h *endpointHealth) load() *healthState {
	v := h.state.Load()
	if v == nil {
		return &healthState{}
	}
	return v.(*healthState)
}

func (h *endpointHealth) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Store(&healthState{})
}

func (h *endpointHealth) increment(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.load()
	h.state.Store(&healthState{
		failures:      old.failures + 1,
		lastFailureAt: now,
	})
}

func (h *endpointHealth) healthy(now time.Time) bool {
	state := h.load()
	if state.failures < failureThreshold {
		return true
	}
	if state.lastFailureAt.IsZero() {
		return false
	}
	return now.Sub(state.lastFailureAt) >= recoveryTimeout
}

// healthTracker holds per-endpoint health for one Client.
type healthTracker struct {
	endpoints []*endpointHealth
	now       func() time.Time
}

func newHealthTracker(n int) *healthTracker {
	endpoints := make([]*endpointHealth, n)
	for i := range endpoints {
		endpoints[i] = &endpointHealth{}
	}
	return &healthTracker{endpoints: endpoints, now: time.Now}
}

func (t *healthTracker) success(i int) {
	t.endpoints[i].clear()
}

func (t *healthTracker) failure(i int) {
	t.endpoints[i].increment(t.now())
}

func (t *healthTracker) healthy(i int) bool {
	return t.endpoints[i].healthy(t.now())
}

// firstHealthy returns the index of the first healthy endpoint, or 0 if none are healthy
func (t *healthTracker) firstHealthy() int {
	for i := range t.endpoints {
		if t.healthy(i) {
			return i
		}
	}
	return 0
}
