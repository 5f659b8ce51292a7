package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults for the webhook gateway throttle.
const (
	DefaultWindow = 60 * time.Second
	DefaultLimit  = 10
)

// Limiter decides whether a request from a client identifier is
// admitted right now. Implementations must be safe for concurrent use.
type Limiter interface {
	Admit(ctx context.Context, clientID string) bool
}

type clientRecord struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
}

// MemoryLimiter is a process-local fixed-window limiter. Each client
// identifier owns one record guarded by its own mutex, so concurrent
// requests for the same client serialize while unrelated clients do
// not block each other. State does not survive restarts and is not
// shared across replicas; use RedisLimiter for multi-instance
// deployments.
type MemoryLimiter struct {
	window  time.Duration
	limit   int
	idleTTL time.Duration

	mu        sync.RWMutex
	clients   map[string]*clientRecord
	nextSweep time.Time

	now func() time.Time
}

// NewMemoryLimiter creates an in-memory fixed-window limiter. Records
// idle for several windows are evicted inline on the insert path, so
// the table does not grow without bound under distinct-client churn.
func NewMemoryLimiter(window time.Duration, limit int) *MemoryLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryLimiter{
		window:  window,
		limit:   limit,
		idleTTL: 3 * window,
		clients: make(map[string]*clientRecord),
		now:     time.Now,
	}
}

// Admit applies fixed-window counting: the first request in a window
// resets the counter, every further request increments it, and the
// increment is retained even when the request is denied.
func (l *MemoryLimiter) Admit(_ context.Context, clientID string) bool {
	now := l.now()
	rec := l.record(clientID, now)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.windowStart.IsZero() || now.Sub(rec.windowStart) > l.window {
		rec.count = 1
		rec.windowStart = now
		return true
	}

	rec.count++
	return rec.count <= l.limit
}

func (l *MemoryLimiter) record(clientID string, now time.Time) *clientRecord {
	l.mu.RLock()
	rec, ok := l.clients[clientID]
	l.mu.RUnlock()
	if ok {
		return rec
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.clients[clientID]; ok {
		return rec
	}
	if now.After(l.nextSweep) {
		l.sweepLocked(now)
		l.nextSweep = now.Add(l.idleTTL)
	}
	rec = &clientRecord{}
	l.clients[clientID] = rec
	return rec
}

// sweepLocked drops records whose window ended more than idleTTL ago.
// Records whose mutex is currently held are in active use and skipped.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	for id, rec := range l.clients {
		if !rec.mu.TryLock() {
			continue
		}
		idle := !rec.windowStart.IsZero() && now.Sub(rec.windowStart) > l.idleTTL
		rec.mu.Unlock()
		if idle {
			delete(l.clients, id)
		}
	}
}

// size reports the current number of tracked clients (test hook).
func (l *MemoryLimiter) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}
