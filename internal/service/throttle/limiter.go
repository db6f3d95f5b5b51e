// Package throttle implements per-identity sliding-window admission control.
package throttle

import (
	"sync"
	"time"
)

const (
	DefaultWindow = 60 * time.Second
	DefaultLimit  = 10
)

type Config struct {
	Window time.Duration
	Limit  int
}

func NewDefaultConfig() Config {
	return Config{Window: DefaultWindow, Limit: DefaultLimit}
}

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is how long until the oldest in-window request expires.
	// Zero when Allowed.
	RetryAfter time.Duration
}

type record struct {
	mu         sync.Mutex
	timestamps []time.Time
	evicted    bool
}

// prune drops timestamps that fell out of the window ending at now.
func (r *record) prune(now time.Time, window time.Duration) {
	keep := 0
	for _, ts := range r.timestamps {
		if now.Sub(ts) < window {
			r.timestamps[keep] = ts
			keep++
		}
	}
	clear(r.timestamps[keep:])
	r.timestamps = r.timestamps[:keep]
}

// Limiter tracks admitted requests per identity. Each identity has its own
// record and lock, so checks for different identities never contend beyond
// the map lookup. Lock order is Limiter.mu before record.mu.
type Limiter struct {
	cfg Config

	mu      sync.RWMutex
	records map[int64]*record
}

func NewLimiter(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	return &Limiter{
		cfg:     cfg,
		records: make(map[int64]*record),
	}
}

func (l *Limiter) record(identity int64) *record {
	l.mu.RLock()
	r, ok := l.records[identity]
	l.mu.RUnlock()
	if ok {
		return r
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok = l.records[identity]; !ok {
		r = &record{}
		l.records[identity] = r
	}
	return r
}

// Admit records a request at now if the identity still has budget in the window.
// A rejected request is not recorded.
func (l *Limiter) Admit(identity int64, now time.Time) Decision {
	for {
		r := l.record(identity)
		r.mu.Lock()

		// Sweep may have evicted this record between lookup and lock
		if r.evicted {
			r.mu.Unlock()
			continue
		}

		r.prune(now, l.cfg.Window)
		if len(r.timestamps) >= l.cfg.Limit {
			retry := r.timestamps[0].Add(l.cfg.Window).Sub(now)
			r.mu.Unlock()
			return Decision{Allowed: false, RetryAfter: retry}
		}

		r.timestamps = append(r.timestamps, now)
		r.mu.Unlock()
		return Decision{Allowed: true}
	}
}

// Sweep evicts identities whose newest admitted request is older than idle.
// It returns the number of evicted identities.
func (l *Limiter) Sweep(now time.Time, idle time.Duration) int {
	if idle < l.cfg.Window {
		idle = l.cfg.Window
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for id, r := range l.records {
		r.mu.Lock()
		n := len(r.timestamps)
		stale := n == 0 || now.Sub(r.timestamps[n-1]) >= idle
		if stale {
			r.evicted = true
			delete(l.records, id)
			evicted++
		}
		r.mu.Unlock()
	}
	return evicted
}

// Len reports the number of tracked identities.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
