package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Local keeps one token bucket per key in process memory. Keys unused for
// idleTTL are dropped on the next sweep.
type Local struct {
	mu      sync.Mutex
	limits  map[string]*localEntry
	every   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

func NewLocal(rps float64, burst int) *Local {
	if burst < 1 {
		burst = 1
	}
	return &Local{
		limits:  make(map[string]*localEntry),
		every:   rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
}

func (l *Local) Backend() string { return BackendLocal }

func (l *Local) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	l.mu.Lock()
	e, ok := l.limits[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limits[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()
	return e.limiter.AllowN(now, 1), nil
}

// Sweep drops idle keys and reports how many were removed.
func (l *Local) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, e := range l.limits {
		if e.lastSeen.Before(cutoff) {
			delete(l.limits, k)
			n++
		}
	}
	return n
}

// Run sweeps idle keys every interval until ctx is cancelled.
func (l *Local) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limits)
}
