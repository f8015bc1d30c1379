package backend

import (
	"sync"
	"time"

	"globetrotter/internal/domain"
)

// startGuard throttles game starts and keeps at most one in flight.
type startGuard struct {
	mu          sync.Mutex
	now         func() time.Time
	minInterval time.Duration
	last        time.Time
	inFlight    bool
}

func newStartGuard(now func() time.Time, minInterval time.Duration) *startGuard {
	return &startGuard{now: now, minInterval: minInterval}
}

// acquire admits a call or rejects it. The returned release must run on every path.
func (g *startGuard) acquire() (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.minInterval {
		return nil, domain.ErrThrottled
	}
	if g.inFlight {
		return nil, domain.ErrAlreadyInProgress
	}
	g.inFlight = true
	g.last = now

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			g.inFlight = false
			g.mu.Unlock()
		})
	}, nil
}
