package notify

import (
	"sync"

	"github.com/sony/gobreaker"

	"streaky-relay/internal/resilience/circuitbreaker"
)

// maxTargets bounds the per-target breakers kept for one provider.
const maxTargets = 1024

// breakerSet holds the circuit breakers of one provider: a single shared
// breaker, or one per target for Targeted providers.
type breakerSet struct {
	kind     string
	targeted bool
	newCfg   func() circuitbreaker.Config

	shared *circuitbreaker.CircuitBreaker

	mu      sync.Mutex
	targets map[string]*circuitbreaker.CircuitBreaker
	limit   int
}

func newBreakerSet(kind string, targeted bool, newCfg func() circuitbreaker.Config) *breakerSet {
	bs := &breakerSet{kind: kind, targeted: targeted, newCfg: newCfg, limit: maxTargets}
	if !targeted {
		cfg := newCfg()
		cfg.OnStateChange = func(_ string, _, to gobreaker.State) {
			RecordCircuitBreakerState(kind, to)
		}
		bs.shared = circuitbreaker.New(cfg)
		RecordCircuitBreakerState(kind, gobreaker.StateClosed)
		return bs
	}
	bs.targets = make(map[string]*circuitbreaker.CircuitBreaker)
	openTargets.WithLabelValues(kind)
	return bs
}

// get returns the breaker for target, or nil when the call should run
// unprotected (no target could be derived, or the set is full of
// breakers that are not closed).
func (bs *breakerSet) get(target string, ok bool) *circuitbreaker.CircuitBreaker {
	if !bs.targeted {
		return bs.shared
	}
	if !ok {
		return nil
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()

	if cb, exists := bs.targets[target]; exists {
		return cb
	}
	if len(bs.targets) >= bs.limit {
		bs.evictClosedLocked()
		if len(bs.targets) >= bs.limit {
			return nil
		}
	}

	cfg := bs.newCfg()
	kind := bs.kind
	cfg.OnStateChange = func(_ string, from, to gobreaker.State) {
		RecordTargetBreakerState(kind, from, to)
	}
	cb := circuitbreaker.New(cfg)
	bs.targets[target] = cb
	return cb
}

// evictClosedLocked drops closed breakers; they carry no state worth keeping.
func (bs *breakerSet) evictClosedLocked() {
	for key, cb := range bs.targets {
		if cb.State() == gobreaker.StateClosed {
			delete(bs.targets, key)
		}
	}
}

// health summarises the set for ProviderHealth.
// A targeted provider is never reported open as a whole: an open target
// only affects callers using that destination.
func (bs *breakerSet) health() (state string, open bool, targets int) {
	if !bs.targeted {
		st := bs.shared.State()
		return st.String(), st == gobreaker.StateOpen, 0
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	for _, cb := range bs.targets {
		if cb.State() == gobreaker.StateOpen {
			targets++
		}
	}
	if targets > 0 {
		return "partial", false, targets
	}
	return gobreaker.StateClosed.String(), false, 0
}
