package remote

import (
	"sync"
	"time"
)

// State is the state of a Breaker.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen rejects requests until the open timeout passes.
	StateOpen

	// StateHalfOpen lets a limited number of probes through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the
	// circuit.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// HalfOpenLimit is both the number of concurrent probes allowed and the
	// number of consecutive successes that closes the circuit.
	HalfOpenLimit int
}

// Breaker is a consecutive-failure circuit breaker.
//
//   - Closed → Open after MaxFailures consecutive failures
//   - Open → HalfOpen once Timeout has passed
//   - HalfOpen → Closed after HalfOpenLimit consecutive successes
//   - HalfOpen → Open on any failure
type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 1
	}

	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = 1
	}

	return &Breaker{cfg: cfg, now: time.Now}
}

// OnStateChange sets a callback run after every transition, outside the
// breaker's lock.
func (b *Breaker) OnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.onStateChange = fn
}

// Allow reports whether a request may proceed. A true result must be
// followed by exactly one RecordSuccess or RecordFailure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()

	allowed := false
	from := b.state

	switch b.state {
	case StateClosed:
		allowed = true

	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.cfg.Timeout {
			b.setState(StateHalfOpen)
			b.probes = 1
			allowed = true
		}

	case StateHalfOpen:
		if b.probes < b.cfg.HalfOpenLimit {
			b.probes++
			allowed = true
		}
	}

	b.unlockAndNotify(from)

	return allowed
}

// RecordSuccess records a request that reached a healthy service.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	from := b.state

	switch b.state {
	case StateClosed:
		b.failures = 0

	case StateHalfOpen:
		b.probes--
		b.successes++

		if b.successes >= b.cfg.HalfOpenLimit {
			b.setState(StateClosed)
		}
	}

	b.unlockAndNotify(from)
}

// RecordFailure records a request that failed at the transport level or
// with a server error.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	from := b.state

	switch b.state {
	case StateClosed:
		b.failures++

		if b.failures >= b.cfg.MaxFailures {
			b.setState(StateOpen)
		}

	case StateHalfOpen:
		b.probes--
		b.setState(StateOpen)
	}

	b.unlockAndNotify(from)
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// setState must be called with mu held.
func (b *Breaker) setState(to State) {
	b.state = to
	b.failures = 0
	b.successes = 0

	if to == StateOpen {
		b.openedAt = b.now()
		b.probes = 0
	}
}

func (b *Breaker) unlockAndNotify(from State) {
	to := b.state
	fn := b.onStateChange
	b.mu.Unlock()

	if fn != nil && from != to {
		fn(from, to)
	}
}
