package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestBreaker(cfg BreakerConfig) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker(cfg)
	b.now = clock.now

	return b, clock
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(BreakerConfig{MaxFailures: 3, Timeout: time.Second, HalfOpenLimit: 1})

	for range 2 {
		assert.True(t, b.Allow())
		b.RecordFailure()
	}

	assert.Equal(t, StateClosed, b.State())

	// A success resets the count.
	assert.True(t, b.Allow())
	b.RecordSuccess()

	for range 3 {
		assert.True(t, b.Allow())
		b.RecordFailure()
	}

	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{MaxFailures: 1, Timeout: time.Second, HalfOpenLimit: 2})

	var transitions []string
	b.OnStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	assert.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow())

	clock.advance(time.Second)

	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow(), "only HalfOpenLimit probes in flight")

	b.RecordSuccess()
	assert.Equal(t, StateHalfOpen, b.State())
	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(BreakerConfig{MaxFailures: 1, Timeout: time.Second, HalfOpenLimit: 1})

	assert.True(t, b.Allow())
	b.RecordFailure()

	clock.advance(2 * time.Second)
	assert.True(t, b.Allow())
	b.RecordFailure()

	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())

	clock.advance(time.Second)
	assert.True(t, b.Allow())
}

func TestNewBreaker_Defaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{})

	assert.Equal(t, 1, b.cfg.MaxFailures)
	assert.Equal(t, 1, b.cfg.HalfOpenLimit)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
