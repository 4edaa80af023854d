// Package history provides an in-memory, bounded calculation history.
package history

import (
	"context"
	"errors"
	"sync"

	"github.com/jsamuelsen/fraccalc/internal/domain"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("history store closed")

// Memory is a fixed-size ring of calculations. When full, recording drops
// the oldest entry. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries []*domain.Calculation
	next    int
	size    int
	closed  bool
}

// New creates a store that retains at most capacity calculations.
func New(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Memory{entries: make([]*domain.Calculation, capacity)}
}

// Record stores calc, evicting the oldest entry when the ring is full.
func (m *Memory) Record(ctx context.Context, calc *domain.Calculation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if calc == nil {
		return domain.NewValidationError("calculation", "cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.entries[m.next] = calc
	m.next = (m.next + 1) % len(m.entries)

	if m.size < len(m.entries) {
		m.size++
	}

	return nil
}

// Recent returns up to limit calculations, newest first.
func (m *Memory) Recent(ctx context.Context, limit int) ([]*domain.Calculation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	if limit <= 0 || limit > m.size {
		limit = m.size
	}

	out := make([]*domain.Calculation, 0, limit)
	capacity := len(m.entries)

	for i := 1; i <= limit; i++ {
		out = append(out, m.entries[(m.next-i+capacity)%capacity])
	}

	return out, nil
}

// Len reports how many calculations are retained.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.size
}

// Capacity reports the maximum number of retained calculations.
func (m *Memory) Capacity() int {
	return len(m.entries)
}

// Close releases the entries. Later calls fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = make([]*domain.Calculation, len(m.entries))
	m.size = 0
	m.next = 0

	return nil
}

// Name implements ports.HealthChecker.
func (m *Memory) Name() string {
	return "history"
}

// Check implements ports.HealthChecker. A closed store is unhealthy.
func (m *Memory) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	return nil
}
