// Package ports defines the interfaces the application layer depends on.
// Adapters implement them; the app never imports an adapter directly.
//
//   - Context first on anything that may block
//   - Domain types in and out, never transport DTOs
//   - Errors are domain errors (ErrParse, ErrDivideByZero, ...)
package ports

import (
	"context"

	"github.com/jsamuelsen/fraccalc/internal/domain"
)

// Evaluator turns one input line into a formatted result.
// The REPL and the feature suite drive the calculator through this port.
type Evaluator interface {
	// EvaluateLine returns the canonical result text, or a domain error
	// describing why the line could not be evaluated.
	EvaluateLine(ctx context.Context, line string) (string, error)
}

// HistoryStore keeps completed calculations.
// Implementations may be bounded and drop the oldest entries.
type HistoryStore interface {
	// Record stores a completed calculation.
	Record(ctx context.Context, calc *domain.Calculation) error

	// Recent returns up to limit calculations, newest first.
	// A limit <= 0 returns everything that is retained.
	Recent(ctx context.Context, limit int) ([]*domain.Calculation, error)

	// Len reports how many calculations are retained.
	Len() int
}
