package domain

import "time"

// Calculation is one evaluated expression and its reduced result.
// It has no knowledge of how it was submitted or stored.
type Calculation struct {
	// ID uniquely identifies this calculation in the history.
	ID string

	// Input is the line as the user typed it.
	Input string

	// Expression is the parsed form of Input.
	Expression Expression

	// Result is reduced to lowest terms.
	Result Fraction

	// CreatedAt is when the calculation completed.
	CreatedAt time.Time
}

// Formatted returns the canonical text of the result.
func (c *Calculation) Formatted() string {
	return c.Result.String()
}
