// Package domain contains the fraction value model and the expression evaluator.
// Domain errors describe calculation failures, NOT transport errors.
// Adapters map them to HTTP responses, REPL messages, etc.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a token or line is not in an accepted shape.
	ErrParse = errors.New("parse error")

	// ErrDivideByZero indicates a division whose divisor has a zero numerator.
	ErrDivideByZero = errors.New("divide by zero")

	// ErrUnknownOperator indicates an operator symbol outside of + - * /.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrOverflow indicates a result that does not fit the int64 range.
	ErrOverflow = errors.New("result out of range")

	// ErrValidation indicates a request-level rule failed (empty input, batch too large).
	ErrValidation = errors.New("validation failed")
)

// ParseError provides context for malformed input.
type ParseError struct {
	// Token is the offending input text.
	Token string

	// Part names what was being parsed: "whole", "numerator", "denominator",
	// "integer" or "expression".
	Part string

	// Err is the underlying cause, usually a *strconv.NumError.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s in %q: %v", e.Part, e.Token, e.Err)
	}

	return fmt.Sprintf("invalid %s in %q", e.Part, e.Token)
}

// Unwrap returns both the sentinel and the cause so errors.Is works for either.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}

	return []error{ErrParse, e.Err}
}

// NewParseError creates a parse error with context.
func NewParseError(token, part string, cause error) error {
	return &ParseError{Token: token, Part: part, Err: cause}
}

// DivisionError is returned when dividing by a fraction whose numerator is zero.
type DivisionError struct {
	// Dividend is the left operand of the rejected division.
	Dividend Fraction
}

// Error implements the error interface.
func (e *DivisionError) Error() string {
	return ErrDivideByZero.Error()
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *DivisionError) Unwrap() error {
	return ErrDivideByZero
}

// UnknownOperatorError carries the operator symbol that could not be dispatched.
type UnknownOperatorError struct {
	Symbol string
}

// Error implements the error interface.
func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Symbol)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnknownOperatorError) Unwrap() error {
	return ErrUnknownOperator
}

// NewUnknownOperatorError creates an unknown operator error for symbol.
func NewUnknownOperatorError(symbol string) error {
	return &UnknownOperatorError{Symbol: symbol}
}

// OverflowError is returned when an operation's denominator wraps to zero.
type OverflowError struct {
	Operator Operator
	Left     Fraction
	Right    Fraction
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("result of %s %s %s is out of range", e.Left, e.Operator, e.Right)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// IsParse checks if an error is a parse error.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsDivideByZero checks if an error is a division by zero.
func IsDivideByZero(err error) bool {
	return errors.Is(err, ErrDivideByZero)
}

// IsUnknownOperator checks if an error is an unknown operator error.
func IsUnknownOperator(err error) bool {
	return errors.Is(err, ErrUnknownOperator)
}

// IsOverflow checks if an error is an out-of-range result.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsCalculation reports whether err is a calculation failure caused by the
// user's input. These are never internal errors.
func IsCalculation(err error) bool {
	return IsParse(err) || IsDivideByZero(err) || IsUnknownOperator(err) || IsOverflow(err)
}
