package remote

import (
	"errors"
	"fmt"

	"github.com/jsamuelsen/fraccalc/internal/adapters/http/dto"
	"github.com/jsamuelsen/fraccalc/internal/domain"
)

// Transport errors. They describe the connection to the service, never the
// expression being evaluated.
var (
	// ErrCircuitOpen is returned without contacting the service while the
	// breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRetriesExhausted wraps the last failure once every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrUnexpectedResponse is returned for bodies the client cannot decode.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// ServiceError is an error envelope returned by the service. It unwraps to
// the matching domain sentinel, so domain.IsParse and friends work on remote
// results the same as on local ones.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	TraceID string
}

// Error returns the service's message, which is the domain error text.
func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return fmt.Sprintf("service returned HTTP %d", e.Status)
}

// Unwrap maps the error code to a domain sentinel.
func (e *ServiceError) Unwrap() error {
	switch e.Code {
	case dto.ErrorCodeParse:
		return domain.ErrParse
	case dto.ErrorCodeDivideByZero:
		return domain.ErrDivideByZero
	case dto.ErrorCodeUnknownOperator:
		return domain.ErrUnknownOperator
	case dto.ErrorCodeOverflow:
		return domain.ErrOverflow
	case dto.ErrorCodeValidation, dto.ErrorCodeBadRequest:
		return domain.ErrValidation
	default:
		return nil
	}
}

// IsTransport reports whether err is a connection-level failure rather than
// a rejected expression.
func IsTransport(err error) bool {
	return errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrRetriesExhausted) ||
		errors.Is(err, ErrUnexpectedResponse)
}
