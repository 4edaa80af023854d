// Package dto holds the request and response bodies of the HTTP API.
package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/fraccalc/internal/domain"
	"github.com/jsamuelsen/fraccalc/internal/platform/logging"
	"github.com/jsamuelsen/fraccalc/internal/platform/telemetry"
)

// ErrorResponse is the error envelope for every non-2xx response.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is machine readable, e.g. "PARSE_ERROR".
	Code    string `json:"code"`
	Message string `json:"message"`

	// Details holds field-level messages for validation errors.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes.
const (
	ErrorCodeParse           = "PARSE_ERROR"
	ErrorCodeDivideByZero    = "DIVIDE_BY_ZERO"
	ErrorCodeUnknownOperator = "UNKNOWN_OPERATOR"
	ErrorCodeOverflow        = "OVERFLOW"
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeBadRequest      = "BAD_REQUEST"
	ErrorCodeNotFound        = "NOT_FOUND"
	ErrorCodeTimeout         = "TIMEOUT"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)

// NewErrorResponse creates an error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.Error.Details = details

	return resp
}

// WithTraceID sets the trace ID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeParse, ErrorCodeDivideByZero, ErrorCodeUnknownOperator, ErrorCodeOverflow:
		return http.StatusUnprocessableEntity
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorDetailFrom maps err to an error code and client-safe message.
// Errors outside the domain taxonomy get a generic message.
func ErrorDetailFrom(err error) ErrorDetail {
	switch {
	case domain.IsParse(err):
		return ErrorDetail{Code: ErrorCodeParse, Message: err.Error()}
	case domain.IsDivideByZero(err):
		return ErrorDetail{Code: ErrorCodeDivideByZero, Message: err.Error()}
	case domain.IsUnknownOperator(err):
		return ErrorDetail{Code: ErrorCodeUnknownOperator, Message: err.Error()}
	case domain.IsOverflow(err):
		return ErrorDetail{Code: ErrorCodeOverflow, Message: err.Error()}
	case domain.IsValidation(err):
		detail := ErrorDetail{Code: ErrorCodeValidation, Message: err.Error()}

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			detail.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return detail
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorDetail{Code: ErrorCodeTimeout, Message: "request timeout exceeded"}
	default:
		return ErrorDetail{Code: ErrorCodeInternal, Message: "an internal error occurred"}
	}
}

// MapError maps err to a status code and error envelope.
func MapError(err error) (int, *ErrorResponse) {
	detail := ErrorDetailFrom(err)
	return HTTPStatusFromCode(detail.Code), &ErrorResponse{Error: detail}
}

// HandleError writes the error envelope for err. Internal errors are logged
// with their full text, which is withheld from the client.
func HandleError(c *gin.Context, err error) {
	status, resp := MapError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("internal error",
			"error", err.Error(),
			"trace_id", resp.TraceID,
		)
	}

	c.JSON(status, resp)
}

// AbortWithCode aborts the chain with a code-only error envelope.
func AbortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// GetTraceID returns the OpenTelemetry trace ID of the request, falling
// back to a "trace_id" context value and then to the X-Request-ID header.
func GetTraceID(c *gin.Context) string {
	if c.Request != nil {
		if id := telemetry.TraceID(c); id != "" {
			return id
		}
	}

	if v, ok := c.Get("trace_id"); ok {
		id, _ := v.(string)
		return id
	}

	if c.Request != nil {
		return c.GetHeader("X-Request-ID")
	}

	return ""
}
