package dto

import (
	"time"

	"github.com/jsamuelsen/fraccalc/internal/domain"
)

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression" validate:"required,notempty,max=256"`
}

// BatchRequest is the body of POST /api/v1/evaluate/batch.
type BatchRequest struct {
	Expressions []string `json:"expressions" validate:"required,min=1,dive,notempty,max=256"`
}

// HistoryRequest holds the query of GET /api/v1/history.
type HistoryRequest struct {
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// DefaultHistoryLimit applies when limit is omitted.
const DefaultHistoryLimit = 20

// GetLimit returns the limit with the default applied.
func (r *HistoryRequest) GetLimit() int {
	if r.Limit <= 0 {
		return DefaultHistoryLimit
	}

	return r.Limit
}

// CalculationResponse describes one successful evaluation.
type CalculationResponse struct {
	ID          string    `json:"id"`
	Expression  string    `json:"expression"`
	Result      string    `json:"result"`
	Numerator   int64     `json:"numerator"`
	Denominator int64     `json:"denominator"`
	Decimal     string    `json:"decimal"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCalculationResponse renders calc, with the decimal form rounded to
// places.
func NewCalculationResponse(calc *domain.Calculation, places int32) *CalculationResponse {
	return &CalculationResponse{
		ID:          calc.ID,
		Expression:  calc.Input,
		Result:      calc.Formatted(),
		Numerator:   calc.Result.Numerator,
		Denominator: calc.Result.Denominator,
		Decimal:     calc.Result.Decimal(places).String(),
		CreatedAt:   calc.CreatedAt,
	}
}

// BatchItem is one line of a batch response. Exactly one of Result and
// Error is set.
type BatchItem struct {
	Expression string               `json:"expression"`
	Result     *CalculationResponse `json:"result,omitempty"`
	Error      *ErrorDetail         `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /api/v1/evaluate/batch.
type BatchResponse struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// HistoryResponse is the body returned by GET /api/v1/history.
type HistoryResponse struct {
	Items []*CalculationResponse `json:"items"`
	Count int                    `json:"count"`
}
