package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/fraccalc/internal/adapters/http/dto"
	"github.com/jsamuelsen/fraccalc/internal/app"
)

// CalculatorHandler serves the evaluation API.
type CalculatorHandler struct {
	calc          *app.Calculator
	decimalPlaces int32
}

// NewCalculatorHandler creates a handler rendering decimal results rounded
// to decimalPlaces.
func NewCalculatorHandler(calc *app.Calculator, decimalPlaces int32) *CalculatorHandler {
	return &CalculatorHandler{
		calc:          calc,
		decimalPlaces: decimalPlaces,
	}
}

// Evaluate handles POST /api/v1/evaluate.
//
// @Summary Evaluate one expression
// @Accept json
// @Produce json
// @Param body body dto.EvaluateRequest true "Expression"
// @Success 200 {object} dto.CalculationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/evaluate [post]
func (h *CalculatorHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	calc, err := h.calc.Evaluate(c.Request.Context(), req.Expression)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCalculationResponse(calc, h.decimalPlaces))
}

// EvaluateBatch handles POST /api/v1/evaluate/batch. Failing lines are
// reported per item; the response is 200 unless the batch itself is
// rejected.
//
// @Summary Evaluate many expressions
// @Accept json
// @Produce json
// @Param body body dto.BatchRequest true "Expressions"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/evaluate/batch [post]
func (h *CalculatorHandler) EvaluateBatch(c *gin.Context) {
	var req dto.BatchRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	results, err := h.calc.EvaluateBatch(c.Request.Context(), req.Expressions)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.BatchResponse{Results: make([]dto.BatchItem, len(results))}

	for i, r := range results {
		item := dto.BatchItem{Expression: r.Input}

		if r.Err != nil {
			detail := dto.ErrorDetailFrom(r.Err)
			item.Error = &detail
			resp.Failed++
		} else {
			item.Result = dto.NewCalculationResponse(r.Calculation, h.decimalPlaces)
			resp.Succeeded++
		}

		resp.Results[i] = item
	}

	c.JSON(http.StatusOK, resp)
}

// History handles GET /api/v1/history?limit=N, newest first.
//
// @Summary Recent calculations
// @Produce json
// @Param limit query int false "1-100, default 20"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/history [get]
func (h *CalculatorHandler) History(c *gin.Context) {
	var req dto.HistoryRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.RespondBindError(c, err)
		return
	}

	calcs, err := h.calc.History(c.Request.Context(), req.GetLimit())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	items := make([]*dto.CalculationResponse, len(calcs))
	for i, calc := range calcs {
		items[i] = dto.NewCalculationResponse(calc, h.decimalPlaces)
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{Items: items, Count: len(items)})
}

// RegisterRoutes registers the calculator routes on rg.
func (h *CalculatorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/evaluate", h.Evaluate)
	rg.POST("/evaluate/batch", h.EvaluateBatch)
	rg.GET("/history", h.History)
}
