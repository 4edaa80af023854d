package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/fraccalc/internal/adapters/history"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/dto"
	"github.com/jsamuelsen/fraccalc/internal/app"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCalculatorRouter(t *testing.T) (*gin.Engine, *history.Memory) {
	t.Helper()

	var seq atomic.Int64

	store := history.New(10)
	calc := app.NewCalculator(app.CalculatorConfig{
		History:    store,
		BatchLimit: 5,
		Clock:      func() time.Time { return fixedTime },
		IDGenerator: func() string {
			return fmt.Sprintf("calc-%d", seq.Add(1))
		},
	})

	router := gin.New()
	NewCalculatorHandler(calc, 4).RegisterRoutes(router.Group("/api/v1"))

	return router, store
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, ok := body.(string)
	if !ok {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		raw = string(data)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	return w
}

func TestCalculatorHandler_Evaluate(t *testing.T) {
	router, store := newCalculatorRouter(t)

	w := postJSON(t, router, "/api/v1/evaluate", dto.EvaluateRequest{Expression: "1/2 * 3_3/4"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.CalculationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, dto.CalculationResponse{
		ID:          "calc-1",
		Expression:  "1/2 * 3_3/4",
		Result:      "1_7/8",
		Numerator:   15,
		Denominator: 8,
		Decimal:     "1.875",
		CreatedAt:   fixedTime,
	}, resp)
	assert.Equal(t, 1, store.Len())
}

func TestCalculatorHandler_EvaluateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"parse error", dto.EvaluateRequest{Expression: "1/x + 1"}, http.StatusUnprocessableEntity, dto.ErrorCodeParse},
		{"divide by zero", dto.EvaluateRequest{Expression: "1/2 / 0"}, http.StatusUnprocessableEntity, dto.ErrorCodeDivideByZero},
		{"unknown operator", dto.EvaluateRequest{Expression: "1 % 2"}, http.StatusUnprocessableEntity, dto.ErrorCodeUnknownOperator},
		{"wrong token count", dto.EvaluateRequest{Expression: "1 +"}, http.StatusUnprocessableEntity, dto.ErrorCodeParse},
		{"blank", dto.EvaluateRequest{Expression: "  "}, http.StatusBadRequest, dto.ErrorCodeValidation},
		{"malformed", `{"expression":`, http.StatusBadRequest, dto.ErrorCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := newCalculatorRouter(t)

			w := postJSON(t, router, "/api/v1/evaluate", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Zero(t, store.Len())
		})
	}
}

func TestCalculatorHandler_EvaluateBatch(t *testing.T) {
	router, store := newCalculatorRouter(t)

	w := postJSON(t, router, "/api/v1/evaluate/batch", dto.BatchRequest{
		Expressions: []string{"1/2 + 1/4", "1 / 0", "2 * 5", "1/2  +  1/4"},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.BatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 4)
	assert.Equal(t, 3, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)

	assert.Equal(t, "3/4", resp.Results[0].Result.Result)
	assert.Equal(t, "0.75", resp.Results[0].Result.Decimal)
	assert.Nil(t, resp.Results[0].Error)

	assert.Nil(t, resp.Results[1].Result)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, dto.ErrorCodeDivideByZero, resp.Results[1].Error.Code)

	assert.Equal(t, "10", resp.Results[2].Result.Result)
	assert.Equal(t, "1/2  +  1/4", resp.Results[3].Expression)
	assert.Equal(t, resp.Results[0].Result.ID, resp.Results[3].Result.ID)

	assert.Equal(t, 2, store.Len())
}

func TestCalculatorHandler_EvaluateBatchRejected(t *testing.T) {
	router, _ := newCalculatorRouter(t)

	w := postJSON(t, router, "/api/v1/evaluate/batch", dto.BatchRequest{
		Expressions: []string{"1 + 1", "1 + 2", "1 + 3", "1 + 4", "1 + 5", "1 + 6"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrorCodeValidation)

	w = postJSON(t, router, "/api/v1/evaluate/batch", `{"expressions":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculatorHandler_History(t *testing.T) {
	router, _ := newCalculatorRouter(t)

	for _, expr := range []string{"1 + 1", "1 + 2", "1 + 3"} {
		require.Equal(t, http.StatusOK, postJSON(t, router, "/api/v1/evaluate", dto.EvaluateRequest{Expression: expr}).Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=2", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "4", resp.Items[0].Result)
	assert.Equal(t, "3", resp.Items[1].Result)
}

func TestCalculatorHandler_HistoryBadLimit(t *testing.T) {
	router, _ := newCalculatorRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=500", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"limit"`)
}

func TestCalculatorHandler_HistoryEmpty(t *testing.T) {
	router, _ := newCalculatorRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"count":0}`, w.Body.String())
}
