//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/fraccalc/internal/adapters/http/dto"
)

func postEvaluate(t *testing.T, client *http.Client, url, expression string) (*dto.CalculationResponse, int) {
	t.Helper()

	body, err := json.Marshal(dto.EvaluateRequest{Expression: expression})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url+"/api/v1/evaluate", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode
	}

	var out dto.CalculationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return &out, resp.StatusCode
}

// TestConcurrent_Evaluate verifies concurrent requests get independent,
// correct answers and are all recorded.
func TestConcurrent_Evaluate(t *testing.T) {
	calc, handler := newService()

	server := httptest.NewServer(handler)
	defer server.Close()

	const numGoroutines = 40

	var wg sync.WaitGroup

	ids := make([]string, numGoroutines)

	for i := range numGoroutines {
		wg.Go(func() {
			// i/1 + 1/2 is always i_1/2.
			resp, status := postEvaluate(t, server.Client(), server.URL, fmt.Sprintf("%d + 1/2", i+1))
			if !assert.Equal(t, http.StatusOK, status) {
				return
			}

			assert.Equal(t, fmt.Sprintf("%d_1/2", i+1), resp.Result)
			ids[i] = resp.ID
		})
	}

	wg.Wait()

	seen := make(map[string]bool, numGoroutines)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate calculation ID %q", id)
		seen[id] = true
	}

	recent, err := calc.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, numGoroutines)
}

// TestConcurrent_MixedOutcomes verifies failing requests do not affect
// concurrent successful ones.
func TestConcurrent_MixedOutcomes(t *testing.T) {
	_, handler := newService()

	server := httptest.NewServer(handler)
	defer server.Close()

	inputs := map[string]int{
		"1/2 + 1/4": http.StatusOK,
		"1/2 / 0":   http.StatusUnprocessableEntity,
		"1 ^ 2":     http.StatusUnprocessableEntity,
		"2 * 5":     http.StatusOK,
	}

	var wg sync.WaitGroup

	for range 10 {
		for expr, want := range inputs {
			wg.Go(func() {
				_, status := postEvaluate(t, server.Client(), server.URL, expr)
				assert.Equal(t, want, status, expr)
			})
		}
	}

	wg.Wait()
}

// TestConcurrent_Batch verifies a batch fans out and keeps order.
func TestConcurrent_Batch(t *testing.T) {
	_, handler := newService()

	server := httptest.NewServer(handler)
	defer server.Close()

	exprs := []string{"1 + 1", "1/3 + 1/3", "1 / 0", "1 + 1", "3_1/2 - 1/2"}

	body, err := json.Marshal(dto.BatchRequest{Expressions: exprs})
	require.NoError(t, err)

	resp, err := server.Client().Post(server.URL+"/api/v1/evaluate/batch", "application/json", bytes.NewReader(body))
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.BatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	require.Len(t, out.Results, len(exprs))

	for i, item := range out.Results {
		assert.Equal(t, exprs[i], item.Expression)
	}

	assert.Equal(t, "2/3", out.Results[1].Result.Result)
	assert.Equal(t, dto.ErrorCodeDivideByZero, out.Results[2].Error.Code)
	assert.Equal(t, "3", out.Results[4].Result.Result)
	assert.Equal(t, 4, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
}
