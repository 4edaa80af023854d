package benchmark

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/fraccalc/internal/adapters/history"
	httpadapter "github.com/jsamuelsen/fraccalc/internal/adapters/http"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/handlers"
	"github.com/jsamuelsen/fraccalc/internal/app"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createGinContext creates a Gin context for handler testing.
func createGinContext(w http.ResponseWriter, r *http.Request) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = r

	return c
}

func newCalculator() *app.Calculator {
	return app.NewCalculator(app.CalculatorConfig{
		History: history.New(1000),
		Logger:  discardLogger(),
	})
}

// BenchmarkLivenessHandler measures the liveness probe.
func BenchmarkLivenessHandler(b *testing.B) {
	handler := handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z"), prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/-/live", http.NoBody)

	b.ReportAllocs()

	for b.Loop() {
		w := httptest.NewRecorder()
		handler.Liveness(createGinContext(w, req))
	}
}

// BenchmarkCalculator_Evaluate measures one evaluation through the executor,
// including the history write.
func BenchmarkCalculator_Evaluate(b *testing.B) {
	calc := newCalculator()
	ctx := context.Background()

	b.ReportAllocs()

	for b.Loop() {
		if _, err := calc.Evaluate(ctx, "2_3/8 + 9/8"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCalculator_EvaluateBatch measures a 50-line batch with repeats.
func BenchmarkCalculator_EvaluateBatch(b *testing.B) {
	calc := newCalculator()
	ctx := context.Background()

	lines := make([]string, 50)
	for i := range lines {
		lines[i] = []string{"1/2 * 3_3/4", "1/2 + 1/4", "2 / 5", "1 / 0", "7_7/8 - 3/16"}[i%5]
	}

	b.ReportAllocs()

	for b.Loop() {
		if _, err := calc.EvaluateBatch(ctx, lines); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEvaluateEndpoint measures POST /api/v1/evaluate through the full
// middleware chain.
func BenchmarkEvaluateEndpoint(b *testing.B) {
	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:            discardLogger(),
		CalculatorHandler: handlers.NewCalculatorHandler(newCalculator(), 6),
	})

	const body = `{"expression":"1/2 * 3_3/4"}`

	b.ReportAllocs()

	for b.Loop() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	}
}
