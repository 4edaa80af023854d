package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/fraccalc/internal/adapters/http/dto"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/handlers"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/middleware"
	"github.com/jsamuelsen/fraccalc/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests when RouterConfig.Timeout is unset.
const DefaultRequestTimeout = 5 * time.Second

// RouterConfig holds what SetupRouter wires together. Nil handlers are
// skipped.
type RouterConfig struct {
	Logger            *slog.Logger
	ServiceName       string
	HealthHandler     *handlers.HealthHandler
	CalculatorHandler *handlers.CalculatorHandler

	// Timeout is the API request deadline; negative disables it.
	Timeout time.Duration

	// MaxRequestSize caps API request bodies; zero disables it.
	MaxRequestSize int64

	// Tracing adds the OpenTelemetry middleware.
	Tracing bool
}

// SetupRouter installs middleware and routes on engine. Middleware order:
//  1. ContextLogger, so everything below logs through cfg.Logger
//  2. Recovery
//  3. RequestID and CorrelationID
//  4. OpenTelemetry tracing and metrics, when enabled
//  5. Logging (probes under /-/ are skipped)
//
// The /api/v1 group adds Timeout and MaxBodySize.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.ContextLogger(cfg.Logger),
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)

	if cfg.Tracing {
		engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	}

	engine.Use(middleware.Logging())

	engine.NoRoute(func(c *gin.Context) {
		dto.AbortWithCode(c, dto.ErrorCodeNotFound, "route not found")
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultRequestTimeout
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.Timeout(timeout), middleware.MaxBodySize(cfg.MaxRequestSize))

	if cfg.CalculatorHandler != nil {
		cfg.CalculatorHandler.RegisterRoutes(apiV1)
	}
}
