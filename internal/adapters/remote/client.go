// Package remote evaluates expressions against a running fraccalc service.
//
// Client implements ports.Evaluator over POST /api/v1/evaluate with retry,
// exponential backoff and a circuit breaker. Error envelopes from the
// service are translated back into errors that match the domain sentinels.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/fraccalc/internal/adapters/http/dto"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/middleware"
	"github.com/jsamuelsen/fraccalc/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/fraccalc/remote"

	serviceName = "fraccalc"

	evaluatePath = "/api/v1/evaluate"
	readyPath    = "/-/ready"

	defaultTimeout = 5 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// RetryConfig configures retries of failed attempts.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64

	// JitterFactor spreads each backoff by ±JitterFactor of its length.
	JitterFactor float64
}

// Config configures a Client.
type Config struct {
	// BaseURL of the service, e.g. "http://127.0.0.1:8080".
	BaseURL string

	// Timeout bounds each attempt.
	Timeout time.Duration

	Retry   RetryConfig
	Breaker BreakerConfig

	// HTTPClient replaces the default transport; its Timeout is overridden.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is an instrumented client for the fraccalc HTTP API.
type Client struct {
	http          *http.Client
	baseURL       string
	retry         RetryConfig
	breaker       *Breaker
	logger        *slog.Logger
	correlationID string

	tracer          trace.Tracer
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}

	if retry.Multiplier < 1 {
		retry.Multiplier = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("component", "remote.Client"),
		slog.String("downstream", serviceName),
	)

	breaker := NewBreaker(cfg.Breaker)
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of requests to the fraccalc service"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Requests to the fraccalc service"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		httpClient = &clone
	}

	httpClient.Timeout = timeout

	return &Client{
		http:            httpClient,
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		retry:           retry,
		breaker:         breaker,
		logger:          logger,
		correlationID:   uuid.NewString(),
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// Evaluate sends line to the service. Rejected expressions come back as
// *ServiceError; connection failures wrap ErrCircuitOpen,
// ErrRetriesExhausted or ErrUnexpectedResponse.
func (c *Client) Evaluate(ctx context.Context, line string) (*dto.CalculationResponse, error) {
	body, err := json.Marshal(dto.EvaluateRequest{Expression: line})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, evaluatePath, body)
	if err != nil {
		return nil, err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var out dto.CalculationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding result: %v", ErrUnexpectedResponse, err)
	}

	return &out, nil
}

// EvaluateLine implements ports.Evaluator.
func (c *Client) EvaluateLine(ctx context.Context, line string) (string, error) {
	out, err := c.Evaluate(ctx, line)
	if err != nil {
		return "", err
	}

	return out.Result, nil
}

// Name implements ports.HealthChecker.
func (c *Client) Name() string {
	return "remote"
}

// Check implements ports.HealthChecker using the service's readiness probe.
func (c *Client) Check(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, readyPath, nil)
	if err != nil {
		return err
	}

	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: readiness returned HTTP %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	return nil
}

// CircuitState returns the breaker state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

// do sends one logical request, retrying transport failures and 5xx
// responses. A non-nil response is returned for every other status.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", serviceName),
		slog.String("method", method),
		slog.String("path", path),
	)

	if !c.breaker.Allow() {
		c.recordMetrics(ctx, method, 0, time.Since(start), "circuit_open")
		logger.WarnContext(ctx, "request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", method, path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", c.baseURL+path),
			attribute.String("peer.service", serviceName),
		),
	)
	defer span.End()

	requestID := uuid.NewString()

	var (
		resp    *http.Response
		lastErr error
	)

	for attempt := range c.retry.MaxAttempts {
		if attempt > 0 {
			if err := c.wait(ctx, attempt, logger); err != nil {
				lastErr = err
				break
			}
		}

		resp, lastErr = c.attempt(ctx, method, path, body, requestID)
		if lastErr == nil && resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("server error: HTTP %d", resp.StatusCode)
			_ = resp.Body.Close()
			resp = nil
		} else if lastErr == nil || !isRetryable(ctx, lastErr) {
			break
		}

		logger.DebugContext(ctx, "attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Any("error", lastErr),
		)
	}

	duration := time.Since(start)

	if lastErr != nil {
		c.breaker.RecordFailure()
		span.SetStatus(codes.Error, lastErr.Error())
		c.recordMetrics(ctx, method, 0, duration, "error")
		logger.WarnContext(ctx, "request failed",
			slog.Duration("duration", duration),
			slog.Any("error", lastErr),
		)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}

		return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
	}

	c.breaker.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, method, resp.StatusCode, duration, fmt.Sprintf("%dxx", resp.StatusCode/100))
	logger.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, path string, body []byte, requestID string) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set(middleware.HeaderRequestID, requestID)
	req.Header.Set(middleware.HeaderCorrelationID, c.correlationID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return c.http.Do(req)
}

func (c *Client) wait(ctx context.Context, attempt int, logger *slog.Logger) error {
	backoff := c.backoff(attempt)
	logger.DebugContext(ctx, "retrying request",
		slog.Int("attempt", attempt+1),
		slog.Duration("backoff", backoff),
	)

	timer := time.NewTimer(backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff is InitialInterval * Multiplier^(attempt-1), capped at MaxInterval,
// with jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := float64(c.retry.InitialInterval) * math.Pow(c.retry.Multiplier, float64(attempt-1))

	if c.retry.MaxInterval > 0 && d > float64(c.retry.MaxInterval) {
		d = float64(c.retry.MaxInterval)
	}

	if c.retry.JitterFactor > 0 {
		d += d * c.retry.JitterFactor * (rand.Float64()*2 - 1) //nolint:gosec // jitter needs no crypto randomness
	}

	return time.Duration(d)
}

func (c *Client) recordMetrics(ctx context.Context, method string, status int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", serviceName),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// decodeError turns a non-200 response into a *ServiceError.
func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("%w: reading error body: %v", ErrUnexpectedResponse, err)
	}

	var envelope dto.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return fmt.Errorf("%w: HTTP %d", ErrUnexpectedResponse, resp.StatusCode)
	}

	return &ServiceError{
		Status:  resp.StatusCode,
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
		TraceID: envelope.TraceID,
	}
}

// isRetryable reports whether a transport error may succeed on retry. Once
// the caller's context is done nothing is retried; a per-attempt timeout is.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
