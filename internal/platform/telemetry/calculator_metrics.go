package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Evaluation outcomes used as metric labels.
const (
	OutcomeOK              = "ok"
	OutcomeParseError      = "parse_error"
	OutcomeDivideByZero    = "divide_by_zero"
	OutcomeUnknownOperator = "unknown_operator"
	OutcomeOverflow        = "overflow"
	OutcomeInvalid         = "invalid"
	OutcomeError           = "error"
)

// CalculatorMetrics counts evaluations by operator and outcome, both as an
// OpenTelemetry counter and as a Prometheus counter served on /-/metrics.
// A nil *CalculatorMetrics records nothing.
type CalculatorMetrics struct {
	evaluations     metric.Int64Counter
	promEvaluations *prometheus.CounterVec
}

// NewCalculatorMetrics creates the counters and registers the Prometheus one
// with reg. A nil reg skips Prometheus registration. Registering twice on the
// same registry reuses the existing collector.
func NewCalculatorMetrics(reg prometheus.Registerer) (*CalculatorMetrics, error) {
	meter := otel.Meter(instrumentationName)

	evaluations, err := meter.Int64Counter(
		"calculator.evaluations",
		metric.WithDescription("Number of evaluated expressions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation counter: %w", err)
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fraccalc",
		Name:      "evaluations_total",
		Help:      "Number of evaluated expressions by operator and outcome.",
	}, []string{"operator", "outcome"})

	if reg != nil {
		if err := reg.Register(vec); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return nil, fmt.Errorf("registering evaluation counter: %w", err)
			}

			existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, fmt.Errorf("registering evaluation counter: %w", err)
			}

			vec = existing
		}
	}

	return &CalculatorMetrics{
		evaluations:     evaluations,
		promEvaluations: vec,
	}, nil
}

// Record counts one evaluation.
func (m *CalculatorMetrics) Record(ctx context.Context, operator, outcome string) {
	if m == nil {
		return
	}

	m.evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operator", operator),
		attribute.String("outcome", outcome),
	))
	m.promEvaluations.WithLabelValues(operator, outcome).Inc()
}

// Collector exposes the Prometheus counter, mainly for tests.
func (m *CalculatorMetrics) Collector() *prometheus.CounterVec {
	return m.promEvaluations
}
