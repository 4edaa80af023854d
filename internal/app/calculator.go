// Package app contains the application services that orchestrate use cases.
//
// The app layer coordinates the domain (fraction arithmetic) with the
// infrastructure behind ports (history, metrics). It knows nothing about
// HTTP or terminals; those are adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/fraccalc/internal/app/memo"
	"github.com/jsamuelsen/fraccalc/internal/domain"
	"github.com/jsamuelsen/fraccalc/internal/platform/logging"
	"github.com/jsamuelsen/fraccalc/internal/platform/telemetry"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

// Defaults applied by NewCalculator when a config value is unset.
const (
	DefaultBatchLimit       = 100
	DefaultBatchConcurrency = 4
	DefaultMaxInputLength   = 256
)

// Calculator evaluates mixed-number expressions and keeps a history of
// successful calculations. It implements ports.Evaluator.
type Calculator struct {
	history          ports.HistoryStore
	metrics          *telemetry.CalculatorMetrics
	exec             *Executor
	logger           *slog.Logger
	now              func() time.Time
	newID            func() string
	batchLimit       int
	batchConcurrency int
	maxInputLength   int
}

// CalculatorConfig holds the calculator's dependencies. Only Logger is
// defaulted; a nil History disables recording and nil Metrics disables
// instrumentation.
type CalculatorConfig struct {
	History          ports.HistoryStore
	Metrics          *telemetry.CalculatorMetrics
	Logger           *slog.Logger
	BatchLimit       int
	BatchConcurrency int
	MaxInputLength   int

	// Clock and IDGenerator are overridable for tests.
	Clock       func() time.Time
	IDGenerator func() string
}

// NewCalculator creates a calculator from cfg.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.Calculator"))

	c := &Calculator{
		history:          cfg.History,
		metrics:          cfg.Metrics,
		exec:             NewExecutor(logger),
		logger:           logger,
		now:              cfg.Clock,
		newID:            cfg.IDGenerator,
		batchLimit:       cfg.BatchLimit,
		batchConcurrency: cfg.BatchConcurrency,
		maxInputLength:   cfg.MaxInputLength,
	}

	if c.now == nil {
		c.now = time.Now
	}

	if c.newID == nil {
		c.newID = uuid.NewString
	}

	if c.batchLimit <= 0 {
		c.batchLimit = DefaultBatchLimit
	}

	if c.batchConcurrency <= 0 {
		c.batchConcurrency = DefaultBatchConcurrency
	}

	if c.maxInputLength <= 0 {
		c.maxInputLength = DefaultMaxInputLength
	}

	return c
}

// performed is the unreduced outcome of the perform step.
type performed struct {
	expr   domain.Expression
	result domain.Fraction
}

// Evaluate parses and computes line. The returned error is the domain error
// itself (*domain.ParseError, *domain.DivisionError,
// *domain.UnknownOperatorError, *domain.OverflowError or
// *domain.ValidationError), unwrapped from
// the executor's step error.
func (c *Calculator) Evaluate(ctx context.Context, line string) (*domain.Calculation, error) {
	op := Operation[string, performed, *domain.Calculation, *domain.Calculation]{
		Name:     "evaluate",
		Validate: c.validate,
		Perform:  c.perform,
		Verify:   c.verify,
		Archive:  c.archive,
		Respond: func(_ context.Context, _ string, calc *domain.Calculation) (*domain.Calculation, error) {
			return calc, nil
		},
	}

	calc, err := Execute(ctx, c.exec, op, line)
	if err != nil {
		cause := rootCause(err)
		c.metrics.Record(ctx, operatorLabel(line), outcome(cause))

		if step, ok := GetExecutionStep(err); ok && (step == StepVerify || step == StepArchive) {
			return nil, fmt.Errorf("evaluating %q: %w", line, err)
		}

		return nil, cause
	}

	c.metrics.Record(ctx, calc.Expression.Operator.String(), telemetry.OutcomeOK)

	return calc, nil
}

// EvaluateLine implements ports.Evaluator.
func (c *Calculator) EvaluateLine(ctx context.Context, line string) (string, error) {
	calc, err := c.Evaluate(ctx, line)
	if err != nil {
		return "", err
	}

	return calc.Formatted(), nil
}

func (c *Calculator) validate(_ context.Context, line string) error {
	if len(line) > c.maxInputLength {
		return domain.NewValidationErrorWithValue("expression",
			fmt.Sprintf("must be at most %d characters", c.maxInputLength), len(line))
	}

	return nil
}

func (c *Calculator) perform(ctx context.Context, line string) (performed, error) {
	expr, err := domain.ParseExpression(line)
	if err != nil {
		return performed{}, err
	}

	c.exec.contextLogger(ctx).Log(ctx, logging.LevelTrace, "parsed expression",
		slog.String("left", expr.Left.String()),
		slog.String("operator", expr.Operator.String()),
		slog.String("right", expr.Right.String()),
	)

	result, err := expr.Apply()
	if err != nil {
		return performed{}, err
	}

	return performed{expr: expr, result: result}, nil
}

var errNotCanonical = errors.New("reduced result is not in canonical form")

func (c *Calculator) verify(_ context.Context, line string, p performed) (*domain.Calculation, error) {
	reduced := p.result.Reduce()
	if reduced.Denominator <= 0 || reduced.Reduce() != reduced {
		return nil, fmt.Errorf("%w: %d/%d", errNotCanonical, reduced.Numerator, reduced.Denominator)
	}

	return &domain.Calculation{
		ID:         c.newID(),
		Input:      line,
		Expression: p.expr,
		Result:     reduced,
		CreatedAt:  c.now(),
	}, nil
}

func (c *Calculator) archive(ctx context.Context, _ string, calc *domain.Calculation) error {
	if c.history == nil {
		return nil
	}

	return c.history.Record(ctx, calc)
}

// BatchResult is the outcome of one line of a batch.
type BatchResult struct {
	Input       string
	Calculation *domain.Calculation
	Err         error
}

// EvaluateBatch evaluates every line concurrently. A failing line does not
// fail the batch; its error is carried in its BatchResult. Identical lines
// (ignoring spacing) are computed once. Results keep the order of lines.
func (c *Calculator) EvaluateBatch(ctx context.Context, lines []string) ([]BatchResult, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("expressions", "at least one expression is required")
	}

	if len(lines) > c.batchLimit {
		return nil, domain.NewValidationErrorWithValue("expressions",
			fmt.Sprintf("at most %d expressions are allowed", c.batchLimit), len(lines))
	}

	seen := memo.New[*domain.Calculation]()
	fns := make([]func(context.Context) (*domain.Calculation, error), len(lines))

	for i, line := range lines {
		fns[i] = func(ctx context.Context) (*domain.Calculation, error) {
			calc, _, err := seen.GetOrCompute(ctx, normalizeLine(line), func(ctx context.Context) (*domain.Calculation, error) {
				return c.Evaluate(ctx, line)
			})

			return calc, err
		}
	}

	partial := ParallelPartialLimit(ctx, c.batchConcurrency, fns...)

	results := make([]BatchResult, len(lines))
	failed := 0

	for i, r := range partial {
		results[i] = BatchResult{Input: lines[i], Calculation: r.Value, Err: r.Err}
		if r.Err != nil {
			failed++
		}
	}

	c.logger.InfoContext(ctx, "batch evaluated",
		slog.Int("size", len(lines)),
		slog.Int("failed", failed),
		slog.Int("distinct", seen.Len()),
	)

	return results, nil
}

// History returns up to limit recent calculations, newest first.
func (c *Calculator) History(ctx context.Context, limit int) ([]*domain.Calculation, error) {
	if c.history == nil {
		return []*domain.Calculation{}, nil
	}

	calcs, err := c.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return calcs, nil
}

func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// operatorLabel guesses the operator of a line that failed to evaluate,
// for metrics only.
func operatorLabel(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return "none"
	}

	if op, err := domain.ParseOperator(tokens[1]); err == nil {
		return op.String()
	}

	return "unknown"
}

func outcome(err error) string {
	switch {
	case domain.IsParse(err):
		return telemetry.OutcomeParseError
	case domain.IsDivideByZero(err):
		return telemetry.OutcomeDivideByZero
	case domain.IsUnknownOperator(err):
		return telemetry.OutcomeUnknownOperator
	case domain.IsOverflow(err):
		return telemetry.OutcomeOverflow
	case domain.IsValidation(err):
		return telemetry.OutcomeInvalid
	default:
		return telemetry.OutcomeError
	}
}
