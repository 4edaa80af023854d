// Package repl drives an Evaluator from a line-oriented text stream.
//
// Each line is evaluated and answered with "= <result>" or
// "Input error: <message>". An empty line or end of input ends the session.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jsamuelsen/fraccalc/internal/platform/logging"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

// DefaultPrompt is printed before each read unless configured otherwise.
const DefaultPrompt = "? "

// Config configures a Session.
type Config struct {
	Evaluator ports.Evaluator
	Logger    *slog.Logger

	// Prompt is written before every read. Empty disables it.
	Prompt string
}

// Session is one interactive loop over an input and an output stream.
type Session struct {
	evaluator ports.Evaluator
	logger    *slog.Logger
	prompt    string
}

// Stats summarizes a finished session.
type Stats struct {
	Lines  int
	Errors int
}

// New creates a session.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		evaluator: cfg.Evaluator,
		logger:    logger.With(slog.String("component", "repl")),
		prompt:    cfg.Prompt,
	}
}

// Run reads lines from in until an empty line, end of input or ctx is done,
// writing one answer per line to out. Evaluation failures are reported to
// out and do not end the session; read and write failures do.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) (Stats, error) {
	var stats Stats

	ctx = logging.WithContext(ctx, s.logger)
	ctx = logging.WithSession(ctx, uuid.NewString())
	logger := logging.FromContext(ctx)

	logger.DebugContext(ctx, "session started")

	scanner := bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if s.prompt != "" {
			if _, err := io.WriteString(out, s.prompt); err != nil {
				return stats, fmt.Errorf("writing prompt: %w", err)
			}
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return stats, fmt.Errorf("reading input: %w", err)
			}

			break
		}

		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			break
		}

		stats.Lines++

		answer, failed := s.answer(ctx, line)
		if failed {
			stats.Errors++
		}

		if _, err := fmt.Fprintln(out, answer); err != nil {
			return stats, fmt.Errorf("writing answer: %w", err)
		}
	}

	logger.DebugContext(ctx, "session ended",
		slog.Int("lines", stats.Lines),
		slog.Int("errors", stats.Errors),
	)

	return stats, nil
}

func (s *Session) answer(ctx context.Context, line string) (string, bool) {
	result, err := s.evaluator.EvaluateLine(ctx, line)
	if err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "input rejected",
			slog.String("input", line),
			slog.Any("error", err),
		)

		return FormatError(err), true
	}

	return FormatResult(result), false
}

// FormatResult renders a successful answer.
func FormatResult(result string) string {
	return "= " + result
}

// FormatError renders a failed answer.
func FormatError(err error) string {
	return "Input error: " + err.Error()
}
