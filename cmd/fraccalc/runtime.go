package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/fraccalc/internal/adapters/remote"
	"github.com/jsamuelsen/fraccalc/internal/app"
	"github.com/jsamuelsen/fraccalc/internal/platform/config"
	"github.com/jsamuelsen/fraccalc/internal/platform/logging"
	"github.com/jsamuelsen/fraccalc/internal/platform/telemetry"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

// runtime is the validated configuration and logger a command runs with.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

// load reads and validates the configuration, failing fast, and installs
// the logger as the default. Logs go to stderr so stdout carries answers
// only.
func (o *options) load() (*runtime, error) {
	cfg, err := config.LoadFrom(o.configDir, o.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(cfg.Logging(), o.stderr)
	logging.SetDefault(logger)

	return &runtime{cfg: cfg, logger: logger}, nil
}

func (r *runtime) calculator(history ports.HistoryStore, metrics *telemetry.CalculatorMetrics) *app.Calculator {
	return app.NewCalculator(app.CalculatorConfig{
		History:          history,
		Metrics:          metrics,
		Logger:           r.logger,
		BatchLimit:       r.cfg.Calculator.BatchLimit,
		BatchConcurrency: r.cfg.Calculator.BatchConcurrency,
		MaxInputLength:   r.cfg.Calculator.MaxInputLength,
	})
}

// remote connects to the service at url, or at remote.url when url is
// empty. It returns nil when neither is set. The service must be ready.
func (r *runtime) remote(ctx context.Context, url string) (*remote.Client, error) {
	if url == "" {
		url = r.cfg.Remote.URL
	}

	if url == "" {
		return nil, nil
	}

	rc := r.cfg.Remote

	client, err := remote.New(&remote.Config{
		BaseURL: url,
		Timeout: rc.Timeout,
		Retry: remote.RetryConfig{
			MaxAttempts:     rc.Retry.MaxAttempts,
			InitialInterval: rc.Retry.InitialInterval,
			MaxInterval:     rc.Retry.MaxInterval,
			Multiplier:      rc.Retry.Multiplier,
			JitterFactor:    rc.Retry.JitterFactor,
		},
		Breaker: remote.BreakerConfig{
			MaxFailures:   rc.CircuitBreaker.MaxFailures,
			Timeout:       rc.CircuitBreaker.Timeout,
			HalfOpenLimit: rc.CircuitBreaker.HalfOpenLimit,
		},
		Logger: r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating remote client: %w", err)
	}

	if err := client.Check(ctx); err != nil {
		return nil, fmt.Errorf("service at %s is not ready: %w", url, err)
	}

	return client, nil
}

// isFlagSet reports whether name was given on the command line.
func isFlagSet(f *flag.FlagSet, name string) bool {
	set := false

	f.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})

	return set
}
