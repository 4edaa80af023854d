package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jsamuelsen/fraccalc/internal/adapters/history"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/handlers"
	"github.com/jsamuelsen/fraccalc/internal/platform/config"
	"github.com/jsamuelsen/fraccalc/internal/platform/telemetry"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

type serveCmd struct {
	opts *options

	listen string

	// notify subscribes to shutdown signals; tests replace it.
	notify func(chan<- os.Signal)
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the calculator as a JSON API" }
func (*serveCmd) Usage() string {
	return `fraccalc serve [-listen host:port]

  Serves POST /api/v1/evaluate, POST /api/v1/evaluate/batch and
  GET /api/v1/history, with probes and metrics under /-/. Stops gracefully
  on SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.listen, "listen", "", "listen address overriding server.host and server.port")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if err := c.run(ctx); err != nil {
		fmt.Fprintln(c.opts.stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context) error {
	rt, err := c.opts.load()
	if err != nil {
		return err
	}

	cfg, logger := rt.cfg, rt.logger

	if c.listen != "" {
		if err := applyListen(&cfg.Server, c.listen); err != nil {
			return err
		}
	}

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	telProvider, err := telemetry.New(ctx, cfg.Tracing())
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := telemetry.NewCalculatorMetrics(registry)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}

	store := history.New(cfg.Calculator.HistorySize)
	defer func() { _ = store.Close() }()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(store); err != nil {
		return fmt.Errorf("registering history health check: %w", err)
	}

	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:            logger,
		ServiceName:       cfg.App.Name,
		HealthHandler:     handlers.NewHealthHandler(healthRegistry, buildInfo, registry),
		CalculatorHandler: handlers.NewCalculatorHandler(rt.calculator(store, metrics), cfg.Calculator.DecimalPlaces),
		Timeout:           cfg.Server.RequestTimeout,
		MaxRequestSize:    cfg.Server.MaxRequestSize,
		Tracing:           telProvider.Enabled(),
	})

	serverErr := server.Start()

	return c.waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until a shutdown signal is received or the server
// fails, then drains in-flight requests.
func (c *serveCmd) waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)

	notify := c.notify
	if notify == nil {
		notify = func(ch chan<- os.Signal) { signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM) }
	}

	notify(quit)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}

		return nil

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))

	case <-ctx.Done():
		logger.Info("context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

func applyListen(cfg *config.ServerConfig, listen string) error {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", listen, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid listen port %q", portStr)
	}

	cfg.Host = host
	cfg.Port = port

	return nil
}
