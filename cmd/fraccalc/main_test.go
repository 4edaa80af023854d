package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/fraccalc/internal/adapters/history"
	httpadapter "github.com/jsamuelsen/fraccalc/internal/adapters/http"
	"github.com/jsamuelsen/fraccalc/internal/adapters/http/handlers"
	"github.com/jsamuelsen/fraccalc/internal/app"
	"github.com/jsamuelsen/fraccalc/internal/platform/config"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

type streams struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func testOptions(t *testing.T, stdin string) (*options, *streams) {
	t.Helper()

	s := &streams{}

	return &options{
		profile:   "test",
		configDir: t.TempDir(),
		stdin:     strings.NewReader(stdin),
		stdout:    &s.stdout,
		stderr:    &s.stderr,
	}, s
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()

	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	f.SetOutput(io.Discard)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))

	return cmd.Execute(context.Background(), f)
}

func TestEval(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdout string
	}{
		{"quoted", []string{"1/2 * 3_3/4"}, "1_7/8\n"},
		{"split arguments", []string{"2_3/8", "+", "9/8"}, "3_1/2\n"},
		{"negative after separator", []string{"--", "-1/2", "+", "1"}, "1/2\n"},
		{"decimal", []string{"-decimal", "1/4 - 1/2"}, "-1/4\n-0.25\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, out := testOptions(t, "")

			status := execute(t, &evalCmd{opts: opts}, tt.args...)

			assert.Equal(t, subcommands.ExitSuccess, status, out.stderr.String())
			assert.Equal(t, tt.stdout, out.stdout.String())
		})
	}
}

func TestEval_Errors(t *testing.T) {
	opts, out := testOptions(t, "")

	status := execute(t, &evalCmd{opts: opts}, "1/2 / 0")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Empty(t, out.stdout.String())
	assert.Contains(t, out.stderr.String(), "Input error: divide by zero")
}

func TestEval_NoArguments(t *testing.T) {
	opts, out := testOptions(t, "")

	status := execute(t, &evalCmd{opts: opts})

	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, out.stderr.String(), "fraccalc eval")
}

func TestEval_InvalidConfig(t *testing.T) {
	opts, out := testOptions(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(opts.configDir, "base.yaml"), []byte("calculator:\n  batch_limit: -1\n"), 0o600))

	status := execute(t, &evalCmd{opts: opts}, "1 + 1")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, out.stderr.String(), "invalid config")
}

func TestRepl(t *testing.T) {
	opts, out := testOptions(t, "1/2 * 3_3/4\n1 ^ 2\n\n")

	status := execute(t, &replCmd{opts: opts}, "-no-prompt")

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "= 1_7/8\nInput error: unknown operator \"^\"\n", out.stdout.String())
}

func TestRepl_Prompt(t *testing.T) {
	opts, out := testOptions(t, "2 * 5\n")

	require.Equal(t, subcommands.ExitSuccess, execute(t, &replCmd{opts: opts}))
	assert.Equal(t, config.DefaultPrompt+"= 10\n"+config.DefaultPrompt, out.stdout.String())

	opts, out = testOptions(t, "2 * 5\n")

	require.Equal(t, subcommands.ExitSuccess, execute(t, &replCmd{opts: opts}, "-prompt", "> "))
	assert.Equal(t, "> = 10\n> ", out.stdout.String())
}

func TestRepl_RejectsLongLines(t *testing.T) {
	t.Setenv("APP_CALCULATOR__MAX_INPUT_LENGTH", "16")

	opts, out := testOptions(t, "1/2 + 1/4\n1/2 + 1/4 + 1/8 + 1/16\n")

	status := execute(t, &replCmd{opts: opts}, "-no-prompt")

	assert.Equal(t, subcommands.ExitSuccess, status, out.stderr.String())
	assert.Equal(t,
		"= 3/4\nInput error: validation failed for expression: must be at most 16 characters\n",
		out.stdout.String())
	assert.Contains(t, (&replCmd{}).Usage(), "max_input_length")
}

func TestRunDefault_StartsRepl(t *testing.T) {
	opts, out := testOptions(t, "1/2 + 1/4\n")

	status := runDefault(context.Background(), opts)

	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.stdout.String(), "= 3/4")
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	opts, out := testOptions(t, "")

	cmd := &serveCmd{
		opts: opts,
		notify: func(ch chan<- os.Signal) {
			ch <- syscall.SIGTERM
		},
	}

	status := execute(t, cmd, "-listen", "127.0.0.1:0")

	assert.Equal(t, subcommands.ExitSuccess, status, out.stderr.String())
	assert.Contains(t, out.stderr.String(), "shutdown complete")
}

func TestServe_BadListen(t *testing.T) {
	opts, out := testOptions(t, "")

	status := execute(t, &serveCmd{opts: opts}, "-listen", "nonsense")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, out.stderr.String(), "invalid listen address")
}

func TestApplyListen(t *testing.T) {
	cfg := config.ServerConfig{Host: "0.0.0.0", Port: 8080}

	require.NoError(t, applyListen(&cfg, "127.0.0.1:9090"))
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())

	require.Error(t, applyListen(&cfg, "127.0.0.1:http"))
	require.Error(t, applyListen(&cfg, "127.0.0.1:70000"))
}

func TestCommands(t *testing.T) {
	names := make([]string, 0, 3)
	for _, c := range commands(defaultOptions()) {
		names = append(names, c.Name())
		assert.NotEmpty(t, c.Synopsis())
		assert.NotEmpty(t, c.Usage())
	}

	assert.Equal(t, []string{"repl", "eval", "serve"}, names)
}

func newRemoteService(t *testing.T) string {
	t.Helper()

	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := history.New(10)
	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		Logger:            logger,
		HealthHandler:     handlers.NewHealthHandler(registry, handlers.BuildInfo{}, nil),
		CalculatorHandler: handlers.NewCalculatorHandler(app.NewCalculator(app.CalculatorConfig{History: store, Logger: logger}), 6),
	})

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	return server.URL
}

func TestEval_Remote(t *testing.T) {
	url := newRemoteService(t)
	opts, out := testOptions(t, "")

	status := execute(t, &evalCmd{opts: opts}, "-remote", url, "-decimal", "1/2 * 3_3/4")

	assert.Equal(t, subcommands.ExitSuccess, status, out.stderr.String())
	assert.Equal(t, "1_7/8\n1.875\n", out.stdout.String())
}

func TestEval_RemoteRejected(t *testing.T) {
	url := newRemoteService(t)
	opts, out := testOptions(t, "")

	status := execute(t, &evalCmd{opts: opts}, "-remote", url, "1/2 / 0")

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, out.stderr.String(), "Input error: divide by zero")
}

func TestRepl_Remote(t *testing.T) {
	url := newRemoteService(t)
	opts, out := testOptions(t, "2_3/8 + 9/8\n1 % 2\n")

	status := execute(t, &replCmd{opts: opts}, "-no-prompt", "-remote", url)

	assert.Equal(t, subcommands.ExitSuccess, status, out.stderr.String())
	assert.Equal(t, "= 3_1/2\nInput error: unknown operator \"%\"\n", out.stdout.String())
}

func TestRepl_RemoteUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	opts, out := testOptions(t, "1 + 1\n")
	t.Setenv("APP_REMOTE__RETRY__MAX_ATTEMPTS", "1")

	status := execute(t, &replCmd{opts: opts}, "-remote", url)

	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, out.stderr.String(), "is not ready")
	assert.Empty(t, out.stdout.String())
}
