// Package main is the fraccalc command: an interactive mixed-number
// calculator, a one-shot evaluator and an HTTP service.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/jsamuelsen/fraccalc/internal/platform/config"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// options are the top-level flags and streams shared by every command.
type options struct {
	profile   string
	configDir string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func defaultOptions() *options {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	return &options{
		profile:   profile,
		configDir: config.DefaultDir,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

func (o *options) register(f *flag.FlagSet) {
	f.StringVar(&o.profile, "profile", o.profile, "configuration profile (configs/<profile>.yaml)")
	f.StringVar(&o.configDir, "config-dir", o.configDir, "directory holding base.yaml and profile files")
}

func commands(opts *options) []subcommands.Command {
	return []subcommands.Command{
		&replCmd{opts: opts},
		&evalCmd{opts: opts},
		&serveCmd{opts: opts},
	}
}

func main() {
	opts := defaultOptions()
	opts.register(flag.CommandLine)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")

	for _, c := range commands(opts) {
		commander.Register(c, "")
	}

	flag.Parse()

	ctx := context.Background()

	// No command starts the interactive loop.
	if flag.NArg() == 0 {
		os.Exit(int(runDefault(ctx, opts)))
	}

	os.Exit(int(commander.Execute(ctx)))
}

func runDefault(ctx context.Context, opts *options) subcommands.ExitStatus {
	cmd := &replCmd{opts: opts}
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)

	return cmd.Execute(ctx, f)
}
