package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/jsamuelsen/fraccalc/internal/adapters/history"
	"github.com/jsamuelsen/fraccalc/internal/adapters/repl"
	"github.com/jsamuelsen/fraccalc/internal/ports"
)

type replCmd struct {
	opts *options

	prompt   string
	noPrompt bool
	remote   string
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "evaluate expressions interactively, one per line" }
func (*replCmd) Usage() string {
	return `fraccalc repl [-prompt <text>] [-no-prompt] [-remote <url>]

  Reads one expression per line, such as "1/2 * 3_3/4", and answers
  "= <result>" or "Input error: <message>". An empty line or end of input
  ends the session. With -remote, lines are evaluated by a running
  "fraccalc serve" instead of in process.

  Lines longer than calculator.max_input_length are rejected with
  "Input error: validation failed for expression: ..." without being parsed.
`
}

func (c *replCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prompt, "prompt", "", "prompt printed before each line (default from calculator.prompt)")
	f.BoolVar(&c.noPrompt, "no-prompt", false, "do not print a prompt, for piped input")
	f.StringVar(&c.remote, "remote", "", "evaluate against the service at this URL (default from remote.url)")
}

func (c *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	rt, err := c.opts.load()
	if err != nil {
		fmt.Fprintln(c.opts.stderr, err)
		return subcommands.ExitFailure
	}

	prompt := rt.cfg.Calculator.Prompt
	if isFlagSet(f, "prompt") {
		prompt = c.prompt
	}

	if c.noPrompt {
		prompt = ""
	}

	client, err := rt.remote(ctx, c.remote)
	if err != nil {
		fmt.Fprintln(c.opts.stderr, err)
		return subcommands.ExitFailure
	}

	var evaluator ports.Evaluator

	if client != nil {
		evaluator = client
	} else {
		store := history.New(rt.cfg.Calculator.HistorySize)
		defer func() { _ = store.Close() }()

		evaluator = rt.calculator(store, nil)
	}

	session := repl.New(repl.Config{
		Evaluator: evaluator,
		Logger:    rt.logger,
		Prompt:    prompt,
	})

	if _, err := session.Run(ctx, c.opts.stdin, c.opts.stdout); err != nil {
		fmt.Fprintln(c.opts.stderr, err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
