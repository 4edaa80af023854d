package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/jsamuelsen/fraccalc/internal/adapters/remote"
	"github.com/jsamuelsen/fraccalc/internal/adapters/repl"
)

type evalCmd struct {
	opts *options

	decimal bool
	remote  string
}

func (*evalCmd) Name() string     { return "eval" }
func (*evalCmd) Synopsis() string { return "evaluate one expression and print the result" }
func (*evalCmd) Usage() string {
	return `fraccalc eval [-decimal] [-remote <url>] <expression...>

  Evaluates the arguments, joined by spaces, as one expression:

    fraccalc eval 1/2 + 3_3/4
    fraccalc eval '1/2 * 3_3/4'
    fraccalc eval -- -1/2 + 1

  Exits non-zero when the expression cannot be evaluated.
`
}

func (c *evalCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.decimal, "decimal", false, "also print the decimal form")
	f.StringVar(&c.remote, "remote", "", "evaluate against the service at this URL (default from remote.url)")
}

func (c *evalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprint(c.opts.stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	rt, err := c.opts.load()
	if err != nil {
		fmt.Fprintln(c.opts.stderr, err)
		return subcommands.ExitFailure
	}

	client, err := rt.remote(ctx, c.remote)
	if err != nil {
		fmt.Fprintln(c.opts.stderr, err)
		return subcommands.ExitFailure
	}

	line := strings.Join(f.Args(), " ")

	var result, decimal string

	if client != nil {
		result, decimal, err = evalRemote(ctx, client, line)
	} else {
		result, decimal, err = evalLocal(ctx, rt, line)
	}

	if err != nil {
		fmt.Fprintln(c.opts.stderr, repl.FormatError(err))
		return subcommands.ExitFailure
	}

	fmt.Fprintln(c.opts.stdout, result)

	if c.decimal {
		fmt.Fprintln(c.opts.stdout, decimal)
	}

	return subcommands.ExitSuccess
}

func evalLocal(ctx context.Context, rt *runtime, line string) (result, decimal string, err error) {
	calc, err := rt.calculator(nil, nil).Evaluate(ctx, line)
	if err != nil {
		return "", "", err
	}

	return calc.Formatted(), calc.Result.Decimal(rt.cfg.Calculator.DecimalPlaces).String(), nil
}

func evalRemote(ctx context.Context, client *remote.Client, line string) (result, decimal string, err error) {
	out, err := client.Evaluate(ctx, line)
	if err != nil {
		return "", "", err
	}

	return out.Result, out.Decimal, nil
}
