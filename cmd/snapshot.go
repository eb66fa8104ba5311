package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/performance/renderer"
	"github.com/google/subcommands"
)

type snapshotCmd struct {
	date     string
	currency string
	format   string
	query    string
	noCache  bool
}

func (*snapshotCmd) Name() string { return "snapshot" }
func (*snapshotCmd) Synopsis() string {
	return "compute the portfolio performance snapshot on a given day"
}
func (*snapshotCmd) Usage() string {
	return `perf snapshot [-d <date>] [-c <currency>] [-format json|markdown] [-query <jsonpath>]

  Computes positions, totals and the daily history of the portfolio, from
  the first activity up to the evaluation date (today by default).
`
}

func (c *snapshotCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "evaluation date (YYYY-MM-DD), today by default")
	f.StringVar(&c.currency, "c", "", "base currency, overrides PERF_BASE_CURRENCY")
	f.StringVar(&c.format, "format", "markdown", "output format: json or markdown")
	f.StringVar(&c.query, "query", "", "jsonpath expression applied to the json snapshot, e.g. $.netPerformance")
	f.BoolVar(&c.noCache, "no-cache", false, "ignore the snapshot cache")
}

func (c *snapshotCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "json" && c.format != "markdown" {
		fmt.Fprintf(os.Stderr, "unknown format %q, use json or markdown\n", c.format)
		return subcommands.ExitUsageError
	}
	r, err := newRun(ctx, c.date, c.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := r.snapshot(ctx, c.noCache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.query != "" {
		v, err := query(c.query, s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if err := printJSON(v); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if c.format == "json" {
		if err := printJSON(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderSnapshot(renderer.NewSnapshot(s)))
	return subcommands.ExitSuccess
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
