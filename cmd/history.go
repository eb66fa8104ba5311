package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/performance/date"
	"github.com/etnz/performance/renderer"
	"github.com/google/subcommands"
)

type historyCmd struct {
	date     string
	currency string
	from     string
	noCache  bool
}

func (*historyCmd) Name() string { return "history" }
func (*historyCmd) Synopsis() string {
	return "display the daily value and performance of the portfolio"
}
func (*historyCmd) Usage() string {
	return `perf history [-d <date>] [-c <currency>] [-from <date>]

  Displays the daily history of the portfolio: value, investment, net
  performance and time-weighted return.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "evaluation date (YYYY-MM-DD), today by default")
	f.StringVar(&c.currency, "c", "", "base currency, overrides PERF_BASE_CURRENCY")
	f.StringVar(&c.from, "from", "", "first day to display, the whole history by default")
	f.BoolVar(&c.noCache, "no-cache", false, "ignore the snapshot cache")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
	printMarkdown(renderer.RenderHistory(renderer.NewHistory(s, from)))
	return subcommands.ExitSuccess
}
