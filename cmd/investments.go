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

type investmentsCmd struct {
	date     string
	currency string
	period   string
	noCache  bool
}

func (*investmentsCmd) Name() string { return "investments" }
func (*investmentsCmd) Synopsis() string {
	return "display the invested capital per day, week, month, quarter or year"
}
func (*investmentsCmd) Usage() string {
	return `perf investments [-d <date>] [-c <currency>] [-p day|week|month|quarter|year]
`
}

func (c *investmentsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "evaluation date (YYYY-MM-DD), today by default")
	f.StringVar(&c.currency, "c", "", "base currency, overrides PERF_BASE_CURRENCY")
	f.StringVar(&c.period, "p", "month", "grouping period: day, week, month, quarter or year")
	f.BoolVar(&c.noCache, "no-cache", false, "ignore the snapshot cache")
}

func (c *investmentsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := date.ParsePeriod(c.period)
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
	items := r.calculator.InvestmentsByGroup(s.HistoricalData, period)
	printMarkdown(renderer.RenderInvestments(renderer.NewInvestments(items, period, s.Currency)))
	return subcommands.ExitSuccess
}
