package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/performance"
	"github.com/etnz/performance/marketdata"
	"github.com/google/subcommands"
)

type importMarketCmd struct {
	db string
}

func (*importMarketCmd) Name() string { return "import-market" }
func (*importMarketCmd) Synopsis() string {
	return "import a market data file into the SQLite market database"
}
func (*importMarketCmd) Usage() string {
	return `perf import-market [-db <path>] <file.jsonl>...

  Reads daily prices and exchange rates from JSONL files and upserts them
  into the market database. The database defaults to PERF_MARKET_DB.
`
}

func (c *importMarketCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "path to the market database, overrides PERF_MARKET_DB")
}

func (c *importMarketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one market data file is required")
		return subcommands.ExitUsageError
	}
	cfg := LoadConfig()
	if c.db != "" {
		cfg.MarketDB = c.db
	}
	if cfg.MarketDB == "" {
		fmt.Fprintln(os.Stderr, "Error: no market database, use -db or PERF_MARKET_DB")
		return subcommands.ExitUsageError
	}
	log := NewLogger(cfg.LogLevel, os.Stderr)

	market := performance.NewMarketData()
	for _, name := range f.Args() {
		m, err := decodeMarketFile(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		market.Merge(m)
	}

	store, err := marketdata.Open(ctx, cfg.MarketDB, marketdata.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening market database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer store.Close()

	n, err := store.Save(ctx, market)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error saving market data: %v\n", err)
		return subcommands.ExitFailure
	}
	prices, rates, err := store.Stats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d quotes imported into %s (%d prices, %d exchange rates)\n", n, store.Path(), prices, rates)
	return subcommands.ExitSuccess
}

func decodeMarketFile(name string) (*performance.MarketData, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return performance.DecodeMarketData(name, f)
}
