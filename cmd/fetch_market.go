package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/performance"
	"github.com/etnz/performance/date"
	"github.com/etnz/performance/eodhd"
	"github.com/etnz/performance/marketdata"
	"github.com/google/subcommands"
)

type fetchMarketCmd struct {
	from   string
	to     string
	db     string
	apiKey string
}

func (*fetchMarketCmd) Name() string { return "fetch-market" }
func (*fetchMarketCmd) Synopsis() string {
	return "fetch daily prices and exchange rates from EODHD"
}
func (*fetchMarketCmd) Usage() string {
	return `perf fetch-market [-from <date>] [-to <date>] [-db <path>] [<symbol>...]

  Fetches end of day prices from https://eodhd.com for the given symbols, or
  for every symbol of the activities file and the exchange rates to the base
  currency. Quotes are saved into the market database when one is configured,
  merged into the market file otherwise.
`
}

func (c *fetchMarketCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "first day to fetch, the first activity day by default")
	f.StringVar(&c.to, "to", "", "last day to fetch, today by default")
	f.StringVar(&c.db, "db", "", "path to the market database, overrides PERF_MARKET_DB")
	f.StringVar(&c.apiKey, "eodhd-api-key", "", "EODHD API key, "+eodhd.APIKeyEnv+" by default")
}

func (c *fetchMarketCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := LoadConfig()
	if c.db != "" {
		cfg.MarketDB = c.db
	}
	log := NewLogger(cfg.LogLevel, os.Stderr)

	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	to, err := date.Parse(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if to.IsZero() {
		to = date.Today()
	}

	symbols := f.Args()
	if len(symbols) == 0 || from.IsZero() {
		acts, err := DecodeActivities()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		if len(symbols) == 0 {
			symbols = marketSymbols(acts, cfg.BaseCurrency)
		}
		if from.IsZero() {
			from = firstDay(acts)
		}
	}
	if from.IsZero() {
		from = to
	}

	client, err := eodhd.New(c.apiKey, eodhd.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	market := performance.NewMarketData()
	for _, symbol := range symbols {
		n, err := client.Fill(ctx, market, symbol, from, to)
		if err != nil {
			// one missing symbol does not prevent the others.
			log.Warn().Err(err).Str("symbol", symbol).Msg("cannot fetch")
			continue
		}
		log.Info().Str("symbol", symbol).Int("quotes", n).Msg("fetched")
	}

	if cfg.MarketDB != "" {
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
		fmt.Printf("%d quotes saved into %s\n", n, store.Path())
		return subcommands.ExitSuccess
	}

	if err := mergeMarketFile(*marketFile, market); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d quotes merged into %s\n", market.Len(), *marketFile)
	return subcommands.ExitSuccess
}

// marketSymbols lists the position symbols of activities, and the currency pairs
// from their currencies to base.
func marketSymbols(acts []performance.Activity, base string) []string {
	var symbols []string
	for _, a := range acts {
		if a.Type.IsPositionItem() && a.Symbol != "" {
			symbols = append(symbols, a.Symbol)
		}
		if a.Currency != "" && a.Currency != base {
			symbols = append(symbols, performance.Pair(a.Currency, base))
		}
	}
	slices.Sort(symbols)
	return slices.Compact(symbols)
}

func firstDay(acts []performance.Activity) date.Date {
	var first date.Date
	for _, a := range acts {
		if first.IsZero() || a.Date.Before(first) {
			first = a.Date
		}
	}
	return first
}

// mergeMarketFile merges m into the market file, created if needed.
func mergeMarketFile(name string, m *performance.MarketData) error {
	existing := performance.NewMarketData()
	if _, err := os.Stat(name); err == nil {
		if existing, err = decodeMarketFile(name); err != nil {
			return err
		}
	}
	existing.Merge(m)

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := performance.EncodeMarketData(f, existing); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
