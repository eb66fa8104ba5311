// Package cmd implements the CLI application to compute a portfolio performance.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/performance"
	"github.com/etnz/performance/cache"
	"github.com/etnz/performance/date"
	"github.com/etnz/performance/marketdata"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&snapshotCmd{}, "performance")
	c.Register(&historyCmd{}, "performance")
	c.Register(&investmentsCmd{}, "performance")

	c.Register(&importMarketCmd{}, "market data")
	c.Register(&fetchMarketCmd{}, "market data")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var activitiesFile = flag.String("activities", "activities.jsonl", "Path to the activities file (JSONL format)")
var marketFile = flag.String("market", "market.jsonl", "Path to the market data file (JSONL format), used when PERF_MARKET_DB is not set")

// DecodeActivities decodes the app activities file.
func DecodeActivities() ([]performance.Activity, error) {
	f, err := os.Open(*activitiesFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open activities: %w", err)
	}
	defer f.Close()
	return performance.DecodeActivities(*activitiesFile, f)
}

// DecodeMarketData loads market data from the SQLite database when one is
// configured, from the market file otherwise. A missing market file is an
// empty market.
func DecodeMarketData(ctx context.Context, cfg Config, log zerolog.Logger) (*performance.MarketData, error) {
	if cfg.MarketDB != "" {
		store, err := marketdata.Open(ctx, cfg.MarketDB, marketdata.WithLogger(log))
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)
	}
	f, err := os.Open(*marketFile)
	if os.IsNotExist(err) {
		log.Warn().Str("file", *marketFile).Msg("market file does not exist, using an empty market instead")
		return performance.NewMarketData(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open market data: %w", err)
	}
	defer f.Close()
	return performance.DecodeMarketData(*marketFile, f)
}

// run is the state shared by the performance commands.
type run struct {
	cfg        Config
	log        zerolog.Logger
	activities []performance.Activity
	market     *performance.MarketData
	calculator *performance.Calculator
}

// newRun loads configuration, activities and market data, and prepares a
// calculator on a given day. currency overrides the configured base currency
// when set.
func newRun(ctx context.Context, on, currency string) (*run, error) {
	cfg := LoadConfig()
	if currency != "" {
		cfg.BaseCurrency = currency
	}
	log := NewLogger(cfg.LogLevel, os.Stderr)

	day, err := date.Parse(on)
	if err != nil {
		return nil, err
	}
	if day.IsZero() {
		day = date.Today()
	}

	acts, err := DecodeActivities()
	if err != nil {
		return nil, err
	}
	market, err := DecodeMarketData(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	calc, err := performance.NewCalculator(cfg.performanceConfig(day), acts, market, performance.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Debug().Int("activities", len(acts)).Int("quotes", market.Len()).Stringer("on", day).Msg("inputs loaded")
	return &run{cfg: cfg, log: log, activities: acts, market: market, calculator: calc}, nil
}

// snapshot computes the snapshot, through the cache when a cache directory is
// configured.
func (r *run) snapshot(ctx context.Context, noCache bool) (*performance.PortfolioSnapshot, error) {
	if noCache || r.cfg.CacheDir == "" {
		return r.calculator.ComputeSnapshot()
	}
	store, err := cache.NewDirStore(r.cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	key, err := cache.Fingerprint(r.calculator.Config(), r.activities, r.market)
	if err != nil {
		return nil, err
	}
	s, hit, err := cache.Compute(ctx, store, key, r.log, r.calculator.ComputeSnapshot)
	if err != nil {
		return nil, err
	}
	r.log.Info().Bool("cache_hit", hit).Msg("snapshot ready")
	return s, nil
}
