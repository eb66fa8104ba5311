// Command perf computes the time-weighted performance of a portfolio.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/performance/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
// Install it with COMP_INSTALL=1 perf.
func completion() *complete.Command {
	global := map[string]complete.Predictor{
		"activities": predict.Files("*.jsonl"),
		"market":     predict.Files("*.jsonl"),
	}
	perf := map[string]complete.Predictor{
		"d":        predict.Something,
		"c":        predict.Set{"EUR", "USD", "CAD", "GBP", "CHF", "JPY"},
		"no-cache": predict.Nothing,
	}
	with := func(extra map[string]complete.Predictor) map[string]complete.Predictor {
		flags := make(map[string]complete.Predictor, len(perf)+len(extra))
		for k, v := range perf {
			flags[k] = v
		}
		for k, v := range extra {
			flags[k] = v
		}
		return flags
	}

	return &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"snapshot": {Flags: with(map[string]complete.Predictor{
				"format": predict.Set{"json", "markdown"},
				"query":  predict.Something,
			})},
			"history": {Flags: with(map[string]complete.Predictor{
				"from": predict.Something,
			})},
			"investments": {Flags: with(map[string]complete.Predictor{
				"p": predict.Set{"day", "week", "month", "quarter", "year"},
			})},
			"import-market": {
				Flags: map[string]complete.Predictor{"db": predict.Files("*.db")},
				Args:  predict.Files("*.jsonl"),
			},
			"fetch-market": {
				Flags: map[string]complete.Predictor{
					"from":          predict.Something,
					"to":            predict.Something,
					"db":            predict.Files("*.db"),
					"eodhd-api-key": predict.Something,
				},
			},
			"topic":    {Args: predict.Set{"files", "configuration", "metrics", "twr", "*"}},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}

func main() {
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
