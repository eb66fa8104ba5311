// Package performance computes the time-weighted performance of a portfolio
// from its activities and a price timeline. It is a pure, synchronous engine:
// no I/O happens here, market data is handed over already materialized.
//
// The core functionalities include:
//   - Activity Ledger: validating and ordering BUY, SELL, DIVIDEND, FEE and the
//     portfolio level INTEREST, LIABILITY and VALUABLE activities.
//   - Position Tracking: an average cost fold that keeps the quantity, cost
//     basis, realized gains, fees and dividends of every symbol.
//   - Daily Series: value, investment and net performance of every calendar
//     day, with and without currency effect, and the chain-linked
//     time-weighted return.
//   - Grouping: investments bucketed by day, week, month, quarter or year.
//   - Data Persistence: JSONL encoding of activities and market data.
//
// This package serves as the foundational logic for the `perf` command-line
// tool.
package performance
