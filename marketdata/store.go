// Package marketdata persists quotes and exchange rates in a SQLite database
// and materializes them into a performance.MarketData before a computation.
package marketdata

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/performance"
	"github.com/etnz/performance/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var schema string

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Store is a SQLite backed market data store. It is safe for concurrent use.
type Store struct {
	conn *sql.DB
	path string
	log  zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l.With().Str("component", "marketdata").Logger() }
}

// Open opens, and creates if needed, the database at path and applies the
// schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	connStr := "file::memory:"
	if path != Memory {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		s.path = absPath
		connStr = absPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open market database %s: %w", path, err)
	}
	if path == Memory {
		// every connection to :memory: is a distinct database
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping market database %s: %w", path, err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply market database schema: %w", err)
	}
	s.conn = conn
	s.log.Debug().Str("path", s.path).Msg("market database opened")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.conn.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Save upserts every quote and rate of m in a single transaction. It returns
// the number of rows written.
func (s *Store) Save(ctx context.Context, m *performance.MarketData) (int, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	price, err := tx.PrepareContext(ctx, `INSERT INTO prices (symbol, on_date, price) VALUES (?, ?, ?)
		ON CONFLICT (symbol, on_date) DO UPDATE SET price = excluded.price`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer price.Close()
	rate, err := tx.PrepareContext(ctx, `INSERT INTO rates (from_currency, to_currency, on_date, rate) VALUES (?, ?, ?, ?)
		ON CONFLICT (from_currency, to_currency, on_date) DO UPDATE SET rate = excluded.rate`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare rate upsert: %w", err)
	}
	defer rate.Close()

	n := 0
	for _, symbol := range m.Symbols() {
		for on, v := range m.Prices(symbol) {
			if _, err := price.ExecContext(ctx, symbol, on.String(), v.String()); err != nil {
				return 0, fmt.Errorf("failed to save price of %s on %s: %w", symbol, on, err)
			}
			n++
		}
	}
	for _, pair := range m.Pairs() {
		for on, v := range m.Rates(pair) {
			if _, err := rate.ExecContext(ctx, pair[:3], pair[3:], on.String(), v.String()); err != nil {
				return 0, fmt.Errorf("failed to save rate of %s on %s: %w", pair, on, err)
			}
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit market data: %w", err)
	}
	s.log.Info().Int("rows", n).Msg("market data saved")
	return n, nil
}

// Load reads the quotes of symbols, or of every symbol when none is given,
// and all exchange rates.
func (s *Store) Load(ctx context.Context, symbols ...string) (*performance.MarketData, error) {
	m := performance.NewMarketData()

	load := func(query string, args ...any) error {
		rows, err := s.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var symbol, day, value string
			if err := rows.Scan(&symbol, &day, &value); err != nil {
				return err
			}
			on, err := date.Parse(day)
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(value)
			if err != nil {
				return fmt.Errorf("invalid price of %s on %s: %w", symbol, day, err)
			}
			m.AddPrice(symbol, on, price)
		}
		return rows.Err()
	}

	if len(symbols) == 0 {
		if err := load(`SELECT symbol, on_date, price FROM prices`); err != nil {
			return nil, fmt.Errorf("failed to load prices: %w", err)
		}
	}
	for _, symbol := range symbols {
		if err := load(`SELECT symbol, on_date, price FROM prices WHERE symbol = ?`, symbol); err != nil {
			return nil, fmt.Errorf("failed to load prices of %s: %w", symbol, err)
		}
	}

	rows, err := s.conn.QueryContext(ctx, `SELECT from_currency, to_currency, on_date, rate FROM rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var from, to, day, value string
		if err := rows.Scan(&from, &to, &day, &value); err != nil {
			return nil, fmt.Errorf("failed to load rates: %w", err)
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, fmt.Errorf("failed to load rates: %w", err)
		}
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %s%s on %s: %w", from, to, day, err)
		}
		m.AddExchangeRate(from, to, on, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	s.log.Debug().Int("values", m.Len()).Msg("market data loaded")
	return m, nil
}

// Stats returns the number of stored prices and rates.
func (s *Store) Stats(ctx context.Context) (prices, rates int, err error) {
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM prices`).Scan(&prices); err != nil {
		return 0, 0, fmt.Errorf("failed to count prices: %w", err)
	}
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM rates`).Scan(&rates); err != nil {
		return 0, 0, fmt.Errorf("failed to count rates: %w", err)
	}
	return prices, rates, nil
}
