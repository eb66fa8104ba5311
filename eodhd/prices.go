package eodhd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/etnz/performance"
	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// Quote is a daily end of day record.
type Quote struct {
	Date  date.Date       `json:"date"`
	Open  decimal.Decimal `json:"open"`
	Close decimal.Decimal `json:"close"`
}

// Ticker returns the EODHD ticker of a symbol. Currency pairs like "CADUSD"
// are traded on the virtual "FOREX" exchange, other symbols are expected in
// the EODHD "CODE.EXCHANGE" format already (e.g. "NVEI.TO").
func Ticker(symbol string) string {
	if performance.IsPair(symbol) {
		return symbol + ".FOREX"
	}
	return symbol
}

// FetchQuotes returns the daily quotes of ticker between from and to, both included.
func (c *Client) FetchQuotes(ctx context.Context, ticker string, from, to date.Date) ([]Quote, error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json
	// [{"date": "2024-02-13","open": 675.066,"high": 684.219,"low": 648.659,"close": 668.445,"adjusted_close": 67.705,"volume": 0}]
	addr := fmt.Sprintf("%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey), from, to)

	content := make([]Quote, 0)
	if err := c.jwget(ctx, addr, &content); err != nil {
		return nil, fmt.Errorf("cannot fetch quotes of %s: %w", ticker, err)
	}
	return content, nil
}

// Fill adds the daily prices of symbol between from and to into m, and
// returns the number of quotes added. A currency pair is stored as an
// exchange rate.
func (c *Client) Fill(ctx context.Context, m *performance.MarketData, symbol string, from, to date.Date) (int, error) {
	if !performance.IsPair(symbol) {
		quotes, err := c.FetchQuotes(ctx, Ticker(symbol), from, to)
		if err != nil {
			return 0, err
		}
		for _, q := range quotes {
			m.AddPrice(symbol, q.Date, q.Close)
		}
		c.log.Debug().Str("symbol", symbol).Int("quotes", len(quotes)).Msg("prices fetched")
		return len(quotes), nil
	}

	// The forex close value is most of the time equal to the open. The open
	// of the next day is closer to the truth, so be it.
	quotes, err := c.FetchQuotes(ctx, Ticker(symbol), from.Add(1), to.Add(1))
	if err != nil {
		return 0, err
	}
	for _, q := range quotes {
		m.AddExchangeRate(symbol[:3], symbol[3:], q.Date.Add(-1), q.Open)
	}
	c.log.Debug().Str("pair", symbol).Int("quotes", len(quotes)).Msg("exchange rates fetched")
	return len(quotes), nil
}
