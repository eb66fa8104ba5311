package performance

import (
	"iter"
	"maps"
	"slices"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// PriceTimeline gives access to quotes and exchange rates. Lookups are exact:
// false means the value on that very day is unknown. Forward filling is done
// by the calculator.
type PriceTimeline interface {
	// Price returns the close price of symbol on a day, in the instrument currency.
	Price(symbol string, on date.Date) (decimal.Decimal, bool)
	// ExchangeRate returns the cost of one unit of from expressed in to.
	ExchangeRate(from, to string, on date.Date) (decimal.Decimal, bool)
}

// asOfTimeline is implemented by timelines able to return the latest value on
// or before a day. It lets the calculator seed forward filling with values
// older than the first activity.
type asOfTimeline interface {
	PriceAsOf(symbol string, on date.Date) (decimal.Decimal, bool)
	ExchangeRateAsOf(from, to string, on date.Date) (decimal.Decimal, bool)
}

// MarketData is an in-memory PriceTimeline.
type MarketData struct {
	prices map[string]*date.History[decimal.Decimal]
	rates  map[string]*date.History[decimal.Decimal] // keyed by pair, e.g. "CADUSD"
}

// NewMarketData returns a new empty market data collection.
func NewMarketData() *MarketData {
	return &MarketData{
		prices: make(map[string]*date.History[decimal.Decimal]),
		rates:  make(map[string]*date.History[decimal.Decimal]),
	}
}

// Pair returns the key of the from/to currency pair.
func Pair(from, to string) string { return from + to }

func series(m map[string]*date.History[decimal.Decimal], key string) *date.History[decimal.Decimal] {
	h, ok := m[key]
	if !ok {
		h = new(date.History[decimal.Decimal])
		m[key] = h
	}
	return h
}

// AddPrice records the price of symbol on a day. An existing value is replaced.
func (m *MarketData) AddPrice(symbol string, on date.Date, price decimal.Decimal) {
	series(m.prices, symbol).Append(on, price)
}

// AddExchangeRate records the cost of one unit of from in to on a day.
func (m *MarketData) AddExchangeRate(from, to string, on date.Date, rate decimal.Decimal) {
	series(m.rates, Pair(from, to)).Append(on, rate)
}

func (m *MarketData) Price(symbol string, on date.Date) (decimal.Decimal, bool) {
	h, ok := m.prices[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return h.Get(on)
}

func (m *MarketData) ExchangeRate(from, to string, on date.Date) (decimal.Decimal, bool) {
	if from == to {
		return one, true
	}
	h, ok := m.rates[Pair(from, to)]
	if !ok {
		return decimal.Zero, false
	}
	return h.Get(on)
}

// PriceAsOf returns the latest price on or before on.
func (m *MarketData) PriceAsOf(symbol string, on date.Date) (decimal.Decimal, bool) {
	h, ok := m.prices[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return h.ValueAsOf(on)
}

// ExchangeRateAsOf returns the latest rate on or before on.
func (m *MarketData) ExchangeRateAsOf(from, to string, on date.Date) (decimal.Decimal, bool) {
	if from == to {
		return one, true
	}
	h, ok := m.rates[Pair(from, to)]
	if !ok {
		return decimal.Zero, false
	}
	return h.ValueAsOf(on)
}

// Symbols returns the quoted symbols in lexical order.
func (m *MarketData) Symbols() []string { return slices.Sorted(maps.Keys(m.prices)) }

// Pairs returns the currency pairs in lexical order.
func (m *MarketData) Pairs() []string { return slices.Sorted(maps.Keys(m.rates)) }

// Prices iterates over the quotes of symbol in chronological order.
func (m *MarketData) Prices(symbol string) iter.Seq2[date.Date, decimal.Decimal] {
	if h, ok := m.prices[symbol]; ok {
		return h.Values()
	}
	return func(func(date.Date, decimal.Decimal) bool) {}
}

// Rates iterates over the rates of a pair in chronological order.
func (m *MarketData) Rates(pair string) iter.Seq2[date.Date, decimal.Decimal] {
	if h, ok := m.rates[pair]; ok {
		return h.Values()
	}
	return func(func(date.Date, decimal.Decimal) bool) {}
}

// Days iterates over every day holding at least one quote or rate.
func (m *MarketData) Days() iter.Seq[date.Date] {
	all := slices.Collect(maps.Values(m.prices))
	all = append(all, slices.Collect(maps.Values(m.rates))...)
	return date.Iterate(all...)
}

// Len returns the total number of quotes and rates.
func (m *MarketData) Len() int {
	n := 0
	for _, h := range m.prices {
		n += h.Len()
	}
	for _, h := range m.rates {
		n += h.Len()
	}
	return n
}

// timeline resolves forward filled prices and rates for the calculator.
type timeline struct {
	PriceTimeline
}

// priceAsOf returns the latest known price on or before on.
func (t timeline) priceAsOf(symbol string, on date.Date) (decimal.Decimal, bool) {
	if a, ok := t.PriceTimeline.(asOfTimeline); ok {
		return a.PriceAsOf(symbol, on)
	}
	return t.Price(symbol, on)
}

// rate returns the exact rate from/to on a day. The inverse pair is used when
// the direct one is unknown.
func (t timeline) rate(from, to string, on date.Date) (decimal.Decimal, bool) {
	if from == to {
		return one, true
	}
	if r, ok := t.ExchangeRate(from, to, on); ok {
		return r, true
	}
	if r, ok := t.ExchangeRate(to, from, on); ok && !r.IsZero() {
		return ratio(one, r), true
	}
	return decimal.Zero, false
}

// rateAsOf is rate with forward filling.
func (t timeline) rateAsOf(from, to string, on date.Date) (decimal.Decimal, bool) {
	if from == to {
		return one, true
	}
	a, ok := t.PriceTimeline.(asOfTimeline)
	if !ok {
		return t.rate(from, to, on)
	}
	if r, ok := a.ExchangeRateAsOf(from, to, on); ok {
		return r, true
	}
	if r, ok := a.ExchangeRateAsOf(to, from, on); ok && !r.IsZero() {
		return ratio(one, r), true
	}
	return decimal.Zero, false
}
