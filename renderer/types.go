package renderer

import (
	"github.com/etnz/performance"
	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// Row is a label and a formatted value.
type Row struct {
	Label string
	Value string
}

// PositionRow is a formatted line of the positions table.
type PositionRow struct {
	Symbol           string
	Quantity         string
	MarketPrice      string
	Value            string
	Investment       string
	NetPerformance   string
	Percentage       string
	TimeWeighted     string
	TransactionCount int
}

// ErrorRow is a position excluded from the computation.
type ErrorRow struct {
	Symbol string
	Reason string
}

// Snapshot is the view of a performance.PortfolioSnapshot.
type Snapshot struct {
	Date      string
	Currency  string
	Totals    []Row
	Positions []PositionRow
	Errors    []ErrorRow
}

// NewSnapshot formats s.
func NewSnapshot(s *performance.PortfolioSnapshot) *Snapshot {
	cur := s.Currency
	v := &Snapshot{Date: s.Date.String(), Currency: cur}
	v.Totals = []Row{
		{"Current Value", money(s.CurrentValueInBaseCurrency, cur)},
		{"Total Investment", money(s.TotalInvestmentWithCurrencyEffect, cur)},
		{"Total Fees", money(s.TotalFeesWithCurrencyEffect, cur)},
	}
	if n := len(s.HistoricalData); n > 0 {
		last := s.HistoricalData[n-1]
		v.Totals = append(v.Totals,
			Row{"Net Performance", signed(last.NetPerformanceWithCurrencyEffect, cur)},
			Row{"Net Performance %", percent(last.NetPerformanceInPercentageWithCurrencyEffect)},
			Row{"Time-Weighted Return", percent(last.TimeWeightedReturnWithCurrencyEffect)},
			Row{"Net Worth", money(last.NetWorth, cur)},
		)
	}
	for _, item := range []struct {
		label string
		value decimal.Decimal
	}{
		{"Interest", s.TotalInterestWithCurrencyEffect},
		{"Liabilities", s.TotalLiabilitiesWithCurrencyEffect},
		{"Valuables", s.TotalValuablesWithCurrencyEffect},
	} {
		if !item.value.IsZero() {
			v.Totals = append(v.Totals, Row{item.label, money(item.value, cur)})
		}
	}

	for _, p := range s.Positions {
		v.Positions = append(v.Positions, PositionRow{
			Symbol:           p.Symbol,
			Quantity:         p.Quantity.String(),
			MarketPrice:      money(p.MarketPrice, p.Currency),
			Value:            money(p.ValueInBaseCurrency, cur),
			Investment:       money(p.InvestmentWithCurrencyEffect, cur),
			NetPerformance:   signed(p.NetPerformanceWithCurrencyEffect, cur),
			Percentage:       percent(p.NetPerformancePercentageWithCurrencyEffect),
			TimeWeighted:     percent(p.TimeWeightedReturnWithCurrencyEffect),
			TransactionCount: p.TransactionCount,
		})
	}
	for _, e := range s.Errors {
		v.Errors = append(v.Errors, ErrorRow{Symbol: e.Symbol, Reason: e.Reason})
	}
	return v
}

// HistoryRow is a formatted day of the series.
type HistoryRow struct {
	Date           string
	Value          string
	Investment     string
	NetPerformance string
	Percentage     string
	TimeWeighted   string
}

// History is the view of the daily series.
type History struct {
	Currency string
	From, To string
	Rows     []HistoryRow
}

// NewHistory formats the data points of s from a day on. A zero from keeps
// every point.
func NewHistory(s *performance.PortfolioSnapshot, from date.Date) *History {
	h := &History{Currency: s.Currency}
	for _, pt := range s.HistoricalData {
		if pt.Date.Before(from) {
			continue
		}
		h.Rows = append(h.Rows, HistoryRow{
			Date:           pt.Date.String(),
			Value:          money(pt.ValueWithCurrencyEffect, s.Currency),
			Investment:     money(pt.TotalInvestmentValueWithCurrencyEffect, s.Currency),
			NetPerformance: signed(pt.NetPerformanceWithCurrencyEffect, s.Currency),
			Percentage:     percent(pt.NetPerformanceInPercentageWithCurrencyEffect),
			TimeWeighted:   percent(pt.TimeWeightedReturnWithCurrencyEffect),
		})
	}
	if n := len(h.Rows); n > 0 {
		h.From, h.To = h.Rows[0].Date, h.Rows[n-1].Date
	}
	return h
}

// InvestmentRow is a formatted bucket of investments.
type InvestmentRow struct {
	Key        string
	Date       string
	Investment string
}

// Investments is the view of grouped investments.
type Investments struct {
	Period   string
	Currency string
	Rows     []InvestmentRow
}

// NewInvestments formats items grouped by period.
func NewInvestments(items []performance.InvestmentItem, period date.Period, currency string) *Investments {
	v := &Investments{Period: period.Name(), Currency: currency}
	for _, it := range items {
		v.Rows = append(v.Rows, InvestmentRow{
			Key:        it.Key,
			Date:       it.Date.String(),
			Investment: money(it.InvestmentWithCurrencyEffect, currency),
		})
	}
	return v
}

func money(v decimal.Decimal, currency string) string { return performance.M(v, currency).String() }

func signed(v decimal.Decimal, currency string) string {
	return performance.M(v, currency).SignedString()
}

// percent formats a ratio as a signed percentage with two decimals.
func percent(r decimal.Decimal) string {
	p := r.Shift(2).StringFixed(2)
	if r.IsPositive() {
		return "+" + p + "%"
	}
	return p + "%"
}
