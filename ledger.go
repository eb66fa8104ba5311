package performance

import (
	"slices"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// Ledger is the validated, ordered view of a set of activities.
type Ledger struct {
	bySymbol map[string][]Activity
	// Items holds the portfolio level activities (INTEREST, LIABILITY,
	// VALUABLE), sorted. They never open a position.
	Items []Activity
	start date.Date
}

// BuildLedger groups activities by symbol and sorts each group with a
// deterministic total order. It replays quantities and fails with an
// *OrderingError if any SELL exceeds the quantity held at that time.
func BuildLedger(activities []Activity) (Ledger, error) {
	l := Ledger{bySymbol: make(map[string][]Activity)}
	for _, a := range sortActivities(activities) {
		if err := validate(a); err != nil {
			return Ledger{}, err
		}
		if l.start.IsZero() || a.Date.Before(l.start) {
			l.start = a.Date
		}
		if !a.Type.IsPositionItem() {
			l.Items = append(l.Items, a)
			continue
		}
		l.bySymbol[a.Symbol] = append(l.bySymbol[a.Symbol], a)
	}

	for symbol, acts := range l.bySymbol {
		held := decimal.Zero
		for _, a := range acts {
			switch a.Type {
			case Buy:
				held = held.Add(a.Quantity)
			case Sell:
				if a.Quantity.GreaterThan(held) {
					return Ledger{}, &OrderingError{Symbol: symbol, Date: a.Date, Held: held, Requested: a.Quantity}
				}
				held = held.Sub(a.Quantity)
			}
		}
	}
	return l, nil
}

func validate(a Activity) error {
	if a.Date.IsZero() {
		return &OrderingError{Symbol: a.Symbol, Date: a.Date, Reason: "missing date"}
	}
	if a.Type.IsPositionItem() && a.Symbol == "" {
		return &OrderingError{Date: a.Date, Reason: "missing symbol"}
	}
	switch {
	case a.Quantity.IsNegative():
		return &OrderingError{Symbol: a.Symbol, Date: a.Date, Requested: a.Quantity, Reason: "negative quantity"}
	case a.UnitPrice.IsNegative():
		return &OrderingError{Symbol: a.Symbol, Date: a.Date, Reason: "negative unit price"}
	case a.Fee.IsNegative():
		return &OrderingError{Symbol: a.Symbol, Date: a.Date, Reason: "negative fee"}
	}
	return nil
}

// Symbols returns the position symbols in lexical order.
func (l Ledger) Symbols() []string {
	symbols := make([]string, 0, len(l.bySymbol))
	for s := range l.bySymbol {
		symbols = append(symbols, s)
	}
	slices.Sort(symbols)
	return symbols
}

// Activities returns the ordered activities of a symbol.
func (l Ledger) Activities(symbol string) []Activity { return l.bySymbol[symbol] }

// Start returns the earliest activity date, zero for an empty ledger.
func (l Ledger) Start() date.Date { return l.start }

// Empty reports whether the ledger holds no activity at all.
func (l Ledger) Empty() bool { return len(l.bySymbol) == 0 && len(l.Items) == 0 }

// TradeDates returns the distinct dates of BUY and SELL activities, sorted.
func (l Ledger) TradeDates() []date.Date {
	var dates []date.Date
	for _, acts := range l.bySymbol {
		for _, a := range acts {
			if a.Type.IsTrade() {
				dates = append(dates, a.Date)
			}
		}
	}
	slices.SortFunc(dates, date.Date.Compare)
	return slices.CompactFunc(dates, func(a, b date.Date) bool { return a == b })
}
