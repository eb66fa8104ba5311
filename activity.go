package performance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// ActivityType is the kind of an activity.
type ActivityType string

// Activity types.
const (
	Buy       ActivityType = "BUY"
	Sell      ActivityType = "SELL"
	Dividend  ActivityType = "DIVIDEND"
	Fee       ActivityType = "FEE"
	Interest  ActivityType = "INTEREST"
	Liability ActivityType = "LIABILITY"
	Valuable  ActivityType = "VALUABLE"
)

// ParseActivityType parses a type name, ignoring case and surrounding spaces.
func ParseActivityType(s string) (ActivityType, error) {
	t := ActivityType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case Buy, Sell, Dividend, Fee, Interest, Liability, Valuable:
		return t, nil
	default:
		return "", fmt.Errorf("unknown activity type %q", s)
	}
}

// IsTrade reports whether the activity moves the held quantity.
func (t ActivityType) IsTrade() bool { return t == Buy || t == Sell }

// IsPositionItem reports whether the activity belongs to a position. INTEREST,
// LIABILITY and VALUABLE are portfolio level items.
func (t ActivityType) IsPositionItem() bool {
	switch t {
	case Buy, Sell, Dividend, Fee:
		return true
	}
	return false
}

// rank orders activities of the same day: openings first, closings last.
func (t ActivityType) rank() int {
	switch t {
	case Buy:
		return 0
	case Dividend:
		return 1
	case Fee:
		return 2
	case Sell:
		return 3
	default:
		return 4
	}
}

// Activity is an immutable entry of the activity ledger.
//
// UnitPrice and Fee are expressed in the instrument Currency. For a DIVIDEND,
// Quantity is the number of shares entitled and UnitPrice the dividend per
// share. A FEE activity charges its Fee.
type Activity struct {
	Date       date.Date       `json:"date"`
	Type       ActivityType    `json:"type"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Fee        decimal.Decimal `json:"fee"`
	Currency   string          `json:"currency"`
	DataSource string          `json:"dataSource,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
}

// Amount returns Quantity × UnitPrice.
func (a Activity) Amount() decimal.Decimal { return a.Quantity.Mul(a.UnitPrice) }

// cashFlow is the money moved into the position by the activity, in the
// instrument currency. Money coming out (sale proceeds, dividends) is negative.
func (a Activity) cashFlow() decimal.Decimal {
	switch a.Type {
	case Buy:
		return a.Amount().Add(a.Fee)
	case Sell:
		return a.Amount().Sub(a.Fee).Neg()
	case Dividend:
		return a.Amount().Sub(a.Fee).Neg()
	case Fee:
		return a.Fee
	default:
		return decimal.Zero
	}
}

// compare is the total order used by the ledger: date, then same-day rank,
// then every other field so that the input order never matters.
func (a Activity) compare(b Activity) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := a.Type.rank() - b.Type.rank(); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Type), string(b.Type)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	if c := a.Quantity.Cmp(b.Quantity); c != 0 {
		return c
	}
	if c := a.UnitPrice.Cmp(b.UnitPrice); c != 0 {
		return c
	}
	if c := a.Fee.Cmp(b.Fee); c != 0 {
		return c
	}
	if c := strings.Compare(a.Currency, b.Currency); c != 0 {
		return c
	}
	return strings.Compare(a.DataSource, b.DataSource)
}

// sortActivities sorts a copy of activities with the ledger order.
func sortActivities(activities []Activity) []Activity {
	sorted := slices.Clone(activities)
	slices.SortStableFunc(sorted, Activity.compare)
	return sorted
}

// NewBuy returns a BUY of quantity at unitPrice.
func NewBuy(on date.Date, symbol, currency string, quantity, unitPrice decimal.Decimal) Activity {
	return Activity{Date: on, Type: Buy, Symbol: symbol, Currency: currency, Quantity: quantity, UnitPrice: unitPrice}
}

// NewSell returns a SELL of quantity at unitPrice.
func NewSell(on date.Date, symbol, currency string, quantity, unitPrice decimal.Decimal) Activity {
	return Activity{Date: on, Type: Sell, Symbol: symbol, Currency: currency, Quantity: quantity, UnitPrice: unitPrice}
}

// NewDividend returns a DIVIDEND of perShare for quantity shares.
func NewDividend(on date.Date, symbol, currency string, quantity, perShare decimal.Decimal) Activity {
	return Activity{Date: on, Type: Dividend, Symbol: symbol, Currency: currency, Quantity: quantity, UnitPrice: perShare}
}

// NewFee returns a FEE charged on a position.
func NewFee(on date.Date, symbol, currency string, fee decimal.Decimal) Activity {
	return Activity{Date: on, Type: Fee, Symbol: symbol, Currency: currency, Fee: fee}
}

// WithFee returns a copy of a with its fee set.
func (a Activity) WithFee(fee decimal.Decimal) Activity {
	a.Fee = fee
	return a
}
