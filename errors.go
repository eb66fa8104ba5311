package performance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// OrderingError reports an activity sequence that cannot be replayed, such as
// a SELL above the held quantity. It aborts the whole computation.
type OrderingError struct {
	Symbol    string
	Date      date.Date
	Held      decimal.Decimal // quantity held before the faulty activity
	Requested decimal.Decimal // quantity the activity tried to move
	Reason    string
}

func (e *OrderingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid activity for %s on %s: %s", e.Symbol, e.Date, e.Reason)
	}
	return fmt.Sprintf("invalid activity order for %s on %s: cannot sell %s, only %s held", e.Symbol, e.Date, e.Requested, e.Held)
}

// ConfigurationError reports an inconsistent calculator configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// PositionError is a recoverable failure scoped to one position. It is
// recorded in the snapshot rather than returned.
type PositionError struct {
	Symbol     string `json:"symbol"`
	DataSource string `json:"dataSource,omitempty"`
	Reason     string `json:"reason"`
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Symbol, e.Reason)
}

// sortErrors orders errors by symbol, then reason.
func sortErrors(errs []PositionError) {
	slices.SortFunc(errs, func(a, b PositionError) int {
		if c := strings.Compare(a.Symbol, b.Symbol); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})
}
