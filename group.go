package performance

import (
	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// InvestmentItem is the total investment at the end of a bucket of days.
type InvestmentItem struct {
	Date                         date.Date       `json:"date"` // first day of the bucket
	Key                          string          `json:"key"`  // bucket identifier, e.g. 2021-09 or 2021-W37
	Investment                   decimal.Decimal `json:"investment"`
	InvestmentWithCurrencyEffect decimal.Decimal `json:"investmentWithCurrencyEffect"`
}

// InvestmentsByGroup buckets the daily series by period. Each bucket is valued
// with the total investment of its last day present in data. The order of data
// is preserved.
func InvestmentsByGroup(data []HistoricalDataPoint, period date.Period) []InvestmentItem {
	var items []InvestmentItem
	for _, pt := range data {
		r := period.Range(pt.Date)
		item := InvestmentItem{
			Date:                         r.From,
			Key:                          r.Identifier(),
			Investment:                   pt.TotalInvestment,
			InvestmentWithCurrencyEffect: pt.TotalInvestmentValueWithCurrencyEffect,
		}
		if n := len(items); n > 0 && items[n-1].Key == item.Key {
			items[n-1] = item
			continue
		}
		items = append(items, item)
	}
	return items
}

// investmentsOn lists the total investment after each of the given days.
func investmentsOn(s *PortfolioSnapshot, days []date.Date) []InvestmentItem {
	items := make([]InvestmentItem, 0, len(days))
	for _, d := range days {
		pt, ok := s.At(d)
		if !ok {
			continue
		}
		items = append(items, InvestmentItem{
			Date:                         d,
			Key:                          d.String(),
			Investment:                   pt.TotalInvestment,
			InvestmentWithCurrencyEffect: pt.TotalInvestmentValueWithCurrencyEffect,
		})
	}
	return items
}
