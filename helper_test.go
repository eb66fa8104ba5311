package performance

import (
	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// day is a short for date.MustParse
func day(s string) date.Date { return date.MustParse(s) }

// buy and sell are helpers for test to create CAD activities from const.
func buy(on, symbol, quantity, price string) Activity {
	return NewBuy(day(on), symbol, "CAD", D(quantity), D(price))
}

func sell(on, symbol, quantity, price string) Activity {
	return NewSell(day(on), symbol, "CAD", D(quantity), D(price))
}

// nvei returns the activities of the NVEI.TO reference scenario, deliberately
// out of order.
func nvei() []Activity {
	return []Activity{
		sell("2021-12-01", "NVEI.TO", "2", "115"),
		sell("2021-11-15", "NVEI.TO", "0.569", "136.46"),
		buy("2021-11-15", "NVEI.TO", "1", "137.31"),
		buy("2021-09-16", "NVEI.TO", "1.569", "177.2"),
	}
}

func nveiMarket() *MarketData {
	m := NewMarketData()
	m.AddPrice("NVEI.TO", day("2022-06-01"), D("87.8"))
	return m
}

func twrConfig(currency, on string) Config {
	return Config{CalculationType: TWR, BaseCurrency: currency, EvaluationDate: day(on)}
}

// mustSnapshot computes a snapshot or panics.
func mustSnapshot(cfg Config, acts []Activity, m PriceTimeline) *PortfolioSnapshot {
	c, err := NewCalculator(cfg, acts, m)
	if err != nil {
		panic(err)
	}
	s, err := c.ComputeSnapshot()
	if err != nil {
		panic(err)
	}
	return s
}

func isZero(values ...decimal.Decimal) bool {
	for _, v := range values {
		if !v.IsZero() {
			return false
		}
	}
	return true
}
