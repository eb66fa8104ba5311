package performance

import (
	"fmt"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// RangeKeys are the date ranges of the performance maps, from the shortest to
// the whole history.
var RangeKeys = []string{"1d", "wtd", "mtd", "ytd", "1y", "5y", "max"}

// rangeBase returns the day whose closing figures are the base of the range
// ending on end. It is never before first.
func rangeBase(key string, first, end date.Date) date.Date {
	var base date.Date
	switch key {
	case "1d":
		base = end.Add(-1)
	case "wtd":
		base = end.StartOf(date.Weekly).Add(-1)
	case "mtd":
		base = end.StartOf(date.Monthly).Add(-1)
	case "ytd":
		base = end.StartOf(date.Yearly).Add(-1)
	case "1y":
		base = end.AddYear(-1)
	case "5y":
		base = end.AddYear(-5)
	default:
		base = first
	}
	if base.Before(first) {
		return first
	}
	return base
}

// positionDay holds the closing figures of a position on one day, in base
// currency.
type positionDay struct {
	value, valueCE                   decimal.Decimal
	investment, investmentCE         decimal.Decimal
	netPerformance, netPerformanceCE decimal.Decimal
	cashFlow, cashFlowCE             decimal.Decimal
	// cumulative time weighting
	weighted, weightedCE decimal.Decimal
	heldDays             int
}

func (d positionDay) twi() (decimal.Decimal, decimal.Decimal) {
	n := decimal.NewFromInt(int64(d.heldDays))
	return ratio(d.weighted, n), ratio(d.weightedCE, n)
}

// positionSeries is the daily history of one position over the calculator
// range, along with its final state.
type positionSeries struct {
	position    Position
	days        []positionDay
	first       date.Date // date of days[0]
	marketPrice decimal.Decimal
	rate        decimal.Decimal // rate on the evaluation date
	twr, twrCE  decimal.Decimal
}

func (s *positionSeries) last() positionDay { return s.days[len(s.days)-1] }

// at returns the figures on day d, clamped to the series.
func (s *positionSeries) at(d date.Date) positionDay {
	i := d.DaysSince(s.first)
	i = max(0, min(i, len(s.days)-1))
	return s.days[i]
}

// rangePerformance returns the net performance with currency effect over a
// range and its ratio to the time weighted investment of the same range.
func (s *positionSeries) rangePerformance(key string) (decimal.Decimal, decimal.Decimal) {
	end := s.last()
	base := s.at(rangeBase(key, s.first, s.first.Add(len(s.days)-1)))
	perf := end.netPerformanceCE.Sub(base.netPerformanceCE)
	days := decimal.NewFromInt(int64(end.heldDays - base.heldDays))
	twi := ratio(end.weightedCE.Sub(base.weightedCE), days)
	return perf, ratio(perf, twi)
}

// seriesBuilder builds position series over a fixed range in a base currency.
type seriesBuilder struct {
	timeline timeline
	base     string
	days     date.Range
}

// build computes the daily series of one symbol from its ordered activities.
// A *PositionError reports missing market data, any other error is fatal.
func (b seriesBuilder) build(acts []Activity) (*positionSeries, *PositionError, error) {
	first := acts[0]
	fail := func(format string, args ...any) *PositionError {
		return &PositionError{Symbol: first.Symbol, DataSource: first.DataSource, Reason: fmt.Sprintf(format, args...)}
	}
	currency := first.Currency
	if err := ValidateCurrency(currency); err != nil {
		return nil, fail("%v", err), nil
	}
	for _, a := range acts {
		if a.Currency != currency {
			return nil, fail("inconsistent currency %s and %s", currency, a.Currency), nil
		}
	}

	currentRate, ok := b.timeline.rateAsOf(currency, b.base, b.days.To)
	if !ok {
		return nil, fail("no exchange rate %s/%s on or before %s", currency, b.base, b.days.To), nil
	}
	price, quoted := b.timeline.priceAsOf(first.Symbol, b.days.From)
	rate, hasRate := b.timeline.rateAsOf(currency, b.base, b.days.From)

	s := &positionSeries{first: b.days.From, rate: currentRate, days: make([]positionDay, 0, b.days.Len())}
	var obs, obsCE []Observation
	var p Position
	next := 0
	for d := range b.days.Days() {
		if r, ok := b.timeline.rate(currency, b.base, d); ok {
			rate, hasRate = r, true
		}
		flow := decimal.Zero
		flowCE := decimal.Zero
		var tradePrice decimal.Decimal
		traded := false
		for ; next < len(acts) && acts[next].Date == d; next++ {
			a := acts[next]
			if !hasRate {
				return nil, fail("no exchange rate %s/%s on or before %s", currency, b.base, d), nil
			}
			var err error
			if p, err = p.apply(a, rate); err != nil {
				return nil, nil, err
			}
			flow = flow.Add(a.cashFlow())
			flowCE = flowCE.Add(a.cashFlow().Mul(rate))
			if a.Type.IsTrade() {
				tradePrice, traded = a.UnitPrice, true
			}
		}
		if p.Quantity.IsPositive() && !hasRate {
			return nil, fail("no exchange rate %s/%s on or before %s", currency, b.base, d), nil
		}
		if q, ok := b.timeline.Price(first.Symbol, d); ok {
			price, quoted = q, true
		} else if traded {
			price = tradePrice
		}

		value := p.Quantity.Mul(price)
		w, wce, n := p.timeWeightedSums(d)
		day := positionDay{
			value:            value.Mul(currentRate),
			valueCE:          value.Mul(rate),
			investment:       p.Investment.Mul(currentRate),
			investmentCE:     p.InvestmentWithCurrencyEffect,
			netPerformance:   p.NetGain(price).Mul(currentRate),
			netPerformanceCE: p.NetGainWithCurrencyEffect(price, rate),
			cashFlow:         flow.Mul(currentRate),
			cashFlowCE:       flowCE,
			weighted:         w.Mul(currentRate),
			weightedCE:       wce,
			heldDays:         n,
		}
		s.days = append(s.days, day)
		obs = append(obs, Observation{Date: d, Value: day.value, CashFlow: day.cashFlow})
		obsCE = append(obsCE, Observation{Date: d, Value: day.valueCE, CashFlow: day.cashFlowCE})
	}

	if p.Quantity.IsPositive() && !quoted {
		return nil, fail("no market price on or before %s", b.days.To), nil
	}
	s.position = p
	s.marketPrice = price
	s.twr = TimeWeightedReturn(obs)
	s.twrCE = TimeWeightedReturn(obsCE)
	return s, nil, nil
}
