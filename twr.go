package performance

import (
	"slices"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// Observation is the end of day market value of a holding and the net
// external cash flow that went into it during that day.
type Observation struct {
	Date     date.Date
	Value    decimal.Decimal
	CashFlow decimal.Decimal
}

// SubPeriodReturn is (end - start - flow) / start, and 0 when start is 0.
func SubPeriodReturn(start, end, flow decimal.Decimal) decimal.Decimal {
	return ratio(end.Sub(start).Sub(flow), start)
}

// Chain compounds sub-period returns: Π(1+r) - 1.
func Chain(returns []decimal.Decimal) decimal.Decimal {
	growth := one
	for _, r := range returns {
		growth = growth.Mul(one.Add(r)).Round(workPrecision)
	}
	return growth.Sub(one)
}

// CashFlowDates returns the dates of observations with a non zero cash flow.
// The first observation is the opening value and never a boundary.
func CashFlowDates(observations []Observation) []date.Date {
	var dates []date.Date
	for i, o := range observations {
		if i > 0 && !o.CashFlow.IsZero() {
			dates = append(dates, o.Date)
		}
	}
	return dates
}

// SubPeriods splits observations at boundaries and returns the return of each
// sub-period. The first observation opens the first sub-period and the last
// one always closes the last sub-period. Cash flows are summed over each
// sub-period and assumed to happen at its end.
func SubPeriods(observations []Observation, boundaries []date.Date) []decimal.Decimal {
	if len(observations) < 2 {
		return nil
	}
	boundaries = slices.Clone(boundaries)
	slices.SortFunc(boundaries, date.Date.Compare)

	var returns []decimal.Decimal
	start := observations[0].Value
	flow := decimal.Zero
	b := 0
	for i := 1; i < len(observations); i++ {
		o := observations[i]
		flow = flow.Add(o.CashFlow)
		for b < len(boundaries) && boundaries[b].Before(o.Date) {
			b++
		}
		atBoundary := b < len(boundaries) && boundaries[b] == o.Date
		if atBoundary || i == len(observations)-1 {
			returns = append(returns, SubPeriodReturn(start, o.Value, flow))
			start, flow = o.Value, decimal.Zero
		}
	}
	return returns
}

// ChainLink returns the time-weighted return of observations split at
// boundaries. Any set of boundaries containing every cash flow date yields the
// same result, up to rounding.
func ChainLink(observations []Observation, boundaries []date.Date) decimal.Decimal {
	return Chain(SubPeriods(observations, boundaries))
}

// TimeWeightedReturn is ChainLink split at the cash flow dates.
func TimeWeightedReturn(observations []Observation) decimal.Decimal {
	return ChainLink(observations, CashFlowDates(observations))
}

// chainer maintains a running time-weighted return one observation at a time.
type chainer struct {
	started bool
	last    decimal.Decimal
	growth  decimal.Decimal
}

// add records the next daily observation and returns the return so far.
func (c *chainer) add(value, flow decimal.Decimal) decimal.Decimal {
	if !c.started {
		c.started, c.last, c.growth = true, value, one
		return decimal.Zero
	}
	r := SubPeriodReturn(c.last, value, flow)
	c.growth = c.growth.Mul(one.Add(r)).Round(workPrecision)
	c.last = value
	return c.growth.Sub(one)
}
