package performance

import (
	"slices"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// Position is the running state of one symbol. A Position is a value: apply
// returns an updated copy and never modifies its receiver.
//
// Native amounts are in the instrument currency. The WithCurrencyEffect
// amounts are in the base currency, each flow converted at the rate of its
// own date.
type Position struct {
	Symbol     string
	Currency   string
	DataSource string
	Tags       []string

	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
	// Investment is the cost basis of the held quantity, fees included.
	Investment                   decimal.Decimal
	InvestmentWithCurrencyEffect decimal.Decimal

	Fee                          decimal.Decimal
	FeeWithCurrencyEffect        decimal.Decimal
	Dividend                     decimal.Decimal
	DividendWithCurrencyEffect   decimal.Decimal
	RealizedGain                 decimal.Decimal
	RealizedGainWithCurrencyEffect decimal.Decimal

	FirstBuyDate     date.Date
	TransactionCount int

	// time weighting: sum of daily opening investments and number of days
	// with an open quantity, up to lastActivity.
	lastActivity date.Date
	weighted     decimal.Decimal
	weightedCE   decimal.Decimal
	heldDays     int
}

// PositionState is the position right after one activity was applied.
type PositionState struct {
	Activity Activity
	Position Position
}

// RateFunc returns the exchange rate from the instrument currency to the base
// currency on a given day.
type RateFunc func(on date.Date) decimal.Decimal

// Replay folds ordered activities of a single symbol into a Position. rates
// may be nil when the instrument is quoted in the base currency.
func Replay(activities []Activity, rates RateFunc) (Position, []PositionState, error) {
	var p Position
	states := make([]PositionState, 0, len(activities))
	for _, a := range activities {
		rate := one
		if rates != nil {
			rate = rates(a.Date)
		}
		next, err := p.apply(a, rate)
		if err != nil {
			return p, states, err
		}
		p = next
		states = append(states, PositionState{Activity: a, Position: p})
	}
	return p, states, nil
}

// apply returns the position after the activity a, booked at rate.
func (p Position) apply(a Activity, rate decimal.Decimal) (Position, error) {
	if p.Symbol == "" {
		p.Symbol, p.Currency, p.DataSource = a.Symbol, a.Currency, a.DataSource
	}
	if len(a.Tags) > 0 {
		p.Tags = slices.Clone(p.Tags)
		for _, t := range a.Tags {
			if !slices.Contains(p.Tags, t) {
				p.Tags = append(p.Tags, t)
			}
		}
		slices.Sort(p.Tags)
	}

	// close the interval since the previous activity
	if p.Quantity.IsPositive() && !p.lastActivity.IsZero() {
		days := a.Date.DaysSince(p.lastActivity)
		p.weighted = p.weighted.Add(p.Investment.Mul(decimal.NewFromInt(int64(days))))
		p.weightedCE = p.weightedCE.Add(p.InvestmentWithCurrencyEffect.Mul(decimal.NewFromInt(int64(days))))
		p.heldDays += days
	}
	p.lastActivity = a.Date

	feeCE := a.Fee.Mul(rate)
	switch a.Type {
	case Buy:
		cost := a.Amount().Add(a.Fee)
		quantity := p.Quantity.Add(a.Quantity)
		p.Investment = p.Investment.Add(cost)
		p.InvestmentWithCurrencyEffect = p.InvestmentWithCurrencyEffect.Add(cost.Mul(rate))
		p.AveragePrice = ratio(p.Investment, quantity)
		p.Quantity = quantity
		p.Fee = p.Fee.Add(a.Fee)
		p.FeeWithCurrencyEffect = p.FeeWithCurrencyEffect.Add(feeCE)
		p.TransactionCount++
		if p.FirstBuyDate.IsZero() {
			p.FirstBuyDate = a.Date
		}

	case Sell:
		if a.Quantity.GreaterThan(p.Quantity) {
			return p, &OrderingError{Symbol: a.Symbol, Date: a.Date, Held: p.Quantity, Requested: a.Quantity}
		}
		cost := portion(p.Investment, a.Quantity, p.Quantity)
		costCE := portion(p.InvestmentWithCurrencyEffect, a.Quantity, p.Quantity)
		proceeds := a.Amount().Sub(a.Fee)
		p.RealizedGain = p.RealizedGain.Add(proceeds.Sub(cost))
		p.RealizedGainWithCurrencyEffect = p.RealizedGainWithCurrencyEffect.Add(proceeds.Mul(rate).Sub(costCE))
		p.Investment = p.Investment.Sub(cost)
		p.InvestmentWithCurrencyEffect = p.InvestmentWithCurrencyEffect.Sub(costCE)
		p.Quantity = p.Quantity.Sub(a.Quantity)
		p.Fee = p.Fee.Add(a.Fee)
		p.FeeWithCurrencyEffect = p.FeeWithCurrencyEffect.Add(feeCE)
		if p.Quantity.IsZero() {
			p.AveragePrice = decimal.Zero
			p.Investment = decimal.Zero
			p.InvestmentWithCurrencyEffect = decimal.Zero
		}

	case Dividend:
		p.Dividend = p.Dividend.Add(a.Amount())
		p.DividendWithCurrencyEffect = p.DividendWithCurrencyEffect.Add(a.Amount().Mul(rate))
		p.addFee(a.Fee, feeCE)

	case Fee:
		p.addFee(a.Fee, feeCE)
	}
	return p, nil
}

// addFee books a fee that is not part of a trade: it is a realized loss.
func (p *Position) addFee(fee, feeCE decimal.Decimal) {
	p.Fee = p.Fee.Add(fee)
	p.FeeWithCurrencyEffect = p.FeeWithCurrencyEffect.Add(feeCE)
	p.RealizedGain = p.RealizedGain.Sub(fee)
	p.RealizedGainWithCurrencyEffect = p.RealizedGainWithCurrencyEffect.Sub(feeCE)
}

// timeWeightedSums returns the weighted investment sums and the number of
// held days as of the end of day on, counting the still open interval since
// the last activity.
func (p Position) timeWeightedSums(on date.Date) (weighted, weightedCE decimal.Decimal, days int) {
	weighted, weightedCE, days = p.weighted, p.weightedCE, p.heldDays
	if p.Quantity.IsPositive() && !p.lastActivity.IsZero() && on.After(p.lastActivity) {
		n := on.DaysSince(p.lastActivity)
		weighted = weighted.Add(p.Investment.Mul(decimal.NewFromInt(int64(n))))
		weightedCE = weightedCE.Add(p.InvestmentWithCurrencyEffect.Mul(decimal.NewFromInt(int64(n))))
		days += n
	}
	return weighted, weightedCE, days
}

// TimeWeightedInvestment returns the average daily opening investment over the
// days the position was held, up to the end of day on.
func (p Position) TimeWeightedInvestment(on date.Date) (native, withCurrencyEffect decimal.Decimal) {
	w, wce, n := p.timeWeightedSums(on)
	days := decimal.NewFromInt(int64(n))
	return ratio(w, days), ratio(wce, days)
}

// NetGain is the native net performance at the given price: unrealized plus
// realized gains and dividends.
func (p Position) NetGain(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price).Sub(p.Investment).Add(p.RealizedGain).Add(p.Dividend)
}

// NetGainWithCurrencyEffect is NetGain in base currency, valuing the held
// quantity at price converted with rate.
func (p Position) NetGainWithCurrencyEffect(price, rate decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price).Mul(rate).Sub(p.InvestmentWithCurrencyEffect).Add(p.RealizedGainWithCurrencyEffect).Add(p.DividendWithCurrencyEffect)
}
