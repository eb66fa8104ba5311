package performance

import (
	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

// HistoricalDataPoint holds the portfolio figures at the close of one day,
// in base currency.
type HistoricalDataPoint struct {
	Date                                         date.Date       `json:"date"`
	Value                                        decimal.Decimal `json:"value"`
	ValueWithCurrencyEffect                      decimal.Decimal `json:"valueWithCurrencyEffect"`
	InvestmentValueWithCurrencyEffect            decimal.Decimal `json:"investmentValueWithCurrencyEffect"` // net investment flow of the day
	TotalInvestment                              decimal.Decimal `json:"totalInvestment"`
	TotalInvestmentValueWithCurrencyEffect       decimal.Decimal `json:"totalInvestmentValueWithCurrencyEffect"`
	NetPerformance                               decimal.Decimal `json:"netPerformance"`
	NetPerformanceWithCurrencyEffect             decimal.Decimal `json:"netPerformanceWithCurrencyEffect"`
	NetPerformanceInPercentage                   decimal.Decimal `json:"netPerformanceInPercentage"`
	NetPerformanceInPercentageWithCurrencyEffect decimal.Decimal `json:"netPerformanceInPercentageWithCurrencyEffect"`
	NetWorth                                     decimal.Decimal `json:"netWorth"`
	TotalAccountBalance                          decimal.Decimal `json:"totalAccountBalance"`
	TimeWeightedReturn                           decimal.Decimal `json:"timeWeightedReturn"`
	TimeWeightedReturnWithCurrencyEffect         decimal.Decimal `json:"timeWeightedReturnWithCurrencyEffect"`
}

// PositionMetrics are the final figures of one position on the evaluation
// date. Amounts without an explicit currency are in base currency, except
// AveragePrice, MarketPrice, Fee and Dividend which are in the instrument
// currency.
type PositionMetrics struct {
	Symbol       string    `json:"symbol"`
	Currency     string    `json:"currency"`
	DataSource   string    `json:"dataSource,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	FirstBuyDate date.Date `json:"firstBuyDate"`

	Quantity                     decimal.Decimal `json:"quantity"`
	AveragePrice                 decimal.Decimal `json:"averagePrice"`
	Investment                   decimal.Decimal `json:"investment"`
	InvestmentWithCurrencyEffect decimal.Decimal `json:"investmentWithCurrencyEffect"`
	Fee                          decimal.Decimal `json:"fee"`
	FeeInBaseCurrency            decimal.Decimal `json:"feeInBaseCurrency"`
	Dividend                     decimal.Decimal `json:"dividend"`
	DividendInBaseCurrency       decimal.Decimal `json:"dividendInBaseCurrency"`
	MarketPrice                  decimal.Decimal `json:"marketPrice"`
	MarketPriceInBaseCurrency    decimal.Decimal `json:"marketPriceInBaseCurrency"`
	ValueInBaseCurrency          decimal.Decimal `json:"valueInBaseCurrency"`

	GrossPerformance                             decimal.Decimal `json:"grossPerformance"`
	GrossPerformancePercentage                   decimal.Decimal `json:"grossPerformancePercentage"`
	GrossPerformanceWithCurrencyEffect           decimal.Decimal `json:"grossPerformanceWithCurrencyEffect"`
	GrossPerformancePercentageWithCurrencyEffect decimal.Decimal `json:"grossPerformancePercentageWithCurrencyEffect"`
	NetPerformance                               decimal.Decimal `json:"netPerformance"`
	NetPerformancePercentage                     decimal.Decimal `json:"netPerformancePercentage"`
	NetPerformanceWithCurrencyEffect             decimal.Decimal `json:"netPerformanceWithCurrencyEffect"`
	NetPerformancePercentageWithCurrencyEffect   decimal.Decimal `json:"netPerformancePercentageWithCurrencyEffect"`

	NetPerformanceWithCurrencyEffectMap           map[string]decimal.Decimal `json:"netPerformanceWithCurrencyEffectMap,omitempty"`
	NetPerformancePercentageWithCurrencyEffectMap map[string]decimal.Decimal `json:"netPerformancePercentageWithCurrencyEffectMap,omitempty"`

	TimeWeightedInvestment                   decimal.Decimal `json:"timeWeightedInvestment"`
	TimeWeightedInvestmentWithCurrencyEffect decimal.Decimal `json:"timeWeightedInvestmentWithCurrencyEffect"`
	TimeWeightedReturn                       decimal.Decimal `json:"timeWeightedReturn"`
	TimeWeightedReturnWithCurrencyEffect     decimal.Decimal `json:"timeWeightedReturnWithCurrencyEffect"`

	TransactionCount int `json:"transactionCount"`
}

// PortfolioSnapshot is the result of a computation.
type PortfolioSnapshot struct {
	Date     date.Date `json:"date"`
	Currency string    `json:"currency"`

	Positions []PositionMetrics `json:"positions"`

	TotalInvestment                    decimal.Decimal `json:"totalInvestment"`
	TotalInvestmentWithCurrencyEffect  decimal.Decimal `json:"totalInvestmentWithCurrencyEffect"`
	TotalFeesWithCurrencyEffect        decimal.Decimal `json:"totalFeesWithCurrencyEffect"`
	TotalInterestWithCurrencyEffect    decimal.Decimal `json:"totalInterestWithCurrencyEffect"`
	TotalLiabilitiesWithCurrencyEffect decimal.Decimal `json:"totalLiabilitiesWithCurrencyEffect"`
	TotalValuablesWithCurrencyEffect   decimal.Decimal `json:"totalValuablesWithCurrencyEffect"`
	CurrentValueInBaseCurrency         decimal.Decimal `json:"currentValueInBaseCurrency"`

	Errors    []PositionError `json:"errors"`
	HasErrors bool            `json:"hasErrors"`

	HistoricalData []HistoricalDataPoint `json:"historicalData"`
}

// Position returns the metrics of symbol, if any.
func (s *PortfolioSnapshot) Position(symbol string) (PositionMetrics, bool) {
	for _, p := range s.Positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return PositionMetrics{}, false
}

// At returns the historical data point of a day.
func (s *PortfolioSnapshot) At(on date.Date) (HistoricalDataPoint, bool) {
	if len(s.HistoricalData) == 0 {
		return HistoricalDataPoint{}, false
	}
	i := on.DaysSince(s.HistoricalData[0].Date)
	if i < 0 || i >= len(s.HistoricalData) {
		return HistoricalDataPoint{}, false
	}
	return s.HistoricalData[i], true
}

// itemTotals are the base currency totals of portfolio level items.
type itemTotals struct {
	fees, interest, liabilities, valuables decimal.Decimal
}

// positionResult is either a series or a recoverable error.
type positionResult struct {
	symbol, currency, dataSource string
	series                       *positionSeries
	err                          *PositionError
}

func newPositionMetrics(r positionResult) PositionMetrics {
	m := PositionMetrics{Symbol: r.symbol, Currency: r.currency, DataSource: r.dataSource}
	s := r.series
	if s == nil {
		return m
	}
	p := s.position
	end := s.last()
	twi, twiCE := end.twi()
	gross := end.netPerformance.Add(p.Fee.Mul(s.rate))
	grossCE := end.netPerformanceCE.Add(p.FeeWithCurrencyEffect)

	m.Tags = p.Tags
	m.FirstBuyDate = p.FirstBuyDate
	m.Quantity = p.Quantity
	m.AveragePrice = p.AveragePrice
	m.Investment = end.investment
	m.InvestmentWithCurrencyEffect = end.investmentCE
	m.Fee = p.Fee
	m.FeeInBaseCurrency = p.FeeWithCurrencyEffect
	m.Dividend = p.Dividend
	m.DividendInBaseCurrency = p.DividendWithCurrencyEffect
	m.MarketPrice = s.marketPrice
	m.MarketPriceInBaseCurrency = s.marketPrice.Mul(s.rate)
	m.ValueInBaseCurrency = end.value

	m.GrossPerformance = gross
	m.GrossPerformancePercentage = ratio(gross, twi)
	m.GrossPerformanceWithCurrencyEffect = grossCE
	m.GrossPerformancePercentageWithCurrencyEffect = ratio(grossCE, twiCE)
	m.NetPerformance = end.netPerformance
	m.NetPerformancePercentage = ratio(end.netPerformance, twi)
	m.NetPerformanceWithCurrencyEffect = end.netPerformanceCE
	m.NetPerformancePercentageWithCurrencyEffect = ratio(end.netPerformanceCE, twiCE)

	m.NetPerformanceWithCurrencyEffectMap = make(map[string]decimal.Decimal, len(RangeKeys))
	m.NetPerformancePercentageWithCurrencyEffectMap = make(map[string]decimal.Decimal, len(RangeKeys))
	for _, key := range RangeKeys {
		perf, pct := s.rangePerformance(key)
		m.NetPerformanceWithCurrencyEffectMap[key] = perf
		m.NetPerformancePercentageWithCurrencyEffectMap[key] = pct
	}

	m.TimeWeightedInvestment = twi
	m.TimeWeightedInvestmentWithCurrencyEffect = twiCE
	m.TimeWeightedReturn = s.twr
	m.TimeWeightedReturnWithCurrencyEffect = s.twrCE
	m.TransactionCount = p.TransactionCount
	return m
}

// assemble merges position results, already sorted by symbol, into a
// snapshot. Positions in error contribute zero everywhere.
func assemble(rng date.Range, currency string, results []positionResult, items itemTotals, itemErrors []PositionError, balances *date.History[decimal.Decimal]) *PortfolioSnapshot {
	snap := &PortfolioSnapshot{
		Date:                               rng.To,
		Currency:                           currency,
		Positions:                          make([]PositionMetrics, 0, len(results)),
		Errors:                             []PositionError{},
		TotalInvestment:                    decimal.Zero,
		TotalInvestmentWithCurrencyEffect:  decimal.Zero,
		TotalFeesWithCurrencyEffect:        items.fees,
		TotalInterestWithCurrencyEffect:    items.interest,
		TotalLiabilitiesWithCurrencyEffect: items.liabilities,
		TotalValuablesWithCurrencyEffect:   items.valuables,
		CurrentValueInBaseCurrency:         decimal.Zero,
		HistoricalData:                     make([]HistoricalDataPoint, 0, rng.Len()),
	}

	var healthy []*positionSeries
	for _, r := range results {
		m := newPositionMetrics(r)
		snap.Positions = append(snap.Positions, m)
		if r.err != nil {
			snap.Errors = append(snap.Errors, *r.err)
			continue
		}
		healthy = append(healthy, r.series)
		snap.TotalInvestment = snap.TotalInvestment.Add(m.Investment)
		snap.TotalInvestmentWithCurrencyEffect = snap.TotalInvestmentWithCurrencyEffect.Add(m.InvestmentWithCurrencyEffect)
		snap.TotalFeesWithCurrencyEffect = snap.TotalFeesWithCurrencyEffect.Add(m.FeeInBaseCurrency)
		snap.CurrentValueInBaseCurrency = snap.CurrentValueInBaseCurrency.Add(m.ValueInBaseCurrency)
	}
	snap.Errors = append(snap.Errors, itemErrors...)
	sortErrors(snap.Errors)
	snap.HasErrors = len(snap.Errors) > 0

	var twr, twrCE chainer
	previousInvestment := decimal.Zero
	i := 0
	for d := range rng.Days() {
		pt := HistoricalDataPoint{Date: d}
		flow, flowCE := decimal.Zero, decimal.Zero
		twi, twiCE := decimal.Zero, decimal.Zero
		for _, s := range healthy {
			day := s.days[i]
			pt.Value = pt.Value.Add(day.value)
			pt.ValueWithCurrencyEffect = pt.ValueWithCurrencyEffect.Add(day.valueCE)
			pt.TotalInvestment = pt.TotalInvestment.Add(day.investment)
			pt.TotalInvestmentValueWithCurrencyEffect = pt.TotalInvestmentValueWithCurrencyEffect.Add(day.investmentCE)
			pt.NetPerformance = pt.NetPerformance.Add(day.netPerformance)
			pt.NetPerformanceWithCurrencyEffect = pt.NetPerformanceWithCurrencyEffect.Add(day.netPerformanceCE)
			flow = flow.Add(day.cashFlow)
			flowCE = flowCE.Add(day.cashFlowCE)
			t, tCE := day.twi()
			twi, twiCE = twi.Add(t), twiCE.Add(tCE)
		}
		pt.InvestmentValueWithCurrencyEffect = pt.TotalInvestmentValueWithCurrencyEffect.Sub(previousInvestment)
		previousInvestment = pt.TotalInvestmentValueWithCurrencyEffect
		pt.NetPerformanceInPercentage = ratio(pt.NetPerformance, twi)
		pt.NetPerformanceInPercentageWithCurrencyEffect = ratio(pt.NetPerformanceWithCurrencyEffect, twiCE)
		pt.TotalAccountBalance = decimal.Zero
		if i > 0 && balances != nil {
			if b, ok := balances.ValueAsOf(d); ok {
				pt.TotalAccountBalance = b
			}
		}
		pt.NetWorth = pt.ValueWithCurrencyEffect.Add(pt.TotalAccountBalance)
		pt.TimeWeightedReturn = twr.add(pt.Value, flow)
		pt.TimeWeightedReturnWithCurrencyEffect = twrCE.add(pt.ValueWithCurrencyEffect, flowCE)
		snap.HistoricalData = append(snap.HistoricalData, pt)
		i++
	}
	return snap
}
