package performance

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/performance/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CalculationType names a performance calculation method.
type CalculationType string

// Known calculation types. Only TWR is implemented.
const (
	TWR  CalculationType = "TWR"  // time-weighted return
	MWR  CalculationType = "MWR"  // money-weighted return
	ROAI CalculationType = "ROAI" // return on average investment
	ROI  CalculationType = "ROI"  // return on investment
)

// ParseCalculationType parses a calculation type name, ignoring case.
func ParseCalculationType(s string) (CalculationType, error) {
	t := CalculationType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TWR, MWR, ROAI, ROI:
		return t, nil
	}
	return "", &ConfigurationError{Field: "calculation type", Reason: fmt.Sprintf("unknown type %q", s)}
}

// AccountBalance is the cash balance of the portfolio accounts from Date on,
// in base currency.
type AccountBalance struct {
	Date  date.Date       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// Config holds the parameters of a computation.
type Config struct {
	CalculationType CalculationType
	BaseCurrency    string
	OwnerID         string
	EvaluationDate  date.Date
	AccountBalances []AccountBalance
}

func (c Config) validate() error {
	switch c.CalculationType {
	case TWR:
	case MWR, ROAI, ROI:
		return &ConfigurationError{Field: "calculation type", Reason: fmt.Sprintf("%s is not supported", c.CalculationType)}
	default:
		return &ConfigurationError{Field: "calculation type", Reason: fmt.Sprintf("unknown type %q", c.CalculationType)}
	}
	if err := ValidateCurrency(c.BaseCurrency); err != nil {
		return &ConfigurationError{Field: "base currency", Reason: err.Error()}
	}
	if c.EvaluationDate.IsZero() {
		return &ConfigurationError{Field: "evaluation date", Reason: "missing date"}
	}
	return nil
}

// Calculator computes the performance of a portfolio. It holds no state
// besides its inputs: every call recomputes from scratch.
type Calculator struct {
	cfg        Config
	activities []Activity
	timeline   timeline
	log        zerolog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger. By default the calculator logs nothing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Calculator) { c.log = l.With().Str("component", "calculator").Logger() }
}

// NewCalculator validates cfg and returns a calculator over activities. A nil
// timeline is an empty one.
func NewCalculator(cfg Config, activities []Activity, prices PriceTimeline, opts ...Option) (*Calculator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if prices == nil {
		prices = NewMarketData()
	}
	c := &Calculator{
		cfg:        cfg,
		activities: slices.Clone(activities),
		timeline:   timeline{prices},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the calculator configuration.
func (c *Calculator) Config() Config { return c.cfg }

// ledger builds the ledger of the activities up to the evaluation date.
func (c *Calculator) ledger() (Ledger, error) {
	acts := make([]Activity, 0, len(c.activities))
	for _, a := range c.activities {
		if a.Date.After(c.cfg.EvaluationDate) {
			continue
		}
		acts = append(acts, a)
	}
	if ignored := len(c.activities) - len(acts); ignored > 0 {
		c.log.Debug().Int("ignored", ignored).Stringer("on", c.cfg.EvaluationDate).Msg("activities after evaluation date ignored")
	}
	return BuildLedger(acts)
}

// ComputeSnapshot computes the performance of the portfolio on the
// evaluation date. Only *OrderingError is returned, missing market data is
// reported in the snapshot Errors.
func (c *Calculator) ComputeSnapshot() (*PortfolioSnapshot, error) {
	l, err := c.ledger()
	if err != nil {
		return nil, err
	}
	return c.compute(l)
}

func (c *Calculator) compute(l Ledger) (*PortfolioSnapshot, error) {
	base := c.cfg.BaseCurrency
	if l.Empty() {
		return &PortfolioSnapshot{
			Date:                               c.cfg.EvaluationDate,
			Currency:                           base,
			Positions:                          []PositionMetrics{},
			Errors:                             []PositionError{},
			HistoricalData:                     []HistoricalDataPoint{},
			TotalInvestment:                    decimal.Zero,
			TotalInvestmentWithCurrencyEffect:  decimal.Zero,
			TotalFeesWithCurrencyEffect:        decimal.Zero,
			TotalInterestWithCurrencyEffect:    decimal.Zero,
			TotalLiabilitiesWithCurrencyEffect: decimal.Zero,
			TotalValuablesWithCurrencyEffect:   decimal.Zero,
			CurrentValueInBaseCurrency:         decimal.Zero,
		}, nil
	}

	rng := date.NewRange(l.Start().Add(-1), c.cfg.EvaluationDate)
	b := seriesBuilder{timeline: c.timeline, base: base, days: rng}
	results := make([]positionResult, 0, len(l.Symbols()))
	for _, symbol := range l.Symbols() {
		acts := l.Activities(symbol)
		r := positionResult{symbol: symbol, currency: acts[0].Currency, dataSource: acts[0].DataSource}
		s, perr, err := b.build(acts)
		if err != nil {
			return nil, err
		}
		if perr != nil {
			c.log.Warn().Str("symbol", symbol).Str("reason", perr.Reason).Msg("position excluded")
			r.err = perr
		} else {
			r.series = s
			c.log.Debug().Str("symbol", symbol).Stringer("quantity", s.position.Quantity).Int("days", len(s.days)).Msg("position computed")
		}
		results = append(results, r)
	}

	items, itemErrors := c.items(l.Items)
	for _, e := range itemErrors {
		c.log.Warn().Str("symbol", e.Symbol).Str("reason", e.Reason).Msg("item excluded")
	}
	snap := assemble(rng, base, results, items, itemErrors, c.balances())
	c.log.Info().Int("positions", len(snap.Positions)).Int("errors", len(snap.Errors)).Stringer("on", snap.Date).Msg("snapshot computed")
	return snap, nil
}

// items totals the portfolio level activities, each converted at the rate of
// its date.
func (c *Calculator) items(acts []Activity) (itemTotals, []PositionError) {
	totals := itemTotals{fees: decimal.Zero, interest: decimal.Zero, liabilities: decimal.Zero, valuables: decimal.Zero}
	var errs []PositionError
	for _, a := range acts {
		symbol := a.Symbol
		if symbol == "" {
			symbol = string(a.Type)
		}
		if err := ValidateCurrency(a.Currency); err != nil {
			errs = append(errs, PositionError{Symbol: symbol, DataSource: a.DataSource, Reason: err.Error()})
			continue
		}
		rate, ok := c.timeline.rateAsOf(a.Currency, c.cfg.BaseCurrency, a.Date)
		if !ok {
			errs = append(errs, PositionError{Symbol: symbol, DataSource: a.DataSource,
				Reason: fmt.Sprintf("no exchange rate %s/%s on or before %s", a.Currency, c.cfg.BaseCurrency, a.Date)})
			continue
		}
		amount := a.Amount().Mul(rate)
		totals.fees = totals.fees.Add(a.Fee.Mul(rate))
		switch a.Type {
		case Interest:
			totals.interest = totals.interest.Add(amount)
		case Liability:
			totals.liabilities = totals.liabilities.Add(amount)
		case Valuable:
			totals.valuables = totals.valuables.Add(amount)
		}
	}
	return totals, errs
}

func (c *Calculator) balances() *date.History[decimal.Decimal] {
	if len(c.cfg.AccountBalances) == 0 {
		return nil
	}
	h := new(date.History[decimal.Decimal])
	for _, b := range c.cfg.AccountBalances {
		h.Append(b.Date, b.Value)
	}
	return h
}

// Investments returns the total investment after every day with a BUY or a
// SELL.
func (c *Calculator) Investments() ([]InvestmentItem, error) {
	l, err := c.ledger()
	if err != nil {
		return nil, err
	}
	snap, err := c.compute(l)
	if err != nil {
		return nil, err
	}
	return investmentsOn(snap, l.TradeDates()), nil
}

// InvestmentsByGroup buckets data by period, see the package function.
func (c *Calculator) InvestmentsByGroup(data []HistoricalDataPoint, period date.Period) []InvestmentItem {
	return InvestmentsByGroup(data, period)
}
