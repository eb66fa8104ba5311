package performance

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculator_NVEI(t *testing.T) {
	s := mustSnapshot(twrConfig("CAD", "2022-06-01"), nvei(), nveiMarket())

	if got, want := len(s.HistoricalData), 260; got != want {
		t.Fatalf("len(HistoricalData) = %d, want %d", got, want)
	}

	t.Run("baseline", func(t *testing.T) {
		pt := s.HistoricalData[0]
		if got, want := pt.Date, day("2021-09-15"); got != want {
			t.Errorf("Date = %v, want %v", got, want)
		}
		if !isZero(pt.Value, pt.ValueWithCurrencyEffect, pt.TotalInvestment, pt.NetPerformance,
			pt.NetPerformanceInPercentage, pt.NetWorth, pt.InvestmentValueWithCurrencyEffect, pt.TimeWeightedReturn) {
			t.Errorf("baseline = %+v, want all zero", pt)
		}
	})

	t.Run("first buy", func(t *testing.T) {
		pt := s.HistoricalData[1]
		want := D("278.0268")
		for name, got := range map[string]decimal.Decimal{
			"Value":                             pt.Value,
			"NetWorth":                          pt.NetWorth,
			"TotalInvestment":                   pt.TotalInvestment,
			"InvestmentValueWithCurrencyEffect": pt.InvestmentValueWithCurrencyEffect,
		} {
			if !got.Equal(want) {
				t.Errorf("%s = %v, want %v", name, got, want)
			}
		}
		if !isZero(pt.NetPerformance, pt.NetPerformanceInPercentage, pt.NetPerformanceWithCurrencyEffect) {
			t.Errorf("performance on first buy = %v / %v, want 0", pt.NetPerformance, pt.NetPerformanceInPercentage)
		}
	})

	t.Run("after liquidation", func(t *testing.T) {
		if got, want := s.HistoricalData[78].Date, day("2021-12-02"); got != want {
			t.Fatalf("HistoricalData[78].Date = %v, want %v", got, want)
		}
		for _, pt := range s.HistoricalData[78:] {
			if !isZero(pt.Value, pt.TotalInvestment) {
				t.Errorf("%v: value = %v, investment = %v, want 0", pt.Date, pt.Value, pt.TotalInvestment)
			}
			if got, want := pt.NetPerformance, D("-107.69106"); !got.Equal(want) {
				t.Errorf("%v: NetPerformance = %v, want %v", pt.Date, got, want)
			}
			if got, want := pt.NetPerformanceInPercentage.Round(16), D("-0.3744896791248977"); !got.Equal(want) {
				t.Errorf("%v: NetPerformanceInPercentage = %v, want %v", pt.Date, got, want)
			}
		}
	})

	t.Run("position", func(t *testing.T) {
		p, ok := s.Position("NVEI.TO")
		if !ok {
			t.Fatal("Position(NVEI.TO) not found")
		}
		if !p.Quantity.IsZero() {
			t.Errorf("Quantity = %v, want 0", p.Quantity)
		}
		if got, want := p.NetPerformance, D("-107.69106"); !got.Equal(want) {
			t.Errorf("NetPerformance = %v, want %v", got, want)
		}
		if got, want := p.TransactionCount, 2; got != want {
			t.Errorf("TransactionCount = %d, want %d", got, want)
		}
		if got, want := p.FirstBuyDate, day("2021-09-16"); got != want {
			t.Errorf("FirstBuyDate = %v, want %v", got, want)
		}
		if got, want := p.MarketPrice, D("87.8"); !got.Equal(want) {
			t.Errorf("MarketPrice = %v, want %v", got, want)
		}
		if got, want := p.TimeWeightedInvestment.Round(10), D("287.5674978591"); !got.Equal(want) {
			t.Errorf("TimeWeightedInvestment = %v, want %v", got, want)
		}
		if got, want := p.NetPerformanceWithCurrencyEffectMap["max"], p.NetPerformanceWithCurrencyEffect; !got.Equal(want) {
			t.Errorf("NetPerformanceWithCurrencyEffectMap[max] = %v, want %v", got, want)
		}
		if got, want := p.NetPerformancePercentageWithCurrencyEffectMap["max"], p.NetPerformancePercentageWithCurrencyEffect; !got.Equal(want) {
			t.Errorf("NetPerformancePercentageWithCurrencyEffectMap[max] = %v, want %v", got, want)
		}
		for _, key := range []string{"1d", "wtd", "mtd", "ytd"} {
			if got := p.NetPerformanceWithCurrencyEffectMap[key]; !got.IsZero() {
				t.Errorf("NetPerformanceWithCurrencyEffectMap[%s] = %v, want 0 for a closed position", key, got)
			}
		}
	})

	t.Run("totals", func(t *testing.T) {
		if !isZero(s.TotalInvestment, s.CurrentValueInBaseCurrency) {
			t.Errorf("totals = %v / %v, want 0", s.TotalInvestment, s.CurrentValueInBaseCurrency)
		}
		if s.HasErrors {
			t.Errorf("HasErrors = true, errors: %v", s.Errors)
		}
	})
}

func TestCalculator_Investments(t *testing.T) {
	c, err := NewCalculator(twrConfig("CAD", "2022-06-01"), nvei(), nveiMarket())
	if err != nil {
		t.Fatal(err)
	}
	items, err := c.Investments()
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		day, investment string
	}{
		{"2021-09-16", "278.0268"},
		{"2021-11-15", "323.3451148306734137796808096536"},
		{"2021-12-01", "0"},
	}
	if len(items) != len(want) {
		t.Fatalf("Investments() = %v, want %d items", items, len(want))
	}
	for i, w := range want {
		if got, want := items[i].Date, day(w.day); got != want {
			t.Errorf("Investments()[%d].Date = %v, want %v", i, got, want)
		}
		if got, want := items[i].Investment, D(w.investment); !got.Equal(want) {
			t.Errorf("Investments()[%d].Investment = %v, want %v", i, got, want)
		}
	}
}

func TestCalculator_Idempotent(t *testing.T) {
	acts := nvei()
	a := mustSnapshot(twrConfig("CAD", "2022-06-01"), acts, nveiMarket())
	slices.Reverse(acts)
	b := mustSnapshot(twrConfig("CAD", "2022-06-01"), acts, nveiMarket())
	if !reflect.DeepEqual(a, b) {
		t.Error("ComputeSnapshot() depends on the activity order")
	}
}

func TestCalculator_ZeroBasis(t *testing.T) {
	// a fee without any holding has no investment to relate to
	acts := []Activity{NewFee(day("2024-01-10"), "XYZ", "CAD", D("5"))}
	s := mustSnapshot(twrConfig("CAD", "2024-01-20"), acts, nil)
	for _, pt := range s.HistoricalData {
		if !isZero(pt.NetPerformanceInPercentage, pt.NetPerformanceInPercentageWithCurrencyEffect, pt.TimeWeightedReturn) {
			t.Errorf("%v: percentages = %v / %v, want 0", pt.Date, pt.NetPerformanceInPercentage, pt.TimeWeightedReturn)
		}
	}
	last := s.HistoricalData[len(s.HistoricalData)-1]
	if got, want := last.NetPerformance, D("-5"); !got.Equal(want) {
		t.Errorf("NetPerformance = %v, want %v", got, want)
	}
	if got, want := s.TotalFeesWithCurrencyEffect, D("5"); !got.Equal(want) {
		t.Errorf("TotalFeesWithCurrencyEffect = %v, want %v", got, want)
	}
}

func TestCalculator_OrderingError(t *testing.T) {
	acts := []Activity{
		buy("2024-01-10", "XYZ", "1", "10"),
		sell("2024-01-11", "XYZ", "2", "10"),
	}
	c, err := NewCalculator(twrConfig("CAD", "2024-01-20"), acts, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.ComputeSnapshot()
	var oerr *OrderingError
	if !errors.As(err, &oerr) {
		t.Fatalf("ComputeSnapshot() error = %v, want an *OrderingError", err)
	}
	if oerr.Symbol != "XYZ" || !oerr.Held.Equal(D(1)) || !oerr.Requested.Equal(D(2)) {
		t.Errorf("OrderingError = %+v, want XYZ held 1 requested 2", oerr)
	}
}

func TestNewCalculator_ConfigurationError(t *testing.T) {
	valid := twrConfig("USD", "2024-01-01")
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unsupported type", func(c *Config) { c.CalculationType = MWR }},
		{"unknown type", func(c *Config) { c.CalculationType = "XIRR" }},
		{"missing currency", func(c *Config) { c.BaseCurrency = "" }},
		{"lower case currency", func(c *Config) { c.BaseCurrency = "usd" }},
		{"unknown currency", func(c *Config) { c.BaseCurrency = "ZZZ" }},
		{"missing date", func(c *Config) { c.EvaluationDate = day("") }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			_, err := NewCalculator(cfg, nil, nil)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Errorf("NewCalculator() error = %v, want a *ConfigurationError", err)
			}
		})
	}
	if _, err := NewCalculator(valid, nil, nil); err != nil {
		t.Errorf("NewCalculator(valid) error = %v", err)
	}
}

func TestCalculator_Empty(t *testing.T) {
	acts := []Activity{buy("2024-02-01", "XYZ", "1", "10")}
	// every activity happens after the evaluation date
	s := mustSnapshot(twrConfig("CAD", "2024-01-01"), acts, nil)
	if len(s.Positions) != 0 || len(s.HistoricalData) != 0 || s.HasErrors {
		t.Errorf("ComputeSnapshot() = %+v, want an empty snapshot", s)
	}
	if !s.TotalInvestment.IsZero() {
		t.Errorf("TotalInvestment = %v, want 0", s.TotalInvestment)
	}
}

func TestCalculator_MissingPrice(t *testing.T) {
	m := NewMarketData()
	m.AddPrice("BBB", day("2024-01-05"), D("12"))
	acts := []Activity{
		buy("2024-01-02", "AAA", "10", "10"),
		buy("2024-01-02", "BBB", "10", "10"),
	}
	s := mustSnapshot(twrConfig("CAD", "2024-01-05"), acts, m)

	if !s.HasErrors || len(s.Errors) != 1 || s.Errors[0].Symbol != "AAA" {
		t.Fatalf("Errors = %v, want a single error on AAA", s.Errors)
	}
	if got, want := s.CurrentValueInBaseCurrency, D("120"); !got.Equal(want) {
		t.Errorf("CurrentValueInBaseCurrency = %v, want %v", got, want)
	}
	if got, want := s.TotalInvestment, D("100"); !got.Equal(want) {
		t.Errorf("TotalInvestment = %v, want %v", got, want)
	}
	aaa, _ := s.Position("AAA")
	if !isZero(aaa.Quantity, aaa.ValueInBaseCurrency, aaa.NetPerformance) {
		t.Errorf("AAA metrics = %+v, want zero figures", aaa)
	}
	last := s.HistoricalData[len(s.HistoricalData)-1]
	if got, want := last.NetPerformance, D("20"); !got.Equal(want) {
		t.Errorf("NetPerformance = %v, want %v", got, want)
	}
}

func TestCalculator_CurrencyEffect(t *testing.T) {
	m := NewMarketData()
	m.AddExchangeRate("USD", "EUR", day("2024-01-01"), D("0.9"))
	m.AddExchangeRate("USD", "EUR", day("2024-01-03"), D("0.8"))
	m.AddPrice("XYZ", day("2024-01-03"), D("110"))
	acts := []Activity{NewBuy(day("2024-01-01"), "XYZ", "USD", D(10), D(100))}

	s := mustSnapshot(twrConfig("EUR", "2024-01-03"), acts, m)
	if s.HasErrors {
		t.Fatalf("Errors = %v", s.Errors)
	}
	last := s.HistoricalData[len(s.HistoricalData)-1]
	for name, tc := range map[string]struct{ got, want decimal.Decimal }{
		"Value":                                  {last.Value, D(880)},
		"ValueWithCurrencyEffect":                {last.ValueWithCurrencyEffect, D(880)},
		"TotalInvestment":                        {last.TotalInvestment, D(800)},
		"TotalInvestmentValueWithCurrencyEffect": {last.TotalInvestmentValueWithCurrencyEffect, D(900)},
		"NetPerformance":                         {last.NetPerformance, D(80)},
		"NetPerformanceWithCurrencyEffect":       {last.NetPerformanceWithCurrencyEffect, D(-20)},
	} {
		if !tc.got.Equal(tc.want) {
			t.Errorf("%s = %v, want %v", name, tc.got, tc.want)
		}
	}

	t.Run("inverse pair", func(t *testing.T) {
		m := NewMarketData()
		m.AddExchangeRate("EUR", "USD", day("2024-01-01"), D("1.25"))
		m.AddPrice("XYZ", day("2024-01-03"), D("110"))
		s := mustSnapshot(twrConfig("EUR", "2024-01-03"), acts, m)
		if got, want := s.CurrentValueInBaseCurrency, D(880); !got.Equal(want) {
			t.Errorf("CurrentValueInBaseCurrency = %v, want %v", got, want)
		}
	})

	t.Run("missing rate", func(t *testing.T) {
		m := NewMarketData()
		m.AddPrice("XYZ", day("2024-01-03"), D("110"))
		s := mustSnapshot(twrConfig("EUR", "2024-01-03"), acts, m)
		if !s.HasErrors || s.Errors[0].Symbol != "XYZ" {
			t.Errorf("Errors = %v, want an error on XYZ", s.Errors)
		}
	})
}

func TestCalculator_Items(t *testing.T) {
	acts := append(nvei(),
		Activity{Date: day("2021-10-01"), Type: Interest, Quantity: D(1), UnitPrice: D("3.5"), Currency: "CAD"},
		Activity{Date: day("2021-10-02"), Type: Liability, Symbol: "loan", Quantity: D(1), UnitPrice: D(1000), Currency: "CAD"},
		Activity{Date: day("2021-10-03"), Type: Valuable, Symbol: "car", Quantity: D(1), UnitPrice: D(5000), Currency: "CAD", Fee: D(2)},
	)
	s := mustSnapshot(twrConfig("CAD", "2022-06-01"), acts, nveiMarket())
	for name, tc := range map[string]struct{ got, want decimal.Decimal }{
		"TotalInterestWithCurrencyEffect":    {s.TotalInterestWithCurrencyEffect, D("3.5")},
		"TotalLiabilitiesWithCurrencyEffect": {s.TotalLiabilitiesWithCurrencyEffect, D(1000)},
		"TotalValuablesWithCurrencyEffect":   {s.TotalValuablesWithCurrencyEffect, D(5000)},
		"TotalFeesWithCurrencyEffect":        {s.TotalFeesWithCurrencyEffect, D(2)},
	} {
		if !tc.got.Equal(tc.want) {
			t.Errorf("%s = %v, want %v", name, tc.got, tc.want)
		}
	}
	if len(s.Positions) != 1 {
		t.Errorf("len(Positions) = %d, want 1", len(s.Positions))
	}
}

func TestCalculator_AccountBalances(t *testing.T) {
	cfg := twrConfig("CAD", "2022-06-01")
	cfg.AccountBalances = []AccountBalance{{Date: day("2021-09-01"), Value: D(100)}}
	s := mustSnapshot(cfg, nvei(), nveiMarket())
	if got := s.HistoricalData[0].TotalAccountBalance; !got.IsZero() {
		t.Errorf("baseline TotalAccountBalance = %v, want 0", got)
	}
	if got, want := s.HistoricalData[1].NetWorth, D("378.0268"); !got.Equal(want) {
		t.Errorf("NetWorth = %v, want %v", got, want)
	}
}
