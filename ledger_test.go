package performance

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildLedger(t *testing.T) {
	acts := append(nvei(),
		buy("2021-10-01", "AAA", "1", "10"),
		Activity{Date: day("2021-08-01"), Type: Interest, Quantity: D(1), UnitPrice: D(2), Currency: "CAD"},
	)
	l, err := BuildLedger(acts)
	if err != nil {
		t.Fatalf("BuildLedger() error = %v", err)
	}
	if got, want := l.Symbols(), []string{"AAA", "NVEI.TO"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
	if got, want := l.Start(), day("2021-08-01"); got != want {
		t.Errorf("Start() = %v, want %v", got, want)
	}
	if got, want := len(l.Items), 1; got != want {
		t.Errorf("len(Items) = %d, want %d", got, want)
	}

	// same day: the BUY comes before the SELL
	got := l.Activities("NVEI.TO")
	wantTypes := []ActivityType{Buy, Buy, Sell, Sell}
	for i, a := range got {
		if a.Type != wantTypes[i] {
			t.Errorf("Activities()[%d].Type = %v, want %v", i, a.Type, wantTypes[i])
		}
	}
	if got, want := len(l.TradeDates()), 4; got != want {
		t.Errorf("len(TradeDates()) = %d, want %d", got, want)
	}
}

func TestBuildLedger_Errors(t *testing.T) {
	testCases := []struct {
		name string
		acts []Activity
	}{
		{"oversell", []Activity{buy("2024-01-02", "X", "1", "1"), sell("2024-01-01", "X", "1", "1")}},
		{"sell first", []Activity{sell("2024-01-01", "X", "1", "1")}},
		{"negative quantity", []Activity{buy("2024-01-01", "X", "-1", "1")}},
		{"negative price", []Activity{buy("2024-01-01", "X", "1", "-1")}},
		{"negative fee", []Activity{buy("2024-01-01", "X", "1", "1").WithFee(D(-1))}},
		{"missing date", []Activity{{Type: Buy, Symbol: "X", Currency: "CAD"}}},
		{"missing symbol", []Activity{buy("2024-01-01", "", "1", "1")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildLedger(tc.acts)
			var oerr *OrderingError
			if !errors.As(err, &oerr) {
				t.Errorf("BuildLedger() error = %v, want an *OrderingError", err)
			}
		})
	}
}

func TestParseActivityType(t *testing.T) {
	for _, s := range []string{"buy", " SELL", "Dividend", "fee", "INTEREST", "liability", "valuable"} {
		if _, err := ParseActivityType(s); err != nil {
			t.Errorf("ParseActivityType(%q) error = %v", s, err)
		}
	}
	if _, err := ParseActivityType("deposit"); err == nil {
		t.Error("ParseActivityType(deposit) succeeded, want an error")
	}
}
