package performance

import (
	"slices"
	"testing"
)

func TestMarketData(t *testing.T) {
	m := NewMarketData()
	m.AddPrice("AAA", day("2024-01-02"), D(10))
	m.AddPrice("AAA", day("2024-01-04"), D(12))
	m.AddExchangeRate("USD", "EUR", day("2024-01-02"), D("0.9"))

	t.Run("exact", func(t *testing.T) {
		if _, ok := m.Price("AAA", day("2024-01-03")); ok {
			t.Error("Price() on a day without quote succeeded")
		}
		if got, ok := m.Price("AAA", day("2024-01-04")); !ok || !got.Equal(D(12)) {
			t.Errorf("Price() = %v, %v, want 12", got, ok)
		}
		if got, ok := m.ExchangeRate("EUR", "EUR", day("2000-01-01")); !ok || !got.Equal(D(1)) {
			t.Errorf("ExchangeRate(EUR, EUR) = %v, %v, want 1", got, ok)
		}
	})

	t.Run("as of", func(t *testing.T) {
		if got, ok := m.PriceAsOf("AAA", day("2024-01-03")); !ok || !got.Equal(D(10)) {
			t.Errorf("PriceAsOf() = %v, %v, want 10", got, ok)
		}
		if _, ok := m.PriceAsOf("AAA", day("2024-01-01")); ok {
			t.Error("PriceAsOf() before the first quote succeeded")
		}
		if got, ok := m.ExchangeRateAsOf("USD", "EUR", day("2024-02-01")); !ok || !got.Equal(D("0.9")) {
			t.Errorf("ExchangeRateAsOf() = %v, %v, want 0.9", got, ok)
		}
	})

	t.Run("timeline", func(t *testing.T) {
		tl := timeline{m}
		if got, ok := tl.rate("EUR", "USD", day("2024-01-02")); !ok || !got.Round(10).Equal(D("1.1111111111")) {
			t.Errorf("rate(EUR, USD) = %v, %v, want the inverse of 0.9", got, ok)
		}
		if got, ok := tl.rateAsOf("EUR", "USD", day("2024-01-05")); !ok || got.IsZero() {
			t.Errorf("rateAsOf(EUR, USD) = %v, %v, want the inverse of 0.9", got, ok)
		}
		if _, ok := tl.rate("EUR", "USD", day("2024-01-05")); ok {
			t.Error("rate() on a day without rate succeeded")
		}
	})

	t.Run("listing", func(t *testing.T) {
		if got, want := m.Symbols(), []string{"AAA"}; !slices.Equal(got, want) {
			t.Errorf("Symbols() = %v, want %v", got, want)
		}
		if got, want := m.Pairs(), []string{"USDEUR"}; !slices.Equal(got, want) {
			t.Errorf("Pairs() = %v, want %v", got, want)
		}
		if got, want := m.Len(), 3; got != want {
			t.Errorf("Len() = %d, want %d", got, want)
		}
		if got, want := len(slices.Collect(m.Days())), 2; got != want {
			t.Errorf("len(Days()) = %d, want %d", got, want)
		}
	})

	t.Run("merge", func(t *testing.T) {
		other := NewMarketData()
		other.AddPrice("AAA", day("2024-01-04"), D(13))
		other.AddPrice("BBB", day("2024-01-04"), D(1))
		m.Merge(other)
		if got, _ := m.Price("AAA", day("2024-01-04")); !got.Equal(D(13)) {
			t.Errorf("Price() after Merge = %v, want 13", got)
		}
		if got, want := m.Symbols(), []string{"AAA", "BBB"}; !slices.Equal(got, want) {
			t.Errorf("Symbols() after Merge = %v, want %v", got, want)
		}
	})
}
