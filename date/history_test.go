package date

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAppend(t *testing.T) {
	h := new(History[string])
	d1, v1 := New(2025, 07, 01), "25 Jul 1"
	d2, v2 := New(2024, 07, 01), "24 Jul 1"

	// Test is about appending two values in reverse order and checking that everything is
	// as expected at every step of the way.

	if h.Len() != 0 {
		t.Errorf("History.Len() = %v want 0", h.Len())
	}

	h.Append(d1, v1)
	if h.Len() != 1 {
		t.Errorf("Append(d1, v1).Len() = %v want 1", h.Len())
	}

	h.Append(d2, v2)
	if h.Len() != 2 {
		t.Errorf("Append(d2, v2).Len() = %v want 2", h.Len())
	}

	if h.days[1] != d1 {
		t.Errorf("history[1].day = %v want %v", h.days[1], d1)
	}
	if h.days[0] != d2 {
		t.Errorf("history[0].day = %v want %v", h.days[0], d2)
	}
	if h.values[1] != v1 {
		t.Errorf("history[1].value = %v want %v", h.values[1], v1)
	}
	if h.values[0] != v2 {
		t.Errorf("history[0].value = %v want %v", h.values[0], v2)
	}

	h.Append(d1, "overwritten")
	if got, _ := h.Get(d1); h.Len() != 2 || got != "overwritten" {
		t.Errorf("Append(d1, ...) on an existing day: Len() = %d, Get() = %q", h.Len(), got)
	}
}

func TestValueAsOf(t *testing.T) {
	h := new(History[decimal.Decimal])
	h.Append(New(2021, 9, 16), decimal.RequireFromString("177.2"))
	h.Append(New(2021, 12, 1), decimal.RequireFromString("115"))

	tests := []struct {
		name   string
		on     Date
		want   string
		wantOK bool
	}{
		{"before any value", New(2021, 9, 15), "0", false},
		{"exact day", New(2021, 9, 16), "177.2", true},
		{"forward filled", New(2021, 11, 30), "177.2", true},
		{"second value", New(2021, 12, 1), "115", true},
		{"after the last value", New(2022, 6, 1), "115", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := h.ValueAsOf(tt.on)
			if ok != tt.wantOK || !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ValueAsOf(%v) = %v, %v want %v, %v", tt.on, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIterate(t *testing.T) {
	a, b := new(History[int]), new(History[int])
	a.Append(New(2021, 1, 3), 1).Append(New(2021, 1, 1), 1)
	b.Append(New(2021, 1, 2), 2).Append(New(2021, 1, 3), 2)

	var got []string
	for d := range Iterate(a, b) {
		got = append(got, d.String())
	}
	want := []string{"2021-01-01", "2021-01-02", "2021-01-03"}
	if len(got) != len(want) {
		t.Fatalf("Iterate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Iterate()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
