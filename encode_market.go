package performance

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/performance/date"
	"github.com/shopspring/decimal"
)

const attrOn = "on"

// The market file is a JSONL file with one line per day, human-readable and
// git-friendly:
//
//	{"on":"2021-09-16","NVEI.TO":177.2,"CADUSD":0.79}
//
// Keys made of two currency codes are exchange rates (cost of one CAD in USD),
// any other key is the close price of a symbol.

// DecodeMarketData reads a market file. filename is for error messages only.
func DecodeMarketData(filename string, r io.Reader) (*MarketData, error) {
	lines, err := readLines(filename, r)
	if err != nil {
		return nil, err
	}
	m := NewMarketData()
	var errs []error
	for _, l := range lines {
		if err := decodeDailyPrices(m, l); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// decodeDailyPrices decodes a single line of the market file.
func decodeDailyPrices(m *MarketData, l fileLine) error {
	jobj := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader([]byte(l.txt)))
	dec.UseNumber()
	if err := dec.Decode(&jobj); err != nil {
		return fmt.Errorf("parse error %s:%v: not a correct json: %w", l.filename, l.i, err)
	}

	jvalue, ok := jobj[attrOn]
	if !ok {
		return fmt.Errorf("parse error %s:%v: missing the property %q with a date", l.filename, l.i, attrOn)
	}
	jstring, ok := jvalue.(string)
	if !ok {
		return fmt.Errorf("parse error %s:%v: property %q should be a string", l.filename, l.i, attrOn)
	}
	on, err := date.Parse(jstring)
	if err != nil {
		return fmt.Errorf("parse error %s:%v: invalid date %q: %w", l.filename, l.i, jstring, err)
	}
	delete(jobj, attrOn)

	for key, v := range jobj {
		n, ok := v.(json.Number)
		if !ok {
			return fmt.Errorf("parse error %s:%v: value of %q should be a number", l.filename, l.i, key)
		}
		value, err := decimal.NewFromString(n.String())
		if err != nil {
			return fmt.Errorf("parse error %s:%v: value of %q: %w", l.filename, l.i, key, err)
		}
		if IsPair(key) {
			m.AddExchangeRate(key[:3], key[3:], on, value)
		} else {
			m.AddPrice(key, on, value)
		}
	}
	return nil
}

// EncodeMarketData writes m as a market file, one line per day in
// chronological order.
func EncodeMarketData(w io.Writer, m *MarketData) error {
	for on := range m.Days() {
		line := map[string]any{attrOn: on.String()}
		for _, symbol := range m.Symbols() {
			if v, ok := m.Price(symbol, on); ok {
				line[symbol] = json.Number(v.String())
			}
		}
		for _, pair := range m.Pairs() {
			if v, ok := m.ExchangeRate(pair[:3], pair[3:], on); ok {
				line[pair] = json.Number(v.String())
			}
		}
		// encoding/json sorts map keys
		data, err := json.Marshal(line)
		if err != nil {
			return fmt.Errorf("cannot encode market data on %s: %w", on, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Merge copies every quote and rate of src into m, replacing existing values.
func (m *MarketData) Merge(src *MarketData) {
	for _, symbol := range src.Symbols() {
		for on, v := range src.Prices(symbol) {
			m.AddPrice(symbol, on, v)
		}
	}
	for _, pair := range src.Pairs() {
		for on, v := range src.Rates(pair) {
			m.AddExchangeRate(pair[:3], pair[3:], on, v)
		}
	}
}
