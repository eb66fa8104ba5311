package performance

import "github.com/shopspring/decimal"

// precision is the number of fractional digits kept on ratios (returns,
// percentages). workPrecision is used on intermediate divisions such as the
// cost of a partial sale, so that rounding never reaches reported digits.
const (
	precision     = 20
	workPrecision = 28
)

var one = decimal.NewFromInt(1)

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | string | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case string:
		return decimal.RequireFromString(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// D returns value as a decimal. Strings must be valid decimal literals.
func D[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | string | decimal.Decimal](value T) decimal.Decimal {
	return newDecimal(value)
}

// ratio returns a/b, or 0 when b is zero: a zero basis has no performance to report.
func ratio(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, precision)
}

// portion returns amount*part/whole. When part is the whole, amount is returned
// untouched so that closing a position releases exactly its remaining cost.
func portion(amount, part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	if part.Equal(whole) {
		return amount
	}
	return amount.Mul(part).DivRound(whole, workPrecision)
}

// sum adds all values.
func sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
