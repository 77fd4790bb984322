// Package core holds the transaction domain: the record type, validation,
// the aggregation engine, and the query pipeline. Everything here is pure:
// functions take a snapshot of the collection and never mutate it.
package core

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAmount is returned for amounts that are not positive decimals.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is a monetary amount held in cents to keep arithmetic exact.
// It serializes as a plain decimal number (whole amounts without decimals),
// which is how the records are persisted.
type Money struct {
	Cents int64
}

// Plus returns m + other.
func (m Money) Plus(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Minus returns m - other.
func (m Money) Minus(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Float returns the decimal value as a float64, for ratio computations only.
// Calculations that must stay exact use Cents.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// Positive reports whether the amount is strictly greater than zero.
func (m Money) Positive() bool {
	return m.Cents > 0
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot and comma
// separators and only positive amounts.
//
//	ParseDecimalToCents("12.34")  -> 1234
//	ParseDecimalToCents("12,34")  -> 1234
//	ParseDecimalToCents("12.346") -> 1235
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := decimalToCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// decimalToCents is the sign-agnostic parser behind ParseDecimalToCents and
// JSON decoding. Zero and negative values pass through; validation rejects
// them later so a bad payload still deserializes.
func decimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return cents, nil
}

// decimalString renders the cents as a plain decimal number without
// float formatting artifacts: "5000000" for whole amounts, "123.45" otherwise.
func (m Money) decimalString() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	if rem == 0 {
		return sign + strconv.FormatInt(whole, 10)
	}
	return sign + strconv.FormatInt(whole, 10) + "." + twoDigits(rem)
}

// Rupiah formats the amount for display as Indonesian Rupiah, with dots as
// thousand separators: Rp5.000.000 or Rp12.345,67.
func (m Money) Rupiah() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(whole[i : i+3])
	}

	out := sign + "Rp" + b.String()
	if rem := cents % 100; rem != 0 {
		out += "," + twoDigits(rem)
	}
	return out
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// String implements fmt.Stringer using the plain decimal form.
func (m Money) String() string {
	return m.decimalString()
}

// MarshalJSON emits the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.decimalString()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	cents, err := decimalToCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}
