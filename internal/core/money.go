// Package core provides the gold saving domain: goals, transactions and the
// parsing of the amounts users type into forms.
//
// Rupiah amounts are whole numbers. Gold quantities are decimal grams and are
// kept as decimals end to end to avoid float drift in totals.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Rupiah is a currency amount in whole rupiah.
type Rupiah int64

const (
	// MaxRupiah bounds every amount a user enters and every purchase value.
	MaxRupiah Rupiah = 1_000_000_000_000

	// MaxGramDecimals is the finest quantity precision accepted, 0.0001 gr.
	MaxGramDecimals = 4

	maxGramsInput = 20
)

// MaxGrams bounds a single purchase quantity.
var MaxGrams = decimal.NewFromInt(1_000_000)

// Grams is a gold quantity.
type Grams struct {
	decimal.Decimal
}

// NewGrams wraps a decimal gram quantity.
func NewGrams(d decimal.Decimal) Grams {
	return Grams{Decimal: d}
}

// ParseRupiah converts user input into a non-negative rupiah amount.
//
// It accepts plain digits ("900000"), dot thousands separators ("900.000")
// and an optional "Rp" prefix. Fractions, signs, malformed grouping and
// amounts above MaxRupiah are rejected.
//
// Examples:
//
//	ParseRupiah("900000")     -> 900000, nil
//	ParseRupiah("Rp 900.000") -> 900000, nil
//	ParseRupiah("900.00")     -> 0, ErrInvalidPrice
func ParseRupiah(s string) (Rupiah, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "Rp"))
	if s == "" {
		return 0, ErrInvalidPrice
	}
	if strings.Contains(s, ".") {
		groups := strings.Split(s, ".")
		if len(groups[0]) == 0 || len(groups[0]) > 3 {
			return 0, ErrInvalidPrice
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return 0, ErrInvalidPrice
			}
		}
		s = strings.Join(groups, "")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidPrice
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || Rupiah(v) > MaxRupiah {
		return 0, ErrInvalidPrice
	}
	return Rupiah(v), nil
}

// String renders the amount with dot grouping, e.g. "Rp9.000.000".
func (r Rupiah) String() string {
	v := int64(r)
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-Rp" + b.String()
	}
	return "Rp" + b.String()
}

// ParseGrams converts user input such as "1.0" or "0,5" into grams.
// Only plain decimal notation is accepted, with at most MaxGramDecimals
// fractional digits and a value up to MaxGrams.
func ParseGrams(s string) (Grams, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxGramsInput {
		return Grams{}, ErrInvalidQuantity
	}
	s = strings.ReplaceAll(s, ",", ".")
	whole, frac, dot := strings.Cut(s, ".")
	if whole == "" || (dot && frac == "") || len(frac) > MaxGramDecimals || !allDigits(whole) || !allDigits(frac) {
		return Grams{}, ErrInvalidQuantity
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Grams{}, ErrInvalidQuantity
	}
	g := Grams{Decimal: d}
	if !g.InRange() {
		return Grams{}, ErrInvalidQuantity
	}
	return g, nil
}

// InRange reports whether g is between 0 and MaxGrams with no more than
// MaxGramDecimals fractional digits.
func (g Grams) InRange() bool {
	return !g.IsNegative() && g.LessThanOrEqual(MaxGrams) && g.Exponent() >= -MaxGramDecimals
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String keeps at least one fractional digit so 1 gram reads "1.0".
func (g Grams) String() string {
	s := g.Decimal.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
