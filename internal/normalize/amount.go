package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// ParseAmount derives a signed amount from either a single amount column or
// a credit/debit column pair. A lone credit is positive, a lone debit is
// negative; anything else falls back to the amount column.
func ParseAmount(amount, credit, debit string) (decimal.Decimal, error) {
	if !isBlank(credit) && isBlank(debit) {
		v, err := CleanMoney(credit, false)
		if err != nil {
			return decimal.Zero, err
		}
		return v.Abs(), nil
	}
	if !isBlank(debit) && isBlank(credit) {
		v, err := CleanMoney(debit, true)
		if err != nil {
			return decimal.Zero, err
		}
		return v.Abs().Neg(), nil
	}
	return CleanMoney(amount, false)
}

// CleanMoney parses a formatted money string such as "(1,234.50)",
// "$12.00", "1234.50-" or "+50". Parentheses, a trailing minus, a leading
// minus and forceNegative each make the result negative.
func CleanMoney(raw string, forceNegative bool) (decimal.Decimal, error) {
	if isBlank(raw) {
		return decimal.Zero, &ParseError{Msg: "Empty amount"}
	}
	s := strings.TrimSpace(raw)

	parenNeg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', ',', '$', '€', '£', '₹':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	trailingMinus := strings.HasSuffix(s, "-")
	s = strings.TrimSuffix(s, "-")

	leadingMinus := strings.HasPrefix(s, "-")
	s = strings.ReplaceAll(s, "+", "")
	s = strings.TrimPrefix(s, "-")

	val, err := decimal.NewFromString(s)
	if err != nil || s == "" {
		return decimal.Zero, &ParseError{Msg: "Invalid amount", Value: raw}
	}
	if forceNegative || parenNeg || trailingMinus || leadingMinus {
		return val.Neg(), nil
	}
	return val, nil
}

// PlainString formats d without exponent, keeping the scale it was parsed
// with: "1234.50" stays "1234.50" and "2000" stays "2000".
func PlainString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
