// Package core holds the domain model of the lease generator: calendar
// dates, monetary amounts in cents, payment schedule types and the lease
// document model.
//
// This file contains parsing of monetary form input into cents.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseCurrencyToCents converts a user-supplied amount string to cents with
// half-up rounding on the third decimal place. It tolerates a leading dollar
// sign, comma thousands separators and surrounding whitespace. The empty
// string parses to zero, since most monetary form fields are optional.
// Negative values and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseCurrencyToCents("1200")      -> 120000, nil
//	ParseCurrencyToCents("$1,234.56") -> 123456, nil
//	ParseCurrencyToCents("")          -> 0, nil
//	ParseCurrencyToCents("-5")        -> 0, ErrInvalidAmount
func ParseCurrencyToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
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
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits are cents; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
