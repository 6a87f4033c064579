// Package docs renders the artifacts derived from a lease agreement:
// the HTML document, the PDF document, the standalone payment schedule
// and the plain-text renewal notice.
package docs

import (
	"strconv"
	"strings"

	"leasegen/internal/core"
)

// FormatCurrency renders an amount for documents: whole-dollar amounts drop
// the cents ($1,200), fractional amounts keep two places ($1,234.56).
func FormatCurrency(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	dollars := cents / 100
	rem := cents % 100

	s := groupThousands(dollars)
	if rem != 0 {
		s += "." + pad2(rem)
	}
	if neg {
		return "-$" + s
	}
	return "$" + s
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
