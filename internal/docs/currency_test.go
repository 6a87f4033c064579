package docs

import (
	"testing"

	"leasegen/internal/core"
)

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0"},
		{100, "$1"},
		{120000, "$1,200"},
		{123456, "$1,234.56"},
		{123450, "$1,234.50"},
		{100000000, "$1,000,000"},
		{2005, "$20.05"},
		{-120000, "-$1,200"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			got := FormatCurrency(core.Money{Cents: tc.cents})
			if got != tc.want {
				t.Fatalf("FormatCurrency(%d) = %q, want %q", tc.cents, got, tc.want)
			}
		})
	}
}
