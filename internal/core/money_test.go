package core

import (
	"errors"
	"testing"
)

func TestParseCurrencyToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1200", 120000, false},
		{"1200.50", 120050, false},
		{"$1,234.56", 123456, false},
		{" 20 ", 2000, false},
		{"0", 0, false},
		{"", 0, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"-5", 0, true},
		{"+5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"12a", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseCurrencyToCents(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseCurrencyToCents(%q) error = %v, want ErrInvalidAmount", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCurrencyToCents(%q) error = %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseCurrencyToCents(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
