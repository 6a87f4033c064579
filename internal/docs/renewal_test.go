package docs

import (
	"errors"
	"strings"
	"testing"
	"time"

	"leasegen/internal/core"
)

func TestRenewalNotice(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	msg, err := RenewalNotice("Jordan Tenant",
		core.Money{Cents: 110000}, core.Money{Cents: 121000}, now)
	if err != nil {
		t.Fatalf("RenewalNotice() error = %v", err)
	}

	for _, want := range []string{
		"Hi Jordan!",
		"increase by 10% ($110)",
		"monthly total to $1,210",
		"by June 15, 2025",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("notice missing %q\nmessage: %s", want, msg)
		}
	}
}

func TestRenewalNoticeRoundsPercentage(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	// 1000 -> 1034 is a 3.4% increase, rounds to 3%.
	msg, err := RenewalNotice("Sam", core.Money{Cents: 100000}, core.Money{Cents: 103400}, now)
	if err != nil {
		t.Fatalf("RenewalNotice() error = %v", err)
	}
	if !strings.Contains(msg, "increase by 3%") {
		t.Errorf("notice percentage wrong: %s", msg)
	}
}

func TestRenewalNoticeRequiresPreviousRent(t *testing.T) {
	_, err := RenewalNotice("Sam", core.Money{}, core.Money{Cents: 100000}, time.Now())
	if !errors.Is(err, core.ErrNoPreviousRent) {
		t.Fatalf("error = %v, want ErrNoPreviousRent", err)
	}
}
