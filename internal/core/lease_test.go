package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func sampleAgreement() LeaseAgreement {
	return LeaseAgreement{
		Parties: Parties{
			LandlordName:    "Pat Landlord",
			LandlordAddress: "1 Main St, Burlington VT",
			TenantName:      "Jordan Tenant",
		},
		Property: PropertyDetails{
			MailingAddress: "2 Oak Ave, Burlington VT",
			ResidenceType:  "apartment",
			Bedrooms:       2,
			Bathrooms:      1,
		},
		Terms: LeaseTerms{
			StartDate:           NewDate(2025, 1, 1),
			EndDate:             NewDate(2025, 12, 31),
			MonthlyRent:         Money{Cents: 120000},
			LateFee:             Money{Cents: 2000},
			NSFFee:              Money{Cents: 3400},
			PaymentInstructions: "Check or bank transfer",
		},
		GoverningLawState: "Vermont",
		AgreementDate:     NewDate(2024, 12, 1),
	}
}

func TestLeaseAgreementValidate(t *testing.T) {
	good := sampleAgreement()
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	t.Run("missing landlord", func(t *testing.T) {
		l := sampleAgreement()
		l.Parties.LandlordName = "  "
		if err := l.Validate(); !errors.Is(err, ErrEmptyLandlord) {
			t.Fatalf("error = %v, want ErrEmptyLandlord", err)
		}
	})

	t.Run("pet deposit without pets", func(t *testing.T) {
		l := sampleAgreement()
		l.Terms.PetDeposit = Money{Cents: 30000}
		l.Features.PetsAllowed = false
		if err := l.Validate(); !errors.Is(err, ErrPetDepositNoPets) {
			t.Fatalf("error = %v, want ErrPetDepositNoPets", err)
		}
	})

	t.Run("inverted term", func(t *testing.T) {
		l := sampleAgreement()
		l.Terms.EndDate = NewDate(2024, 1, 1)
		if err := l.Validate(); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("error = %v, want ErrInvalidRange", err)
		}
	})
}

func TestScheduleRequestDerivation(t *testing.T) {
	l := sampleAgreement()
	l.Terms.PreviousRent = Money{Cents: 110000}
	l.Additional.Schedule.LeaseStartComment = "Renewal"

	req := l.ScheduleRequest()
	if req.SecurityDepositIncrease.Cents != 10000 {
		t.Errorf("deposit increase = %d, want 10000 (rent delta)", req.SecurityDepositIncrease.Cents)
	}
	if req.PreviousMonthRent.Cents != 110000 {
		t.Errorf("previous month rent = %d", req.PreviousMonthRent.Cents)
	}
	if req.LeaseStartComment != "Renewal" {
		t.Errorf("lease start comment = %q", req.LeaseStartComment)
	}

	// No previous rent means no automatic deposit increase.
	l.Terms.PreviousRent = Money{}
	if inc := l.ScheduleRequest().SecurityDepositIncrease; inc.Cents != 0 {
		t.Errorf("deposit increase = %d, want 0", inc.Cents)
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	cfg := sampleAgreement().Configuration(time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC))
	cfg.Additional.Schedule = ScheduleOptions{
		IncludeInLease: true,
		AutoGenerate:   true,
		ManualEntries: []PaymentEntry{
			{DueDate: NewDate(2025, 6, 1), Rent: Money{Cents: 60000}, Comment: "half month", IsManual: true},
		},
		RentIncreases: []RentIncreaseRule{
			{EffectiveDate: NewDate(2025, 7, 1), NewMonthlyRent: Money{Cents: 130000}},
		},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ParseConfiguration(data)
	if err != nil {
		t.Fatalf("ParseConfiguration() error = %v", err)
	}
	if back.Terms.StartDate != cfg.Terms.StartDate {
		t.Errorf("start date = %s, want %s", back.Terms.StartDate.ISO(), cfg.Terms.StartDate.ISO())
	}
	if back.Terms.MonthlyRent != cfg.Terms.MonthlyRent {
		t.Errorf("monthly rent = %d", back.Terms.MonthlyRent.Cents)
	}
	if len(back.Additional.Schedule.ManualEntries) != 1 ||
		back.Additional.Schedule.ManualEntries[0].DueDate != NewDate(2025, 6, 1) {
		t.Errorf("manual entries did not round-trip: %+v", back.Additional.Schedule.ManualEntries)
	}
	if len(back.Additional.Schedule.RentIncreases) != 1 ||
		back.Additional.Schedule.RentIncreases[0].NewMonthlyRent.Cents != 130000 {
		t.Errorf("rent increases did not round-trip: %+v", back.Additional.Schedule.RentIncreases)
	}
}

func TestParseConfigurationRejectsGarbage(t *testing.T) {
	for _, bad := range [][]byte{
		[]byte(`{"unknown_section": {}}`),
		[]byte(`not json`),
		[]byte(``),
	} {
		if _, err := ParseConfiguration(bad); !errors.Is(err, ErrMalformedConfig) {
			t.Errorf("ParseConfiguration(%q) error = %v, want ErrMalformedConfig", bad, err)
		}
	}
}
