package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Lease document model. A LeaseAgreement is assembled per generation request
// and discarded; a LeaseConfiguration is the persistable form of the same
// inputs (manual schedule entries only, never the generated ones).

type (
	Parties struct {
		LandlordName    string `json:"landlord_name"`
		LandlordAddress string `json:"landlord_address"`
		TenantName      string `json:"tenant_name"`
		TenantAddress   string `json:"tenant_address,omitempty"`
		TenantEmail     string `json:"tenant_email,omitempty"`
		HasOccupants    bool   `json:"has_occupants"`
		Occupants       string `json:"occupants,omitempty"`
	}

	PropertyDetails struct {
		MailingAddress string   `json:"mailing_address"`
		ResidenceType  string   `json:"residence_type"`
		Bedrooms       int      `json:"bedrooms"`
		Bathrooms      int      `json:"bathrooms"`
		Furnished      bool     `json:"furnished"`
		Appliances     []string `json:"appliances,omitempty"`
	}

	LeaseTerms struct {
		StartDate           Date   `json:"start_date"`
		EndDate             Date   `json:"end_date"`
		MonthlyRent         Money  `json:"monthly_rent"`
		SecurityDeposit     Money  `json:"security_deposit"`
		PreviousRent        Money  `json:"previous_rent"`
		PetDeposit          Money  `json:"pet_deposit"`
		LateFee             Money  `json:"late_fee"`
		NSFFee              Money  `json:"nsf_fee"`
		PaymentInstructions string `json:"payment_instructions"`
	}

	PropertyFeatures struct {
		ParkingSpaces     int      `json:"parking_spaces"`
		UtilitiesIncluded []string `json:"utilities_included,omitempty"`
		SmokingAllowed    bool     `json:"smoking_allowed"`
		PetsAllowed       bool     `json:"pets_allowed"`
		WaterbedAllowed   bool     `json:"waterbed_allowed"`
	}

	// ScheduleOptions carries the user-facing schedule settings that travel
	// with a configuration: only manual entries and increase rules, never
	// builder output.
	ScheduleOptions struct {
		IncludeInLease    bool               `json:"include_in_lease"`
		AutoGenerate      bool               `json:"auto_generate"`
		ManualEntries     []PaymentEntry     `json:"manual_entries,omitempty"`
		RentIncreases     []RentIncreaseRule `json:"rent_increases,omitempty"`
		LeaseStartComment string             `json:"lease_start_comment,omitempty"`
	}

	AdditionalTerms struct {
		EarlyTerminationNotice int             `json:"early_termination_notice"`
		LandlordContactPhone   string          `json:"landlord_contact_phone,omitempty"`
		LandlordContactEmail   string          `json:"landlord_contact_email,omitempty"`
		SpecialConditions      []string        `json:"special_conditions,omitempty"`
		Schedule               ScheduleOptions `json:"payment_schedule"`
	}

	LeaseAgreement struct {
		Parties            Parties          `json:"parties"`
		Property           PropertyDetails  `json:"property_details"`
		Terms              LeaseTerms       `json:"lease_terms"`
		Features           PropertyFeatures `json:"property_features"`
		Additional         AdditionalTerms  `json:"additional_terms"`
		GoverningLawState  string           `json:"governing_law_state"`
		AgreementDate      Date             `json:"agreement_date"`
		LeadPaintDisclosed bool             `json:"lead_paint_disclosure"`

		// Schedule is the builder output embedded in the rendered document.
		// It is never serialized into configurations.
		Schedule []PaymentEntry `json:"-"`
	}

	LeaseConfiguration struct {
		Parties            Parties          `json:"parties"`
		Property           PropertyDetails  `json:"property_details"`
		Terms              LeaseTerms       `json:"lease_terms"`
		Features           PropertyFeatures `json:"property_features"`
		Additional         AdditionalTerms  `json:"additional_terms"`
		GoverningLawState  string           `json:"governing_law_state"`
		LeadPaintDisclosed bool             `json:"lead_paint_disclosure"`
		CreatedAt          time.Time        `json:"created_at"`
		UpdatedAt          time.Time        `json:"updated_at"`
	}
)

var (
	ErrEmptyLandlord     = errors.New("empty landlord name")
	ErrEmptyTenant       = errors.New("empty tenant name")
	ErrEmptyAddress      = errors.New("empty mailing address")
	ErrPetDepositNoPets  = errors.New("pet deposit requires pets to be allowed")
	ErrNoPreviousRent    = errors.New("previous rent required for renewal notice")
	ErrUnknownOutputKind = errors.New("unknown output format")
	ErrMalformedConfig   = errors.New("malformed configuration")
)

func (p Parties) Validate() error {
	if strings.TrimSpace(p.LandlordName) == "" {
		return ErrEmptyLandlord
	}
	if strings.TrimSpace(p.TenantName) == "" {
		return ErrEmptyTenant
	}
	return nil
}

func (p PropertyDetails) Validate() error {
	if strings.TrimSpace(p.MailingAddress) == "" {
		return ErrEmptyAddress
	}
	if p.Bedrooms < 0 || p.Bathrooms < 0 {
		return fmt.Errorf("negative room count")
	}
	return nil
}

func (t LeaseTerms) Validate() error {
	if err := t.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := t.EndDate.Validate(); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if !t.EndDate.After(t.StartDate) {
		return ErrInvalidRange
	}
	for _, m := range []Money{t.MonthlyRent, t.SecurityDeposit, t.PreviousRent, t.PetDeposit, t.LateFee, t.NSFFee} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs the cross-field checks that do not belong to the schedule
// builder (which only sees already-validated numeric and date inputs).
func (l LeaseAgreement) Validate() error {
	if err := l.Parties.Validate(); err != nil {
		return err
	}
	if err := l.Property.Validate(); err != nil {
		return err
	}
	if err := l.Terms.Validate(); err != nil {
		return err
	}
	if !l.Features.PetsAllowed && !l.Terms.PetDeposit.IsZero() {
		return ErrPetDepositNoPets
	}
	return nil
}

// ScheduleRequest derives the builder input from the lease terms and
// schedule options. The security deposit increase at renewal is the delta
// between the new and the previous monthly rent, per the original deposit
// policy.
func (l LeaseAgreement) ScheduleRequest() ScheduleRequest {
	var depositIncrease Money
	if l.Terms.PreviousRent.Cents > 0 && l.Terms.MonthlyRent.Cents > l.Terms.PreviousRent.Cents {
		depositIncrease = l.Terms.MonthlyRent.Sub(l.Terms.PreviousRent)
	}
	return ScheduleRequest{
		StartDate:               l.Terms.StartDate,
		EndDate:                 l.Terms.EndDate,
		BaseMonthlyRent:         l.Terms.MonthlyRent,
		RentIncreases:           l.Additional.Schedule.RentIncreases,
		ManualEntries:           l.Additional.Schedule.ManualEntries,
		SecurityDepositIncrease: depositIncrease,
		PreviousMonthRent:       l.Terms.PreviousRent,
		LeaseStartComment:       l.Additional.Schedule.LeaseStartComment,
	}
}

// Configuration strips the agreement down to its persistable form.
func (l LeaseAgreement) Configuration(now time.Time) LeaseConfiguration {
	return LeaseConfiguration{
		Parties:            l.Parties,
		Property:           l.Property,
		Terms:              l.Terms,
		Features:           l.Features,
		Additional:         l.Additional,
		GoverningLawState:  l.GoverningLawState,
		LeadPaintDisclosed: l.LeadPaintDisclosed,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Agreement rebuilds a lease agreement from a stored configuration.
func (c LeaseConfiguration) Agreement(agreementDate Date) LeaseAgreement {
	return LeaseAgreement{
		Parties:            c.Parties,
		Property:           c.Property,
		Terms:              c.Terms,
		Features:           c.Features,
		Additional:         c.Additional,
		GoverningLawState:  c.GoverningLawState,
		AgreementDate:      agreementDate,
		LeadPaintDisclosed: c.LeadPaintDisclosed,
	}
}

// ParseConfiguration decodes an uploaded configuration document.
func ParseConfiguration(data []byte) (LeaseConfiguration, error) {
	var c LeaseConfiguration
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return LeaseConfiguration{}, fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	return c, nil
}

// MarshalJSON encodes dates as plain ISO calendar dates so configurations
// stay readable and round-trip across uploads.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.ISO())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON keeps monetary amounts as integer cents on the wire.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Cents)
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var cents int64
	if err := json.Unmarshal(data, &cents); err != nil {
		return err
	}
	m.Cents = cents
	return nil
}
