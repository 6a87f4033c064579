package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"leasegen/internal/core"
	"leasegen/internal/docs"
)

// Output formats accepted by POST /generate.
const (
	outputHTML     = "html"
	outputPDF      = "pdf"
	outputSchedule = "schedule"
	outputRenewal  = "renewal_message"
)

type generateOptions struct {
	Output     string
	SaveConfig bool
	ConfigName string
	Archive    bool
}

// manualEntryInput is the JSON shape accepted in the manual entries
// textarea. Amounts are currency strings so users can paste "$1,200.50".
type manualEntryInput struct {
	DueDate         string `json:"due_date"`
	Rent            string `json:"rent_amount"`
	SecurityDeposit string `json:"security_deposit,omitempty"`
	PetDeposit      string `json:"pet_deposit,omitempty"`
	Comment         string `json:"comment,omitempty"`
}

type rentIncreaseInput struct {
	EffectiveDate  string `json:"effective_date"`
	NewMonthlyRent string `json:"new_monthly_rent"`
	Comment        string `json:"comment,omitempty"`
}

// fieldError reports a problem with a single form field; handlers turn it
// into a 422 with the field named.
type fieldError struct {
	Field string
	Msg   string
}

func (e *fieldError) Error() string { return e.Field + ": " + e.Msg }

// parseGenerateForm builds a lease agreement and output options from the
// submitted form. It normalizes at the boundary: currency strings become
// cents, dates become calendar dates, and free-text due-date labels are
// rejected here rather than deep in the builder.
func parseGenerateForm(r *http.Request) (core.LeaseAgreement, generateOptions, error) {
	var l core.LeaseAgreement
	var opts generateOptions

	l.Parties = core.Parties{
		LandlordName:    sanitizeInput(r.Form.Get("landlord_name")),
		LandlordAddress: sanitizeInput(r.Form.Get("landlord_address")),
		TenantName:      sanitizeInput(r.Form.Get("tenant_name")),
		TenantAddress:   sanitizeInput(r.Form.Get("tenant_address")),
		TenantEmail:     sanitizeInput(r.Form.Get("tenant_email")),
		HasOccupants:    formBool(r, "has_occupants"),
		Occupants:       sanitizeInput(r.Form.Get("occupants")),
	}

	l.Property = core.PropertyDetails{
		MailingAddress: sanitizeInput(r.Form.Get("mailing_address")),
		ResidenceType:  sanitizeInput(r.Form.Get("residence_type")),
		Bedrooms:       formInt(r, "bedrooms", 0),
		Bathrooms:      formInt(r, "bathrooms", 0),
		Furnished:      formBool(r, "furnished"),
		Appliances:     splitList(r.Form.Get("appliances")),
	}

	l.Features = core.PropertyFeatures{
		ParkingSpaces:     formInt(r, "parking_spaces", 0),
		UtilitiesIncluded: splitList(r.Form.Get("utilities_included")),
		SmokingAllowed:    formBool(r, "smoking_allowed"),
		PetsAllowed:       formBool(r, "pets_allowed"),
		WaterbedAllowed:   formBool(r, "waterbed_allowed"),
	}

	var err error
	if l.Terms.StartDate, err = formDate(r, "start_date", true); err != nil {
		return l, opts, err
	}
	if l.Terms.EndDate, err = formDate(r, "end_date", true); err != nil {
		return l, opts, err
	}
	if l.Terms.MonthlyRent, err = formMoney(r, "monthly_rent"); err != nil {
		return l, opts, err
	}
	if l.Terms.SecurityDeposit, err = formMoney(r, "security_deposit"); err != nil {
		return l, opts, err
	}
	if l.Terms.PreviousRent, err = formMoney(r, "previous_rent"); err != nil {
		return l, opts, err
	}
	if l.Terms.PetDeposit, err = formMoney(r, "pet_deposit"); err != nil {
		return l, opts, err
	}
	if l.Terms.LateFee, err = formMoney(r, "late_fee"); err != nil {
		return l, opts, err
	}
	if l.Terms.NSFFee, err = formMoney(r, "nsf_fee"); err != nil {
		return l, opts, err
	}
	l.Terms.PaymentInstructions = sanitizeInput(r.Form.Get("payment_instructions"))

	manual, err := parseManualEntries(r.Form.Get("manual_payments"))
	if err != nil {
		return l, opts, err
	}
	increases, err := parseRentIncreases(r.Form.Get("rent_increases"))
	if err != nil {
		return l, opts, err
	}

	l.Additional = core.AdditionalTerms{
		EarlyTerminationNotice: formInt(r, "early_termination_notice", 0),
		LandlordContactPhone:   sanitizeInput(r.Form.Get("landlord_contact_phone")),
		LandlordContactEmail:   sanitizeInput(r.Form.Get("landlord_contact_email")),
		SpecialConditions:      splitLines(r.Form.Get("special_conditions")),
		Schedule: core.ScheduleOptions{
			IncludeInLease:    formBool(r, "include_payment_schedule"),
			AutoGenerate:      formBool(r, "auto_generate_schedule"),
			ManualEntries:     manual,
			RentIncreases:     increases,
			LeaseStartComment: sanitizeInput(r.Form.Get("lease_start_comment")),
		},
	}

	l.GoverningLawState = sanitizeInput(r.Form.Get("governing_law_state"))
	l.LeadPaintDisclosed = formBool(r, "lead_paint_disclosure")

	if l.AgreementDate, err = formDate(r, "agreement_date", false); err != nil {
		return l, opts, err
	}
	if l.AgreementDate.IsZero() {
		now := time.Now()
		l.AgreementDate = core.NewDate(now.Year(), int(now.Month()), now.Day())
	}

	opts.Output = strings.TrimSpace(r.Form.Get("output_format"))
	if opts.Output == "" {
		opts.Output = outputHTML
	}
	switch opts.Output {
	case outputHTML, outputPDF, outputSchedule, outputRenewal:
	default:
		return l, opts, fmt.Errorf("%w: %q", core.ErrUnknownOutputKind, opts.Output)
	}

	opts.SaveConfig = formBool(r, "save_config")
	opts.Archive = formBool(r, "archive")
	opts.ConfigName = sanitizeInput(r.Form.Get("config_name"))
	if opts.ConfigName == "" {
		opts.ConfigName = defaultConfigName(l)
	}

	if err := l.Validate(); err != nil {
		return l, opts, err
	}
	return l, opts, nil
}

// defaultConfigName derives a stable name for saved configurations from
// the tenant and lease start.
func defaultConfigName(l core.LeaseAgreement) string {
	tenant := strings.ToLower(strings.TrimSpace(l.Parties.TenantName))
	tenant = strings.ReplaceAll(tenant, " ", "_")
	if tenant == "" {
		tenant = "lease"
	}
	return tenant + "_" + l.Terms.StartDate.ISO()
}

func parseManualEntries(raw string) ([]core.PaymentEntry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var inputs []manualEntryInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, &fieldError{Field: "manual_payments", Msg: "not a valid JSON array: " + err.Error()}
	}

	out := make([]core.PaymentEntry, 0, len(inputs))
	for i, in := range inputs {
		due, err := core.ParseDate(strings.TrimSpace(in.DueDate))
		if err != nil {
			return nil, &fieldError{
				Field: "manual_payments",
				Msg:   fmt.Sprintf("entry %d: due date %q must be a calendar date (YYYY-MM-DD)", i+1, in.DueDate),
			}
		}
		rent, err := core.ParseCurrencyToCents(in.Rent)
		if err != nil {
			return nil, &fieldError{Field: "manual_payments", Msg: fmt.Sprintf("entry %d: %v", i+1, err)}
		}
		sec, err := core.ParseCurrencyToCents(in.SecurityDeposit)
		if err != nil {
			return nil, &fieldError{Field: "manual_payments", Msg: fmt.Sprintf("entry %d: %v", i+1, err)}
		}
		pet, err := core.ParseCurrencyToCents(in.PetDeposit)
		if err != nil {
			return nil, &fieldError{Field: "manual_payments", Msg: fmt.Sprintf("entry %d: %v", i+1, err)}
		}
		out = append(out, core.PaymentEntry{
			DueDate:         due,
			Rent:            core.Money{Cents: rent},
			SecurityDeposit: core.Money{Cents: sec},
			PetDeposit:      core.Money{Cents: pet},
			Comment:         sanitizeInput(in.Comment),
			IsManual:        true,
		})
	}
	return out, nil
}

func parseRentIncreases(raw string) ([]core.RentIncreaseRule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var inputs []rentIncreaseInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, &fieldError{Field: "rent_increases", Msg: "not a valid JSON array: " + err.Error()}
	}

	out := make([]core.RentIncreaseRule, 0, len(inputs))
	for i, in := range inputs {
		eff, err := core.ParseDate(strings.TrimSpace(in.EffectiveDate))
		if err != nil {
			return nil, &fieldError{
				Field: "rent_increases",
				Msg:   fmt.Sprintf("rule %d: effective date %q must be a calendar date (YYYY-MM-DD)", i+1, in.EffectiveDate),
			}
		}
		rent, err := core.ParseCurrencyToCents(in.NewMonthlyRent)
		if err != nil {
			return nil, &fieldError{Field: "rent_increases", Msg: fmt.Sprintf("rule %d: %v", i+1, err)}
		}
		out = append(out, core.RentIncreaseRule{
			EffectiveDate:  eff,
			NewMonthlyRent: core.Money{Cents: rent},
			Comment:        sanitizeInput(in.Comment),
		})
	}
	return out, nil
}

func formMoney(r *http.Request, name string) (core.Money, error) {
	cents, err := core.ParseCurrencyToCents(r.Form.Get(name))
	if err != nil {
		return core.Money{}, &fieldError{Field: name, Msg: err.Error()}
	}
	return core.Money{Cents: cents}, nil
}

func formDate(r *http.Request, name string, required bool) (core.Date, error) {
	v := strings.TrimSpace(r.Form.Get(name))
	if v == "" {
		if required {
			return core.Date{}, &fieldError{Field: name, Msg: "required"}
		}
		return core.Date{}, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, &fieldError{Field: name, Msg: "must be a calendar date (YYYY-MM-DD)"}
	}
	return d, nil
}

func formInt(r *http.Request, name string, fallback int) int {
	v := strings.TrimSpace(r.Form.Get(name))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func formBool(r *http.Request, name string) bool {
	v := strings.TrimSpace(r.Form.Get(name))
	return v == "on" || v == "true" || v == "1"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l := strings.TrimSpace(line); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formValues carries display-ready strings for re-populating the form.
type formValues struct {
	LandlordName    string
	LandlordAddress string
	TenantName      string
	TenantAddress   string
	TenantEmail     string
	HasOccupants    bool
	Occupants       string

	MailingAddress string
	ResidenceType  string
	Bedrooms       int
	Bathrooms      int
	Furnished      bool
	Appliances     string
	ParkingSpaces  int
	Utilities      string

	SmokingAllowed  bool
	PetsAllowed     bool
	WaterbedAllowed bool

	StartDate           string
	EndDate             string
	MonthlyRent         string
	SecurityDeposit     string
	PreviousRent        string
	PetDeposit          string
	LateFee             string
	NSFFee              string
	PaymentInstructions string

	IncludeSchedule   bool
	AutoGenerate      bool
	RentIncreases     string
	ManualPayments    string
	LeaseStartComment string

	EarlyTermination  int
	LandlordPhone     string
	LandlordEmail     string
	SpecialConditions string
	GoverningLawState string
	AgreementDate     string
	LeadPaint         bool
}

func defaultFormValues() formValues {
	return formValues{
		ResidenceType:     "single-family home",
		Bedrooms:          3,
		Bathrooms:         1,
		AutoGenerate:      true,
		IncludeSchedule:   true,
		GoverningLawState: "Michigan",
	}
}

// configFormValues flattens a stored configuration back into form fields.
func configFormValues(c core.LeaseConfiguration) formValues {
	v := formValues{
		LandlordName:    c.Parties.LandlordName,
		LandlordAddress: c.Parties.LandlordAddress,
		TenantName:      c.Parties.TenantName,
		TenantAddress:   c.Parties.TenantAddress,
		TenantEmail:     c.Parties.TenantEmail,
		HasOccupants:    c.Parties.HasOccupants,
		Occupants:       c.Parties.Occupants,

		MailingAddress: c.Property.MailingAddress,
		ResidenceType:  c.Property.ResidenceType,
		Bedrooms:       c.Property.Bedrooms,
		Bathrooms:      c.Property.Bathrooms,
		Furnished:      c.Property.Furnished,
		Appliances:     strings.Join(c.Property.Appliances, ", "),
		ParkingSpaces:  c.Features.ParkingSpaces,
		Utilities:      strings.Join(c.Features.UtilitiesIncluded, ", "),

		SmokingAllowed:  c.Features.SmokingAllowed,
		PetsAllowed:     c.Features.PetsAllowed,
		WaterbedAllowed: c.Features.WaterbedAllowed,

		StartDate:           c.Terms.StartDate.ISO(),
		EndDate:             c.Terms.EndDate.ISO(),
		MonthlyRent:         docs.FormatCurrency(c.Terms.MonthlyRent),
		SecurityDeposit:     docs.FormatCurrency(c.Terms.SecurityDeposit),
		PreviousRent:        docs.FormatCurrency(c.Terms.PreviousRent),
		PetDeposit:          docs.FormatCurrency(c.Terms.PetDeposit),
		LateFee:             docs.FormatCurrency(c.Terms.LateFee),
		NSFFee:              docs.FormatCurrency(c.Terms.NSFFee),
		PaymentInstructions: c.Terms.PaymentInstructions,

		IncludeSchedule:   c.Additional.Schedule.IncludeInLease,
		AutoGenerate:      c.Additional.Schedule.AutoGenerate,
		LeaseStartComment: c.Additional.Schedule.LeaseStartComment,

		EarlyTermination:  c.Additional.EarlyTerminationNotice,
		LandlordPhone:     c.Additional.LandlordContactPhone,
		LandlordEmail:     c.Additional.LandlordContactEmail,
		SpecialConditions: strings.Join(c.Additional.SpecialConditions, "\n"),
		GoverningLawState: c.GoverningLawState,
		LeadPaint:         c.LeadPaintDisclosed,
	}

	if rules := c.Additional.Schedule.RentIncreases; len(rules) > 0 {
		inputs := make([]rentIncreaseInput, 0, len(rules))
		for _, r := range rules {
			inputs = append(inputs, rentIncreaseInput{
				EffectiveDate:  r.EffectiveDate.ISO(),
				NewMonthlyRent: docs.FormatCurrency(r.NewMonthlyRent),
				Comment:        r.Comment,
			})
		}
		if b, err := json.MarshalIndent(inputs, "", "  "); err == nil {
			v.RentIncreases = string(b)
		}
	}

	if entries := c.Additional.Schedule.ManualEntries; len(entries) > 0 {
		inputs := make([]manualEntryInput, 0, len(entries))
		for _, e := range entries {
			inputs = append(inputs, manualEntryInput{
				DueDate:         e.DueDate.ISO(),
				Rent:            docs.FormatCurrency(e.Rent),
				SecurityDeposit: docs.FormatCurrency(e.SecurityDeposit),
				PetDeposit:      docs.FormatCurrency(e.PetDeposit),
				Comment:         e.Comment,
			})
		}
		if b, err := json.MarshalIndent(inputs, "", "  "); err == nil {
			v.ManualPayments = string(b)
		}
	}

	return v
}
