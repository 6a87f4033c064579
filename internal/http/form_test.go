package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"leasegen/internal/core"
)

func baseForm() url.Values {
	return url.Values{
		"landlord_name":        {"Pat Landlord"},
		"landlord_address":     {"1 Main St, Lansing, MI"},
		"tenant_name":          {"Jane Doe"},
		"mailing_address":      {"42 Oak Ave, Lansing, MI"},
		"residence_type":       {"single-family home"},
		"start_date":           {"2025-01-01"},
		"end_date":             {"2025-12-31"},
		"monthly_rent":         {"$1,200"},
		"security_deposit":     {"1200"},
		"payment_instructions": {"Pay by check to Pat Landlord."},
		"auto_generate_schedule": {"on"},
		"output_format":        {"html"},
	}
}

func formRequest(form url.Values) *http.Request {
	r, _ := http.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_ = r.ParseForm()
	return r
}

func TestParseGenerateForm(t *testing.T) {
	form := baseForm()
	form.Set("rent_increases", `[{"effective_date":"2025-06-01","new_monthly_rent":"$1,300"}]`)
	form.Set("manual_payments", `[{"due_date":"2025-03-01","rent_amount":"0","comment":"rent waived"}]`)
	form.Set("special_conditions", "No subletting.\nQuiet hours after 10pm.")
	form.Set("appliances", "stove, refrigerator")

	lease, opts, err := parseGenerateForm(formRequest(form))
	if err != nil {
		t.Fatalf("parseGenerateForm: %v", err)
	}

	if lease.Parties.TenantName != "Jane Doe" {
		t.Errorf("tenant = %q", lease.Parties.TenantName)
	}
	if lease.Terms.MonthlyRent.Cents != 120000 {
		t.Errorf("monthly rent = %d cents, want 120000", lease.Terms.MonthlyRent.Cents)
	}
	if len(lease.Additional.Schedule.RentIncreases) != 1 {
		t.Fatalf("rent increases = %d, want 1", len(lease.Additional.Schedule.RentIncreases))
	}
	if lease.Additional.Schedule.RentIncreases[0].NewMonthlyRent.Cents != 130000 {
		t.Errorf("increase rent = %d cents", lease.Additional.Schedule.RentIncreases[0].NewMonthlyRent.Cents)
	}
	if len(lease.Additional.Schedule.ManualEntries) != 1 {
		t.Fatalf("manual entries = %d, want 1", len(lease.Additional.Schedule.ManualEntries))
	}
	if !lease.Additional.Schedule.ManualEntries[0].IsManual {
		t.Error("manual entry not flagged manual")
	}
	if got := lease.Additional.SpecialConditions; len(got) != 2 || got[1] != "Quiet hours after 10pm." {
		t.Errorf("special conditions = %v", got)
	}
	if got := lease.Property.Appliances; len(got) != 2 || got[0] != "stove" {
		t.Errorf("appliances = %v", got)
	}
	if lease.AgreementDate.IsZero() {
		t.Error("agreement date should default to today")
	}
	if opts.Output != outputHTML {
		t.Errorf("output = %q", opts.Output)
	}
	if opts.ConfigName != "jane_doe_2025-01-01" {
		t.Errorf("config name = %q", opts.ConfigName)
	}
}

func TestParseGenerateFormRejectsFreeTextDueDate(t *testing.T) {
	form := baseForm()
	form.Set("manual_payments", `[{"due_date":"Lease signing","rent_amount":"500"}]`)

	_, _, err := parseGenerateForm(formRequest(form))
	var fe *fieldError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want fieldError", err)
	}
	if fe.Field != "manual_payments" {
		t.Errorf("field = %q", fe.Field)
	}
	if !strings.Contains(fe.Msg, "Lease signing") {
		t.Errorf("msg = %q, should name the bad value", fe.Msg)
	}
}

func TestParseGenerateFormRejectsBadMoney(t *testing.T) {
	form := baseForm()
	form.Set("monthly_rent", "twelve hundred")

	_, _, err := parseGenerateForm(formRequest(form))
	var fe *fieldError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want fieldError", err)
	}
	if fe.Field != "monthly_rent" {
		t.Errorf("field = %q", fe.Field)
	}
}

func TestParseGenerateFormPetDepositRequiresPets(t *testing.T) {
	form := baseForm()
	form.Set("pet_deposit", "250")

	_, _, err := parseGenerateForm(formRequest(form))
	if !errors.Is(err, core.ErrPetDepositNoPets) {
		t.Fatalf("err = %v, want ErrPetDepositNoPets", err)
	}

	form.Set("pets_allowed", "on")
	if _, _, err := parseGenerateForm(formRequest(form)); err != nil {
		t.Fatalf("with pets allowed: %v", err)
	}
}

func TestParseGenerateFormUnknownOutput(t *testing.T) {
	form := baseForm()
	form.Set("output_format", "docx")

	_, _, err := parseGenerateForm(formRequest(form))
	if !errors.Is(err, core.ErrUnknownOutputKind) {
		t.Fatalf("err = %v, want ErrUnknownOutputKind", err)
	}
}

func TestParseGenerateFormRequiredDates(t *testing.T) {
	form := baseForm()
	form.Del("end_date")

	_, _, err := parseGenerateForm(formRequest(form))
	var fe *fieldError
	if !errors.As(err, &fe) || fe.Field != "end_date" {
		t.Fatalf("err = %v, want end_date fieldError", err)
	}
}

func TestConfigFormValuesRoundTrip(t *testing.T) {
	form := baseForm()
	form.Set("rent_increases", `[{"effective_date":"2025-06-01","new_monthly_rent":"1300"}]`)
	lease, _, err := parseGenerateForm(formRequest(form))
	if err != nil {
		t.Fatalf("parseGenerateForm: %v", err)
	}

	v := configFormValues(lease.Configuration(lease.AgreementDate.Time))
	if v.TenantName != "Jane Doe" {
		t.Errorf("tenant = %q", v.TenantName)
	}
	if v.MonthlyRent != "$1,200" {
		t.Errorf("monthly rent = %q", v.MonthlyRent)
	}
	if v.StartDate != "2025-01-01" {
		t.Errorf("start date = %q", v.StartDate)
	}
	if !strings.Contains(v.RentIncreases, "2025-06-01") {
		t.Errorf("rent increases JSON = %q", v.RentIncreases)
	}

	// The emitted JSON must parse back through the same boundary.
	if _, err := parseRentIncreases(v.RentIncreases); err != nil {
		t.Errorf("re-parse rent increases: %v", err)
	}
}
