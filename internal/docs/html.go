package docs

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"leasegen/internal/core"
	appweb "leasegen/web"
)

// Renderer executes the embedded HTML templates against lease view models.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded document templates once at startup.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("docs").Funcs(template.FuncMap{
		"currency": FormatCurrency,
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Template exposes the parsed template set to the HTTP layer, which shares
// the same embedded files for form pages.
func (r *Renderer) Template() *template.Template { return r.tmpl }

// ScheduleRow is a display-ready payment schedule line.
type ScheduleRow struct {
	Number   int
	DueDate  string
	Rent     string
	Deposits string
	Total    string
	Comment  string
	Manual   bool
}

// LeaseView is the template model for the lease document.
type LeaseView struct {
	Parties           core.Parties
	Property          core.PropertyDetails
	Features          core.PropertyFeatures
	Additional        core.AdditionalTerms
	GoverningLawState string
	LeadPaint         bool

	AgreementDate string
	StartDate     string
	EndDate       string

	MonthlyRent     string
	SecurityDeposit string
	PetDeposit      string
	LateFee         string
	NSFFee          string
	Instructions    string

	Appliances string
	Utilities  string

	IncludeSchedule bool
	Schedule        []ScheduleRow
}

// NewLeaseView flattens an agreement and its built schedule into
// display-ready strings. Formatting decisions live here, not in templates.
func NewLeaseView(l core.LeaseAgreement) LeaseView {
	v := LeaseView{
		Parties:           l.Parties,
		Property:          l.Property,
		Features:          l.Features,
		Additional:        l.Additional,
		GoverningLawState: l.GoverningLawState,
		LeadPaint:         l.LeadPaintDisclosed,

		AgreementDate: l.AgreementDate.Display(),
		StartDate:     l.Terms.StartDate.Display(),
		EndDate:       l.Terms.EndDate.Display(),

		MonthlyRent:     FormatCurrency(l.Terms.MonthlyRent),
		SecurityDeposit: FormatCurrency(l.Terms.SecurityDeposit),
		PetDeposit:      FormatCurrency(l.Terms.PetDeposit),
		LateFee:         FormatCurrency(l.Terms.LateFee),
		NSFFee:          FormatCurrency(l.Terms.NSFFee),
		Instructions:    l.Terms.PaymentInstructions,

		Appliances: strings.Join(l.Property.Appliances, ", "),
		Utilities:  strings.Join(l.Features.UtilitiesIncluded, ", "),

		IncludeSchedule: l.Additional.Schedule.IncludeInLease && len(l.Schedule) > 0,
		Schedule:        ScheduleRows(l.Schedule),
	}
	return v
}

// ScheduleRows converts builder output into display rows.
func ScheduleRows(entries []core.PaymentEntry) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ScheduleRow{
			Number:   e.EntryNumber,
			DueDate:  e.DueDate.Display(),
			Rent:     FormatCurrency(e.Rent),
			Deposits: FormatCurrency(e.SecurityDeposit.Add(e.PetDeposit)),
			Total:    FormatCurrency(e.Total),
			Comment:  e.Comment,
			Manual:   e.IsManual,
		})
	}
	return rows
}

// LeaseHTML renders the full lease document.
func (r *Renderer) LeaseHTML(l core.LeaseAgreement) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "lease.html", NewLeaseView(l)); err != nil {
		return nil, fmt.Errorf("render lease: %w", err)
	}
	return buf.Bytes(), nil
}

// ScheduleHTML renders the standalone payment schedule document.
func (r *Renderer) ScheduleHTML(l core.LeaseAgreement) ([]byte, error) {
	data := struct {
		TenantName string
		Property   string
		StartDate  string
		EndDate    string
		Schedule   []ScheduleRow
	}{
		TenantName: l.Parties.TenantName,
		Property:   l.Property.MailingAddress,
		StartDate:  l.Terms.StartDate.Display(),
		EndDate:    l.Terms.EndDate.Display(),
		Schedule:   ScheduleRows(l.Schedule),
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "payment_schedule.html", data); err != nil {
		return nil, fmt.Errorf("render payment schedule: %w", err)
	}
	return buf.Bytes(), nil
}
