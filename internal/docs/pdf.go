package docs

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"leasegen/internal/core"
)

const (
	pdfMargin    = 15.0
	pdfLineH     = 6.0
	pdfSectionH  = 8.0
	pdfTableRowH = 7.0
)

// LeasePDF renders the lease agreement as a PDF document.
func LeasePDF(l core.LeaseAgreement) ([]byte, error) {
	v := NewLeaseView(l)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Times", "B", 16)
	pdf.CellFormat(0, 10, "RESIDENTIAL LEASE AGREEMENT", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "", 11)
	pdf.MultiCell(0, pdfLineH, fmt.Sprintf(
		"This lease agreement is made on %s between %s (landlord), of %s, and %s (tenant), for the residence at %s.",
		v.AgreementDate, v.Parties.LandlordName, v.Parties.LandlordAddress,
		v.Parties.TenantName, v.Property.MailingAddress), "", "L", false)
	pdf.Ln(2)

	sectionTitle(pdf, "1. Term")
	bodyLine(pdf, fmt.Sprintf("The lease begins on %s and ends on %s.", v.StartDate, v.EndDate))

	sectionTitle(pdf, "2. Rent")
	bodyLine(pdf, fmt.Sprintf("Monthly rent is %s, payable in advance. %s", v.MonthlyRent, v.Instructions))
	bodyLine(pdf, fmt.Sprintf("A late fee of %s applies to overdue payments; returned payments incur a %s fee.",
		v.LateFee, v.NSFFee))

	sectionTitle(pdf, "3. Deposits")
	bodyLine(pdf, fmt.Sprintf("Security deposit: %s.", v.SecurityDeposit))
	if l.Features.PetsAllowed && !l.Terms.PetDeposit.IsZero() {
		bodyLine(pdf, fmt.Sprintf("Pet deposit: %s.", v.PetDeposit))
	}

	sectionTitle(pdf, "4. Property")
	bodyLine(pdf, fmt.Sprintf("%d bedroom, %d bathroom %s.",
		l.Property.Bedrooms, l.Property.Bathrooms, l.Property.ResidenceType))
	if v.Appliances != "" {
		bodyLine(pdf, "Appliances included: "+v.Appliances+".")
	}
	if v.Utilities != "" {
		bodyLine(pdf, "Utilities included: "+v.Utilities+".")
	}

	sectionTitle(pdf, "5. Use and Occupancy")
	bodyLine(pdf, fmt.Sprintf("Smoking is %s on the premises.", permitted(l.Features.SmokingAllowed)))
	bodyLine(pdf, fmt.Sprintf("Pets are %s on the premises.", permitted(l.Features.PetsAllowed)))
	bodyLine(pdf, fmt.Sprintf("Waterbeds are %s on the premises.", permitted(l.Features.WaterbedAllowed)))
	if l.Parties.HasOccupants && l.Parties.Occupants != "" {
		bodyLine(pdf, "Additional occupants: "+l.Parties.Occupants+".")
	}

	if len(l.Additional.SpecialConditions) > 0 {
		sectionTitle(pdf, "6. Special Conditions")
		for _, c := range l.Additional.SpecialConditions {
			bodyLine(pdf, "- "+c)
		}
	}

	if l.LeadPaintDisclosed {
		sectionTitle(pdf, "Lead Paint Disclosure")
		bodyLine(pdf, "The premises were built before 1978 and may contain lead-based paint. The tenant acknowledges receipt of the federally required disclosure.")
	}

	if v.IncludeSchedule {
		pdf.AddPage()
		pdf.SetFont("Times", "B", 14)
		pdf.CellFormat(0, 10, "PAYMENT SCHEDULE", "", 1, "C", false, 0, "")
		scheduleTable(pdf, v.Schedule)
	}

	pdf.Ln(10)
	sectionTitle(pdf, "Signatures")
	bodyLine(pdf, fmt.Sprintf("Governing law: State of %s.", v.GoverningLawState))
	pdf.Ln(8)
	pdf.SetFont("Times", "", 11)
	pdf.CellFormat(90, pdfLineH, "Landlord: _______________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, pdfLineH, "Date: ____________", "", 1, "L", false, 0, "")
	pdf.Ln(4)
	pdf.CellFormat(90, pdfLineH, "Tenant: _________________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, pdfLineH, "Date: ____________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write lease pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SchedulePDF renders the payment schedule as a standalone PDF document.
func SchedulePDF(l core.LeaseAgreement) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	pdf.SetFont("Times", "B", 16)
	pdf.CellFormat(0, 10, "PAYMENT SCHEDULE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Times", "", 11)
	bodyLine(pdf, "Tenant: "+l.Parties.TenantName)
	bodyLine(pdf, "Property: "+l.Property.MailingAddress)
	bodyLine(pdf, fmt.Sprintf("Lease term: %s to %s", l.Terms.StartDate.Display(), l.Terms.EndDate.Display()))
	pdf.Ln(2)

	scheduleTable(pdf, ScheduleRows(l.Schedule))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write schedule pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func scheduleTable(pdf *fpdf.Fpdf, rows []ScheduleRow) {
	headers := []string{"#", "Due Date", "Rent", "Deposits", "Total", "Comment"}
	widths := []float64{10, 28, 25, 25, 25, 67}

	pdf.SetFont("Times", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(widths[i], pdfTableRowH, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Times", "", 10)
	for _, r := range rows {
		cells := []string{
			fmt.Sprintf("%d", r.Number),
			r.DueDate,
			r.Rent,
			r.Deposits,
			r.Total,
			r.Comment,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], pdfTableRowH, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, pdfSectionH, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Times", "", 11)
}

func bodyLine(pdf *fpdf.Fpdf, text string) {
	pdf.MultiCell(0, pdfLineH, text, "", "L", false)
}

func permitted(allowed bool) string {
	if allowed {
		return "permitted"
	}
	return "not permitted"
}
