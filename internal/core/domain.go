package core

import (
	"errors"
	"time"
)

type (
	// Date is a calendar date normalized to UTC midnight. The engine never
	// works with times of day.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// PaymentEntry is one obligation in a payment schedule.
	PaymentEntry struct {
		DueDate         Date   `json:"due_date"`
		Rent            Money  `json:"rent_amount"`
		SecurityDeposit Money  `json:"security_deposit"`
		PetDeposit      Money  `json:"pet_deposit"`
		Total           Money  `json:"total"`
		Comment         string `json:"comment,omitempty"`
		IsManual        bool   `json:"is_manual"`
		EntryNumber     int    `json:"entry_number,omitempty"`
	}

	// RentIncreaseRule declares that from EffectiveDate onward the recurring
	// monthly rent changes to NewMonthlyRent.
	RentIncreaseRule struct {
		EffectiveDate  Date   `json:"effective_date"`
		NewMonthlyRent Money  `json:"new_monthly_rent"`
		Comment        string `json:"comment,omitempty"`
	}

	// ScheduleRequest is the sole input of the schedule builder.
	ScheduleRequest struct {
		StartDate               Date
		EndDate                 Date
		BaseMonthlyRent         Money
		RentIncreases           []RentIncreaseRule
		ManualEntries           []PaymentEntry
		SecurityDepositIncrease Money
		PetDepositIncrease      Money
		PreviousMonthRent       Money
		LeaseStartComment       string
	}
)

var (
	ErrInvalidRange  = errors.New("end date must be strictly after start date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

// ClampedDate builds a date from year, month and a desired day of month,
// clamping the day to the last valid day of shorter months. Months outside
// 1..12 roll over into adjacent years.
func ClampedDate(year, month, day int) Date {
	for month > 12 {
		month -= 12
		year++
	}
	for month < 1 {
		month += 12
		year--
	}
	last := daysInMonth(year, month)
	if day > last {
		day = last
	}
	return NewDate(year, month, day)
}

func daysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as an int.
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// ISO returns the date formatted as 2006-01-02.
func (d Date) ISO() string { return d.Time.Format("2006-01-02") }

// Display returns the date formatted as 01/02/2006 for documents.
func (d Date) Display() string { return d.Time.Format("01/02/2006") }

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d falls after other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// SameMonth reports whether two dates share year and month.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money { return Money{Cents: m.Cents + other.Cents} }

// Sub returns the difference of two amounts.
func (m Money) Sub(other Money) Money { return Money{Cents: m.Cents - other.Cents} }

// Dollars returns the dollar value as a float64 for display purposes only.
// Calculations stay in cents to avoid floating-point drift.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

func (e PaymentEntry) validateAmounts() error {
	for _, m := range []Money{e.Rent, e.SecurityDeposit, e.PetDeposit} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks a schedule request before building. Monetary fields must
// be non-negative and the lease window must be a real interval.
func (r ScheduleRequest) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return err
	}
	if err := r.EndDate.Validate(); err != nil {
		return err
	}
	if !r.EndDate.After(r.StartDate) {
		return ErrInvalidRange
	}
	for _, m := range []Money{r.BaseMonthlyRent, r.SecurityDepositIncrease, r.PetDepositIncrease, r.PreviousMonthRent} {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	for _, rule := range r.RentIncreases {
		if err := rule.EffectiveDate.Validate(); err != nil {
			return err
		}
		if err := rule.NewMonthlyRent.Validate(); err != nil {
			return err
		}
	}
	for _, e := range r.ManualEntries {
		if err := e.DueDate.Validate(); err != nil {
			return err
		}
		if err := e.validateAmounts(); err != nil {
			return err
		}
	}
	return nil
}
