// Package schedule builds payment schedules for lease documents.
//
// The builder merges two independently-specified sources of truth: monthly
// obligations generated from the lease terms and rent-increase rules, and
// manually authored entries that override the generated ones on a date
// collision. The result is a single ordered, deduplicated, fully annotated
// sequence.
package schedule

import (
	"fmt"
	"sort"

	"leasegen/internal/core"
)

// Build produces the complete payment schedule for a request. It is a pure
// function: no I/O, no shared state, a fresh slice on every call. Callers
// may invoke it concurrently.
//
// Either a complete, internally consistent schedule is returned or an error;
// never a partial result.
func Build(req core.ScheduleRequest) ([]core.PaymentEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rules := sortedRules(req.RentIncreases)
	autos := generateMonthly(req, rules)
	attachDeposits(autos, req)
	attachComments(autos, req)

	merged := mergeManual(autos, req.ManualEntries)
	finalize(merged)
	return merged, nil
}

// ManualOnly normalizes caller-authored entries without generating any
// monthly ones, for leases whose schedule is fully hand-written. The same
// collision, total, ordering and numbering rules as Build apply.
func ManualOnly(entries []core.PaymentEntry) ([]core.PaymentEntry, error) {
	for _, e := range entries {
		if err := e.DueDate.Validate(); err != nil {
			return nil, fmt.Errorf("manual entry: %w", err)
		}
		for _, m := range []core.Money{e.Rent, e.SecurityDeposit, e.PetDeposit} {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("manual entry %s: %w", e.DueDate.ISO(), err)
			}
		}
	}
	merged := mergeManual(nil, entries)
	finalize(merged)
	return merged, nil
}

// finalize recomputes totals, orders by due date, and assigns 1-based
// entry numbers in place.
func finalize(entries []core.PaymentEntry) {
	for i := range entries {
		entries[i].Total = entries[i].Rent.Add(entries[i].SecurityDeposit).Add(entries[i].PetDeposit)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DueDate.Before(entries[j].DueDate)
	})
	for i := range entries {
		entries[i].EntryNumber = i + 1
	}
}

// sortedRules copies and orders the increase rules by effective date so the
// builder never depends on caller-supplied ordering.
func sortedRules(rules []core.RentIncreaseRule) []core.RentIncreaseRule {
	out := make([]core.RentIncreaseRule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveDate.Before(out[j].EffectiveDate)
	})
	return out
}

// generateMonthly synthesizes the recurring entries: an optional entry for
// the month before the lease starts, then one entry per calendar month from
// the start month through the end month inclusive. Every entry falls on the
// start date's day of month, clamped to the last day of shorter months.
func generateMonthly(req core.ScheduleRequest, rules []core.RentIncreaseRule) []core.PaymentEntry {
	anchorDay := req.StartDate.Day()

	var autos []core.PaymentEntry
	if req.PreviousMonthRent.Cents > 0 {
		due := core.ClampedDate(req.StartDate.Year(), req.StartDate.Month()-1, anchorDay)
		autos = append(autos, core.PaymentEntry{
			DueDate: due,
			Rent:    req.PreviousMonthRent,
			Comment: "Last month at current rate",
		})
	}

	year, month := req.StartDate.Year(), req.StartDate.Month()
	endYear, endMonth := req.EndDate.Year(), req.EndDate.Month()
	for year < endYear || (year == endYear && month <= endMonth) {
		due := core.ClampedDate(year, month, anchorDay)
		autos = append(autos, core.PaymentEntry{
			DueDate: due,
			Rent:    rentFor(due, req.BaseMonthlyRent, rules),
		})
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return autos
}

// rentFor resolves the recurring rent for a due date. Among all rules whose
// effective date does not exceed the due date, the one with the latest
// effective date wins; with none applicable the base rent stands. Rules are
// pre-sorted ascending, so the last applicable one is the winner.
func rentFor(due core.Date, base core.Money, rules []core.RentIncreaseRule) core.Money {
	rent := base
	for _, r := range rules {
		if r.EffectiveDate.After(due) {
			break
		}
		rent = r.NewMonthlyRent
	}
	return rent
}

// attachDeposits places the one-time deposit increases on the earliest
// generated entry. Exactly one entry carries them; all others stay at zero.
func attachDeposits(autos []core.PaymentEntry, req core.ScheduleRequest) {
	if len(autos) == 0 {
		return
	}
	earliest := 0
	for i := range autos {
		if autos[i].DueDate.Before(autos[earliest].DueDate) {
			earliest = i
		}
	}
	autos[earliest].SecurityDeposit = req.SecurityDepositIncrease
	autos[earliest].PetDeposit = req.PetDepositIncrease
}

// attachComments annotates the generated entries: the entry dated exactly on
// the lease start gets the caller's comment (or a default), and entries in a
// rule's effective month inherit that rule's comment when they have none.
func attachComments(autos []core.PaymentEntry, req core.ScheduleRequest) {
	for i := range autos {
		if autos[i].DueDate == req.StartDate {
			autos[i].Comment = leaseStartComment(req, autos[i])
		}
	}
	for i := range autos {
		if autos[i].Comment != "" {
			continue
		}
		for _, r := range req.RentIncreases {
			if r.Comment != "" && autos[i].DueDate.SameMonth(r.EffectiveDate) {
				autos[i].Comment = r.Comment
			}
		}
	}
}

func leaseStartComment(req core.ScheduleRequest, entry core.PaymentEntry) string {
	if req.LeaseStartComment != "" {
		return req.LeaseStartComment
	}
	if entry.SecurityDeposit.Cents > 0 {
		return fmt.Sprintf("New lease first month rent plus $%d security deposit increase.",
			entry.SecurityDeposit.Cents/100)
	}
	return "First month rent"
}

// mergeManual unions the manual entries with the generated set keyed by due
// date. Generated entries are inserted first and manual entries second, so a
// date collision makes the manual entry replace the generated one wholesale.
// Manual entries on other dates become standalone slots. When two manual
// entries collide the later one in input order wins and stays manual.
func mergeManual(autos, manual []core.PaymentEntry) []core.PaymentEntry {
	type slot struct {
		index int
	}
	byDate := make(map[core.Date]slot, len(autos)+len(manual))
	out := make([]core.PaymentEntry, 0, len(autos)+len(manual))

	for _, e := range autos {
		byDate[e.DueDate] = slot{index: len(out)}
		out = append(out, e)
	}
	for _, e := range manual {
		e.IsManual = true
		if s, ok := byDate[e.DueDate]; ok {
			out[s.index] = e
			continue
		}
		byDate[e.DueDate] = slot{index: len(out)}
		out = append(out, e)
	}
	return out
}
