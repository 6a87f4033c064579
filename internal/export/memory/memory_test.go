package memory

import (
	"context"
	"fmt"
	"testing"

	"leasegen/internal/core"
	"leasegen/internal/export"
)

func TestAppendScheduleCopiesEntries(t *testing.T) {
	s := New()
	entries := []core.PaymentEntry{
		{DueDate: core.NewDate(2025, 1, 1), Rent: core.Money{Cents: 120000}, Total: core.Money{Cents: 120000}, EntryNumber: 1},
	}

	ref, err := s.AppendSchedule(context.Background(), export.ScheduleMeta{Tenant: "Jane Doe"}, entries)
	if err != nil {
		t.Fatalf("AppendSchedule: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	entries[0].Rent = core.Money{Cents: 1}

	got := s.Batches()
	if len(got) != 1 {
		t.Fatalf("batches = %d, want 1", len(got))
	}
	if got[0].Entries[0].Rent.Cents != 120000 {
		t.Errorf("stored entry mutated through caller slice")
	}
	if got[0].Meta.Tenant != "Jane Doe" {
		t.Errorf("tenant = %q", got[0].Meta.Tenant)
	}
}

func TestAppendScheduleSequentialRefs(t *testing.T) {
	s := New()
	for i := 1; i <= 3; i++ {
		ref, err := s.AppendSchedule(context.Background(), export.ScheduleMeta{}, nil)
		if err != nil {
			t.Fatalf("AppendSchedule: %v", err)
		}
		want := fmt.Sprintf("mem:%d", i)
		if ref != want {
			t.Errorf("ref = %q, want %q", ref, want)
		}
	}
}
