package memory

import (
	"context"
	"fmt"
	"sync"

	"leasegen/internal/core"
	"leasegen/internal/export"
)

// Store is an in-memory ScheduleWriter used when no spreadsheet is
// configured and in tests.
type Store struct {
	mu    sync.Mutex
	items []Batch
}

// Batch is one appended schedule.
type Batch struct {
	Meta    export.ScheduleMeta
	Entries []core.PaymentEntry
}

var _ export.ScheduleWriter = (*Store)(nil)

func New() *Store { return &Store{} }

// AppendSchedule stores the schedule and returns a synthetic batch reference.
func (s *Store) AppendSchedule(_ context.Context, meta export.ScheduleMeta, entries []core.PaymentEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Batch{
		Meta:    meta,
		Entries: append([]core.PaymentEntry(nil), entries...),
	})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Batches returns a copy of everything appended so far.
func (s *Store) Batches() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Batch(nil), s.items...)
}
