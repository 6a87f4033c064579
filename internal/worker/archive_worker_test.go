package worker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"leasegen/internal/amqp"
	"leasegen/internal/core"
	"leasegen/internal/export/memory"
	"leasegen/internal/storage"
)

type fakeSource struct {
	mu       sync.Mutex
	byID     map[int64]storage.StoredConfiguration
	archived map[int64]bool
	failed   map[int64]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		byID:     make(map[int64]storage.StoredConfiguration),
		archived: make(map[int64]bool),
		failed:   make(map[int64]string),
	}
}

func (f *fakeSource) Get(_ context.Context, id int64) (storage.StoredConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return storage.StoredConfiguration{}, storage.ErrConfigNotFound
	}
	return c, nil
}

func (f *fakeSource) ListPendingArchive(_ context.Context, limit int) ([]storage.StoredConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.StoredConfiguration
	for _, c := range f.byID {
		if c.ArchiveStatus == storage.ArchivePending && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSource) MarkArchived(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived[id] = true
	return nil
}

func (f *fakeSource) MarkArchiveError(_ context.Context, id int64, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = msg
	return nil
}

func sampleConfig() core.LeaseConfiguration {
	return core.LeaseConfiguration{
		Parties: core.Parties{
			LandlordName:    "Pat Landlord",
			LandlordAddress: "1 Main St, Lansing, MI",
			TenantName:      "Jane Doe",
		},
		Property: core.PropertyDetails{
			MailingAddress: "42 Oak Ave, Lansing, MI",
			ResidenceType:  "single-family home",
			Bedrooms:       3,
			Bathrooms:      1,
		},
		Terms: core.LeaseTerms{
			StartDate:           core.NewDate(2025, 1, 1),
			EndDate:             core.NewDate(2025, 3, 1),
			MonthlyRent:         core.Money{Cents: 120000},
			SecurityDeposit:     core.Money{Cents: 120000},
			PaymentInstructions: "Pay by check.",
		},
		Additional: core.AdditionalTerms{
			Schedule: core.ScheduleOptions{
				IncludeInLease: true,
				AutoGenerate:   true,
			},
		},
		GoverningLawState: "Michigan",
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

func TestHandleArchiveMessage(t *testing.T) {
	src := newFakeSource()
	src.byID[7] = storage.StoredConfiguration{
		ID:            7,
		Name:          "jane doe 2025",
		Config:        sampleConfig(),
		ArchiveStatus: storage.ArchivePending,
	}
	exp := memory.New()
	dir := t.TempDir()

	w := NewArchiveWorker(src, exp, dir, 10)
	if err := w.HandleArchiveMessage(context.Background(), amqp.NewArchiveMessage(7, "pdf")); err != nil {
		t.Fatalf("HandleArchiveMessage: %v", err)
	}

	path := filepath.Join(dir, "jane_doe_2025_7.pdf")
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("archived file missing: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Error("archived file is not a PDF")
	}

	batches := exp.Batches()
	if len(batches) != 1 {
		t.Fatalf("export batches = %d, want 1", len(batches))
	}
	if batches[0].Meta.Tenant != "Jane Doe" {
		t.Errorf("exported tenant = %q", batches[0].Meta.Tenant)
	}
	if len(batches[0].Entries) != 3 {
		t.Errorf("exported entries = %d, want 3", len(batches[0].Entries))
	}

	if !src.archived[7] {
		t.Error("configuration not marked archived")
	}
}

func TestHandleArchiveMessageMissingConfig(t *testing.T) {
	w := NewArchiveWorker(newFakeSource(), memory.New(), t.TempDir(), 10)
	err := w.HandleArchiveMessage(context.Background(), amqp.NewArchiveMessage(99, "pdf"))
	if err == nil {
		t.Fatal("expected error for missing configuration")
	}
}

func TestArchiveMarksErrorOnBadConfig(t *testing.T) {
	cfg := sampleConfig()
	cfg.Terms.EndDate = core.NewDate(2024, 1, 1) // before start

	src := newFakeSource()
	src.byID[3] = storage.StoredConfiguration{
		ID:            3,
		Name:          "broken",
		Config:        cfg,
		ArchiveStatus: storage.ArchivePending,
	}

	w := NewArchiveWorker(src, memory.New(), t.TempDir(), 10)
	err := w.HandleArchiveMessage(context.Background(), amqp.NewArchiveMessage(3, "pdf"))
	if err == nil {
		t.Fatal("expected schedule build error")
	}
	if src.failed[3] == "" {
		t.Error("archive error not recorded")
	}
	if src.archived[3] {
		t.Error("broken configuration must not be marked archived")
	}
}

func TestProcessPendingArchives(t *testing.T) {
	src := newFakeSource()
	for i := int64(1); i <= 3; i++ {
		src.byID[i] = storage.StoredConfiguration{
			ID:            i,
			Name:          "lease",
			Config:        sampleConfig(),
			ArchiveStatus: storage.ArchivePending,
		}
	}

	w := NewArchiveWorker(src, memory.New(), t.TempDir(), 10)
	if err := w.ProcessPendingArchives(context.Background()); err != nil {
		t.Fatalf("ProcessPendingArchives: %v", err)
	}

	for i := int64(1); i <= 3; i++ {
		if !src.archived[i] {
			t.Errorf("configuration %d not archived", i)
		}
	}
}
