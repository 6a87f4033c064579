package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leasegen/internal/amqp"
	"leasegen/internal/core"
	"leasegen/internal/docs"
	"leasegen/internal/export"
	"leasegen/internal/schedule"
	"leasegen/internal/storage"
)

// ConfigSource is the slice of the repository the archive worker needs.
type ConfigSource interface {
	Get(ctx context.Context, id int64) (storage.StoredConfiguration, error)
	ListPendingArchive(ctx context.Context, limit int) ([]storage.StoredConfiguration, error)
	MarkArchived(ctx context.Context, id int64) error
	MarkArchiveError(ctx context.Context, id int64, msg string) error
}

// ArchiveWorker renders stored lease configurations into archived PDF
// documents and publishes their schedules to the export ledger.
type ArchiveWorker struct {
	store      ConfigSource
	exporter   export.ScheduleWriter
	archiveDir string
	batchSize  int
}

func NewArchiveWorker(store ConfigSource, exporter export.ScheduleWriter, archiveDir string, batchSize int) *ArchiveWorker {
	return &ArchiveWorker{
		store:      store,
		exporter:   exporter,
		archiveDir: archiveDir,
		batchSize:  batchSize,
	}
}

// HandleArchiveMessage processes a single archive message from AMQP.
func (w *ArchiveWorker) HandleArchiveMessage(ctx context.Context, msg *amqp.ArchiveMessage) error {
	slog.InfoContext(ctx, "Processing archive message", "config_id", msg.ConfigID)

	stored, err := w.store.Get(ctx, msg.ConfigID)
	if err != nil {
		return fmt.Errorf("get configuration from storage: %w", err)
	}

	return w.archiveOne(ctx, stored)
}

// StartupArchiveCheck processes pending configurations at worker startup,
// recovering from missed AMQP messages or worker downtime.
func (w *ArchiveWorker) StartupArchiveCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingArchive(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending archives for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending archives found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending archives on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, stored := range pending {
		if err := w.archiveOne(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "Failed to archive configuration during startup",
				"id", stored.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup archive check completed",
		"total", len(pending),
		"archived", successCount,
		"errors", errorCount)

	return nil
}

// ProcessPendingArchives archives queued configurations. This is a backup
// mechanism in case AMQP messages are lost.
func (w *ArchiveWorker) ProcessPendingArchives(ctx context.Context) error {
	pending, err := w.store.ListPendingArchive(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending archives: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending archives", "count", len(pending))

	for _, stored := range pending {
		if err := w.archiveOne(ctx, stored); err != nil {
			slog.ErrorContext(ctx, "Failed to archive configuration",
				"id", stored.ID, "error", err)
			continue
		}
	}

	return nil
}

// archiveOne rebuilds the lease from its stored configuration, writes the
// PDF into the archive directory, appends the schedule to the export
// ledger, and settles the archive status.
func (w *ArchiveWorker) archiveOne(ctx context.Context, stored storage.StoredConfiguration) error {
	now := time.Now()
	lease := stored.Config.Agreement(core.NewDate(now.Year(), int(now.Month()), now.Day()))

	if err := buildLeaseSchedule(&lease); err != nil {
		w.markError(ctx, stored.ID, err)
		return fmt.Errorf("build schedule: %w", err)
	}

	body, err := docs.LeasePDF(lease)
	if err != nil {
		w.markError(ctx, stored.ID, err)
		return fmt.Errorf("render lease PDF: %w", err)
	}

	if err := os.MkdirAll(w.archiveDir, 0755); err != nil {
		w.markError(ctx, stored.ID, err)
		return fmt.Errorf("create archive directory: %w", err)
	}
	path := filepath.Join(w.archiveDir, archiveFileName(stored))
	if err := os.WriteFile(path, body, 0644); err != nil {
		w.markError(ctx, stored.ID, err)
		return fmt.Errorf("write archive file: %w", err)
	}

	if w.exporter != nil && len(lease.Schedule) > 0 {
		meta := export.ScheduleMeta{
			Tenant:   lease.Parties.TenantName,
			Property: lease.Property.MailingAddress,
			Start:    lease.Terms.StartDate,
			End:      lease.Terms.EndDate,
		}
		ref, err := w.exporter.AppendSchedule(ctx, meta, lease.Schedule)
		if err != nil {
			w.markError(ctx, stored.ID, err)
			return fmt.Errorf("export schedule: %w", err)
		}
		slog.InfoContext(ctx, "Schedule exported", "id", stored.ID, "ref", ref)
	}

	if err := w.store.MarkArchived(ctx, stored.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark archived", "id", stored.ID, "error", err)
		// The archive itself succeeded; don't fail the message.
	}

	slog.InfoContext(ctx, "Configuration archived",
		"id", stored.ID,
		"name", stored.Name,
		"path", path,
		"entries", len(lease.Schedule))

	return nil
}

func (w *ArchiveWorker) markError(ctx context.Context, id int64, cause error) {
	if err := w.store.MarkArchiveError(ctx, id, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to mark archive error", "id", id, "error", err)
	}
}

// buildLeaseSchedule populates lease.Schedule per its schedule options.
func buildLeaseSchedule(l *core.LeaseAgreement) error {
	so := l.Additional.Schedule
	switch {
	case so.AutoGenerate:
		entries, err := schedule.Build(l.ScheduleRequest())
		if err != nil {
			return err
		}
		l.Schedule = entries
	case len(so.ManualEntries) > 0:
		entries, err := schedule.ManualOnly(so.ManualEntries)
		if err != nil {
			return err
		}
		l.Schedule = entries
	}
	return nil
}

// archiveFileName builds a filesystem-safe name keyed by row ID so re-runs
// overwrite instead of piling up.
func archiveFileName(stored storage.StoredConfiguration) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, stored.Name)
	return fmt.Sprintf("%s_%d.pdf", name, stored.ID)
}
