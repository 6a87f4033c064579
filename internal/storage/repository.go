package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"leasegen/internal/core"

	_ "modernc.org/sqlite"
)

// Archive lifecycle of a stored configuration. A configuration starts at
// 'none'; queuing an archive job moves it to 'pending', and the worker
// settles it at 'done' or 'error'.
const (
	ArchiveNone    = "none"
	ArchivePending = "pending"
	ArchiveDone    = "done"
	ArchiveError   = "error"
)

var ErrConfigNotFound = errors.New("configuration not found")

// StoredConfiguration is a lease configuration row together with its
// archive bookkeeping.
type StoredConfiguration struct {
	ID            int64
	Name          string
	Config        core.LeaseConfiguration
	ArchiveStatus string
	ArchiveErrMsg string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save upserts a configuration by name. A re-save under an existing name
// replaces the body, keeps the original created_at and resets the archive
// status, since the archived document no longer matches the stored inputs.
func (r *SQLiteRepository) Save(ctx context.Context, name string, cfg core.LeaseConfiguration) (int64, error) {
	body, err := json.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("marshal configuration: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lease_configurations (name, body, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			archive_status = 'none',
			archive_error = '',
			updated_at = excluded.updated_at`,
		name, string(body), cfg.CreatedAt.UTC(), cfg.UpdatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("save configuration: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		// Upsert on conflict does not always report an insert id; look it up.
		row := r.db.QueryRowContext(ctx,
			`SELECT id FROM lease_configurations WHERE name = ?`, name)
		if scanErr := row.Scan(&id); scanErr != nil {
			return 0, fmt.Errorf("resolve configuration id: %w", scanErr)
		}
	}

	slog.InfoContext(ctx, "Configuration saved",
		"id", id,
		"name", name,
		"tenant", cfg.Parties.TenantName)

	return id, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (StoredConfiguration, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, body, archive_status, archive_error, created_at, updated_at
		FROM lease_configurations
		WHERE id = ?`, id)
	return scanConfiguration(row)
}

func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (StoredConfiguration, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, body, archive_status, archive_error, created_at, updated_at
		FROM lease_configurations
		WHERE name = ?`, name)
	return scanConfiguration(row)
}

// List returns all stored configurations, most recently updated first.
func (r *SQLiteRepository) List(ctx context.Context) ([]StoredConfiguration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, body, archive_status, archive_error, created_at, updated_at
		FROM lease_configurations
		ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	defer rows.Close()

	var out []StoredConfiguration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM lease_configurations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	if n == 0 {
		return ErrConfigNotFound
	}

	slog.InfoContext(ctx, "Configuration deleted", "id", id)
	return nil
}

// MarkArchivePending queues a configuration for the archive worker.
func (r *SQLiteRepository) MarkArchivePending(ctx context.Context, id int64) error {
	return r.setArchiveStatus(ctx, id, ArchivePending, "")
}

func (r *SQLiteRepository) MarkArchived(ctx context.Context, id int64) error {
	if err := r.setArchiveStatus(ctx, id, ArchiveDone, ""); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Configuration archived", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkArchiveError(ctx context.Context, id int64, msg string) error {
	if err := r.setArchiveStatus(ctx, id, ArchiveError, msg); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Configuration archive failed", "id", id, "error", msg)
	return nil
}

// ListPendingArchive returns configurations waiting for the archive worker,
// oldest first so retries do not starve.
func (r *SQLiteRepository) ListPendingArchive(ctx context.Context, limit int) ([]StoredConfiguration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, body, archive_status, archive_error, created_at, updated_at
		FROM lease_configurations
		WHERE archive_status = 'pending'
		ORDER BY updated_at ASC
		LIMIT ?`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending archives: %w", err)
	}
	defer rows.Close()

	var out []StoredConfiguration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) setArchiveStatus(ctx context.Context, id int64, status, msg string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE lease_configurations
		SET archive_status = ?, archive_error = ?, updated_at = ?
		WHERE id = ?`,
		status, msg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set archive status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set archive status: %w", err)
	}
	if n == 0 {
		return ErrConfigNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfiguration(row rowScanner) (StoredConfiguration, error) {
	var (
		c    StoredConfiguration
		body string
	)
	err := row.Scan(&c.ID, &c.Name, &body, &c.ArchiveStatus, &c.ArchiveErrMsg, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredConfiguration{}, ErrConfigNotFound
	}
	if err != nil {
		return StoredConfiguration{}, fmt.Errorf("scan configuration: %w", err)
	}

	cfg, err := core.ParseConfiguration([]byte(body))
	if err != nil {
		return StoredConfiguration{}, fmt.Errorf("configuration %d: %w", c.ID, err)
	}
	c.Config = cfg
	return c, nil
}
