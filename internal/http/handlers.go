package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"leasegen/internal/core"
	"leasegen/internal/docs"
	"leasegen/internal/schedule"
	"leasegen/internal/storage"
)

// formPage is the template model for the input form.
type formPage struct {
	V              formValues
	Configurations []configSummary
	UploadError    string
	UploadSuccess  string
	FormError      string
}

type configSummary struct {
	ID        int64
	Name      string
	UpdatedAt string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := formPage{V: defaultFormValues()}

	if v := r.URL.Query().Get("config"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid configuration id", http.StatusBadRequest)
			return
		}
		stored, err := s.store.Get(r.Context(), id)
		if errors.Is(err, storage.ErrConfigNotFound) {
			http.Error(w, "configuration not found", http.StatusNotFound)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Load configuration failed", "error", err, "id", id)
			http.Error(w, "failed to load configuration", http.StatusInternalServerError)
			return
		}
		page.V = configFormValues(stored.Config)
	}

	s.renderForm(w, r, page, http.StatusOK)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, page formPage, status int) {
	if configs, err := s.store.List(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "List configurations failed", "error", err)
	} else {
		for _, c := range configs {
			page.Configurations = append(page.Configurations, configSummary{
				ID:        c.ID,
				Name:      c.Name,
				UpdatedAt: c.UpdatedAt.Format("2006-01-02 15:04"),
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.renderer.Template().ExecuteTemplate(w, "form.html", page); err != nil {
		slog.ErrorContext(r.Context(), "Form template execution failed", "error", err)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err)
		http.Error(w, "malformed form submission", http.StatusBadRequest)
		return
	}

	lease, opts, err := parseGenerateForm(r)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, core.ErrUnknownOutputKind) {
			status = http.StatusBadRequest
		}
		slog.WarnContext(r.Context(), "Rejected generate request", "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	if err := buildLeaseSchedule(&lease); err != nil {
		slog.WarnContext(r.Context(), "Schedule build failed", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if opts.SaveConfig {
		s.respondSaveConfig(w, r, lease, opts)
		return
	}

	if opts.Archive {
		s.queueArchive(w, r, lease, opts)
	}

	switch opts.Output {
	case outputHTML:
		body, err := s.renderer.LeaseHTML(lease)
		if err != nil {
			slog.ErrorContext(r.Context(), "Lease render failed", "error", err)
			http.Error(w, "failed to render lease", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)

	case outputSchedule:
		body, err := s.renderer.ScheduleHTML(lease)
		if err != nil {
			slog.ErrorContext(r.Context(), "Schedule render failed", "error", err)
			http.Error(w, "failed to render payment schedule", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)

	case outputPDF:
		body, err := docs.LeasePDF(lease)
		if err != nil {
			slog.ErrorContext(r.Context(), "Lease PDF failed", "error", err)
			http.Error(w, "failed to render lease PDF", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", opts.ConfigName+".pdf"))
		_, _ = w.Write(body)

	case outputRenewal:
		msg, err := docs.RenewalNotice(lease.Parties.TenantName, lease.Terms.PreviousRent, lease.Terms.MonthlyRent, time.Now())
		if errors.Is(err, core.ErrNoPreviousRent) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Renewal notice failed", "error", err)
			http.Error(w, "failed to render renewal notice", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", opts.ConfigName+"_renewal.txt"))
		_, _ = io.WriteString(w, msg)
	}
}

// buildLeaseSchedule populates lease.Schedule according to the schedule
// options: full generation when auto-generate is on, normalized manual
// entries only when it is off.
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

// respondSaveConfig persists the configuration and sends it back as a JSON
// download.
func (s *Server) respondSaveConfig(w http.ResponseWriter, r *http.Request, lease core.LeaseAgreement, opts generateOptions) {
	cfg := lease.Configuration(time.Now().UTC())

	if _, err := s.store.Save(r.Context(), opts.ConfigName, cfg); err != nil {
		slog.ErrorContext(r.Context(), "Save configuration failed", "error", err, "name", opts.ConfigName)
		http.Error(w, "failed to save configuration", http.StatusInternalServerError)
		return
	}

	body, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		slog.ErrorContext(r.Context(), "Marshal configuration failed", "error", err)
		http.Error(w, "failed to encode configuration", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", opts.ConfigName+".json"))
	_, _ = w.Write(body)
}

// queueArchive stores the configuration, marks it pending, and publishes an
// archive job. Failures are logged but do not block document generation.
func (s *Server) queueArchive(w http.ResponseWriter, r *http.Request, lease core.LeaseAgreement, opts generateOptions) {
	if s.publisher == nil {
		slog.WarnContext(r.Context(), "Archive requested but no publisher configured")
		return
	}

	cfg := lease.Configuration(time.Now().UTC())
	id, err := s.store.Save(r.Context(), opts.ConfigName, cfg)
	if err != nil {
		slog.ErrorContext(r.Context(), "Save for archive failed", "error", err, "name", opts.ConfigName)
		return
	}
	if err := s.store.MarkArchivePending(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Mark archive pending failed", "error", err, "id", id)
		return
	}
	if err := s.publisher.PublishArchive(r.Context(), id, "pdf"); err != nil {
		slog.ErrorContext(r.Context(), "Publish archive failed", "error", err, "id", id)
		return
	}

	w.Header().Set("X-Archive-Queued", strconv.FormatInt(id, 10))
}

func (s *Server) handleUploadTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		s.renderForm(w, r, formPage{
			V:           defaultFormValues(),
			UploadError: "upload too large or malformed",
		}, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("template_file")
	if err != nil {
		s.renderForm(w, r, formPage{
			V:           defaultFormValues(),
			UploadError: "no configuration file provided",
		}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, 1<<20))
	if err != nil {
		s.renderForm(w, r, formPage{
			V:           defaultFormValues(),
			UploadError: "failed to read uploaded file",
		}, http.StatusBadRequest)
		return
	}

	cfg, err := core.ParseConfiguration(data)
	if err != nil {
		slog.WarnContext(r.Context(), "Rejected configuration upload",
			"error", err, "filename", header.Filename)
		s.renderForm(w, r, formPage{
			V:           defaultFormValues(),
			UploadError: "not a valid lease configuration: " + err.Error(),
		}, http.StatusBadRequest)
		return
	}

	slog.InfoContext(r.Context(), "Configuration uploaded",
		"filename", header.Filename,
		"tenant", cfg.Parties.TenantName)

	s.renderForm(w, r, formPage{
		V:             configFormValues(cfg),
		UploadSuccess: "Loaded configuration from " + header.Filename,
	}, http.StatusOK)
}

func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := s.store.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List configurations failed", "error", err)
		http.Error(w, "failed to list configurations", http.StatusInternalServerError)
		return
	}

	type item struct {
		ID            int64  `json:"id"`
		Name          string `json:"name"`
		Tenant        string `json:"tenant"`
		ArchiveStatus string `json:"archive_status"`
		CreatedAt     string `json:"created_at"`
		UpdatedAt     string `json:"updated_at"`
	}
	items := make([]item, 0, len(configs))
	for _, c := range configs {
		items = append(items, item{
			ID:            c.ID,
			Name:          c.Name,
			Tenant:        c.Config.Parties.TenantName,
			ArchiveStatus: c.ArchiveStatus,
			CreatedAt:     c.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:     c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (s *Server) handleDeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid configuration id", http.StatusBadRequest)
		return
	}

	err = s.store.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrConfigNotFound) {
		http.Error(w, "configuration not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete configuration failed", "error", err, "id", id)
		http.Error(w, "failed to delete configuration", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
