/*
handlers.go - HTTP API handlers for the collection engine

PURPOSE:
  Exposes the collection workflow via REST. Handles HTTP request/response,
  JSON serialization and validation, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST /api/auth/admin                     Admin login
    POST /api/auth/consultant                Consultant login

  Consultants:
    GET  /api/consultants                    List consultants
    POST /api/consultants                    Create consultant

  Periods:
    GET  /api/periods                        List all periods
    GET  /api/periods/active                 Latest open period date
    GET  /api/periods/{id}                   Point lookup
    GET  /api/periods/{id}/collectibles      Per-period listing
    POST /api/periods/{id}/export            Finalize export

  Collectibles:
    GET  /api/collectibles                   Unfiltered listing
    GET  /api/collectibles/outstanding       Active working set
    POST /api/collectibles/{account}/printed Mark printed

  Imports:
    POST /api/import                         Ingest a batch
    GET  /api/imports                        Import audit trail

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Format/validation errors
  - 401: Failed credential checks
  - 404: Missing period/collectible
  - 409: Export precondition unmet
  - 500: Storage faults

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/eclc/collection-engine/collections"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Periods   *collections.PeriodManager
	Importer  *collections.Importer
	Query     *collections.Query
	Exporter  *collections.Exporter
	Directory *collections.Directory

	store    collections.Store
	validate *validator.Validate
	log      *logrus.Logger
}

// NewHandler creates a handler wired to the given store.
func NewHandler(store collections.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Periods:   collections.NewPeriodManager(store),
		Importer:  collections.NewImporter(store, log),
		Query:     collections.NewQuery(store),
		Exporter:  collections.NewExporter(store),
		Directory: collections.NewDirectory(store),
		store:     store,
		validate:  validator.New(),
		log:       log,
	}
}

// decode parses and validates a JSON request body.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// AdminLogin verifies an administrator credential.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Directory.AuthenticateAdmin(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, collections.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to authenticate", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"role": "admin", "username": req.Username})
}

// ConsultantLogin verifies a consultant credential.
func (h *Handler) ConsultantLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Directory.AuthenticateConsultant(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, collections.ErrNotAuthenticated) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to authenticate", err)
		return
	}

	writeJSON(w, http.StatusOK, ConsultantDTO{ID: c.ID, Name: c.Name, Area: c.Area})
}

// =============================================================================
// CONSULTANT HANDLERS
// =============================================================================

// ListConsultants returns all consultant records.
func (h *Handler) ListConsultants(w http.ResponseWriter, r *http.Request) {
	consultants, err := h.Directory.ListConsultants(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list consultants", err)
		return
	}

	dtos := make([]ConsultantDTO, len(consultants))
	for i, c := range consultants {
		dtos[i] = ConsultantDTO{ID: c.ID, Name: c.Name, Area: c.Area}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateConsultant registers a consultant account.
func (h *Handler) CreateConsultant(w http.ResponseWriter, r *http.Request) {
	var req CreateConsultantRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := h.Directory.AddConsultant(r.Context(), req.Name, req.Area, req.AdminPasscode, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create consultant", err)
		return
	}

	writeJSON(w, http.StatusCreated, ConsultantDTO{ID: id, Name: req.Name, Area: req.Area})
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns all periods for administrative review.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Periods.AllPeriods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}

	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ActivePeriod reports whether collection is still in progress and for
// which date.
func (h *Handler) ActivePeriod(w http.ResponseWriter, r *http.Request) {
	date, open, err := h.Periods.LatestOpenPeriodDate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve active period", err)
		return
	}

	resp := ActivePeriodDTO{Open: open}
	if open {
		resp.Date = date.Format(collections.DateFormat)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPeriod returns a single period.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period id", err)
		return
	}

	p, err := h.store.PeriodByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get period", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Period not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toPeriodDTO(*p))
}

// PeriodCollectibles returns every collectible attached to a period.
func (h *Handler) PeriodCollectibles(w http.ResponseWriter, r *http.Request) {
	id, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period id", err)
		return
	}

	cs, err := h.Query.FetchAllForPeriod(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list collectibles", err)
		return
	}
	writeJSON(w, http.StatusOK, toCollectibleDTOs(cs))
}

// ExportPeriod finalizes a period once all collectibles are printed.
func (h *Handler) ExportPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := periodParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period id", err)
		return
	}

	if err := h.Exporter.ExportPeriod(r.Context(), id); err != nil {
		var incomplete *collections.IncompleteExportError
		switch {
		case errors.As(err, &incomplete):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":            incomplete.Error(),
				"pending_accounts": incomplete.Pending,
			})
		case errors.Is(err, collections.ErrPeriodNotFound):
			writeError(w, http.StatusNotFound, "Period not found", nil)
		default:
			writeError(w, http.StatusInternalServerError, "Failed to export period", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"period_id": id, "is_exported": true})
}

// =============================================================================
// COLLECTIBLE HANDLERS
// =============================================================================

// ListCollectibles returns every collectible row.
func (h *Handler) ListCollectibles(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Query.FetchAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list collectibles", err)
		return
	}
	writeJSON(w, http.StatusOK, toCollectibleDTOs(cs))
}

// ListOutstanding returns the active, unprocessed working set.
func (h *Handler) ListOutstanding(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Query.FetchOutstanding(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list outstanding collectibles", err)
		return
	}
	writeJSON(w, http.StatusOK, toCollectibleDTOs(cs))
}

// MarkPrinted flags a collectible as printed.
func (h *Handler) MarkPrinted(w http.ResponseWriter, r *http.Request) {
	account, err := strconv.ParseInt(chi.URLParam(r, "account"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid account number", err)
		return
	}

	if err := h.Exporter.MarkPrinted(r.Context(), account); err != nil {
		if errors.Is(err, collections.ErrCollectibleNotFound) {
			writeError(w, http.StatusNotFound, "Collectible not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to mark printed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"account_number": account, "is_printed": true})
}

// =============================================================================
// IMPORT HANDLERS
// =============================================================================

// Import ingests a batch of collectible records under a new period.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := time.Parse(collections.DateFormat, req.CollectionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid collection_date format (use YYYY-MM-DD)", err)
		return
	}

	result, err := h.Importer.Import(r.Context(), req.Content, date)
	if err != nil {
		var format *collections.FormatError
		if errors.As(err, &format) {
			writeError(w, http.StatusBadRequest, format.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to import batch", err)
		return
	}

	resp := ImportResponse{
		RunID:             result.RunID,
		PeriodID:          result.PeriodID,
		Inserted:          result.Inserted,
		SkippedDuplicates: result.SkippedDuplicates,
	}
	for _, f := range result.FailedRows {
		resp.FailedRows = append(resp.FailedRows, RowErrorDTO{Line: f.Line, Reason: f.Reason})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListImportRuns returns the import audit trail.
func (h *Handler) ListImportRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.store.ListImportRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list import runs", err)
		return
	}

	dtos := make([]ImportRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = ImportRunDTO{
			ID:        run.ID,
			PeriodID:  run.PeriodID,
			Inserted:  run.Inserted,
			Skipped:   run.Skipped,
			Failed:    run.Failed,
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func periodParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
