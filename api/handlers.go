/*
handlers.go - HTTP API handlers for the CCA simulation service

PURPOSE:
  Exposes the simulation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine,
  factory and store.

ENDPOINTS:
  Scenarios:
    GET    /api/scenarios                      List stored scenarios
    POST   /api/scenarios                      Create/update a scenario
    GET    /api/scenarios/{id}                 Get scenario details
    DELETE /api/scenarios/{id}                 Delete a scenario
    PUT    /api/scenarios/{id}/injections/{injID}    Replace an injection
    DELETE /api/scenarios/{id}/injections/{injID}    Remove an injection
    GET    /api/scenarios/{id}/report          Run the stored scenario
    GET    /api/scenarios/{id}/export          CSV export (?table=)
    GET    /api/scenarios/{id}/runs            Run history

  Simulation:
    POST   /api/simulate                       Ad-hoc run from request body

  Presets:
    GET    /api/presets                        List preset scenarios
    POST   /api/presets/load                   Store a preset by name

  Admin:
    POST   /api/reset                          Database reset (dev only)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (factory, engine, store)
  4. Serialize response
  5. Handle errors

CACHING:
  Reports are cached keyed by configuration identity; the engine is
  pure, so an unchanged configuration always reproduces the cached
  report. Scenario mutations change the configuration and therefore
  the key, no explicit invalidation needed.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Preset scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/cca-simulator/cache"
	"github.com/warp/cca-simulator/engine"
	"github.com/warp/cca-simulator/export"
	"github.com/warp/cca-simulator/factory"
	"github.com/warp/cca-simulator/metrics"
	"github.com/warp/cca-simulator/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.ConfigFactory
	Cache   cache.Cache
}

// NewHandler creates a new handler with the given store and cache.
func NewHandler(store *sqlite.Store, c cache.Cache) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.NewConfigFactory(),
		Cache:   c,
	}
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns all stored scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListScenarios(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scenarios", err)
		return
	}

	dtos := make([]ScenarioDTO, 0, len(records))
	for _, rec := range records {
		dto, err := h.toScenarioDTO(rec)
		if err != nil {
			slog.Warn("skipping unparseable scenario", "id", rec.ID, "error", err)
			continue
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScenario returns a single scenario with its injections.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetScenario(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get scenario", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	dto, err := h.toScenarioDTO(*rec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored scenario is corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// SaveScenario creates or updates a scenario from a full document.
func (h *Handler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	var req SaveScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Config.ID == "" {
		req.Config.ID = uuid.NewString()
	}

	// Validate the document by building a configuration from it
	cfg, err := h.Factory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scenario", err)
		return
	}

	if err := h.saveScenario(r, req.Config, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save scenario", err)
		return
	}
	metrics.ScenarioWrites.WithLabelValues("save").Inc()

	writeJSON(w, http.StatusCreated, ScenarioDTO{
		ID:     req.Config.ID,
		Name:   req.Config.Name,
		Config: h.Factory.ToJSON(req.Config.ID, req.Config.Name, cfg),
	})
}

// DeleteScenario removes a scenario and its injections.
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteScenario(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete scenario", err)
		return
	}
	metrics.ScenarioWrites.WithLabelValues("delete").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// INJECTION HANDLERS
// =============================================================================

// registryFor materializes a configuration's injections in a registry
// so mutations go through replace-whole-record-by-key semantics.
func registryFor(cfg engine.Configuration) *engine.Registry {
	reg := engine.NewRegistry()
	for _, in := range cfg.Injections {
		reg.Put(in)
	}
	return reg
}

// ReplaceInjection replaces one injection record by key. The whole
// record is swapped; partial field updates are not supported. A known
// ID keeps its position, an unknown ID appends at the end.
func (h *Handler) ReplaceInjection(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "id")
	injID := chi.URLParam(r, "injID")

	cfg, rec, ok := h.loadConfiguration(w, r, scenarioID)
	if !ok {
		return
	}

	var req ReplaceInjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Injection.ID = injID

	in, err := h.Factory.ParseInjection(req.Injection)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid injection", err)
		return
	}

	reg := registryFor(cfg)
	reg.Put(in)
	cfg.Injections = reg.Snapshot()

	sj := h.Factory.ToJSON(rec.ID, rec.Name, cfg)
	if err := h.saveScenario(r, sj, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save injection", err)
		return
	}
	metrics.ScenarioWrites.WithLabelValues("replace_injection").Inc()

	writeJSON(w, http.StatusOK, ScenarioDTO{ID: sj.ID, Name: sj.Name, Config: sj})
}

// DeleteInjection removes one injection from a scenario.
func (h *Handler) DeleteInjection(w http.ResponseWriter, r *http.Request) {
	scenarioID := chi.URLParam(r, "id")
	injID := chi.URLParam(r, "injID")

	cfg, rec, ok := h.loadConfiguration(w, r, scenarioID)
	if !ok {
		return
	}

	reg := registryFor(cfg)
	if !reg.Remove(engine.InjectionID(injID)) {
		writeError(w, http.StatusNotFound, "Injection not found", nil)
		return
	}
	cfg.Injections = reg.Snapshot()

	sj := h.Factory.ToJSON(rec.ID, rec.Name, cfg)
	if err := h.saveScenario(r, sj, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save scenario", err)
		return
	}
	if err := h.Store.DeleteInjection(r.Context(), scenarioID, injID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete injection", err)
		return
	}
	metrics.ScenarioWrites.WithLabelValues("delete_injection").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// Simulate runs an ad-hoc simulation from a full scenario document.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg, err := h.Factory.FromJSON(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scenario", err)
		return
	}

	dto, _ := h.runCached(r, cfg, "request")
	writeJSON(w, http.StatusOK, dto)
}

// ScenarioReport runs a stored scenario and returns the full report.
func (h *Handler) ScenarioReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, rec, ok := h.loadConfiguration(w, r, id)
	if !ok {
		return
	}

	dto, report := h.runCached(r, cfg, "scenario")

	// A cached repeat is not a new computation, so only fresh reports
	// land in the run history.
	if report != nil {
		if err := h.Store.SaveRun(r.Context(), sqlite.RunRecord{
			ID:             uuid.NewString(),
			ScenarioID:     rec.ID,
			Basis:          string(cfg.Basis),
			Capital:        report.Summary.Capital,
			Interest:       report.Summary.Interest,
			VAT:            report.Summary.VAT,
			Withholding:    report.Summary.Withholding,
			Net:            report.Summary.Net,
			TotalRepayment: report.Summary.TotalRepayment,
		}); err != nil {
			slog.Warn("failed to record run", "scenario", rec.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// ScenarioRuns returns a scenario's run history, newest first.
func (h *Handler) ScenarioRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	runs, err := h.Store.GetRuns(r.Context(), id, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = RunDTO{
			ID:             run.ID,
			Basis:          run.Basis,
			Capital:        run.Capital.InexactFloat64(),
			Interest:       run.Interest.InexactFloat64(),
			Net:            run.Net.InexactFloat64(),
			TotalRepayment: run.TotalRepayment.InexactFloat64(),
			CreatedAt:      run.CreatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ExportScenario streams one of the report tables as CSV. The table
// query parameter selects periods (default), schedule or summary.
func (h *Handler) ExportScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	cfg, rec, ok := h.loadConfiguration(w, r, id)
	if !ok {
		return
	}
	report := engine.Run(cfg)

	table := r.URL.Query().Get("table")
	if table == "" {
		table = "periods"
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.ID+`-`+table+`.csv"`)

	var err error
	switch table {
	case "periods":
		err = export.WritePeriodResults(w, report)
	case "schedule":
		err = export.WriteMonthlySchedule(w, report)
	case "summary":
		err = export.WriteSummary(w, report)
	default:
		w.Header().Del("Content-Disposition")
		writeError(w, http.StatusBadRequest, "Unknown table (use periods, schedule or summary)", nil)
		return
	}
	if err != nil {
		slog.Error("csv export failed", "scenario", id, "table", table, "error", err)
		return
	}
	metrics.ExportRequests.WithLabelValues(table).Inc()
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all stored data (dev/demo only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// runCached executes a simulation through the report cache. On a miss
// it also returns the freshly computed report so callers can reuse it;
// on a hit the report is nil.
func (h *Handler) runCached(r *http.Request, cfg engine.Configuration, source string) (ReportDTO, *engine.Report) {
	ctx := r.Context()
	key := cache.Key(cfg)

	if raw, ok := h.Cache.Get(ctx, key); ok {
		var dto ReportDTO
		if err := json.Unmarshal([]byte(raw), &dto); err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			dto.Cached = true
			return dto, nil
		}
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	report := engine.Run(cfg)
	dto := toReportDTO(report)
	metrics.SimulationRuns.WithLabelValues(string(cfg.Basis), source).Inc()

	if raw, err := json.Marshal(dto); err == nil {
		if err := h.Cache.Set(ctx, key, string(raw)); err != nil {
			slog.Warn("failed to cache report", "error", err)
		}
	}
	return dto, &report
}

// loadConfiguration fetches a stored scenario and builds its
// configuration, writing the error response itself on failure.
func (h *Handler) loadConfiguration(w http.ResponseWriter, r *http.Request, id string) (engine.Configuration, *sqlite.ScenarioRecord, bool) {
	rec, err := h.Store.GetScenario(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get scenario", err)
		return engine.Configuration{}, nil, false
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return engine.Configuration{}, nil, false
	}

	cfg, err := h.Factory.ParseScenario(rec.ConfigJSON)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored scenario is corrupt", err)
		return engine.Configuration{}, nil, false
	}
	return cfg, rec, true
}

// saveScenario persists a scenario document and its injection rows.
func (h *Handler) saveScenario(r *http.Request, sj factory.ScenarioJSON, cfg engine.Configuration) error {
	ctx := r.Context()

	raw, err := json.Marshal(h.Factory.ToJSON(sj.ID, sj.Name, cfg))
	if err != nil {
		return err
	}

	if err := h.Store.SaveScenario(ctx, sqlite.ScenarioRecord{
		ID:                    sj.ID,
		Name:                  sj.Name,
		AnnualRatePct:         cfg.Rates.Annual,
		VATRatePct:            cfg.Rates.VAT,
		WithholdingMoralPct:   cfg.Rates.WithholdingMoral,
		WithholdingNaturalPct: cfg.Rates.WithholdingNatural,
		EndDate:               cfg.EndDate,
		Basis:                 string(cfg.Basis),
		ConfigJSON:            string(raw),
	}); err != nil {
		return err
	}

	keep := make([]string, 0, len(cfg.Injections))
	for _, inj := range cfg.Injections {
		keep = append(keep, string(inj.ID))
		if err := h.Store.ReplaceInjection(ctx, sqlite.InjectionRecord{
			ScenarioID: sj.ID,
			ID:         string(inj.ID),
			Label:      inj.Label,
			Month:      int(inj.Month),
			Year:       inj.Year,
			Amount:     inj.Amount,
			Part1Pct:   inj.Part1Pct,
			Part1Class: string(inj.Part1),
			Part2Class: string(inj.Part2),
		}); err != nil {
			return err
		}
	}
	// Rows dropped from the document must not linger in the table
	return h.Store.PruneInjections(ctx, sj.ID, keep)
}

// toScenarioDTO parses the stored config JSON back into the document.
func (h *Handler) toScenarioDTO(rec sqlite.ScenarioRecord) (ScenarioDTO, error) {
	sj, err := h.scenarioJSONFor(rec)
	if err != nil {
		return ScenarioDTO{}, err
	}
	return ScenarioDTO{
		ID:        rec.ID,
		Name:      rec.Name,
		Config:    sj,
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func (h *Handler) scenarioJSONFor(rec sqlite.ScenarioRecord) (factory.ScenarioJSON, error) {
	var sj factory.ScenarioJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &sj); err != nil {
		return factory.ScenarioJSON{}, err
	}
	return sj, nil
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
