/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Scenario save/get round trip through the HTTP surface
- Ad-hoc simulation figures and report caching
- Whole-record injection replacement
- Preset loading and CSV export
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/warp/cca-simulator/cache"
	"github.com/warp/cca-simulator/factory"
	"github.com/warp/cca-simulator/store/sqlite"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewHandler(store, cache.NewMemory())
}

func workedScenarioJSON() string {
	return factory.SingleInjectionJSON("worked", "Worked Scenario", 100000, 80, 2025, time.February, "2025-05-31")
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

func saveWorkedScenario(t *testing.T, h *Handler) {
	t.Helper()
	body := `{"config":` + workedScenarioJSON() + `}`
	rec := doRequest(t, h, http.MethodPost, "/api/scenarios", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save scenario: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSaveScenario_ThenGet(t *testing.T) {
	// GIVEN: A saved scenario
	// WHEN: Fetching it by ID
	// THEN: The stored document matches what was sent

	h := newTestHandler(t)
	saveWorkedScenario(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/scenarios/worked", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get scenario: status %d", rec.Code)
	}

	var dto ScenarioDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if dto.ID != "worked" || dto.Name != "Worked Scenario" {
		t.Errorf("unexpected scenario identity: %s / %s", dto.ID, dto.Name)
	}
	if len(dto.Config.Injections) != 1 {
		t.Fatalf("expected 1 injection, got %d", len(dto.Config.Injections))
	}
	if dto.Config.Basis != "monthly" {
		t.Errorf("basis: got %s", dto.Config.Basis)
	}
}

func TestGetScenario_MissingReturns404(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodGet, "/api/scenarios/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestSimulate_WorkedScenarioFigures(t *testing.T) {
	// GIVEN: The worked scenario as an ad-hoc request
	// WHEN: Simulating
	// THEN: The report carries duration 4 and the known part figures

	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodPost, "/api/simulate", `{"config":`+workedScenarioJSON()+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("simulate: status %d, body %s", rec.Code, rec.Body.String())
	}

	var dto ReportDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid response: %v", err)
	}

	if len(dto.Periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(dto.Periods))
	}
	p := dto.Periods[0]
	if p.Duration != 4 || p.Unit != "Months" {
		t.Errorf("duration: got %d %s, want 4 Months", p.Duration, p.Unit)
	}
	approx := func(name string, got, want float64) {
		if got < want-0.01 || got > want+0.01 {
			t.Errorf("%s: got %.2f, want %.2f", name, got, want)
		}
	}
	approx("part1 interest", p.Part1.Interest, 1333.33)
	approx("part1 withholding", p.Part1.Withholding, 400.00)
	approx("part1 net", p.Part1.Net, 1066.67)
	approx("part2 interest", p.Part2.Interest, 333.33)
	approx("part2 net", p.Part2.Net, 316.67)
	approx("summary net", dto.Summary.Net, 1383.33)
	approx("total repayment", dto.Summary.TotalRepayment, 101833.33)

	if len(dto.Schedule) != 4 {
		t.Errorf("expected 4 schedule months, got %d", len(dto.Schedule))
	}
	if dto.Cached {
		t.Error("first run should not be served from cache")
	}
}

func TestSimulate_SecondRunHitsCache(t *testing.T) {
	// GIVEN: One completed simulation
	// WHEN: Repeating the identical request
	// THEN: The response is flagged as cached with the same figures

	h := newTestHandler(t)
	body := `{"config":` + workedScenarioJSON() + `}`

	first := doRequest(t, h, http.MethodPost, "/api/simulate", body)
	second := doRequest(t, h, http.MethodPost, "/api/simulate", body)

	var a, b ReportDTO
	if err := json.Unmarshal(first.Body.Bytes(), &a); err != nil {
		t.Fatalf("invalid first response: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &b); err != nil {
		t.Fatalf("invalid second response: %v", err)
	}
	if !b.Cached {
		t.Error("second identical run should be served from cache")
	}
	if a.Summary.Net != b.Summary.Net {
		t.Errorf("cached figures diverged: %.2f vs %.2f", a.Summary.Net, b.Summary.Net)
	}
}

func TestReplaceInjection_SwapsWholeRecord(t *testing.T) {
	// GIVEN: A stored scenario with one injection
	// WHEN: Replacing that injection by key with a new record
	// THEN: The stored scenario carries the replacement and subsequent
	//       reports reflect it

	h := newTestHandler(t)
	saveWorkedScenario(t, h)

	body := `{"injection":{"label":"Revised","month":3,"year":2025,"amount":50000,"part1_pct":60,"part1_class":"natural","part2_class":"moral"}}`
	rec := doRequest(t, h, http.MethodPut, "/api/scenarios/worked/injections/worked-inj-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace injection: status %d, body %s", rec.Code, rec.Body.String())
	}

	var dto ScenarioDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(dto.Config.Injections) != 1 {
		t.Fatalf("expected 1 injection after replace, got %d", len(dto.Config.Injections))
	}
	inj := dto.Config.Injections[0]
	if inj.ID != "worked-inj-1" || inj.Label != "Revised" || inj.Month != 3 {
		t.Errorf("replacement not applied: %+v", inj)
	}

	report := doRequest(t, h, http.MethodGet, "/api/scenarios/worked/report", "")
	var rdto ReportDTO
	if err := json.Unmarshal(report.Body.Bytes(), &rdto); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if rdto.Periods[0].Amount != 50000 {
		t.Errorf("report amount: got %.2f, want 50000", rdto.Periods[0].Amount)
	}
}

func TestSaveScenario_ResaveDropsStaleInjectionRows(t *testing.T) {
	// GIVEN: A stored scenario with four injections
	h := newTestHandler(t)
	body := `{"config":` + factory.QuarterlyJSON("plan", "Quarterly Plan", 25000, 2025, "2026-12-31") + `}`
	rec := doRequest(t, h, http.MethodPost, "/api/scenarios", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save scenario: status %d, body %s", rec.Code, rec.Body.String())
	}

	// WHEN: Re-saving the same scenario with a one-injection document
	body = `{"config":` + factory.SingleInjectionJSON("plan", "Quarterly Plan", 100000, 80, 2025, time.February, "2026-12-31") + `}`
	rec = doRequest(t, h, http.MethodPost, "/api/scenarios", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("re-save scenario: status %d, body %s", rec.Code, rec.Body.String())
	}

	// THEN: The injection table holds exactly the document's rows
	rows, err := h.Store.GetInjections(context.Background(), "plan")
	if err != nil {
		t.Fatalf("get injections: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 injection row after re-save, got %d", len(rows))
	}
	if rows[0].ID != "plan-inj-1" {
		t.Errorf("surviving row: got %s, want plan-inj-1", rows[0].ID)
	}
}

func TestReplaceInjection_MiddleRecordKeepsOrder(t *testing.T) {
	// GIVEN: A stored scenario with four quarterly injections
	h := newTestHandler(t)
	body := `{"config":` + factory.QuarterlyJSON("plan", "Quarterly Plan", 25000, 2025, "2026-12-31") + `}`
	rec := doRequest(t, h, http.MethodPost, "/api/scenarios", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save scenario: status %d, body %s", rec.Code, rec.Body.String())
	}

	// WHEN: Replacing the second injection by key
	body = `{"injection":{"label":"Q2 revised","month":4,"year":2025,"amount":40000,"part1_pct":50}}`
	rec = doRequest(t, h, http.MethodPut, "/api/scenarios/plan/injections/plan-q2", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("replace injection: status %d, body %s", rec.Code, rec.Body.String())
	}

	// THEN: The document keeps its order and carries the replacement
	var dto ScenarioDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(dto.Config.Injections) != 4 {
		t.Fatalf("expected 4 injections, got %d", len(dto.Config.Injections))
	}
	for i, want := range []string{"plan-q1", "plan-q2", "plan-q3", "plan-q4"} {
		if got := dto.Config.Injections[i].ID; got != want {
			t.Errorf("injection %d: got %s, want %s", i, got, want)
		}
	}
	if dto.Config.Injections[1].Label != "Q2 revised" {
		t.Errorf("replacement not applied: %+v", dto.Config.Injections[1])
	}
}

func TestDeleteInjection_RemovesFromScenario(t *testing.T) {
	h := newTestHandler(t)
	saveWorkedScenario(t, h)

	rec := doRequest(t, h, http.MethodDelete, "/api/scenarios/worked/injections/worked-inj-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete injection: status %d", rec.Code)
	}

	get := doRequest(t, h, http.MethodGet, "/api/scenarios/worked", "")
	var dto ScenarioDTO
	if err := json.Unmarshal(get.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(dto.Config.Injections) != 0 {
		t.Errorf("expected 0 injections, got %d", len(dto.Config.Injections))
	}
}

func TestLoadPreset_StoresRunnableScenario(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/presets/load", `{"preset_id":"quarterly"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("load preset: status %d, body %s", rec.Code, rec.Body.String())
	}

	report := doRequest(t, h, http.MethodGet, "/api/scenarios/quarterly/report", "")
	if report.Code != http.StatusOK {
		t.Fatalf("report: status %d", report.Code)
	}
	var dto ReportDTO
	if err := json.Unmarshal(report.Body.Bytes(), &dto); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if len(dto.Periods) != 4 {
		t.Errorf("expected 4 periods, got %d", len(dto.Periods))
	}
	if dto.Basis != "daily" {
		t.Errorf("basis: got %s", dto.Basis)
	}
}

func TestLoadPreset_UnknownIDFails(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(t, h, http.MethodPost, "/api/presets/load", `{"preset_id":"nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestExportScenario_PeriodsCSV(t *testing.T) {
	// GIVEN: A stored scenario
	// WHEN: Exporting the periods table
	// THEN: The response is CSV with the known interest figure

	h := newTestHandler(t)
	saveWorkedScenario(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/scenarios/worked/export?table=periods", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type: got %s", ct)
	}
	if !strings.Contains(rec.Body.String(), "1333.33") {
		t.Error("export missing part1 interest figure")
	}
}

func TestExportScenario_UnknownTableFails(t *testing.T) {
	h := newTestHandler(t)
	saveWorkedScenario(t, h)

	rec := doRequest(t, h, http.MethodGet, "/api/scenarios/worked/export?table=nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestScenarioRuns_RecordsHistory(t *testing.T) {
	// GIVEN: A stored scenario run twice (second hits the cache)
	// WHEN: Listing runs
	// THEN: At least the first run is recorded

	h := newTestHandler(t)
	saveWorkedScenario(t, h)

	doRequest(t, h, http.MethodGet, "/api/scenarios/worked/report", "")
	doRequest(t, h, http.MethodGet, "/api/scenarios/worked/report", "")

	rec := doRequest(t, h, http.MethodGet, "/api/scenarios/worked/runs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("runs: status %d", rec.Code)
	}
	var runs []RunDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 recorded run (cached repeat not recorded), got %d", len(runs))
	}
}
