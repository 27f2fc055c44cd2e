/*
scenarios.go - Preset scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each preset stores a complete scenario
	(rates, end date, basis, injections) ready to run.

AVAILABLE PRESETS:

	single-injection: One 100k contribution split 80/20 moral/natural
	quarterly:        Four equal quarterly contributions, daily basis
	solo-founder:     One natural-person shareholder, no split

USAGE VIA API:

	POST /api/presets/load
	{"preset_id": "quarterly"}

ADDING NEW PRESETS:
 1. Add to 'presets' slice with ID, name, description
 2. Add its JSON builder to the buildPreset switch

SEE ALSO:
  - handlers.go: Scenario CRUD and simulation handlers
  - factory/presets.go: Scenario JSON builders
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/cca-simulator/factory"
)

// =============================================================================
// PRESET DEFINITIONS
// =============================================================================

// PresetDTO describes an available preset scenario.
type PresetDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var presets = []PresetDTO{
	{
		ID:          "single-injection",
		Name:        "Single Injection",
		Description: "One 100k contribution split 80/20 between a moral and a natural person, monthly basis",
	},
	{
		ID:          "quarterly",
		Name:        "Quarterly Contributions",
		Description: "Four equal quarterly contributions split 50/50, daily basis over 360",
	},
	{
		ID:          "solo-founder",
		Name:        "Solo Founder",
		Description: "A single natural-person shareholder holding the whole account",
	},
}

// ListPresets returns available preset scenarios.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presets)
}

// LoadPreset stores a preset scenario so it can be edited and run.
func (h *Handler) LoadPreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PresetID string `json:"preset_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	jsonStr, err := buildPreset(req.PresetID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown preset", err)
		return
	}

	cfg, err := h.Factory.ParseScenario(jsonStr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Preset is invalid", err)
		return
	}

	var sj factory.ScenarioJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		writeError(w, http.StatusInternalServerError, "Preset is invalid", err)
		return
	}

	if err := h.saveScenario(r, sj, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store preset", err)
		return
	}

	writeJSON(w, http.StatusCreated, ScenarioDTO{ID: sj.ID, Name: sj.Name, Config: sj})
}

// buildPreset returns the scenario JSON for a preset ID. End dates run
// through the end of next year so fresh loads always have a window.
func buildPreset(id string) (string, error) {
	year := time.Now().Year()
	endDate := fmt.Sprintf("%d-12-31", year+1)

	switch id {
	case "single-injection":
		return factory.SingleInjectionJSON(id, "Single Injection", 100000, 80, year, time.February, endDate), nil
	case "quarterly":
		return factory.QuarterlyJSON(id, "Quarterly Contributions", 25000, year, endDate), nil
	case "solo-founder":
		return factory.SoloFounderJSON(id, "Solo Founder", 50000, year, time.March, endDate), nil
	default:
		return "", fmt.Errorf("no preset with id %q", id)
	}
}
