/*
Package factory provides JSON to Go scenario conversion.

PURPOSE:
  Converts JSON scenario definitions into engine.Configuration values.
  This enables scenario configuration without code changes - an analyst
  can define a simulation in JSON, and the factory builds the proper Go
  structs.

WHY JSON?
  - Non-developers can define scenarios
  - Easy integration with the admin UI and bulk import
  - Version control for scenario definitions
  - Database storage of scenario configs

JSON SCHEMA:
  {
    "id": "baseline-2025",
    "name": "Baseline 2025",
    "annual_rate_pct": 5,
    "vat_rate_pct": 10,
    "withholding_moral_pct": 30,
    "withholding_natural_pct": 15,
    "end_date": "2025-05-31",
    "basis": "monthly",
    "injections": [
      {
        "id": "inj-001",
        "label": "Initial contribution",
        "month": 2,
        "year": 2025,
        "amount": 100000,
        "part1_pct": 80,
        "part1_class": "moral",
        "part2_class": "natural"
      }
    ]
  }

KEY FEATURES:
  - Sets sensible defaults for basis and classifications
  - Assigns IDs to injections that arrive without one
  - Round-trips Configuration back to JSON for storage

USAGE:
  factory := NewConfigFactory()
  cfg, err := factory.ParseScenario(jsonString)
  report := engine.Run(cfg)

SEE ALSO:
  - engine/types.go: Configuration type definition
  - presets.go: Ready-to-use scenario JSON builders
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/cca-simulator/engine"
)

const dateLayout = "2006-01-02"

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScenarioJSON is the JSON representation of a full simulation scenario.
type ScenarioJSON struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	AnnualRatePct         decimal.Decimal `json:"annual_rate_pct"`
	VATRatePct            decimal.Decimal `json:"vat_rate_pct"`
	WithholdingMoralPct   decimal.Decimal `json:"withholding_moral_pct"`
	WithholdingNaturalPct decimal.Decimal `json:"withholding_natural_pct"`
	EndDate               string          `json:"end_date"` // 2006-01-02
	Basis                 string          `json:"basis,omitempty"`
	Injections            []InjectionJSON `json:"injections"`
}

// InjectionJSON represents one capital injection.
type InjectionJSON struct {
	ID         string          `json:"id,omitempty"` // assigned when empty
	Label      string          `json:"label,omitempty"`
	Month      int             `json:"month"` // 1-12
	Year       int             `json:"year"`
	Amount     decimal.Decimal `json:"amount"`
	Part1Pct   decimal.Decimal `json:"part1_pct"`
	Part1Class string          `json:"part1_class,omitempty"`
	Part2Class string          `json:"part2_class,omitempty"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON scenarios to engine configurations.
type ConfigFactory struct{}

// NewConfigFactory creates a new scenario factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseScenario parses a JSON string into an engine.Configuration.
func (f *ConfigFactory) ParseScenario(jsonStr string) (engine.Configuration, error) {
	var sj ScenarioJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return engine.Configuration{}, fmt.Errorf("failed to parse scenario JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts ScenarioJSON to an engine.Configuration.
func (f *ConfigFactory) FromJSON(sj ScenarioJSON) (engine.Configuration, error) {
	end, err := time.Parse(dateLayout, sj.EndDate)
	if err != nil {
		return engine.Configuration{}, fmt.Errorf("invalid end_date %q: %w", sj.EndDate, err)
	}

	cfg := engine.Configuration{
		Rates: engine.Rates{
			Annual:             sj.AnnualRatePct,
			VAT:                sj.VATRatePct,
			WithholdingMoral:   sj.WithholdingMoralPct,
			WithholdingNatural: sj.WithholdingNaturalPct,
		},
		EndDate: end,
		Basis:   parseBasis(sj.Basis),
	}

	for _, ij := range sj.Injections {
		inj, err := parseInjection(ij)
		if err != nil {
			return engine.Configuration{}, err
		}
		cfg.Injections = append(cfg.Injections, inj)
	}
	return cfg, nil
}

// ParseInjection converts a single InjectionJSON record, generating an
// ID when the document carries none.
func (f *ConfigFactory) ParseInjection(ij InjectionJSON) (engine.Injection, error) {
	return parseInjection(ij)
}

// ToJSON converts a Configuration back to ScenarioJSON for storage.
func (f *ConfigFactory) ToJSON(id, name string, cfg engine.Configuration) ScenarioJSON {
	sj := ScenarioJSON{
		ID:                    id,
		Name:                  name,
		AnnualRatePct:         cfg.Rates.Annual,
		VATRatePct:            cfg.Rates.VAT,
		WithholdingMoralPct:   cfg.Rates.WithholdingMoral,
		WithholdingNaturalPct: cfg.Rates.WithholdingNatural,
		EndDate:               cfg.EndDate.Format(dateLayout),
		Basis:                 string(cfg.Basis),
	}
	for _, inj := range cfg.Injections {
		sj.Injections = append(sj.Injections, InjectionJSON{
			ID:         string(inj.ID),
			Label:      inj.Label,
			Month:      int(inj.Month),
			Year:       inj.Year,
			Amount:     inj.Amount,
			Part1Pct:   inj.Part1Pct,
			Part1Class: string(inj.Part1),
			Part2Class: string(inj.Part2),
		})
	}
	return sj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseInjection(ij InjectionJSON) (engine.Injection, error) {
	if ij.Month < 1 || ij.Month > 12 {
		return engine.Injection{}, fmt.Errorf("injection %q: month %d out of range", ij.ID, ij.Month)
	}
	id := ij.ID
	if id == "" {
		id = uuid.NewString()
	}
	return engine.Injection{
		ID:       engine.InjectionID(id),
		Label:    ij.Label,
		Month:    time.Month(ij.Month),
		Year:     ij.Year,
		Amount:   ij.Amount,
		Part1Pct: ij.Part1Pct,
		Part1:    parseClassification(ij.Part1Class, engine.MoralPerson),
		Part2:    parseClassification(ij.Part2Class, engine.NaturalPerson),
	}, nil
}

func parseBasis(s string) engine.Basis {
	switch s {
	case "daily":
		return engine.BasisDaily
	default:
		return engine.BasisMonthly
	}
}

func parseClassification(s string, fallback engine.Classification) engine.Classification {
	switch s {
	case "moral":
		return engine.MoralPerson
	case "natural":
		return engine.NaturalPerson
	default:
		return fallback
	}
}
