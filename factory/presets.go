/*
presets.go - Pre-built simulation scenario configurations

PURPOSE:
  Provides ready-to-use scenario JSON for common CCA arrangements.
  These are convenience builders covering the typical shapes a
  shareholder account simulation takes.

AVAILABLE PRESETS:
  SingleInjectionJSON: One contribution split 80/20 moral/natural
  QuarterlyJSON:       Four equal quarterly contributions
  SoloFounderJSON:     One natural-person shareholder, no split

CUSTOMIZATION:
  These are starting points. Parse them with ConfigFactory, adjust the
  resulting Configuration, then run the engine.

SEE ALSO:
  - scenario.go: JSON schema and parsing
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMMON SCENARIOS
// =============================================================================

// SingleInjectionJSON returns a scenario with one contribution split
// between a moral-person and a natural-person part.
func SingleInjectionJSON(id, name string, amount, part1Pct float64, year int, month time.Month, endDate string) string {
	sj := ScenarioJSON{
		ID:                    id,
		Name:                  name,
		AnnualRatePct:         decimal.NewFromFloat(5),
		VATRatePct:            decimal.NewFromFloat(10),
		WithholdingMoralPct:   decimal.NewFromFloat(30),
		WithholdingNaturalPct: decimal.NewFromFloat(15),
		EndDate:               endDate,
		Basis:                 "monthly",
		Injections: []InjectionJSON{{
			ID:         fmt.Sprintf("%s-inj-1", id),
			Label:      "Initial contribution",
			Month:      int(month),
			Year:       year,
			Amount:     decimal.NewFromFloat(amount),
			Part1Pct:   decimal.NewFromFloat(part1Pct),
			Part1Class: "moral",
			Part2Class: "natural",
		}},
	}
	b, _ := json.Marshal(sj)
	return string(b)
}

// QuarterlyJSON returns a scenario with four equal contributions, one
// per quarter of the given year, on the daily basis.
func QuarterlyJSON(id, name string, quarterAmount float64, year int, endDate string) string {
	sj := ScenarioJSON{
		ID:                    id,
		Name:                  name,
		AnnualRatePct:         decimal.NewFromFloat(4),
		VATRatePct:            decimal.NewFromFloat(10),
		WithholdingMoralPct:   decimal.NewFromFloat(30),
		WithholdingNaturalPct: decimal.NewFromFloat(15),
		EndDate:               endDate,
		Basis:                 "daily",
	}
	for q := 0; q < 4; q++ {
		sj.Injections = append(sj.Injections, InjectionJSON{
			ID:         fmt.Sprintf("%s-q%d", id, q+1),
			Label:      fmt.Sprintf("Q%d contribution", q+1),
			Month:      q*3 + 1,
			Year:       year,
			Amount:     decimal.NewFromFloat(quarterAmount),
			Part1Pct:   decimal.NewFromFloat(50),
			Part1Class: "moral",
			Part2Class: "natural",
		})
	}
	b, _ := json.Marshal(sj)
	return string(b)
}

// SoloFounderJSON returns a scenario where a single natural person
// holds the whole account. Part 2 carries a zero share.
func SoloFounderJSON(id, name string, amount float64, year int, month time.Month, endDate string) string {
	sj := ScenarioJSON{
		ID:                    id,
		Name:                  name,
		AnnualRatePct:         decimal.NewFromFloat(5),
		VATRatePct:            decimal.NewFromFloat(10),
		WithholdingMoralPct:   decimal.NewFromFloat(30),
		WithholdingNaturalPct: decimal.NewFromFloat(15),
		EndDate:               endDate,
		Basis:                 "monthly",
		Injections: []InjectionJSON{{
			ID:         fmt.Sprintf("%s-inj-1", id),
			Label:      "Founder account",
			Month:      int(month),
			Year:       year,
			Amount:     decimal.NewFromFloat(amount),
			Part1Pct:   decimal.NewFromFloat(100),
			Part1Class: "natural",
			Part2Class: "natural",
		}},
	}
	b, _ := json.Marshal(sj)
	return string(b)
}
