/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Scenario:
    ScenarioDTO (wraps factory.ScenarioJSON), ReplaceInjectionRequest

  Simulation:
    SimulateRequest, ReportDTO, PeriodResultDTO, PartDTO,
    MonthlyAccrualDTO, SummaryDTO, RunDTO

NUMBERS:
  The engine works in decimals; responses expose float64 for chart and
  form consumption. CSV export keeps the fixed-point rendering.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/scenario.go: ScenarioJSON type
*/
package api

import (
	"github.com/warp/cca-simulator/engine"
	"github.com/warp/cca-simulator/factory"
)

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO represents a stored scenario in API responses.
type ScenarioDTO struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Config    factory.ScenarioJSON `json:"config"`
	Version   int                  `json:"version"`
	UpdatedAt string               `json:"updated_at,omitempty"`
}

// SaveScenarioRequest is the request to create or update a scenario.
type SaveScenarioRequest struct {
	Config factory.ScenarioJSON `json:"config"`
}

// ReplaceInjectionRequest is the request to replace one injection
// record by key. Every field is taken verbatim; there is no partial
// field update.
type ReplaceInjectionRequest struct {
	Injection factory.InjectionJSON `json:"injection"`
}

// =============================================================================
// SIMULATION TYPES
// =============================================================================

// SimulateRequest is an ad-hoc simulation request carrying a full
// scenario document instead of referencing a stored one.
type SimulateRequest struct {
	Config factory.ScenarioJSON `json:"config"`
}

// PartDTO represents one beneficiary part of a period result.
type PartDTO struct {
	Amount          float64 `json:"amount"`
	SplitPct        float64 `json:"split_pct"`
	Classification  string  `json:"classification"`
	Interest        float64 `json:"interest"`
	VAT             float64 `json:"vat"`
	WithholdingRate float64 `json:"withholding_rate"`
	Withholding     float64 `json:"withholding"`
	InterestWithVAT float64 `json:"interest_with_vat"`
	Net             float64 `json:"net"`
}

// PeriodResultDTO represents one injection's breakdown.
type PeriodResultDTO struct {
	ID       string  `json:"id"`
	Label    string  `json:"label,omitempty"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Duration int64   `json:"duration"`
	Unit     string  `json:"unit"`
	Part1    PartDTO `json:"part1"`
	Part2    PartDTO `json:"part2"`
}

// MonthlyAccrualDTO represents one month of the accrual walk.
type MonthlyAccrualDTO struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	ActiveCapital float64 `json:"active_capital"`
	Interest      float64 `json:"interest"`
	VAT           float64 `json:"vat"`
	Withholding   float64 `json:"withholding"`
	Net           float64 `json:"net"`
}

// SummaryDTO represents the folded totals.
type SummaryDTO struct {
	Capital          float64 `json:"capital"`
	InterestPart1    float64 `json:"interest_part1"`
	InterestPart2    float64 `json:"interest_part2"`
	Interest         float64 `json:"interest"`
	VAT              float64 `json:"vat"`
	InterestWithVAT  float64 `json:"interest_with_vat"`
	WithholdingPart1 float64 `json:"withholding_part1"`
	WithholdingPart2 float64 `json:"withholding_part2"`
	Withholding      float64 `json:"withholding"`
	Net              float64 `json:"net"`
	TotalRepayment   float64 `json:"total_repayment"`
}

// ReportDTO bundles a full simulation result, including the rates the
// report was computed with so exporters and charts can mirror the
// arithmetic.
type ReportDTO struct {
	Basis                 string              `json:"basis"`
	EndDate               string              `json:"end_date"`
	AnnualRatePct         float64             `json:"annual_rate_pct"`
	VATRatePct            float64             `json:"vat_rate_pct"`
	WithholdingMoralPct   float64             `json:"withholding_moral_pct"`
	WithholdingNaturalPct float64             `json:"withholding_natural_pct"`
	Periods               []PeriodResultDTO   `json:"periods"`
	Schedule              []MonthlyAccrualDTO `json:"schedule"`
	Summary               SummaryDTO          `json:"summary"`
	Cached                bool                `json:"cached"`
}

// RunDTO represents one entry of a scenario's run history.
type RunDTO struct {
	ID             string  `json:"id"`
	Basis          string  `json:"basis"`
	Capital        float64 `json:"capital"`
	Interest       float64 `json:"interest"`
	Net            float64 `json:"net"`
	TotalRepayment float64 `json:"total_repayment"`
	CreatedAt      string  `json:"created_at"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

const dateLayout = "2006-01-02"

func toPartDTO(p engine.PartBreakdown) PartDTO {
	return PartDTO{
		Amount:          p.Amount.InexactFloat64(),
		SplitPct:        p.SplitPct.InexactFloat64(),
		Classification:  string(p.Classification),
		Interest:        p.Interest.InexactFloat64(),
		VAT:             p.VAT.InexactFloat64(),
		WithholdingRate: p.WithholdingRate.InexactFloat64(),
		Withholding:     p.Withholding.InexactFloat64(),
		InterestWithVAT: p.InterestWithVAT.InexactFloat64(),
		Net:             p.Net.InexactFloat64(),
	}
}

func toPeriodResultDTO(p engine.PeriodResult) PeriodResultDTO {
	return PeriodResultDTO{
		ID:       string(p.ID),
		Label:    p.Label,
		Date:     p.Date.Format(dateLayout),
		Amount:   p.Amount.InexactFloat64(),
		Duration: p.Duration.Value,
		Unit:     string(p.Duration.Unit),
		Part1:    toPartDTO(p.Part1),
		Part2:    toPartDTO(p.Part2),
	}
}

func toMonthlyAccrualDTO(m engine.MonthlyAccrual) MonthlyAccrualDTO {
	return MonthlyAccrualDTO{
		Year:          m.Year,
		Month:         int(m.Month),
		ActiveCapital: m.ActiveCapital.InexactFloat64(),
		Interest:      m.Interest.InexactFloat64(),
		VAT:           m.VAT.InexactFloat64(),
		Withholding:   m.Withholding.InexactFloat64(),
		Net:           m.Net.InexactFloat64(),
	}
}

func toSummaryDTO(s engine.Summary) SummaryDTO {
	return SummaryDTO{
		Capital:          s.Capital.InexactFloat64(),
		InterestPart1:    s.InterestPart1.InexactFloat64(),
		InterestPart2:    s.InterestPart2.InexactFloat64(),
		Interest:         s.Interest.InexactFloat64(),
		VAT:              s.VAT.InexactFloat64(),
		InterestWithVAT:  s.InterestWithVAT.InexactFloat64(),
		WithholdingPart1: s.WithholdingPart1.InexactFloat64(),
		WithholdingPart2: s.WithholdingPart2.InexactFloat64(),
		Withholding:      s.Withholding.InexactFloat64(),
		Net:              s.Net.InexactFloat64(),
		TotalRepayment:   s.TotalRepayment.InexactFloat64(),
	}
}

func toReportDTO(report engine.Report) ReportDTO {
	dto := ReportDTO{
		Basis:                 string(report.Basis),
		EndDate:               report.EndDate.Format(dateLayout),
		AnnualRatePct:         report.Rates.Annual.InexactFloat64(),
		VATRatePct:            report.Rates.VAT.InexactFloat64(),
		WithholdingMoralPct:   report.Rates.WithholdingMoral.InexactFloat64(),
		WithholdingNaturalPct: report.Rates.WithholdingNatural.InexactFloat64(),
		Summary:               toSummaryDTO(report.Summary),
	}
	dto.Periods = make([]PeriodResultDTO, len(report.Periods))
	for i, p := range report.Periods {
		dto.Periods[i] = toPeriodResultDTO(p)
	}
	dto.Schedule = make([]MonthlyAccrualDTO, len(report.Schedule))
	for i, m := range report.Schedule {
		dto.Schedule[i] = toMonthlyAccrualDTO(m)
	}
	return dto
}
