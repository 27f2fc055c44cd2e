/*
Package engine summary fold and run entry point.

KEY CONCEPTS IN THIS FILE (summary.go):
  - Summary: Totals folded across all period results
  - Report: Everything one simulation run produces, plus the rate
    constants exporters need to re-derive formulas
  - Run: Evaluate + walk + fold in one call

SEE ALSO:
  - evaluator.go: Produces the PeriodResults the fold consumes
  - schedule.go: Produces the monthly ledger carried on the Report
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FINANCIAL SUMMARY
// =============================================================================

type Summary struct {
	Capital          decimal.Decimal
	InterestPart1    decimal.Decimal
	InterestPart2    decimal.Decimal
	Interest         decimal.Decimal
	VAT              decimal.Decimal
	InterestWithVAT  decimal.Decimal
	WithholdingPart1 decimal.Decimal
	WithholdingPart2 decimal.Decimal
	Withholding      decimal.Decimal
	Net              decimal.Decimal
	TotalRepayment   decimal.Decimal // capital + interest including VAT
}

// Summarize folds period results by pairwise addition of every numeric
// field. The fold is associative and commutative, so permuting the
// input changes nothing. Empty input yields all zeros.
func Summarize(results []PeriodResult) Summary {
	s := Summary{
		Capital:          decimal.Zero,
		InterestPart1:    decimal.Zero,
		InterestPart2:    decimal.Zero,
		Interest:         decimal.Zero,
		VAT:              decimal.Zero,
		InterestWithVAT:  decimal.Zero,
		WithholdingPart1: decimal.Zero,
		WithholdingPart2: decimal.Zero,
		Withholding:      decimal.Zero,
		Net:              decimal.Zero,
		TotalRepayment:   decimal.Zero,
	}
	for _, r := range results {
		s.Capital = s.Capital.Add(r.Amount)
		s.InterestPart1 = s.InterestPart1.Add(r.Part1.Interest)
		s.InterestPart2 = s.InterestPart2.Add(r.Part2.Interest)
		s.Interest = s.Interest.Add(r.Part1.Interest).Add(r.Part2.Interest)
		s.VAT = s.VAT.Add(r.Part1.VAT).Add(r.Part2.VAT)
		s.InterestWithVAT = s.InterestWithVAT.Add(r.Part1.InterestWithVAT).Add(r.Part2.InterestWithVAT)
		s.WithholdingPart1 = s.WithholdingPart1.Add(r.Part1.Withholding)
		s.WithholdingPart2 = s.WithholdingPart2.Add(r.Part2.Withholding)
		s.Withholding = s.Withholding.Add(r.Part1.Withholding).Add(r.Part2.Withholding)
		s.Net = s.Net.Add(r.Part1.Net).Add(r.Part2.Net)
	}
	s.TotalRepayment = s.Capital.Add(s.InterestWithVAT)
	return s
}

// =============================================================================
// REPORT - Full output of one run
// =============================================================================

// Report bundles the three outputs with the configuration constants so
// exporters can mirror the arithmetic against the same rates.
type Report struct {
	Rates    Rates
	Basis    Basis
	EndDate  time.Time
	Periods  []PeriodResult
	Schedule []MonthlyAccrual
	Summary  Summary
}

// Run executes a full simulation: per-injection evaluation, the monthly
// walk, and the summary fold.
func Run(cfg Configuration) Report {
	periods := EvaluatePeriods(cfg)
	return Report{
		Rates:    cfg.Rates,
		Basis:    cfg.Basis,
		EndDate:  cfg.EndDate,
		Periods:  periods,
		Schedule: MonthlySchedule(cfg),
		Summary:  Summarize(periods),
	}
}
