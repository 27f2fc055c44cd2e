/*
Package engine period evaluator.

KEY CONCEPTS IN THIS FILE (evaluator.go):
  - PartBreakdown: Interest/VAT/withholding/net for one beneficiary part
  - PeriodResult: Full breakdown for one injection over its whole duration
  - EvaluatePeriods: The per-injection evaluation pass

The evaluator is pure: the same Configuration always yields the same
results, input order is preserved, and no cross-part netting occurs
within a single result.

SEE ALSO:
  - calendar.go: Duration computation per basis
  - summary.go: Folds PeriodResults into a Summary
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD RESULT - Output of the evaluator, one per injection
// =============================================================================

// PartBreakdown reports one beneficiary part of an injection. All four
// derived quantities (interest, VAT, withholding, net) are computed
// independently per part.
type PartBreakdown struct {
	Amount          decimal.Decimal
	SplitPct        decimal.Decimal
	Classification  Classification
	Interest        decimal.Decimal // pre-tax simple interest
	VAT             decimal.Decimal
	WithholdingRate decimal.Decimal
	Withholding     decimal.Decimal // applied to pre-tax interest
	InterestWithVAT decimal.Decimal
	Net             decimal.Decimal // InterestWithVAT - Withholding
}

type Duration struct {
	Value int64
	Unit  DurationUnit
}

type PeriodResult struct {
	ID       InjectionID
	Label    string
	Date     time.Time
	Amount   decimal.Decimal
	Duration Duration
	Part1    PartBreakdown
	Part2    PartBreakdown
}

// =============================================================================
// EVALUATION
// =============================================================================

// EvaluatePeriods computes one PeriodResult per injection, in input
// order. Duration is clamped to zero when the end date precedes the
// injection date, which zeroes every derived amount for that period.
func EvaluatePeriods(cfg Configuration) []PeriodResult {
	results := make([]PeriodResult, 0, len(cfg.Injections))
	for _, inj := range cfg.Injections {
		date := inj.Date()
		dur := durationFor(cfg.Basis, date, cfg.EndDate)
		results = append(results, PeriodResult{
			ID:       inj.ID,
			Label:    inj.Label,
			Date:     date,
			Amount:   inj.Amount,
			Duration: Duration{Value: dur, Unit: cfg.Basis.Unit()},
			Part1:    evaluatePart(inj.Amount, inj.Part1Pct, inj.Part1, cfg, dur),
			Part2:    evaluatePart(inj.Amount, inj.Part2Pct(), inj.Part2, cfg, dur),
		})
	}
	return results
}

// evaluatePart computes a single part's breakdown. The part amount is
// derived from the total and the part's own percentage, not by
// subtracting the other part, to match the percentage-based model.
func evaluatePart(total, pct decimal.Decimal, class Classification, cfg Configuration, dur int64) PartBreakdown {
	amount := total.Mul(pct).Div(hundred)
	interest := simpleInterest(amount, cfg.Rates.Annual, dur, cfg.Basis)
	vat := interest.Mul(cfg.Rates.VAT).Div(hundred)
	rate := cfg.Rates.WithholdingFor(class)
	withholding := interest.Mul(rate).Div(hundred)
	withVAT := interest.Add(vat)
	return PartBreakdown{
		Amount:          amount,
		SplitPct:        pct,
		Classification:  class,
		Interest:        interest,
		VAT:             vat,
		WithholdingRate: rate,
		Withholding:     withholding,
		InterestWithVAT: withVAT,
		Net:             withVAT.Sub(withholding),
	}
}

// simpleInterest applies the basis denominator: duration/12 for
// monthly accrual, duration/360 for the daily banking convention.
func simpleInterest(amount, annualRate decimal.Decimal, dur int64, basis Basis) decimal.Decimal {
	base := amount.Mul(annualRate).Div(hundred).Mul(decimal.NewFromInt(dur))
	if basis == BasisDaily {
		return base.Div(bankingYear)
	}
	return base.Div(twelve)
}
