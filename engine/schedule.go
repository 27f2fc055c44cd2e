/*
Package engine monthly accrual walker.

KEY CONCEPTS IN THIS FILE (schedule.go):
  - MonthlyAccrual: One calendar month's active capital and interest slice
  - MonthlySchedule: The month-by-month walk from the earliest injection
    through the end date

The walker is an independent re-computation using single-month interest
slices, not a redistribution of the evaluator's total-duration figures.
The two aggregates coincide under a shared end date but are defined
separately on purpose.

SEE ALSO:
  - evaluator.go: Per-injection total-duration breakdown
  - calendar.go: daysInMonth for the daily basis
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTHLY ACCRUAL RECORD
// =============================================================================

type MonthlyAccrual struct {
	Year          int
	Month         time.Month
	ActiveCapital decimal.Decimal // sum of injections dated on/before this month
	Interest      decimal.Decimal // pre-tax interest accrued during this month alone
	VAT           decimal.Decimal
	Withholding   decimal.Decimal
	Net           decimal.Decimal
}

// =============================================================================
// WALK
// =============================================================================

// MonthlySchedule walks calendar months from the month of the earliest
// injection through the month containing the end date, inclusive. Each
// record carries that month's active capital and that month's interest
// contribution only. With no injections the schedule is empty.
//
// VAT is computed once on the month's combined two-part interest;
// withholding is computed per part then summed, since the rate depends
// on each part's classification.
func MonthlySchedule(cfg Configuration) []MonthlyAccrual {
	if len(cfg.Injections) == 0 {
		return nil
	}

	start := cfg.Injections[0].Date()
	for _, inj := range cfg.Injections[1:] {
		if d := inj.Date(); d.Before(start) {
			start = d
		}
	}

	var schedule []MonthlyAccrual
	for cur := start; !cur.After(cfg.EndDate); cur = cur.AddDate(0, 1, 0) {
		capital := decimal.Zero
		interest := decimal.Zero
		withholding := decimal.Zero
		for _, inj := range cfg.Injections {
			if inj.Date().After(cur) {
				continue
			}
			capital = capital.Add(inj.Amount)

			p1 := monthSlice(inj.Amount.Mul(inj.Part1Pct).Div(hundred), cfg, cur)
			p2 := monthSlice(inj.Amount.Mul(inj.Part2Pct()).Div(hundred), cfg, cur)
			interest = interest.Add(p1).Add(p2)
			withholding = withholding.
				Add(p1.Mul(cfg.Rates.WithholdingFor(inj.Part1)).Div(hundred)).
				Add(p2.Mul(cfg.Rates.WithholdingFor(inj.Part2)).Div(hundred))
		}
		vat := interest.Mul(cfg.Rates.VAT).Div(hundred)
		schedule = append(schedule, MonthlyAccrual{
			Year:          cur.Year(),
			Month:         cur.Month(),
			ActiveCapital: capital,
			Interest:      interest,
			VAT:           vat,
			Withholding:   withholding,
			Net:           interest.Add(vat).Sub(withholding),
		})
	}
	return schedule
}

// monthSlice is one part's interest for a single month: 1/12 of the
// annual rate on the monthly basis, or actual-days/360 on the daily
// basis.
func monthSlice(partAmount decimal.Decimal, cfg Configuration, month time.Time) decimal.Decimal {
	base := partAmount.Mul(cfg.Rates.Annual).Div(hundred)
	if cfg.Basis == BasisDaily {
		days := decimal.NewFromInt(int64(daysInMonth(month.Year(), month.Month())))
		return base.Mul(days).Div(bankingYear)
	}
	return base.Div(twelve)
}
