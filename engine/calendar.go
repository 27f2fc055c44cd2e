/*
Package engine calendar helpers.

KEY CONCEPTS IN THIS FILE (calendar.go):
  - monthsInclusive: Calendar-month count, both endpoints included
  - daysCeil: Elapsed days rounded up (banking day count)
  - daysInMonth: Actual length of a calendar month

SEE ALSO:
  - evaluator.go: Uses durationFor to pick the basis formula
  - schedule.go: Uses daysInMonth for daily-basis month slices
*/
package engine

import (
	"math"
	"time"
)

// monthsInclusive counts calendar months from the month of `from` to
// the month of `to`, both ends included. Feb 2025 through May 2025 is
// 4 months. Returns 0 when `to` is strictly before `from`.
func monthsInclusive(from, to time.Time) int64 {
	if to.Before(from) {
		return 0
	}
	years := int64(to.Year() - from.Year())
	months := int64(to.Month() - from.Month())
	return years*12 + months + 1
}

// daysCeil returns the elapsed days between two instants, rounded up
// to whole days. Same-day yields 0. Negative spans clamp to 0.
func daysCeil(from, to time.Time) int64 {
	hours := to.Sub(from).Hours()
	if hours <= 0 {
		return 0
	}
	return int64(math.Ceil(hours / 24))
}

// daysInMonth returns the number of calendar days in the given month.
// Day 0 of the next month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// durationFor computes an injection's accrual duration under the given
// basis: inclusive months, or ceiling days.
func durationFor(basis Basis, injected, end time.Time) int64 {
	if basis == BasisDaily {
		return daysCeil(injected, end)
	}
	return monthsInclusive(injected, end)
}
