/*
Package engine provides the core CCA interest simulation engine.

PURPOSE:
  This package contains the calculation core for a current shareholder
  account ("compte courant d'associé") simulation: each capital injection
  accrues simple interest through a configurable end date, split into two
  beneficiary parts with independent tax classifications, and the engine
  produces a per-injection breakdown, a month-by-month accrual ledger and
  a folded financial summary.

KEY CONCEPTS IN THIS FILE (types.go):
  - Injection: A dated capital contribution split into two parts
  - Classification: Fiscal category of a part (moral vs. natural person)
  - Basis: Accrual convention (calendar months vs. days over a 360 year)
  - Rates: The configured annual, VAT and withholding percentages
  - Configuration: The complete input to one simulation run

DESIGN PRINCIPLES:
  1. Purity: Every calculation is a mapping from Configuration to output
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Closed variants: Classification and Basis are enumerations so rate
     lookup and duration-formula selection stay exhaustive
  4. Derived part 2: Only part 1's percentage is stored; part 2 is always
     the complement, which removes a class of drift bugs

USAGE:
  cfg := engine.Configuration{
      Injections: []engine.Injection{{
          ID:       "inj-001",
          Month:    time.February,
          Year:     2025,
          Amount:   engine.MustParseDecimal("100000"),
          Part1Pct: engine.MustParseDecimal("80"),
          Part1:    engine.MoralPerson,
          Part2:    engine.NaturalPerson,
      }},
      Rates:   engine.Rates{Annual: engine.MustParseDecimal("5"), ...},
      EndDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
      Basis:   engine.BasisMonthly,
  }
  report := engine.Run(cfg)

SEE ALSO:
  - evaluator.go: Per-injection duration and two-part breakdown
  - schedule.go: Month-by-month accrual walker
  - summary.go: Summary fold and the Run entry point
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SHARED DECIMAL CONSTANTS
// =============================================================================

var (
	hundred     = decimal.NewFromInt(100)
	twelve      = decimal.NewFromInt(12)
	bankingYear = decimal.NewFromInt(360) // 360-day banking convention, not 365
)

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// CLASSIFICATION - Fiscal category of a beneficiary part
// =============================================================================

// Classification selects which withholding rate applies to a part's
// pre-tax interest. There are exactly two categories.
type Classification string

const (
	MoralPerson   Classification = "moral"   // Legal entity
	NaturalPerson Classification = "natural" // Individual
)

// =============================================================================
// BASIS - Accrual convention
// =============================================================================

// Basis selects both the duration computation and the interest
// denominator: calendar months over 12, or days over 360.
type Basis string

const (
	BasisMonthly Basis = "monthly"
	BasisDaily   Basis = "daily"
)

// DurationUnit labels a Duration value in period results.
type DurationUnit string

const (
	UnitMonths DurationUnit = "Months"
	UnitDays   DurationUnit = "Days"
)

// Unit returns the duration unit reported under this basis.
func (b Basis) Unit() DurationUnit {
	if b == BasisDaily {
		return UnitDays
	}
	return UnitMonths
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type InjectionID string

// =============================================================================
// INJECTION - Dated capital contribution, split into two parts
// =============================================================================

// Injection is immutable once created. The UI layer replaces whole
// records by ID (see Registry) rather than mutating fields, so an
// in-flight calculation never observes a partial update.
type Injection struct {
	ID       InjectionID
	Label    string
	Month    time.Month // 1-12
	Year     int
	Amount   decimal.Decimal // total contributed capital, single implicit currency
	Part1Pct decimal.Decimal // 0-100; part 2's share is always the complement
	Part1    Classification
	Part2    Classification
}

// Date returns the injection date, fixed to the first day of the month.
func (in Injection) Date() time.Time {
	return time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Part2Pct derives part 2's share. It is never stored independently,
// so part1_pct + part2_pct == 100 holds structurally.
func (in Injection) Part2Pct() decimal.Decimal {
	return hundred.Sub(in.Part1Pct)
}

// =============================================================================
// RATES - Configured percentages for one run
// =============================================================================

type Rates struct {
	Annual             decimal.Decimal // annual interest rate, percent
	VAT                decimal.Decimal // percent, applied to pre-tax interest
	WithholdingMoral   decimal.Decimal // percent, moral-person parts
	WithholdingNatural decimal.Decimal // percent, natural-person parts
}

// WithholdingFor returns the withholding rate for a classification.
func (r Rates) WithholdingFor(c Classification) decimal.Decimal {
	if c == NaturalPerson {
		return r.WithholdingNatural
	}
	return r.WithholdingMoral
}

// =============================================================================
// CONFIGURATION - Complete input to a simulation run
// =============================================================================

// Configuration carries everything the engine needs. Injection order is
// preserved in outputs but has no effect on any computed value. The
// engine performs no validation: out-of-range percentages or negative
// rates are applied arithmetically, never rejected.
type Configuration struct {
	Injections []Injection
	Rates      Rates
	EndDate    time.Time // last date over which interest accrues
	Basis      Basis
}
