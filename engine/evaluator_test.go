/*
evaluator_test.go - Period Evaluator Behavior Tests

PURPOSE:
  These tests document and validate the per-injection evaluation pass:
  duration under both accrual bases, the two-part split, and the
  interest/VAT/withholding/net arithmetic.

READING THESE TESTS:
  Each test has:
  - A descriptive name that states the behavior
  - GIVEN/WHEN/THEN comments explaining the scenario
  - Clear assertions with explanatory messages
*/
package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/cca-simulator/engine"
)

// =============================================================================
// TEST INFRASTRUCTURE
// =============================================================================

func dec(s string) decimal.Decimal {
	return engine.MustParseDecimal(s)
}

func standardRates() engine.Rates {
	return engine.Rates{
		Annual:             dec("5"),
		VAT:                dec("10"),
		WithholdingMoral:   dec("30"),
		WithholdingNatural: dec("15"),
	}
}

func singleInjection() engine.Injection {
	return engine.Injection{
		ID:       "inj-001",
		Label:    "Initial contribution",
		Month:    time.February,
		Year:     2025,
		Amount:   dec("100000"),
		Part1Pct: dec("80"),
		Part1:    engine.MoralPerson,
		Part2:    engine.NaturalPerson,
	}
}

func assertFixed(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if got.StringFixed(2) != want {
		t.Errorf("%s: got %s, want %s", label, got.StringFixed(2), want)
	}
}

// =============================================================================
// DURATION
// =============================================================================

func TestEvaluator_MonthlyDuration_IsInclusiveOnBothEnds(t *testing.T) {
	// GIVEN: An injection in February 2025 and an end date of 2025-05-31
	// WHEN: Evaluating on the monthly basis
	// THEN: Duration is 4 months (Feb, Mar, Apr, May inclusive)

	cfg := engine.Configuration{
		Injections: []engine.Injection{singleInjection()},
		Rates:      standardRates(),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisMonthly,
	}

	results := engine.EvaluatePeriods(cfg)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Duration.Value != 4 {
		t.Errorf("monthly duration: got %d, want 4", results[0].Duration.Value)
	}
	if results[0].Duration.Unit != engine.UnitMonths {
		t.Errorf("duration unit: got %q, want %q", results[0].Duration.Unit, engine.UnitMonths)
	}
}

func TestEvaluator_Duration_ClampsToZeroWhenEndPrecedesInjection(t *testing.T) {
	// GIVEN: An injection dated after the end date
	// WHEN: Evaluating under either basis
	// THEN: Duration is 0, never negative, and every derived amount is zero

	inj := singleInjection()
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	for _, basis := range []engine.Basis{engine.BasisMonthly, engine.BasisDaily} {
		cfg := engine.Configuration{
			Injections: []engine.Injection{inj},
			Rates:      standardRates(),
			EndDate:    end,
			Basis:      basis,
		}
		r := engine.EvaluatePeriods(cfg)[0]
		if r.Duration.Value != 0 {
			t.Errorf("basis %s: duration got %d, want 0", basis, r.Duration.Value)
		}
		if !r.Part1.Interest.IsZero() || !r.Part1.Net.IsZero() {
			t.Errorf("basis %s: expected zero interest and net for clamped duration", basis)
		}
	}
}

func TestEvaluator_DailyDuration_SameDayIsZero(t *testing.T) {
	// GIVEN: An injection dated 2025-02-01 and an end date of 2025-02-01
	// WHEN: Evaluating on the daily basis
	// THEN: Duration is 0 days (zero elapsed time, ceiling of 0)

	cfg := engine.Configuration{
		Injections: []engine.Injection{singleInjection()},
		Rates:      standardRates(),
		EndDate:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisDaily,
	}

	r := engine.EvaluatePeriods(cfg)[0]
	if r.Duration.Value != 0 {
		t.Errorf("same-day daily duration: got %d, want 0", r.Duration.Value)
	}
	if r.Duration.Unit != engine.UnitDays {
		t.Errorf("duration unit: got %q, want %q", r.Duration.Unit, engine.UnitDays)
	}
}

func TestEvaluator_DailyDuration_UsesCeilingDays(t *testing.T) {
	// GIVEN: An injection dated 2025-02-01 and an end date of 2025-05-31
	// WHEN: Evaluating on the daily basis
	// THEN: Duration is the elapsed days: 28 (Feb) + 31 + 30 + 30 = 119

	cfg := engine.Configuration{
		Injections: []engine.Injection{singleInjection()},
		Rates:      standardRates(),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisDaily,
	}

	r := engine.EvaluatePeriods(cfg)[0]
	if r.Duration.Value != 119 {
		t.Errorf("daily duration: got %d, want 119", r.Duration.Value)
	}
}

// =============================================================================
// TWO-PART SPLIT AND ARITHMETIC
// =============================================================================

func TestEvaluator_WorkedScenario_MonthlyBasis(t *testing.T) {
	// GIVEN: 100000 injected 2025-02, part1 80% moral, part2 20% natural,
	//        annual 5%, VAT 10%, withholding 30% moral / 15% natural,
	//        end date 2025-05-31, monthly basis
	// WHEN: Evaluating the period
	// THEN: Duration 4; part1 interest 1333.33, VAT 133.33,
	//       withholding 400.00, net 1066.67; part2 interest 333.33,
	//       withholding 50.00, net 316.67

	cfg := engine.Configuration{
		Injections: []engine.Injection{singleInjection()},
		Rates:      standardRates(),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisMonthly,
	}

	r := engine.EvaluatePeriods(cfg)[0]

	assertFixed(t, "part1 amount", r.Part1.Amount, "80000.00")
	assertFixed(t, "part1 interest", r.Part1.Interest, "1333.33")
	assertFixed(t, "part1 vat", r.Part1.VAT, "133.33")
	assertFixed(t, "part1 withholding", r.Part1.Withholding, "400.00")
	assertFixed(t, "part1 net", r.Part1.Net, "1066.67")

	assertFixed(t, "part2 amount", r.Part2.Amount, "20000.00")
	assertFixed(t, "part2 interest", r.Part2.Interest, "333.33")
	assertFixed(t, "part2 withholding", r.Part2.Withholding, "50.00")
	assertFixed(t, "part2 net", r.Part2.Net, "316.67")
}

func TestEvaluator_SplitPercentages_AlwaysSumToHundred(t *testing.T) {
	// GIVEN: Injections with varied part1 percentages, including edges
	// WHEN: Evaluating each period
	// THEN: SplitPct of part1 + part2 is exactly 100 in every result

	for _, pct := range []string{"0", "20", "50", "80", "100", "33.33"} {
		inj := singleInjection()
		inj.Part1Pct = dec(pct)
		cfg := engine.Configuration{
			Injections: []engine.Injection{inj},
			Rates:      standardRates(),
			EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
			Basis:      engine.BasisMonthly,
		}
		r := engine.EvaluatePeriods(cfg)[0]
		sum := r.Part1.SplitPct.Add(r.Part2.SplitPct)
		if !sum.Equal(dec("100")) {
			t.Errorf("part1 %s%%: split percentages sum to %s, want 100", pct, sum)
		}
	}
}

func TestEvaluator_NetEqualsInterestWithVATMinusWithholding(t *testing.T) {
	// GIVEN: A standard configuration
	// WHEN: Evaluating
	// THEN: net = (interest + VAT) - withholding holds exactly, per part

	cfg := engine.Configuration{
		Injections: []engine.Injection{singleInjection()},
		Rates:      standardRates(),
		EndDate:    time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisDaily,
	}

	r := engine.EvaluatePeriods(cfg)[0]
	for _, part := range []engine.PartBreakdown{r.Part1, r.Part2} {
		want := part.Interest.Add(part.VAT).Sub(part.Withholding)
		if !part.Net.Equal(want) {
			t.Errorf("classification %s: net %s != interest+VAT-withholding %s",
				part.Classification, part.Net, want)
		}
		if !part.InterestWithVAT.Equal(part.Interest.Add(part.VAT)) {
			t.Errorf("classification %s: interestWithVAT inconsistent", part.Classification)
		}
	}
}

func TestEvaluator_WithholdingRate_FollowsClassification(t *testing.T) {
	// GIVEN: Part1 classified natural and part2 classified moral
	//        (the reverse of the usual arrangement)
	// WHEN: Evaluating
	// THEN: Each part uses the rate of its own classification

	inj := singleInjection()
	inj.Part1 = engine.NaturalPerson
	inj.Part2 = engine.MoralPerson

	cfg := engine.Configuration{
		Injections: []engine.Injection{inj},
		Rates:      standardRates(),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisMonthly,
	}

	r := engine.EvaluatePeriods(cfg)[0]
	if !r.Part1.WithholdingRate.Equal(dec("15")) {
		t.Errorf("natural part1 rate: got %s, want 15", r.Part1.WithholdingRate)
	}
	if !r.Part2.WithholdingRate.Equal(dec("30")) {
		t.Errorf("moral part2 rate: got %s, want 30", r.Part2.WithholdingRate)
	}
}

func TestEvaluator_PreservesInputOrder(t *testing.T) {
	// GIVEN: Three injections in a specific order
	// WHEN: Evaluating
	// THEN: Results come back in the same order with matching IDs

	a, b, c := singleInjection(), singleInjection(), singleInjection()
	a.ID, b.ID, c.ID = "a", "b", "c"
	b.Year, c.Year = 2024, 2023

	cfg := engine.Configuration{
		Injections: []engine.Injection{a, b, c},
		Rates:      standardRates(),
		EndDate:    time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		Basis:      engine.BasisMonthly,
	}

	results := engine.EvaluatePeriods(cfg)
	want := []engine.InjectionID{"a", "b", "c"}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, results[i].ID, id)
		}
	}
}

func TestEvaluator_DailyBasis_Uses360DayYear(t *testing.T) {
	// GIVEN: 36000 at 10% annual for exactly 36 days
	// WHEN: Evaluating on the daily basis
	// THEN: Interest is 36000 * 0.10 * 36/360 = 360.00 for a 100% part

	inj := engine.Injection{
		ID:       "inj-360",
		Month:    time.January,
		Year:     2025,
		Amount:   dec("36000"),
		Part1Pct: dec("100"),
		Part1:    engine.MoralPerson,
		Part2:    engine.NaturalPerson,
	}
	cfg := engine.Configuration{
		Injections: []engine.Injection{inj},
		Rates:      engine.Rates{Annual: dec("10"), VAT: dec("0"), WithholdingMoral: dec("0"), WithholdingNatural: dec("0")},
		EndDate:    time.Date(2025, 2, 6, 0, 0, 0, 0, time.UTC), // 36 days after Jan 1
		Basis:      engine.BasisDaily,
	}

	r := engine.EvaluatePeriods(cfg)[0]
	if r.Duration.Value != 36 {
		t.Fatalf("duration: got %d, want 36", r.Duration.Value)
	}
	assertFixed(t, "part1 interest", r.Part1.Interest, "360.00")
	assertFixed(t, "part2 interest", r.Part2.Interest, "0.00")
}
