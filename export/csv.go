/*
Package export renders simulation reports as CSV.

PURPOSE:
  Serializes the engine's three outputs (period results, monthly
  schedule, summary) into tabular form for spreadsheets. The exporter
  reads reports read-only and mirrors the engine's arithmetic only
  through the rate constants the report carries.

USAGE:
  var buf bytes.Buffer
  if err := export.WritePeriodResults(&buf, report); err != nil { ... }

SEE ALSO:
  - engine/summary.go: The Report type being rendered
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/cca-simulator/engine"
)

const dateLayout = "2006-01-02"

// WritePeriodResults emits one row per injection with both part
// breakdowns side by side.
func WritePeriodResults(w io.Writer, report engine.Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "label", "date", "amount", "duration", "unit",
		"part1_pct", "part1_class", "part1_interest", "part1_vat", "part1_withholding", "part1_net",
		"part2_pct", "part2_class", "part2_interest", "part2_vat", "part2_withholding", "part2_net",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write period header: %w", err)
	}
	for _, p := range report.Periods {
		row := []string{
			string(p.ID),
			p.Label,
			p.Date.Format(dateLayout),
			p.Amount.StringFixed(2),
			fmt.Sprintf("%d", p.Duration.Value),
			string(p.Duration.Unit),
			p.Part1.SplitPct.StringFixed(2),
			string(p.Part1.Classification),
			p.Part1.Interest.StringFixed(2),
			p.Part1.VAT.StringFixed(2),
			p.Part1.Withholding.StringFixed(2),
			p.Part1.Net.StringFixed(2),
			p.Part2.SplitPct.StringFixed(2),
			string(p.Part2.Classification),
			p.Part2.Interest.StringFixed(2),
			p.Part2.VAT.StringFixed(2),
			p.Part2.Withholding.StringFixed(2),
			p.Part2.Net.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write period row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthlySchedule emits one row per calendar month of the walk.
func WriteMonthlySchedule(w io.Writer, report engine.Report) error {
	cw := csv.NewWriter(w)
	header := []string{"year", "month", "active_capital", "interest", "vat", "withholding", "net"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write schedule header: %w", err)
	}
	for _, m := range report.Schedule {
		row := []string{
			fmt.Sprintf("%d", m.Year),
			fmt.Sprintf("%02d", m.Month),
			m.ActiveCapital.StringFixed(2),
			m.Interest.StringFixed(2),
			m.VAT.StringFixed(2),
			m.Withholding.StringFixed(2),
			m.Net.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write schedule row %d-%02d: %w", m.Year, m.Month, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary emits the folded totals as label/value rows, with the
// configured rates first so a spreadsheet can re-derive the figures.
func WriteSummary(w io.Writer, report engine.Report) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"field", "value"},
		{"basis", string(report.Basis)},
		{"end_date", report.EndDate.Format(dateLayout)},
		{"annual_rate_pct", report.Rates.Annual.StringFixed(2)},
		{"vat_rate_pct", report.Rates.VAT.StringFixed(2)},
		{"withholding_moral_pct", report.Rates.WithholdingMoral.StringFixed(2)},
		{"withholding_natural_pct", report.Rates.WithholdingNatural.StringFixed(2)},
		{"capital", report.Summary.Capital.StringFixed(2)},
		{"interest_part1", report.Summary.InterestPart1.StringFixed(2)},
		{"interest_part2", report.Summary.InterestPart2.StringFixed(2)},
		{"interest", report.Summary.Interest.StringFixed(2)},
		{"vat", report.Summary.VAT.StringFixed(2)},
		{"interest_with_vat", report.Summary.InterestWithVAT.StringFixed(2)},
		{"withholding_part1", report.Summary.WithholdingPart1.StringFixed(2)},
		{"withholding_part2", report.Summary.WithholdingPart2.StringFixed(2)},
		{"withholding", report.Summary.Withholding.StringFixed(2)},
		{"net", report.Summary.Net.StringFixed(2)},
		{"total_repayment", report.Summary.TotalRepayment.StringFixed(2)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
