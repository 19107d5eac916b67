/*
validate.go - Cross-checking the total formula across the roster

PURPOSE:
  Recomputes every player's expected total from the money rules and
  compares it to the stored total. A mismatch is an error; status/played
  inconsistencies are warnings. The report is a diagnostic for operator
  review, never a blocker.
*/
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// totalTolerance absorbs floating-point noise from imported data.
var totalTolerance = decimal.NewFromFloat(0.01)

// PlayerCheck is one player's row in a validation report.
type PlayerCheck struct {
	Name          string          `json:"name"`
	ExpectedTotal decimal.Decimal `json:"expectedTotal"`
	ActualTotal   decimal.Decimal `json:"actualTotal"`
	Discrepancy   decimal.Decimal `json:"discrepancy"`
	IsCorrect     bool            `json:"isCorrect"`
}

// ValidationReport is the outcome of ValidatePlayers.
type ValidationReport struct {
	IsValid      bool          `json:"isValid"`
	Errors       []string      `json:"errors"`
	Warnings     []string      `json:"warnings"`
	PlayerChecks []PlayerCheck `json:"playerChecks"`
}

// ValidatePlayers checks every player's stored total against the formula
// and flags suspicious status/played combinations.
//
// Errors:   stored total differs from prevBalance+saturday+sunday-advPaid
//           beyond tolerance.
// Warnings: played but no status, or status but didn't play. Suspicious,
//           not fatal.
func ValidatePlayers(players []Player) ValidationReport {
	report := ValidationReport{IsValid: true}

	for _, p := range players {
		expected := ComputeTotal(p.PrevBalance, p.Saturday, p.Sunday, p.AdvPaid)
		discrepancy := expected.Sub(p.Total).Abs()

		check := PlayerCheck{
			Name:          p.Name,
			ExpectedTotal: expected,
			ActualTotal:   p.Total,
			Discrepancy:   discrepancy,
			IsCorrect:     discrepancy.LessThan(totalTolerance),
		}
		if !check.IsCorrect {
			report.IsValid = false
			report.Errors = append(report.Errors, fmt.Sprintf(
				"%s: expected total %s, got %s (difference: %s)",
				p.Name, expected, p.Total, discrepancy))
		}

		if p.HasPlayed() && p.Status == StatusNone {
			report.Warnings = append(report.Warnings, p.Name+": played but has no status")
		}
		if !p.HasPlayed() && p.Status != StatusNone {
			report.Warnings = append(report.Warnings, p.Name+": has status but didn't play")
		}

		report.PlayerChecks = append(report.PlayerChecks, check)
	}
	return report
}
