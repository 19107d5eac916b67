/*
money.go - Total and auto-status rules

PURPOSE:
  Pure functions computing a player's running total and payment status from
  its fields. Everything else in the package is built on these two rules.

THE RULES:
  Total  = prevBalance + saturday + sunday - advPaid
  Status = ""        if the player has no slot amounts this week
           "Paid"    if total <= 0
           "Pending" otherwise

ROUNDING:
  All slot amounts are whole currency units. RoundUnit rounds half away
  from zero, which matches the rounding the team has always used for
  positive amounts.

SEE ALSO:
  - distribute.go: Uses RoundUnit when splitting costs
  - validate.go: Cross-checks Total against this formula
*/
package ledger

import "github.com/shopspring/decimal"

// Rupees builds a whole-unit amount. Test and call-site convenience.
func Rupees(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// MustParseAmount parses a stored amount, coercing malformed input to
// zero. Permissive by design for a personal-use ledger.
func MustParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ComputeTotal returns prevBalance + saturday + sunday - advPaid.
// Pure arithmetic; decimal zero values stand in for missing inputs.
func ComputeTotal(prevBalance, saturday, sunday, advPaid decimal.Decimal) decimal.Decimal {
	return prevBalance.Add(saturday).Add(sunday).Sub(advPaid)
}

// AutoStatus derives the payment status from the total and whether the
// player played this week. A settled or negative total counts as paid.
func AutoStatus(total decimal.Decimal, hasPlayed bool) PaymentStatus {
	if !hasPlayed {
		return StatusNone
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return StatusPaid
	}
	return StatusPending
}

// RoundUnit rounds to the nearest whole currency unit, half away from zero.
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// ClampZero returns d, floored at zero. Slot amounts never go negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
