/*
distribute.go - Cost splitting and redistribution

PURPOSE:
  Splits a match cost evenly across the players who played, and keeps a
  slot's total conserved when one player's share is edited by hand.

TWO OPERATIONS:
  SplitShare:   Bulk even split for a weekend submission. Full overwrite,
                round(total / selectedCount) per player. The fraction lost
                to rounding is accepted (100 across 3 players records 33
                each, 99 total). That is the team's long-standing behavior,
                not a bug to fix here.

  Redistribute: A direct edit to one player's slot amount pushes the delta
                onto the other players with a nonzero amount in that slot,
                so the slot's sum is conserved. The single-unit remainder
                of the integer division goes to the first peer in
                enumeration order. That is a tie-break, not a business
                rule.

CONSERVATION INVARIANT:
  With at least one peer, sum(slot) over all players is identical before
  and after Redistribute. Peer amounts clamp at zero; a clamp is the one
  case where the sum may drop, mirroring how the sheet always behaved.

SEE ALSO:
  - roster.go: Routes slot-field edits through Redistribute
*/
package ledger

import "github.com/shopspring/decimal"

// SplitShare returns the per-player share of an even split:
// round(total / count). Zero when count is zero.
func SplitShare(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return RoundUnit(total.Div(decimal.NewFromInt(int64(count))))
}

// Redistribute applies a direct edit of one player's slot amount and
// spreads the difference across the peers who also have a nonzero amount
// in that slot.
//
// Every touched player's Total and Status are re-derived before returning.
// With no peers the edit applies to the edited player alone; that is the
// designed fallback, not an error.
func Redistribute(players []Player, editedID string, slot Slot, newValue decimal.Decimal) error {
	edited := -1
	for i := range players {
		if players[i].ID == editedID {
			edited = i
			break
		}
	}
	if edited == -1 {
		return ErrPlayerNotFound
	}

	newValue = RoundUnit(newValue)
	delta := players[edited].SlotAmount(slot).Sub(newValue)

	// Peers: everyone else currently carrying an amount in this slot.
	var peers []int
	for i := range players {
		if i != edited && players[i].SlotAmount(slot).IsPositive() {
			peers = append(peers, i)
		}
	}

	players[edited].SetSlotAmount(slot, newValue)
	players[edited].Recalculate()

	if delta.IsZero() || len(peers) == 0 {
		return nil
	}

	perPeer := RoundUnit(delta.Div(decimal.NewFromInt(int64(len(peers)))))
	remainder := delta.Sub(perPeer.Mul(decimal.NewFromInt(int64(len(peers)))))

	for n, i := range peers {
		adjust := perPeer
		if n == 0 {
			adjust = adjust.Add(remainder)
		}
		players[i].SetSlotAmount(slot, ClampZero(players[i].SlotAmount(slot).Add(adjust)))
		players[i].Recalculate()
	}
	return nil
}
