/*
Package ledger provides the core bookkeeping engine for a recurring team's
shared match costs.

PURPOSE:
  This package contains the domain types and algorithms for tracking each
  player's running account across weekend match cycles: how much they owe,
  how much they have paid in advance, and whether the week is settled.

KEY CONCEPTS IN THIS FILE (types.go):
  - Player: One team member's running account (balances + payment status)
  - Slot: One of the two weekly match occasions (Saturday/Sunday)
  - MatchContext: Free-form description of what triggered a submission
  - PaymentStatus: Settled-ness of the current week for a player

DESIGN PRINCIPLES:
  1. Derived totals: Player.Total is always recomputed, never trusted
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Value semantics: Snapshots are deep copies, never shared references
  4. Closed field set: Slot/Field are enums, not stringly-typed dispatch

USAGE:
  p := ledger.NewPlayer("Rahul")
  p.Saturday = ledger.Rupees(50)
  p.Recalculate()
  // p.Total == 50, p.Status == ledger.StatusPending

SEE ALSO:
  - money.go: Total and auto-status rules
  - distribute.go: Cost splitting and redistribution
  - roster.go: The mutable player list and its operations
*/
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SLOT - The two weekly match occasions
// =============================================================================

// Slot identifies which of the weekend's two matches an amount belongs to.
type Slot int

const (
	SlotSaturday Slot = iota
	SlotSunday
)

func (s Slot) String() string {
	if s == SlotSaturday {
		return "saturday"
	}
	return "sunday"
}

// =============================================================================
// FIELD - Closed set of directly editable player fields
// =============================================================================

// Field is the closed set of player fields a caller may edit directly.
// Slot fields route through redistribution; balance fields apply directly.
type Field int

const (
	FieldPrevBalance Field = iota
	FieldSaturday
	FieldSunday
	FieldAdvPaid
)

func (f Field) String() string {
	switch f {
	case FieldPrevBalance:
		return "prevBalance"
	case FieldSaturday:
		return "saturday"
	case FieldSunday:
		return "sunday"
	default:
		return "advPaid"
	}
}

// Slot reports whether the field is a match-slot amount, and which slot.
func (f Field) Slot() (Slot, bool) {
	switch f {
	case FieldSaturday:
		return SlotSaturday, true
	case FieldSunday:
		return SlotSunday, true
	default:
		return 0, false
	}
}

// =============================================================================
// PAYMENT STATUS
// =============================================================================

type PaymentStatus string

const (
	StatusNone          PaymentStatus = ""
	StatusPending       PaymentStatus = "Pending"
	StatusPartiallyPaid PaymentStatus = "Partially Paid"
	StatusPaid          PaymentStatus = "Paid"
)

// =============================================================================
// PLAYER - One team member's running account
// =============================================================================

// Player is one team member's running account for the current week.
//
// INVARIANT: Total == PrevBalance + Saturday + Sunday - AdvPaid whenever
// Status was derived automatically. Every mutation that touches a summand
// must call Recalculate before returning.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// PrevBalance is the signed amount carried over from prior weeks.
	PrevBalance decimal.Decimal `json:"prevBalance"`

	// Saturday/Sunday are the non-negative amounts owed for each slot
	// (zero if the player did not play that match).
	Saturday decimal.Decimal `json:"saturday"`
	Sunday   decimal.Decimal `json:"sunday"`

	// AdvPaid is the non-negative amount already paid in advance.
	AdvPaid decimal.Decimal `json:"advPaid"`

	// Total is derived. Never set it directly; call Recalculate.
	Total decimal.Decimal `json:"total"`

	Status PaymentStatus `json:"status"`

	// MatchDates tags which calendar dates the current slot amounts
	// correspond to. Nil when the player has no amounts this week.
	MatchDates *MatchDates `json:"matchDates,omitempty"`
}

// NewPlayer creates a fully zeroed player with a fresh id.
func NewPlayer(name string) Player {
	return Player{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// SlotAmount returns the amount recorded for the given slot.
func (p *Player) SlotAmount(s Slot) decimal.Decimal {
	if s == SlotSaturday {
		return p.Saturday
	}
	return p.Sunday
}

// SetSlotAmount overwrites the amount for the given slot.
// Caller must Recalculate afterwards.
func (p *Player) SetSlotAmount(s Slot, v decimal.Decimal) {
	if s == SlotSaturday {
		p.Saturday = v
	} else {
		p.Sunday = v
	}
}

// HasPlayed reports whether the player has a nonzero amount in either slot.
func (p *Player) HasPlayed() bool {
	return p.Saturday.IsPositive() || p.Sunday.IsPositive()
}

// Recalculate re-derives Total and Status from the current fields.
// Status is only re-derived when it was not manually forced; callers that
// edit numeric fields always re-derive both.
func (p *Player) Recalculate() {
	p.Total = ComputeTotal(p.PrevBalance, p.Saturday, p.Sunday, p.AdvPaid)
	p.Status = AutoStatus(p.Total, p.HasPlayed())
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	out := p
	if p.MatchDates != nil {
		md := *p.MatchDates
		out.MatchDates = &md
	}
	return out
}

// ClonePlayers returns a deep copy of a player list. Snapshots stored in
// history must never alias the live roster.
func ClonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = p.Clone()
	}
	return out
}

// =============================================================================
// MATCH CONTEXT - What triggered a submission
// =============================================================================

// MatchDates are the calendar dates of the weekend's two matches
// (ISO yyyy-mm-dd, empty when no match that day).
type MatchDates struct {
	Saturday string `json:"saturday,omitempty"`
	Sunday   string `json:"sunday,omitempty"`
}

// WeekendCosts are the raw cost inputs for one weekend. Each slot's ground
// and cafeteria costs are summed before splitting.
type WeekendCosts struct {
	SaturdayGround    decimal.Decimal `json:"saturdayGround"`
	SaturdayCafeteria decimal.Decimal `json:"saturdayCafeteria"`
	SundayGround      decimal.Decimal `json:"sundayGround"`
	SundayCafeteria   decimal.Decimal `json:"sundayCafeteria"`
}

// SlotTotal returns the combined cost for one slot.
func (w WeekendCosts) SlotTotal(s Slot) decimal.Decimal {
	if s == SlotSaturday {
		return w.SaturdayGround.Add(w.SaturdayCafeteria)
	}
	return w.SundayGround.Add(w.SundayCafeteria)
}

// MatchContext describes what triggered a history entry. It is opaque to the
// undo engine except for display.
type MatchContext struct {
	Dates MatchDates   `json:"dates,omitempty"`
	Teams []string     `json:"teams,omitempty"`
	Costs WeekendCosts `json:"costs,omitempty"`

	// Set on undo_backup entries only.
	Action        string `json:"action,omitempty"`
	TargetEntryID string `json:"targetEntryId,omitempty"`
	MatchCount    int    `json:"matchCount,omitempty"`
}
