/*
roster.go - The mutable player list and its operations

PURPOSE:
  Roster is the authoritative in-memory player list. Every operation leaves
  every player internally consistent: Total always equals
  prevBalance + saturday + sunday - advPaid when it was derived
  automatically.

OPERATIONS:
  SetField:       Edit one field. Slot amounts route through redistribution
                  so the slot's sum is conserved; balance fields apply
                  directly and re-derive total/status.
  SetStatus:      Explicit status override. Forcing "Paid" on an open total
                  also raises AdvPaid to exactly cover what is owed.
  UndoPayment:    Reset AdvPaid to zero and clear the status.
  ApplyWeekend:   Bulk even split of the weekend's costs, full overwrite,
                  recorded in history as a "weekend" submission.
  ResetWeekend:   Zero both slots for everyone.
  MoveToNextWeek: Roll Total into PrevBalance and zero the slots. "Paid"
                  demotes to "Pending"; a settled week still needs explicit
                  re-confirmation next cycle.
  ReplaceAll:     Accept a bulk list from an external source (import,
                  remote load), deduplicated by name, first occurrence
                  wins.

CONCURRENCY:
  All mutations are discrete synchronous operations guarded by a mutex.
  Reads return deep copies; callers never see the live slice.

SEE ALSO:
  - distribute.go: The splitting rules
  - history.go: Submission records written by ApplyWeekend
  - undo.go: Reversing a recorded submission
*/
package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Roster is the mutable source of truth for the player list.
type Roster struct {
	mu      sync.RWMutex
	players []Player
	history HistoryStore
	log     *zap.Logger
}

// NewRoster creates a roster around an initial player list. The list is
// deduplicated by name (first occurrence wins) before being accepted.
// history may be nil for rosters that never submit weekends.
func NewRoster(players []Player, history HistoryStore, log *zap.Logger) *Roster {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Roster{history: history, log: log}
	r.ReplaceAll(players, "init")
	return r
}

// Players returns a deep copy of the current player list.
func (r *Roster) Players() []Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ClonePlayers(r.players)
}

// Get returns a copy of one player.
func (r *Roster) Get(id string) (Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.players {
		if r.players[i].ID == id {
			return r.players[i].Clone(), nil
		}
	}
	return Player{}, ErrPlayerNotFound
}

// =============================================================================
// FIELD EDITS
// =============================================================================

// SetField edits one player field. Slot fields route through Redistribute
// so the slot total is conserved across the other players who played that
// match; PrevBalance and AdvPaid apply directly. Total and Status are
// re-derived for every touched player.
func (r *Roster) SetField(id string, field Field, value decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot, ok := field.Slot(); ok {
		return Redistribute(r.players, id, slot, value)
	}

	p := r.find(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	switch field {
	case FieldPrevBalance:
		p.PrevBalance = RoundUnit(value)
	case FieldAdvPaid:
		p.AdvPaid = RoundUnit(value)
	}
	p.Recalculate()
	return nil
}

// SetStatus stores an explicit user-chosen status. No auto-derivation
// happens, except that forcing "Paid" while money is still owed also
// raises AdvPaid to exactly cover the owed amount so the total settles.
// That is a deliberate side-effecting shortcut, not just a label change.
func (r *Roster) SetStatus(id string, status PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	if status == StatusPaid && p.Total.IsPositive() {
		p.AdvPaid = p.PrevBalance.Add(p.Saturday).Add(p.Sunday)
		p.Total = ComputeTotal(p.PrevBalance, p.Saturday, p.Sunday, p.AdvPaid)
	}
	p.Status = status
	return nil
}

// UndoPayment reverses a mark-as-paid: AdvPaid resets to zero (not to its
// prior value; the original advance is intentionally not restored), the
// total reopens, and the status clears.
func (r *Roster) UndoPayment(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.find(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	p.AdvPaid = decimal.Zero
	p.Total = ComputeTotal(p.PrevBalance, p.Saturday, p.Sunday, p.AdvPaid)
	p.Status = StatusNone
	return nil
}

// =============================================================================
// WEEKEND LIFECYCLE
// =============================================================================

// WeekendSelection names the players picked for each slot.
type WeekendSelection struct {
	Saturday []string `json:"saturday"`
	Sunday   []string `json:"sunday"`
}

// ApplyWeekend splits the weekend's costs evenly across the selected
// players and overwrites every player's slot amounts: selected players get
// round(slotTotal / selectedCount), everyone else gets zero. The resulting
// state is recorded in history as a "weekend" submission.
//
// Validation happens before any mutation; on error the roster is untouched.
func (r *Roster) ApplyWeekend(ctx context.Context, costs WeekendCosts, sel WeekendSelection, dates MatchDates, teams []string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	satTotal := costs.SlotTotal(SlotSaturday)
	sunTotal := costs.SlotTotal(SlotSunday)

	if satTotal.IsZero() && sunTotal.IsZero() {
		return "", &UserInputError{Reason: "enter at least one cost amount"}
	}
	if satTotal.IsPositive() && len(sel.Saturday) == 0 {
		return "", &UserInputError{Reason: "no players selected for Saturday match"}
	}
	if sunTotal.IsPositive() && len(sel.Sunday) == 0 {
		return "", &UserInputError{Reason: "no players selected for Sunday match"}
	}
	if satTotal.IsPositive() && dates.Saturday == "" {
		return "", &UserInputError{Reason: "missing Saturday match date"}
	}
	if sunTotal.IsPositive() && dates.Sunday == "" {
		return "", &UserInputError{Reason: "missing Sunday match date"}
	}

	satShare := SplitShare(satTotal, len(sel.Saturday))
	sunShare := SplitShare(sunTotal, len(sel.Sunday))
	satSel := toSet(sel.Saturday)
	sunSel := toSet(sel.Sunday)

	md := dates
	for i := range r.players {
		p := &r.players[i]
		p.Saturday = decimal.Zero
		if satSel[p.ID] {
			p.Saturday = satShare
		}
		p.Sunday = decimal.Zero
		if sunSel[p.ID] {
			p.Sunday = sunShare
		}
		p.MatchDates = &MatchDates{Saturday: md.Saturday, Sunday: md.Sunday}
		p.Recalculate()
	}

	if r.history == nil {
		return "", nil
	}
	// Synchronous with the mutation: the submission and its history record
	// are atomic from the caller's perspective.
	return r.history.Append(ctx, MatchContext{Dates: dates, Teams: teams, Costs: costs},
		ClonePlayers(r.players), SubmissionWeekend)
}

// ResetWeekend zeroes both slots for every player and re-derives totals.
func (r *Roster) ResetWeekend() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		r.players[i].Saturday = decimal.Zero
		r.players[i].Sunday = decimal.Zero
		r.players[i].Recalculate()
	}
}

// MoveToNextWeek rolls every player's total into PrevBalance and zeroes
// the slots. "Paid" demotes to "Pending": a carried balance needs explicit
// re-confirmation next cycle. Other statuses pass through unchanged.
func (r *Roster) MoveToNextWeek() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.players {
		p := &r.players[i]
		p.PrevBalance = p.Total
		p.Saturday = decimal.Zero
		p.Sunday = decimal.Zero
		p.Total = p.PrevBalance
		if p.Status == StatusPaid {
			p.Status = StatusPending
		}
	}
}

// =============================================================================
// STRUCTURAL CHANGES
// =============================================================================

// AddPlayer appends a fully zeroed player. Names are the de-duplication
// key, so an existing name is rejected.
func (r *Roster) AddPlayer(name string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return Player{}, &UserInputError{Reason: "player name is required"}
	}
	for i := range r.players {
		if r.players[i].Name == name {
			return Player{}, &UserInputError{Reason: "player name already exists: " + name}
		}
	}
	p := NewPlayer(name)
	r.players = append(r.players, p)
	return p, nil
}

// RemovePlayer deletes a player permanently.
func (r *Roster) RemovePlayer(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.players {
		if r.players[i].ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return nil
		}
	}
	return ErrPlayerNotFound
}

// ReplaceAll accepts a bulk player list from an external source (import,
// remote load, undo restore). Duplicate names are dropped keeping the
// first occurrence, with a warning per drop. Totals are re-derived from
// the formula; stored statuses are kept as-is.
//
// Returns the names that were dropped.
func (r *Roster) ReplaceAll(players []Player, source string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	deduped, dropped := DedupeByName(players)
	for _, name := range dropped {
		r.log.Warn("dropping duplicate player", zap.String("name", name), zap.String("source", source))
	}
	for i := range deduped {
		deduped[i].Total = ComputeTotal(deduped[i].PrevBalance, deduped[i].Saturday, deduped[i].Sunday, deduped[i].AdvPaid)
	}
	r.players = deduped
	return dropped
}

// DedupeByName collapses players sharing a name down to the first
// occurrence. Returns the deduplicated (deep-copied) list and the names
// dropped.
func DedupeByName(players []Player) ([]Player, []string) {
	seen := make(map[string]bool, len(players))
	out := make([]Player, 0, len(players))
	var dropped []string
	for _, p := range players {
		if seen[p.Name] {
			dropped = append(dropped, p.Name)
			continue
		}
		seen[p.Name] = true
		out = append(out, p.Clone())
	}
	return out, dropped
}

func (r *Roster) find(id string) *Player {
	for i := range r.players {
		if r.players[i].ID == id {
			return &r.players[i]
		}
	}
	return nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
