/*
undo.go - Reversing recorded submissions

PURPOSE:
  Computes a player list with one historical submission's effect removed,
  or restores a stored snapshot outright. The engine never commits the
  result itself; the caller feeds it back into the roster and re-persists.

TWO STRATEGIES:
  Differential removal (default):
    Subtract the slot amounts the entry recorded for each player from that
    player's CURRENT amounts (clamped at zero) and re-derive total/status.
    Preserves edits made after the targeted submission, at the cost of
    being only approximate if later redistributions already moved those
    amounts around.

  Direct restore:
    Replace the whole list with the entry's stored snapshot verbatim.
    Always exact for that snapshot, but discards everything done since.

SAFETY:
  Before either strategy runs, the current state is appended to history as
  an undo_backup entry. An undo is therefore always reversible by directly
  restoring its backup.

SEE ALSO:
  - history.go: The snapshot store
  - validate.go: Cross-checking the result
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// UndoStrategy selects how a submission's effect is removed.
type UndoStrategy string

const (
	// StrategyDifferential subtracts the recorded contribution from the
	// current state, preserving unrelated later edits.
	StrategyDifferential UndoStrategy = "differential"

	// StrategyRestore replaces the current state with the stored snapshot.
	StrategyRestore UndoStrategy = "restore"
)

// UndoEngine reverses the effect of recorded submissions.
type UndoEngine struct {
	History HistoryStore
}

func NewUndoEngine(history HistoryStore) *UndoEngine {
	return &UndoEngine{History: history}
}

// UndoResult is the outcome of a single undo.
type UndoResult struct {
	RestoredPlayers []Player
	MatchInfo       HistoryEntry
	BackupEntryID   string
}

// UndoMatch reverses one historical submission against the current player
// list. The current state is backed up to history first, so the undo is
// itself reversible. Returns ErrEntryNotFound if the entry is missing;
// nothing is mutated in that case.
func (u *UndoEngine) UndoMatch(ctx context.Context, entryID string, current []Player, strategy UndoStrategy) (*UndoResult, error) {
	entry, err := u.History.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	backupID, err := u.History.Append(ctx,
		MatchContext{Action: "undo_preparation", TargetEntryID: entryID},
		current, SubmissionUndoBackup)
	if err != nil {
		return nil, err
	}

	var restored []Player
	switch strategy {
	case StrategyRestore:
		restored = ClonePlayers(entry.PlayersData)
	default:
		restored = RemoveMatch(current, entry)
	}

	return &UndoResult{
		RestoredPlayers: restored,
		MatchInfo:       entry,
		BackupEntryID:   backupID,
	}, nil
}

// BulkUndoResult is the outcome of undoing the N most recent submissions.
type BulkUndoResult struct {
	RestoredPlayers []Player
	UndoneMatches   []HistoryEntry
}

// UndoLastN removes the effect of the n most recent weekend-visible
// submissions, most recent first, deleting each from history as it goes.
// A single backup of the starting state is taken first.
func (u *UndoEngine) UndoLastN(ctx context.Context, n int, current []Player) (*BulkUndoResult, error) {
	recent, err := u.History.List(ctx, 30)
	if err != nil {
		return nil, err
	}
	if len(recent) > n {
		recent = recent[:n]
	}
	if len(recent) == 0 {
		return nil, ErrNothingToUndo
	}

	if _, err := u.History.Append(ctx,
		MatchContext{Action: "bulk_undo_preparation", MatchCount: len(recent)},
		current, SubmissionUndoBackup); err != nil {
		return nil, err
	}

	working := ClonePlayers(current)
	result := &BulkUndoResult{}
	for _, entry := range recent {
		working = RemoveMatch(working, entry)
		result.UndoneMatches = append(result.UndoneMatches, entry)
		if err := u.History.Delete(ctx, entry.ID); err != nil {
			return nil, err
		}
	}
	result.RestoredPlayers = working
	return result, nil
}

// RebuildFromHistory replays every retained weekend submission, oldest
// first, over a base player list whose slots are zeroed. The nuclear
// option for a ledger that has drifted.
func (u *UndoEngine) RebuildFromHistory(ctx context.Context, base []Player, excludeIDs []string) ([]Player, error) {
	entries, err := u.History.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	excluded := toSet(excludeIDs)

	rebuilt := ClonePlayers(base)
	for i := range rebuilt {
		p := &rebuilt[i]
		p.Saturday = decimal.Zero
		p.Sunday = decimal.Zero
		p.Total = p.PrevBalance
		p.Status = StatusNone
		p.MatchDates = nil
	}

	// List is newest first; replay oldest first. Entries failing the
	// integrity check are skipped rather than poisoning the rebuild.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.SubmissionType != SubmissionWeekend || excluded[entry.ID] {
			continue
		}
		if entry.Validate() != nil {
			continue
		}
		rebuilt = ApplyMatch(rebuilt, entry)
	}
	return rebuilt, nil
}

// =============================================================================
// PURE SNAPSHOT ARITHMETIC
// =============================================================================

// RemoveMatch returns the current players with the entry's recorded slot
// contributions subtracted (clamped at zero) and totals/statuses
// re-derived. Players absent from the entry pass through untouched.
// Counterparts are matched by id, falling back to name.
func RemoveMatch(current []Player, entry HistoryEntry) []Player {
	out := make([]Player, len(current))
	for i, p := range current {
		recorded := findCounterpart(entry.PlayersData, p)
		if recorded == nil {
			out[i] = p.Clone()
			continue
		}
		np := p.Clone()
		np.Saturday = ClampZero(p.Saturday.Sub(recorded.Saturday))
		np.Sunday = ClampZero(p.Sunday.Sub(recorded.Sunday))
		np.Recalculate()
		if !np.HasPlayed() {
			np.MatchDates = nil
		}
		out[i] = np
	}
	return out
}

// ApplyMatch is the inverse of RemoveMatch: it adds the entry's recorded
// slot contributions onto the current players. Used when rebuilding from
// history.
func ApplyMatch(current []Player, entry HistoryEntry) []Player {
	out := make([]Player, len(current))
	for i, p := range current {
		recorded := findCounterpart(entry.PlayersData, p)
		if recorded == nil {
			out[i] = p.Clone()
			continue
		}
		np := p.Clone()
		np.Saturday = p.Saturday.Add(recorded.Saturday)
		np.Sunday = p.Sunday.Add(recorded.Sunday)
		np.Recalculate()
		if np.HasPlayed() {
			md := entry.MatchData.Dates
			np.MatchDates = &MatchDates{Saturday: md.Saturday, Sunday: md.Sunday}
		}
		out[i] = np
	}
	return out
}

func findCounterpart(snapshot []Player, p Player) *Player {
	for i := range snapshot {
		if snapshot[i].ID == p.ID {
			return &snapshot[i]
		}
	}
	for i := range snapshot {
		if snapshot[i].Name == p.Name {
			return &snapshot[i]
		}
	}
	return nil
}
