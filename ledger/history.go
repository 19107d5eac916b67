/*
history.go - Submission history model and store interface

PURPOSE:
  Every ledger mutation worth reversing is recorded as an immutable
  HistoryEntry: a timestamped, tagged, deep-copied snapshot of the player
  list. The store is ordered newest-first and capped; oldest entries fall
  off silently.

CRITICAL INVARIANTS:
  1. Entries are created once and never mutated
  2. playersData is an owned deep copy - mutating the live roster must
     never retroactively alter a stored snapshot
  3. Deletion only by explicit delete/prune/clear

ENTRY LIFECYCLE:
  weekend      A weekend submission (the state after the split was applied)
  manual       A by-hand bulk edit worth keeping
  import       Data accepted from a file
  undo_backup  Automatic backup taken right before an undo, so the undo
               itself is reversible. Hidden from normal listings.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory (tests, dev)
  - store/sqlite/sqlite.go: Durable local store

SEE ALSO:
  - undo.go: The consumer of stored snapshots
*/
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultHistoryCap is how many entries a store retains. Beyond the cap
// the oldest entries are silently dropped.
const DefaultHistoryCap = 50

// =============================================================================
// SUBMISSION TYPE
// =============================================================================

type SubmissionType string

const (
	SubmissionWeekend    SubmissionType = "weekend"
	SubmissionManual     SubmissionType = "manual"
	SubmissionImport     SubmissionType = "import"
	SubmissionUndoBackup SubmissionType = "undo_backup"
)

// =============================================================================
// HISTORY ENTRY - Immutable snapshot of a ledger mutation event
// =============================================================================

type HistoryEntry struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	SubmissionType SubmissionType `json:"submissionType"`

	// MatchData is display-only context; the undo engine never interprets
	// it beyond showing it back to the operator.
	MatchData MatchContext `json:"matchData"`

	// PlayersData is the full player list at the moment the entry was
	// created - for weekend submissions, the state after the split was
	// applied. Always an owned deep copy.
	PlayersData []Player `json:"playersData"`

	// Derived display-only fields. Never used in recomputation.
	Description    string         `json:"description"`
	PlayersSummary PlayersSummary `json:"playersSummary"`
}

// PlayersSummary is a quick-reference rollup shown in history listings.
type PlayersSummary struct {
	TotalPlayers     int             `json:"totalPlayers"`
	PlayersWhoPlayed int             `json:"playersWhoPlayed"`
	PendingCount     int             `json:"pendingCount"`
	PartialCount     int             `json:"partialCount"`
	PaidCount        int             `json:"paidCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TopPlayers       []string        `json:"topPlayers"`
}

// NewHistoryEntry builds an entry with a fresh time-ordered id and derived
// display fields. Inputs are deep-copied; the caller keeps ownership of
// its slices.
func NewHistoryEntry(matchData MatchContext, players []Player, subType SubmissionType) HistoryEntry {
	now := time.Now().UTC()
	return HistoryEntry{
		ID:             fmt.Sprintf("match_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Timestamp:      now,
		SubmissionType: subType,
		MatchData:      matchData,
		PlayersData:    ClonePlayers(players),
		Description:    describeSubmission(matchData, subType),
		PlayersSummary: SummarizePlayers(players),
	}
}

func describeSubmission(matchData MatchContext, subType SubmissionType) string {
	switch subType {
	case SubmissionWeekend:
		return fmt.Sprintf("Weekend submission: %s & %s", matchData.Dates.Saturday, matchData.Dates.Sunday)
	case SubmissionManual:
		return "Manual player data update"
	case SubmissionImport:
		return "Data imported from file"
	case SubmissionUndoBackup:
		return fmt.Sprintf("Backup before undo operation (Target: %s)", matchData.TargetEntryID)
	default:
		return string(subType) + " submission"
	}
}

// SummarizePlayers derives the display rollup for a snapshot.
func SummarizePlayers(players []Player) PlayersSummary {
	s := PlayersSummary{TotalPlayers: len(players), TotalAmount: decimal.Zero}
	for _, p := range players {
		if !p.HasPlayed() {
			continue
		}
		s.PlayersWhoPlayed++
		s.TotalAmount = s.TotalAmount.Add(p.Total)
		switch p.Status {
		case StatusPending:
			s.PendingCount++
		case StatusPartiallyPaid:
			s.PartialCount++
		case StatusPaid:
			s.PaidCount++
		}
		if len(s.TopPlayers) < 3 {
			s.TopPlayers = append(s.TopPlayers, p.Name)
		}
	}
	return s
}

// Validate reports structural problems with a stored entry: missing id
// or timestamp, an unknown submission type, or a nil snapshot. Checked
// before an entry's snapshot is trusted for an undo or a rebuild, since
// stored JSON may predate the current schema.
func (e HistoryEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("history entry has no id: %w", ErrCorruptEntry)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("history entry %s has no timestamp: %w", e.ID, ErrCorruptEntry)
	}
	switch e.SubmissionType {
	case SubmissionWeekend, SubmissionManual, SubmissionImport, SubmissionUndoBackup:
	default:
		return fmt.Errorf("history entry %s has unknown type %q: %w", e.ID, e.SubmissionType, ErrCorruptEntry)
	}
	if e.PlayersData == nil {
		return fmt.Errorf("history entry %s has no player snapshot: %w", e.ID, ErrCorruptEntry)
	}
	return nil
}

// Clone returns a deep copy of the entry.
func (e HistoryEntry) Clone() HistoryEntry {
	out := e
	out.PlayersData = ClonePlayers(e.PlayersData)
	out.PlayersSummary.TopPlayers = append([]string(nil), e.PlayersSummary.TopPlayers...)
	return out
}

// =============================================================================
// HISTORY STORE - Durable, ordered, append-only record of snapshots
// =============================================================================

// HistoryStats are the counts reported by Stats.
type HistoryStats struct {
	TotalEntries       int        `json:"totalEntries"`
	WeekendSubmissions int        `json:"weekendSubmissions"`
	ManualUpdates      int        `json:"manualUpdates"`
	Imports            int        `json:"imports"`
	UndoBackups        int        `json:"undoBackups"`
	OldestEntry        *time.Time `json:"oldestEntry,omitempty"`
	NewestEntry        *time.Time `json:"newestEntry,omitempty"`
}

// HistoryStore is the ordered, capped, append-only record of snapshots.
//
// Entries are immutable once appended. The only removals are explicit
// Delete/Prune/Clear and silent truncation past the retention cap.
type HistoryStore interface {
	// Append deep-copies the inputs, assigns id/timestamp and display
	// fields, prepends the entry, and truncates to the retention cap.
	// Returns the new entry's id.
	Append(ctx context.Context, matchData MatchContext, players []Player, subType SubmissionType) (string, error)

	// Get returns one entry or ErrEntryNotFound.
	Get(ctx context.Context, entryID string) (HistoryEntry, error)

	// List returns entries newer than sinceDays, newest first, excluding
	// internal undo_backup entries. sinceDays <= 0 means no cutoff.
	List(ctx context.Context, sinceDays int) ([]HistoryEntry, error)

	// Delete removes one entry permanently. Player data is unaffected.
	Delete(ctx context.Context, entryID string) error

	// PruneOlderThan removes entries older than the cutoff and returns
	// how many were removed.
	PruneOlderThan(ctx context.Context, days int) (int, error)

	// ClearAll removes every entry.
	ClearAll(ctx context.Context) error

	// Stats returns counts by submission type and the age range.
	Stats(ctx context.Context) (HistoryStats, error)
}
