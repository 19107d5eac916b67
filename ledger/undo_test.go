package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/teamledger/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// submitWeekend pushes one even Saturday split through the roster and
// returns the resulting history entry id.
func submitWeekend(t *testing.T, r *ledger.Roster, total int64, date string) string {
	t.Helper()
	costs := ledger.WeekendCosts{SaturdayGround: ledger.Rupees(total)}
	sel := ledger.WeekendSelection{Saturday: playerIDs(r)}
	id, err := r.ApplyWeekend(context.Background(), costs, sel,
		ledger.MatchDates{Saturday: date}, nil)
	require.NoError(t, err)
	return id
}

// =============================================================================
// SINGLE UNDO
// =============================================================================

func TestUndoMatch_DifferentialRoundTrip(t *testing.T) {
	// GIVEN: players with carried balances, then one weekend submission
	// WHEN: that submission is undone differentially
	// THEN: slot amounts, totals, and statuses match the pre-submission
	//       state (slots were zero before the submission)
	r, history := newTestRoster(t, "A", "B")
	a := playerNamed(t, r, "A")
	require.NoError(t, r.SetField(a.ID, ledger.FieldPrevBalance, ledger.Rupees(25)))
	before := r.Players()

	entryID := submitWeekend(t, r, 100, "2026-08-29")

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoMatch(context.Background(), entryID, r.Players(), ledger.StrategyDifferential)
	require.NoError(t, err)

	require.Len(t, result.RestoredPlayers, len(before))
	for i, want := range before {
		got := result.RestoredPlayers[i]
		assert.Equal(t, want.Name, got.Name)
		assert.True(t, got.Saturday.IsZero())
		assert.True(t, got.Sunday.IsZero())
		assert.True(t, got.Total.Equal(want.Total), "total for %s: want %s, got %s", want.Name, want.Total, got.Total)
		assert.Equal(t, want.Status, got.Status)
		assert.Nil(t, got.MatchDates)
	}
}

func TestUndoMatch_DifferentialPreservesLaterEdits(t *testing.T) {
	// An advance recorded after the submission survives the undo.
	r, history := newTestRoster(t, "A", "B")
	entryID := submitWeekend(t, r, 100, "2026-08-29")
	a := playerNamed(t, r, "A")
	require.NoError(t, r.SetField(a.ID, ledger.FieldAdvPaid, ledger.Rupees(20)))

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoMatch(context.Background(), entryID, r.Players(), ledger.StrategyDifferential)
	require.NoError(t, err)

	for _, p := range result.RestoredPlayers {
		if p.Name == "A" {
			assertAmount(t, 20, p.AdvPaid)
			assertAmount(t, -20, p.Total)
		}
	}
}

func TestUndoMatch_DifferentialClampsAtZero(t *testing.T) {
	// A slot already reduced below the recorded contribution clamps to
	// zero instead of going negative.
	r, history := newTestRoster(t, "A", "B")
	entryID := submitWeekend(t, r, 100, "2026-08-29")
	// Knock A's share down before undoing. With a lone peer the freed 40
	// lands on B.
	a := playerNamed(t, r, "A")
	require.NoError(t, r.SetField(a.ID, ledger.FieldSaturday, ledger.Rupees(10)))

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoMatch(context.Background(), entryID, r.Players(), ledger.StrategyDifferential)
	require.NoError(t, err)

	for _, p := range result.RestoredPlayers {
		assert.False(t, p.Saturday.IsNegative(), "player %s went negative", p.Name)
	}
}

func TestUndoMatch_RestoreStrategy(t *testing.T) {
	// Direct restore brings back the entry's snapshot verbatim, discarding
	// everything done since.
	r, history := newTestRoster(t, "A", "B")
	entryID := submitWeekend(t, r, 100, "2026-08-29")
	snapshotA := playerNamed(t, r, "A")
	a := playerNamed(t, r, "A")
	require.NoError(t, r.SetField(a.ID, ledger.FieldAdvPaid, ledger.Rupees(20)))

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoMatch(context.Background(), entryID, r.Players(), ledger.StrategyRestore)
	require.NoError(t, err)

	for _, p := range result.RestoredPlayers {
		if p.Name == "A" {
			assert.True(t, p.AdvPaid.IsZero(), "later advance discarded")
			assert.True(t, p.Saturday.Equal(snapshotA.Saturday))
		}
	}
}

func TestUndoMatch_WritesBackupFirst(t *testing.T) {
	r, history := newTestRoster(t, "A", "B")
	entryID := submitWeekend(t, r, 100, "2026-08-29")

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoMatch(context.Background(), entryID, r.Players(), ledger.StrategyDifferential)
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupEntryID)

	backup, err := history.Get(context.Background(), result.BackupEntryID)
	require.NoError(t, err)
	assert.Equal(t, ledger.SubmissionUndoBackup, backup.SubmissionType)
	assert.Equal(t, entryID, backup.MatchData.TargetEntryID)

	// Backups are retrievable but invisible to the normal listing.
	entries, err := history.List(context.Background(), 0)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, result.BackupEntryID, e.ID)
	}
}

func TestUndoMatch_MissingEntry(t *testing.T) {
	r, history := newTestRoster(t, "A")
	engine := ledger.NewUndoEngine(history)

	_, err := engine.UndoMatch(context.Background(), "missing", r.Players(), ledger.StrategyDifferential)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	// No backup was written for a failed lookup.
	stats, err := history.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.UndoBackups)
}

// =============================================================================
// BULK UNDO
// =============================================================================

func TestUndoLastN_RemovesRecentSubmissions(t *testing.T) {
	r, history := newTestRoster(t, "A", "B")
	submitWeekend(t, r, 100, "2026-08-22")
	r.MoveToNextWeek()
	submitWeekend(t, r, 60, "2026-08-29")

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoLastN(context.Background(), 2, r.Players())
	require.NoError(t, err)

	assert.Len(t, result.UndoneMatches, 2)
	for _, p := range result.RestoredPlayers {
		assert.True(t, p.Saturday.IsZero())
	}

	// The undone entries are gone from history; the backup remains.
	entries, err := history.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	stats, err := history.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UndoBackups)
}

func TestUndoLastN_CapsAtAvailable(t *testing.T) {
	r, history := newTestRoster(t, "A")
	submitWeekend(t, r, 50, "2026-08-29")

	engine := ledger.NewUndoEngine(history)
	result, err := engine.UndoLastN(context.Background(), 5, r.Players())
	require.NoError(t, err)
	assert.Len(t, result.UndoneMatches, 1)
}

func TestUndoLastN_NothingToUndo(t *testing.T) {
	r, history := newTestRoster(t, "A")
	engine := ledger.NewUndoEngine(history)

	_, err := engine.UndoLastN(context.Background(), 1, r.Players())
	assert.ErrorIs(t, err, ledger.ErrNothingToUndo)
}

// =============================================================================
// REBUILD
// =============================================================================

func TestRebuildFromHistory_ReplaysWeekends(t *testing.T) {
	r, history := newTestRoster(t, "A", "B")
	submitWeekend(t, r, 100, "2026-08-29")
	want := r.Players()

	// Drift the live state, then rebuild from the record.
	a := playerNamed(t, r, "A")
	require.NoError(t, r.SetField(a.ID, ledger.FieldSaturday, ledger.Rupees(7)))

	engine := ledger.NewUndoEngine(history)
	rebuilt, err := engine.RebuildFromHistory(context.Background(), r.Players(), nil)
	require.NoError(t, err)

	require.Len(t, rebuilt, len(want))
	for i, w := range want {
		assert.True(t, rebuilt[i].Saturday.Equal(w.Saturday),
			"saturday for %s: want %s, got %s", w.Name, w.Saturday, rebuilt[i].Saturday)
		assert.True(t, rebuilt[i].Total.Equal(w.Total))
	}
}

func TestRebuildFromHistory_ExcludesNamedEntries(t *testing.T) {
	r, history := newTestRoster(t, "A", "B")
	firstID := submitWeekend(t, r, 100, "2026-08-22")
	submitWeekend(t, r, 60, "2026-08-29")

	engine := ledger.NewUndoEngine(history)
	rebuilt, err := engine.RebuildFromHistory(context.Background(), r.Players(), []string{firstID})
	require.NoError(t, err)

	// Only the second submission (60 over 2 players) is replayed.
	for _, p := range rebuilt {
		assertAmount(t, 30, p.Saturday)
	}
}
