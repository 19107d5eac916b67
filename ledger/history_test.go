package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/teamledger/ledger"
)

func TestNewHistoryEntry_SnapshotIsOwned(t *testing.T) {
	p := ledger.NewPlayer("A")
	p.Saturday = ledger.Rupees(50)
	p.Recalculate()
	players := []ledger.Player{p}

	entry := ledger.NewHistoryEntry(ledger.MatchContext{}, players, ledger.SubmissionWeekend)

	// Mutating the source list must not reach into the stored snapshot.
	players[0].Saturday = ledger.Rupees(999)
	assertAmount(t, 50, entry.PlayersData[0].Saturday)
}

func TestNewHistoryEntry_Description(t *testing.T) {
	md := ledger.MatchContext{Dates: ledger.MatchDates{Saturday: "2026-08-29", Sunday: "2026-08-30"}}

	weekend := ledger.NewHistoryEntry(md, nil, ledger.SubmissionWeekend)
	assert.Equal(t, "Weekend submission: 2026-08-29 & 2026-08-30", weekend.Description)

	backup := ledger.NewHistoryEntry(ledger.MatchContext{TargetEntryID: "match_1"}, nil, ledger.SubmissionUndoBackup)
	assert.Equal(t, "Backup before undo operation (Target: match_1)", backup.Description)
}

func TestSummarizePlayers(t *testing.T) {
	mk := func(name string, saturday int64, status ledger.PaymentStatus) ledger.Player {
		p := ledger.NewPlayer(name)
		p.Saturday = ledger.Rupees(saturday)
		p.Total = p.Saturday
		p.Status = status
		return p
	}
	players := []ledger.Player{
		mk("A", 50, ledger.StatusPending),
		mk("B", 50, ledger.StatusPaid),
		mk("C", 30, ledger.StatusPartiallyPaid),
		mk("D", 30, ledger.StatusPending),
		mk("E", 0, ledger.StatusNone), // sat out
	}

	s := ledger.SummarizePlayers(players)

	assert.Equal(t, 5, s.TotalPlayers)
	assert.Equal(t, 4, s.PlayersWhoPlayed)
	assert.Equal(t, 2, s.PendingCount)
	assert.Equal(t, 1, s.PartialCount)
	assert.Equal(t, 1, s.PaidCount)
	assertAmount(t, 160, s.TotalAmount)
	assert.Equal(t, []string{"A", "B", "C"}, s.TopPlayers, "capped at three")
}

func TestHistoryEntryValidate(t *testing.T) {
	good := ledger.NewHistoryEntry(ledger.MatchContext{}, nil, ledger.SubmissionWeekend)
	assert.NoError(t, good.Validate())

	cases := []struct {
		name   string
		mutate func(*ledger.HistoryEntry)
	}{
		{"missing id", func(e *ledger.HistoryEntry) { e.ID = "" }},
		{"zero timestamp", func(e *ledger.HistoryEntry) { e.Timestamp = time.Time{} }},
		{"unknown type", func(e *ledger.HistoryEntry) { e.SubmissionType = "mystery" }},
		{"nil snapshot", func(e *ledger.HistoryEntry) { e.PlayersData = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := good.Clone()
			tc.mutate(&e)
			assert.ErrorIs(t, e.Validate(), ledger.ErrCorruptEntry)
		})
	}
}

func TestHistoryEntryClone_Isolation(t *testing.T) {
	p := ledger.NewPlayer("A")
	p.Saturday = ledger.Rupees(50)
	p.Recalculate()
	entry := ledger.NewHistoryEntry(ledger.MatchContext{}, []ledger.Player{p}, ledger.SubmissionWeekend)

	clone := entry.Clone()
	clone.PlayersData[0].Saturday = ledger.Rupees(999)
	require.NotEmpty(t, clone.PlayersSummary.TopPlayers)
	clone.PlayersSummary.TopPlayers[0] = "mutated"

	assertAmount(t, 50, entry.PlayersData[0].Saturday)
	assert.Equal(t, "A", entry.PlayersSummary.TopPlayers[0])
}
