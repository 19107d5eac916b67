package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/teamledger/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func playerWithSlots(name string, saturday, sunday int64) ledger.Player {
	p := ledger.NewPlayer(name)
	p.Saturday = ledger.Rupees(saturday)
	p.Sunday = ledger.Rupees(sunday)
	p.Recalculate()
	return p
}

func slotSum(players []ledger.Player, slot ledger.Slot) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range players {
		sum = sum.Add(p.SlotAmount(slot))
	}
	return sum
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, ledger.Rupees(want).String(), got.String(), msgAndArgs...)
}

// =============================================================================
// EVEN SPLIT
// =============================================================================

func TestSplitShare_EvenDivision(t *testing.T) {
	assertAmount(t, 30, ledger.SplitShare(ledger.Rupees(90), 3))
}

func TestSplitShare_DroppedFraction(t *testing.T) {
	// 100 across 3 players: round(100/3) = 33 each, 99 recorded in total.
	// The dropped unit is accepted behavior, not something to patch up.
	assertAmount(t, 33, ledger.SplitShare(ledger.Rupees(100), 3))
}

func TestSplitShare_ZeroPlayers(t *testing.T) {
	assert.True(t, ledger.SplitShare(ledger.Rupees(100), 0).IsZero())
}

// =============================================================================
// REDISTRIBUTION
// =============================================================================

func TestRedistribute_ShareToZero_SpreadAcrossPeers(t *testing.T) {
	// GIVEN: 3 players at 33 each for Saturday (100 split 3 ways)
	// WHEN: Player 1's share is edited from 33 to 0
	// THEN: The freed 33 lands on the peers: first peer +16 (remainder),
	//       second peer +17, slot sum conserved.
	players := []ledger.Player{
		playerWithSlots("A", 33, 0),
		playerWithSlots("B", 33, 0),
		playerWithSlots("C", 33, 0),
	}

	err := ledger.Redistribute(players, players[0].ID, ledger.SlotSaturday, decimal.Zero)
	require.NoError(t, err)

	assertAmount(t, 0, players[0].Saturday)
	assertAmount(t, 49, players[1].Saturday, "first peer absorbs the -1 remainder")
	assertAmount(t, 50, players[2].Saturday)
	assertAmount(t, 99, slotSum(players, ledger.SlotSaturday))
}

func TestRedistribute_Conservation(t *testing.T) {
	// Slot sum is identical before and after any edit with peers present.
	players := []ledger.Player{
		playerWithSlots("A", 40, 0),
		playerWithSlots("B", 25, 0),
		playerWithSlots("C", 35, 0),
	}
	before := slotSum(players, ledger.SlotSaturday)

	err := ledger.Redistribute(players, players[1].ID, ledger.SlotSaturday, ledger.Rupees(10))
	require.NoError(t, err)

	assert.True(t, slotSum(players, ledger.SlotSaturday).Equal(before))
}

func TestRedistribute_IncreasePullsBackFromPeers(t *testing.T) {
	// Raising a share pulls amount back from the peers.
	players := []ledger.Player{
		playerWithSlots("A", 30, 0),
		playerWithSlots("B", 30, 0),
		playerWithSlots("C", 30, 0),
	}

	err := ledger.Redistribute(players, players[0].ID, ledger.SlotSaturday, ledger.Rupees(60))
	require.NoError(t, err)

	assertAmount(t, 60, players[0].Saturday)
	assertAmount(t, 90, slotSum(players, ledger.SlotSaturday))
}

func TestRedistribute_NoPeers_EditAppliesAlone(t *testing.T) {
	// The designed fallback: nobody else played Saturday, so the edit
	// just applies to the edited player.
	players := []ledger.Player{
		playerWithSlots("A", 50, 0),
		playerWithSlots("B", 0, 20),
	}

	err := ledger.Redistribute(players, players[0].ID, ledger.SlotSaturday, ledger.Rupees(10))
	require.NoError(t, err)

	assertAmount(t, 10, players[0].Saturday)
	assertAmount(t, 0, players[1].Saturday)
}

func TestRedistribute_PeersClampAtZero(t *testing.T) {
	// A large increase cannot push a peer negative.
	players := []ledger.Player{
		playerWithSlots("A", 10, 0),
		playerWithSlots("B", 5, 0),
	}

	err := ledger.Redistribute(players, players[0].ID, ledger.SlotSaturday, ledger.Rupees(100))
	require.NoError(t, err)

	assertAmount(t, 100, players[0].Saturday)
	assertAmount(t, 0, players[1].Saturday)
}

func TestRedistribute_NoOpEdit_ChangesNothing(t *testing.T) {
	// Setting a field to its current value leaves totals and statuses
	// untouched everywhere.
	players := []ledger.Player{
		playerWithSlots("A", 33, 0),
		playerWithSlots("B", 33, 0),
	}
	beforeB := players[1]

	err := ledger.Redistribute(players, players[0].ID, ledger.SlotSaturday, ledger.Rupees(33))
	require.NoError(t, err)

	assertAmount(t, 33, players[0].Saturday)
	assert.True(t, players[1].Saturday.Equal(beforeB.Saturday))
	assert.True(t, players[1].Total.Equal(beforeB.Total))
	assert.Equal(t, beforeB.Status, players[1].Status)
}

func TestRedistribute_UnknownPlayer(t *testing.T) {
	players := []ledger.Player{playerWithSlots("A", 33, 0)}
	err := ledger.Redistribute(players, "missing", ledger.SlotSaturday, decimal.Zero)
	assert.ErrorIs(t, err, ledger.ErrPlayerNotFound)
}

func TestRedistribute_RecomputesTotalsAndStatuses(t *testing.T) {
	players := []ledger.Player{
		playerWithSlots("A", 30, 0),
		playerWithSlots("B", 30, 0),
	}

	err := ledger.Redistribute(players, players[0].ID, ledger.SlotSaturday, decimal.Zero)
	require.NoError(t, err)

	// A no longer plays: total 0, status cleared.
	assert.True(t, players[0].Total.IsZero())
	assert.Equal(t, ledger.StatusNone, players[0].Status)

	// B carries the full 60 now.
	assertAmount(t, 60, players[1].Total)
	assert.Equal(t, ledger.StatusPending, players[1].Status)
}
