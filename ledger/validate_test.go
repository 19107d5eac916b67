package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/teamledger/ledger"
)

func TestValidatePlayers_CleanRoster(t *testing.T) {
	p := ledger.NewPlayer("A")
	p.Saturday = ledger.Rupees(50)
	p.Recalculate()

	report := ledger.ValidatePlayers([]ledger.Player{p})

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	require.Len(t, report.PlayerChecks, 1)
	assert.True(t, report.PlayerChecks[0].IsCorrect)
}

func TestValidatePlayers_StaleTotalIsAnError(t *testing.T) {
	p := ledger.NewPlayer("A")
	p.Saturday = ledger.Rupees(50)
	p.Total = ledger.Rupees(999)
	p.Status = ledger.StatusPending

	report := ledger.ValidatePlayers([]ledger.Player{p})

	assert.False(t, report.IsValid)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "A")
	assert.False(t, report.PlayerChecks[0].IsCorrect)
	assertAmount(t, 50, report.PlayerChecks[0].ExpectedTotal)
}

func TestValidatePlayers_StatusMismatchesAreWarnings(t *testing.T) {
	playedNoStatus := ledger.NewPlayer("A")
	playedNoStatus.Saturday = ledger.Rupees(50)
	playedNoStatus.Total = ledger.Rupees(50)

	statusNoPlay := ledger.NewPlayer("B")
	statusNoPlay.Status = ledger.StatusPending

	report := ledger.ValidatePlayers([]ledger.Player{playedNoStatus, statusNoPlay})

	// Suspicious but not fatal: report stays valid.
	assert.True(t, report.IsValid)
	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0], "played but has no status")
	assert.Contains(t, report.Warnings[1], "has status but didn't play")
}

func TestValidatePlayers_EmptyRoster(t *testing.T) {
	report := ledger.ValidatePlayers(nil)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.PlayerChecks)
}
