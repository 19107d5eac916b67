package ledger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/teamledger/ledger"
)

func TestExportCSV(t *testing.T) {
	p := ledger.NewPlayer("Rahul")
	p.PrevBalance = ledger.Rupees(10)
	p.Saturday = ledger.Rupees(50)
	p.Recalculate()

	var buf bytes.Buffer
	require.NoError(t, ledger.ExportCSV(&buf, []ledger.Player{p}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Player,Prev Balance,Saturday,Sunday,Amount Paid,Total,Status", lines[0])
	assert.Equal(t, "Rahul,10,50,0,0,60,Pending", lines[1])
}

func TestImportCSV_RoundTrip(t *testing.T) {
	p := ledger.NewPlayer("Rahul")
	p.PrevBalance = ledger.Rupees(10)
	p.Saturday = ledger.Rupees(50)
	p.Recalculate()

	var buf bytes.Buffer
	require.NoError(t, ledger.ExportCSV(&buf, []ledger.Player{p}))

	imported, err := ledger.ImportCSV(&buf)
	require.NoError(t, err)
	require.Len(t, imported, 1)

	got := imported[0]
	assert.Equal(t, "Rahul", got.Name)
	assert.NotEqual(t, p.ID, got.ID, "import assigns fresh ids")
	assertAmount(t, 10, got.PrevBalance)
	assertAmount(t, 60, got.Total)
	assert.Equal(t, ledger.StatusPending, got.Status)
}

func TestImportCSV_RecomputesTotal(t *testing.T) {
	// The Total column is never trusted from the file.
	in := "Player,Prev Balance,Saturday,Sunday,Amount Paid,Total,Status\n" +
		"Rahul,0,50,0,0,9999,Pending\n"

	imported, err := ledger.ImportCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assertAmount(t, 50, imported[0].Total)
}

func TestImportCSV_SkipsBlankNamesAndCoercesJunk(t *testing.T) {
	in := "Player,Prev Balance,Saturday,Sunday,Amount Paid,Total,Status\n" +
		",10,0,0,0,10,\n" +
		"Vikram,abc,30,,0,30,Pending\n"

	imported, err := ledger.ImportCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, imported, 1)

	got := imported[0]
	assert.Equal(t, "Vikram", got.Name)
	assert.True(t, got.PrevBalance.IsZero(), "malformed cell coerces to zero")
	assertAmount(t, 30, got.Saturday)
	assert.True(t, got.Sunday.IsZero())
}

func TestImportCSV_NoHeaderStillParses(t *testing.T) {
	imported, err := ledger.ImportCSV(strings.NewReader("Asha,0,25,0,0,25,Pending\n"))
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, "Asha", imported[0].Name)
}

func TestImportCSV_MalformedFile(t *testing.T) {
	_, err := ledger.ImportCSV(strings.NewReader("a,\"unterminated\n"))
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}
