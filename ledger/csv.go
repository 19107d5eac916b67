/*
csv.go - CSV export/import of the player list

FORMAT:
  Player,Prev Balance,Saturday,Sunday,Amount Paid,Total,Status
  one row per player. On import the Total column is recomputed from the
  formula rather than trusted from the file, and malformed numbers are
  coerced to zero - a personal-use ledger is permissive about input.
*/
package ledger

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{"Player", "Prev Balance", "Saturday", "Sunday", "Amount Paid", "Total", "Status"}

// ExportCSV writes the player list in the sharing format.
func ExportCSV(w io.Writer, players []Player) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range players {
		row := []string{
			p.Name,
			p.PrevBalance.String(),
			p.Saturday.String(),
			p.Sunday.String(),
			p.AdvPaid.String(),
			p.Total.String(),
			string(p.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV parses a player list from the sharing format. Rows without a
// name are skipped; totals are recomputed; new ids are assigned. The
// result still needs to go through Roster.ReplaceAll for name dedup.
func ImportCSV(r io.Reader) ([]Player, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, &UserInputError{Reason: "malformed CSV: " + err.Error()}
	}

	var players []Player
	for i, rec := range records {
		if i == 0 && looksLikeHeader(rec) {
			continue
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		p := NewPlayer(strings.TrimSpace(rec[0]))
		p.PrevBalance = parseAmount(rec, 1)
		p.Saturday = parseAmount(rec, 2)
		p.Sunday = parseAmount(rec, 3)
		p.AdvPaid = parseAmount(rec, 4)
		// Column 5 (Total) is recomputed, not trusted.
		p.Total = ComputeTotal(p.PrevBalance, p.Saturday, p.Sunday, p.AdvPaid)
		if len(rec) > 6 {
			p.Status = PaymentStatus(strings.TrimSpace(rec[6]))
		}
		players = append(players, p)
	}
	return players, nil
}

func looksLikeHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "Player")
}

// parseAmount coerces a missing or malformed numeric cell to zero.
func parseAmount(rec []string, idx int) decimal.Decimal {
	if idx >= len(rec) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(rec[idx]))
	if err != nil {
		return decimal.Zero
	}
	return d
}
