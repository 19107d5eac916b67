/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Response wrappers

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  Numeric fields arrive as JSON numbers and are coerced permissively;
  malformed amounts become zero, matching how the sheet always behaved.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/teamledger/ledger"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AddPlayerRequest creates a new zeroed player.
type AddPlayerRequest struct {
	Name string `json:"name"`
}

// SetFieldRequest edits one numeric player field.
// Field is one of: prevBalance, saturday, sunday, advPaid.
type SetFieldRequest struct {
	Field string          `json:"field"`
	Value decimal.Decimal `json:"value"`
}

// SetStatusRequest force-overrides a player's payment status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// WeekendRequest is a full weekend submission.
type WeekendRequest struct {
	Costs     ledger.WeekendCosts     `json:"costs"`
	Selection ledger.WeekendSelection `json:"selection"`
	Dates     ledger.MatchDates       `json:"dates"`
	Teams     []string                `json:"teams,omitempty"`
}

// UndoRequest reverses one historical submission.
type UndoRequest struct {
	EntryID string `json:"entryId"`
	// Strategy is "differential" (default) or "restore".
	Strategy string `json:"strategy,omitempty"`
}

// UndoLastRequest reverses the N most recent submissions.
type UndoLastRequest struct {
	Count int `json:"count"`
}

// RebuildRequest replays history over the current roster.
type RebuildRequest struct {
	ExcludeIDs []string `json:"excludeIds,omitempty"`
}

// PruneRequest removes history entries older than Days.
type PruneRequest struct {
	Days int `json:"days"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PlayersResponse wraps the player list with sync status.
type PlayersResponse struct {
	Players     []ledger.Player `json:"players"`
	SyncPending bool            `json:"syncPending"`
}

// WeekendResponse reports a successful weekend submission.
type WeekendResponse struct {
	Players        []ledger.Player `json:"players"`
	HistoryEntryID string          `json:"historyEntryId"`
}

// UndoResponse reports a successful undo.
type UndoResponse struct {
	Players       []ledger.Player     `json:"players"`
	MatchInfo     ledger.HistoryEntry `json:"matchInfo"`
	BackupEntryID string              `json:"backupEntryId"`
}

// UndoLastResponse reports a successful bulk undo.
type UndoLastResponse struct {
	Players   []ledger.Player `json:"players"`
	UndoCount int             `json:"undoCount"`
}

// PruneResponse reports how many entries were removed.
type PruneResponse struct {
	Removed int `json:"removed"`
}

// DroppedResponse reports a bulk accept with dedup drops.
type DroppedResponse struct {
	Players []ledger.Player `json:"players"`
	Dropped []string        `json:"dropped,omitempty"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// parseField maps an external field name onto the closed Field enum.
func parseField(name string) (ledger.Field, bool) {
	switch name {
	case "prevBalance":
		return ledger.FieldPrevBalance, true
	case "saturday":
		return ledger.FieldSaturday, true
	case "sunday":
		return ledger.FieldSunday, true
	case "advPaid":
		return ledger.FieldAdvPaid, true
	default:
		return 0, false
	}
}

// parseStatus accepts only the known payment statuses.
func parseStatus(s string) (ledger.PaymentStatus, bool) {
	switch ledger.PaymentStatus(s) {
	case ledger.StatusNone, ledger.StatusPending, ledger.StatusPartiallyPaid, ledger.StatusPaid:
		return ledger.PaymentStatus(s), true
	default:
		return "", false
	}
}
