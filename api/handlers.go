/*
handlers.go - HTTP API handlers for the team cost ledger

PURPOSE:
  Exposes the ledger engine over REST. Handles HTTP request/response and
  JSON serialization, delegates every decision to the domain packages.

ENDPOINTS:
  Players:
    GET    /api/players                   Current roster + sync status
    POST   /api/players                   Add player
    DELETE /api/players/{id}              Remove player
    PUT    /api/players/{id}/field        Edit one numeric field
    PUT    /api/players/{id}/status       Force a payment status
    POST   /api/players/{id}/undo-payment Reverse a mark-as-paid

  Weekend:
    POST   /api/weekend                   Submit weekend costs (splits + records history)
    POST   /api/weekend/reset             Zero both slots
    POST   /api/weekend/next              Roll totals into prev balance

  History:
    GET    /api/history?days=N            Listing (excludes undo backups)
    GET    /api/history/stats             Counts by submission type
    GET    /api/history/{id}              One entry
    DELETE /api/history/{id}              Delete one entry
    POST   /api/history/prune             Age-based prune
    DELETE /api/history                   Clear all

  Undo:
    POST   /api/undo                      Undo one submission (differential or restore)
    POST   /api/undo/last                 Undo the N most recent
    POST   /api/rebuild                   Replay history from scratch

  Data:
    GET    /api/validate                  Total-formula validation report
    GET    /api/export/csv                CSV download
    POST   /api/import/csv                CSV upload (replaces roster, dedup by name)
    GET    /api/backup                    Disaster-recovery snapshot
    POST   /api/backup/restore            Restore from snapshot

ERROR HANDLING:
  400 invalid input, 404 missing player/entry, 500 everything else.
  Persistence failures never surface as request errors: the mutation
  succeeded in memory; the write retries in the background.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/teamledger/ledger"
	"github.com/warp/teamledger/persist"
	"github.com/warp/teamledger/remote"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Roster  *ledger.Roster
	History ledger.HistoryStore
	Undo    *ledger.UndoEngine
	Backup  ledger.BackupStore
	Saver   *persist.Saver
	Remote  *remote.Client // nil when no remote is configured
	Log     *zap.Logger
}

// NewHandler wires a handler. Remote may be nil.
func NewHandler(roster *ledger.Roster, history ledger.HistoryStore, backup ledger.BackupStore,
	saver *persist.Saver, rc *remote.Client, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Roster:  roster,
		History: history,
		Undo:    ledger.NewUndoEngine(history),
		Backup:  backup,
		Saver:   saver,
		Remote:  rc,
		Log:     log,
	}
}

// notifySaved schedules a debounced persist of the current roster.
func (h *Handler) notifySaved() {
	if h.Saver != nil {
		h.Saver.Notify(h.Roster.Players())
	}
}

// =============================================================================
// PLAYER HANDLERS
// =============================================================================

// ListPlayers returns the current roster.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	resp := PlayersResponse{Players: h.Roster.Players()}
	if h.Saver != nil {
		resp.SyncPending = h.Saver.SyncPending()
	}
	writeJSON(w, http.StatusOK, resp)
}

// AddPlayer creates a new zeroed player.
func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Roster.AddPlayer(req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.notifySaved()
	writeJSON(w, http.StatusCreated, p)
}

// RemovePlayer deletes a player.
func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	if err := h.Roster.RemovePlayer(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	h.notifySaved()
	w.WriteHeader(http.StatusNoContent)
}

// SetField edits one numeric field. Slot fields redistribute across peers.
func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	var req SetFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	field, ok := parseField(req.Field)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown field: "+req.Field, nil)
		return
	}

	if err := h.Roster.SetField(chi.URLParam(r, "id"), field, req.Value); err != nil {
		writeDomainError(w, err)
		return
	}
	h.notifySaved()
	writeJSON(w, http.StatusOK, PlayersResponse{Players: h.Roster.Players()})
}

// SetStatus force-overrides a player's payment status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status, ok := parseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown status: "+req.Status, nil)
		return
	}

	if err := h.Roster.SetStatus(chi.URLParam(r, "id"), status); err != nil {
		writeDomainError(w, err)
		return
	}
	h.notifySaved()
	writeJSON(w, http.StatusOK, PlayersResponse{Players: h.Roster.Players()})
}

// UndoPaymentHandler reverses a mark-as-paid for one player.
func (h *Handler) UndoPaymentHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Roster.UndoPayment(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	h.notifySaved()
	writeJSON(w, http.StatusOK, PlayersResponse{Players: h.Roster.Players()})
}

// =============================================================================
// WEEKEND HANDLERS
// =============================================================================

// SubmitWeekend splits the weekend's costs and records the submission.
func (h *Handler) SubmitWeekend(w http.ResponseWriter, r *http.Request) {
	var req WeekendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entryID, err := h.Roster.ApplyWeekend(r.Context(), req.Costs, req.Selection, req.Dates, req.Teams)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.notifySaved()
	h.mirrorHistory(entryID)

	writeJSON(w, http.StatusOK, WeekendResponse{
		Players:        h.Roster.Players(),
		HistoryEntryID: entryID,
	})
}

// ResetWeekend zeroes both slots for everyone.
func (h *Handler) ResetWeekend(w http.ResponseWriter, r *http.Request) {
	h.Roster.ResetWeekend()
	h.notifySaved()
	writeJSON(w, http.StatusOK, PlayersResponse{Players: h.Roster.Players()})
}

// MoveToNextWeek rolls totals into previous balance.
func (h *Handler) MoveToNextWeek(w http.ResponseWriter, r *http.Request) {
	h.Roster.MoveToNextWeek()
	h.notifySaved()
	writeJSON(w, http.StatusOK, PlayersResponse{Players: h.Roster.Players()})
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListHistory returns recent submissions, newest first.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		days, _ = strconv.Atoi(v)
	}
	entries, err := h.History.List(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history", err)
		return
	}
	if entries == nil {
		entries = []ledger.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetHistoryEntry returns one entry.
func (h *Handler) GetHistoryEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.History.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteHistoryEntry removes one entry. Player data is unaffected.
func (h *Handler) DeleteHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.History.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PruneHistory removes entries older than the requested age.
func (h *Handler) PruneHistory(w http.ResponseWriter, r *http.Request) {
	var req PruneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be positive", nil)
		return
	}
	removed, err := h.History.PruneOlderThan(r.Context(), req.Days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to prune history", err)
		return
	}
	writeJSON(w, http.StatusOK, PruneResponse{Removed: removed})
}

// ClearHistory removes every entry.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.History.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryStats returns counts by submission type.
func (h *Handler) HistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.History.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get history stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// UNDO HANDLERS
// =============================================================================

// UndoMatch reverses one submission and commits the result to the roster.
func (h *Handler) UndoMatch(w http.ResponseWriter, r *http.Request) {
	var req UndoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	strategy := ledger.StrategyDifferential
	if req.Strategy == string(ledger.StrategyRestore) {
		strategy = ledger.StrategyRestore
	}

	result, err := h.Undo.UndoMatch(r.Context(), req.EntryID, h.Roster.Players(), strategy)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Roster.ReplaceAll(result.RestoredPlayers, "undo")
	h.notifySaved()

	writeJSON(w, http.StatusOK, UndoResponse{
		Players:       h.Roster.Players(),
		MatchInfo:     result.MatchInfo,
		BackupEntryID: result.BackupEntryID,
	})
}

// UndoLast reverses the N most recent submissions.
func (h *Handler) UndoLast(w http.ResponseWriter, r *http.Request) {
	var req UndoLastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Count <= 0 {
		writeError(w, http.StatusBadRequest, "count must be positive", nil)
		return
	}

	result, err := h.Undo.UndoLastN(r.Context(), req.Count, h.Roster.Players())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.Roster.ReplaceAll(result.RestoredPlayers, "bulk undo")
	h.notifySaved()

	writeJSON(w, http.StatusOK, UndoLastResponse{
		Players:   h.Roster.Players(),
		UndoCount: len(result.UndoneMatches),
	})
}

// Rebuild replays retained weekend history over the current roster.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rebuilt, err := h.Undo.RebuildFromHistory(r.Context(), h.Roster.Players(), req.ExcludeIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to rebuild from history", err)
		return
	}

	h.Roster.ReplaceAll(rebuilt, "rebuild")
	h.notifySaved()
	writeJSON(w, http.StatusOK, PlayersResponse{Players: h.Roster.Players()})
}

// =============================================================================
// DATA HANDLERS
// =============================================================================

// Validate cross-checks the total formula for every player.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.ValidatePlayers(h.Roster.Players()))
}

// ExportCSV streams the roster in the sharing format.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="team-costs.csv"`)
	if err := ledger.ExportCSV(w, h.Roster.Players()); err != nil {
		h.Log.Error("csv export failed", zap.Error(err))
	}
}

// ImportCSV replaces the roster with an uploaded CSV (dedup by name) and
// records the import in history.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	players, err := ledger.ImportCSV(r.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(players) == 0 {
		writeError(w, http.StatusBadRequest, "No players found in file", nil)
		return
	}

	dropped := h.Roster.ReplaceAll(players, "import")
	if _, err := h.History.Append(r.Context(), ledger.MatchContext{},
		h.Roster.Players(), ledger.SubmissionImport); err != nil {
		h.Log.Warn("recording import in history failed", zap.Error(err))
	}
	h.notifySaved()

	writeJSON(w, http.StatusOK, DroppedResponse{Players: h.Roster.Players(), Dropped: dropped})
}

// GetBackup returns the disaster-recovery snapshot.
func (h *Handler) GetBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Backup.LoadBackup(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// RestoreBackup replaces the roster with the disaster-recovery snapshot.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Backup.LoadBackup(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dropped := h.Roster.ReplaceAll(snap.Players, "backup restore")
	h.notifySaved()
	writeJSON(w, http.StatusOK, DroppedResponse{Players: h.Roster.Players(), Dropped: dropped})
}

// =============================================================================
// HELPERS
// =============================================================================

// mirrorHistory pushes a freshly written history entry to the remote
// store. Best-effort; a failure only logs.
func (h *Handler) mirrorHistory(entryID string) {
	if h.Remote == nil || entryID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		entry, err := h.History.Get(ctx, entryID)
		if err != nil {
			return
		}
		if err := h.Remote.InsertHistory(ctx, entry); err != nil {
			h.Log.Warn("remote history mirror failed", zap.Error(err))
		}
	}()
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, ledger.ErrNothingToUndo):
		writeError(w, http.StatusConflict, "Nothing to undo", err)
	case errors.Is(err, ledger.ErrNoBackup):
		writeError(w, http.StatusNotFound, "No backup snapshot", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
