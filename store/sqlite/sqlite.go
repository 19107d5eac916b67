/*
Package sqlite provides the SQLite-backed implementation of the ledger's
persistence interfaces.

PURPOSE:
  One local database file holds everything durable: the player list, the
  capped submission history, and the disaster-recovery backup slot.

INTERFACES IMPLEMENTED:
  ledger.PlayerStore:  Full-snapshot player persistence (last writer wins)
  ledger.HistoryStore: Capped, ordered, append-only submission history
  ledger.BackupStore:  Single backup snapshot, fixed-period refresh

SNAPSHOT SEMANTICS:
  SavePlayers replaces the whole list inside one SQL transaction. There
  are no per-field updates; the unit of persistence is the full snapshot,
  which is also the unit the remote store accepts.

HISTORY CAP:
  Appends trim anything past the retention cap in the same transaction,
  oldest first, so the table never grows past the cap.

WAL MODE:
  The database is opened with WAL for better crash recovery and so reads
  don't block the debounced writer.

USAGE:
  st, err := sqlite.New("./data/teamledger.db")
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - ledger/storage.go, ledger/history.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/teamledger/ledger"
)

// Store implements all persistence interfaces using SQLite.
type Store struct {
	db         *sql.DB
	mu         sync.RWMutex
	historyCap int
}

// New creates a SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, historyCap: ledger.DefaultHistoryCap}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Players (full-snapshot persistence; position preserves list order)
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		prev_balance TEXT NOT NULL,
		saturday TEXT NOT NULL,
		sunday TEXT NOT NULL,
		adv_paid TEXT NOT NULL,
		total TEXT NOT NULL,
		status TEXT NOT NULL,
		match_dates_json TEXT,
		position INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_players_name ON players(name);

	-- History (capped append-only submission snapshots)
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		submission_type TEXT NOT NULL,
		match_data_json TEXT NOT NULL,
		players_json TEXT NOT NULL,
		description TEXT NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp
		ON history(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_history_type
		ON history(submission_type);

	-- Backup (single disaster-recovery snapshot, slot is always row 1)
	CREATE TABLE IF NOT EXISTS backup (
		slot INTEGER PRIMARY KEY CHECK (slot = 1),
		players_json TEXT NOT NULL,
		taken_at TEXT NOT NULL,
		version TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PLAYER STORE (ledger.PlayerStore interface)
// =============================================================================

// SavePlayers replaces the persisted player list with the given snapshot.
func (s *Store) SavePlayers(ctx context.Context, players []ledger.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM players"); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for i, p := range players {
		var matchDates any
		if p.MatchDates != nil {
			b, _ := json.Marshal(p.MatchDates)
			matchDates = string(b)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO players
			(id, name, prev_balance, saturday, sunday, adv_paid, total, status, match_dates_json, position, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name,
			p.PrevBalance.String(), p.Saturday.String(), p.Sunday.String(),
			p.AdvPaid.String(), p.Total.String(),
			string(p.Status), matchDates, i, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert player %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

// LoadPlayers returns the persisted player list in stored order.
func (s *Store) LoadPlayers(ctx context.Context) ([]ledger.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, prev_balance, saturday, sunday, adv_paid, total, status, match_dates_json
		FROM players ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []ledger.Player
	for rows.Next() {
		var p ledger.Player
		var prevBalance, saturday, sunday, advPaid, total, status string
		var matchDates sql.NullString

		if err := rows.Scan(&p.ID, &p.Name, &prevBalance, &saturday, &sunday,
			&advPaid, &total, &status, &matchDates); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}

		p.PrevBalance = ledger.MustParseAmount(prevBalance)
		p.Saturday = ledger.MustParseAmount(saturday)
		p.Sunday = ledger.MustParseAmount(sunday)
		p.AdvPaid = ledger.MustParseAmount(advPaid)
		p.Total = ledger.MustParseAmount(total)
		p.Status = ledger.PaymentStatus(status)
		if matchDates.Valid && matchDates.String != "" {
			var md ledger.MatchDates
			if err := json.Unmarshal([]byte(matchDates.String), &md); err == nil {
				p.MatchDates = &md
			}
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// =============================================================================
// HISTORY STORE (ledger.HistoryStore interface)
// =============================================================================

// Append inserts a new history entry and trims past the retention cap.
func (s *Store) Append(ctx context.Context, matchData ledger.MatchContext, players []ledger.Player, subType ledger.SubmissionType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ledger.NewHistoryEntry(matchData, players, subType)

	matchJSON, _ := json.Marshal(entry.MatchData)
	playersJSON, _ := json.Marshal(entry.PlayersData)
	summaryJSON, _ := json.Marshal(entry.PlayersSummary)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO history
		(id, timestamp, submission_type, match_data_json, players_json, description, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Timestamp.Format(time.RFC3339Nano), string(entry.SubmissionType),
		string(matchJSON), string(playersJSON), entry.Description, string(summaryJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to append history entry: %w", err)
	}

	// Oldest entries past the cap are silently dropped.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY timestamp DESC LIMIT ?
		)`, s.historyCap)
	if err != nil {
		return "", fmt.Errorf("failed to trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return entry.ID, nil
}

// Get returns one entry by id.
func (s *Store) Get(ctx context.Context, entryID string) (ledger.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, submission_type, match_data_json, players_json, description, summary_json
		FROM history WHERE id = ?`, entryID)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return ledger.HistoryEntry{}, ledger.ErrEntryNotFound
	}
	return entry, err
}

// List returns entries newer than the cutoff, newest first, excluding
// undo_backup entries.
func (s *Store) List(ctx context.Context, sinceDays int) ([]ledger.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, timestamp, submission_type, match_data_json, players_json, description, summary_json
		FROM history
		WHERE submission_type != ?`
	args := []any{string(ledger.SubmissionUndoBackup)}

	if sinceDays > 0 {
		query += " AND timestamp > ?"
		args = append(args, time.Now().UTC().AddDate(0, 0, -sinceDays).Format(time.RFC3339Nano))
	}
	query += " ORDER BY timestamp DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []ledger.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Delete removes one entry permanently.
func (s *Store) Delete(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", entryID)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ledger.ErrEntryNotFound
	}
	return nil
}

// PruneOlderThan removes entries older than the cutoff.
func (s *Store) PruneOlderThan(ctx context.Context, days int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE timestamp <= ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ClearAll removes every history entry.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM history")
	return err
}

// Stats returns counts by submission type and the age range.
func (s *Store) Stats(ctx context.Context) (ledger.HistoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ledger.HistoryStats{}

	rows, err := s.db.QueryContext(ctx,
		"SELECT submission_type, COUNT(*) FROM history GROUP BY submission_type")
	if err != nil {
		return stats, fmt.Errorf("failed to query history stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subType string
		var count int
		if err := rows.Scan(&subType, &count); err != nil {
			return stats, err
		}
		stats.TotalEntries += count
		switch ledger.SubmissionType(subType) {
		case ledger.SubmissionWeekend:
			stats.WeekendSubmissions = count
		case ledger.SubmissionManual:
			stats.ManualUpdates = count
		case ledger.SubmissionImport:
			stats.Imports = count
		case ledger.SubmissionUndoBackup:
			stats.UndoBackups = count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	var oldest, newest sql.NullString
	err = s.db.QueryRowContext(ctx,
		"SELECT MIN(timestamp), MAX(timestamp) FROM history").Scan(&oldest, &newest)
	if err != nil {
		return stats, err
	}
	if oldest.Valid {
		if t, err := time.Parse(time.RFC3339Nano, oldest.String); err == nil {
			stats.OldestEntry = &t
		}
	}
	if newest.Valid {
		if t, err := time.Parse(time.RFC3339Nano, newest.String); err == nil {
			stats.NewestEntry = &t
		}
	}
	return stats, nil
}

// =============================================================================
// BACKUP STORE (ledger.BackupStore interface)
// =============================================================================

// SaveBackup overwrites the single disaster-recovery snapshot.
func (s *Store) SaveBackup(ctx context.Context, snap ledger.BackupSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playersJSON, _ := json.Marshal(snap.Players)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backup (slot, players_json, taken_at, version)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			players_json = excluded.players_json,
			taken_at = excluded.taken_at,
			version = excluded.version`,
		string(playersJSON), snap.Timestamp.UTC().Format(time.RFC3339Nano), snap.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save backup: %w", err)
	}
	return nil
}

// LoadBackup returns the stored snapshot, or ledger.ErrNoBackup.
func (s *Store) LoadBackup(ctx context.Context) (ledger.BackupSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var playersJSON, takenAt, version string
	err := s.db.QueryRowContext(ctx,
		"SELECT players_json, taken_at, version FROM backup WHERE slot = 1").
		Scan(&playersJSON, &takenAt, &version)
	if err == sql.ErrNoRows {
		return ledger.BackupSnapshot{}, ledger.ErrNoBackup
	}
	if err != nil {
		return ledger.BackupSnapshot{}, fmt.Errorf("failed to load backup: %w", err)
	}

	snap := ledger.BackupSnapshot{Version: version}
	if err := json.Unmarshal([]byte(playersJSON), &snap.Players); err != nil {
		return ledger.BackupSnapshot{}, fmt.Errorf("failed to decode backup: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, takenAt); err == nil {
		snap.Timestamp = t
	}
	return snap, nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (ledger.HistoryEntry, error) {
	var entry ledger.HistoryEntry
	var timestamp, subType, matchJSON, playersJSON, summaryJSON string

	err := row.Scan(&entry.ID, &timestamp, &subType, &matchJSON, &playersJSON,
		&entry.Description, &summaryJSON)
	if err != nil {
		return entry, err
	}

	entry.SubmissionType = ledger.SubmissionType(subType)
	if t, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		entry.Timestamp = t
	}
	if err := json.Unmarshal([]byte(matchJSON), &entry.MatchData); err != nil {
		return entry, fmt.Errorf("failed to decode match data: %w", err)
	}
	if err := json.Unmarshal([]byte(playersJSON), &entry.PlayersData); err != nil {
		return entry, fmt.Errorf("failed to decode players data: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &entry.PlayersSummary); err != nil {
		return entry, fmt.Errorf("failed to decode summary: %w", err)
	}
	return entry, nil
}
