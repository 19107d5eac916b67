// Package store provides in-memory implementations of the ledger's
// persistence interfaces, used by tests and dev mode.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/teamledger/ledger"
)

// =============================================================================
// MEMORY HISTORY STORE
// =============================================================================

// MemoryHistory is an in-memory ledger.HistoryStore. Entries are kept
// newest first and truncated to the cap on every append.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries []ledger.HistoryEntry
	cap     int
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{cap: ledger.DefaultHistoryCap}
}

// NewMemoryHistoryWithCap overrides the retention cap (tests).
func NewMemoryHistoryWithCap(cap int) *MemoryHistory {
	return &MemoryHistory{cap: cap}
}

func (m *MemoryHistory) Append(_ context.Context, matchData ledger.MatchContext, players []ledger.Player, subType ledger.SubmissionType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := ledger.NewHistoryEntry(matchData, players, subType)
	m.entries = append([]ledger.HistoryEntry{entry}, m.entries...)
	if len(m.entries) > m.cap {
		m.entries = m.entries[:m.cap]
	}
	return entry.ID, nil
}

func (m *MemoryHistory) Get(_ context.Context, entryID string) (ledger.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.ID == entryID {
			return e.Clone(), nil
		}
	}
	return ledger.HistoryEntry{}, ledger.ErrEntryNotFound
}

func (m *MemoryHistory) List(_ context.Context, sinceDays int) ([]ledger.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cutoff time.Time
	if sinceDays > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -sinceDays)
	}

	var out []ledger.HistoryEntry
	for _, e := range m.entries {
		if e.SubmissionType == ledger.SubmissionUndoBackup {
			continue
		}
		if sinceDays > 0 && !e.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, e.Clone())
	}
	return out, nil
}

func (m *MemoryHistory) Delete(_ context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == entryID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return ledger.ErrEntryNotFound
}

func (m *MemoryHistory) PruneOlderThan(_ context.Context, days int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		} else {
			removed++
		}
	}
	m.entries = kept
	return removed, nil
}

func (m *MemoryHistory) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *MemoryHistory) Stats(_ context.Context) (ledger.HistoryStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := ledger.HistoryStats{TotalEntries: len(m.entries)}
	for _, e := range m.entries {
		switch e.SubmissionType {
		case ledger.SubmissionWeekend:
			stats.WeekendSubmissions++
		case ledger.SubmissionManual:
			stats.ManualUpdates++
		case ledger.SubmissionImport:
			stats.Imports++
		case ledger.SubmissionUndoBackup:
			stats.UndoBackups++
		}
	}
	if len(m.entries) > 0 {
		newest := m.entries[0].Timestamp
		oldest := m.entries[len(m.entries)-1].Timestamp
		stats.NewestEntry = &newest
		stats.OldestEntry = &oldest
	}
	return stats, nil
}

// =============================================================================
// MEMORY PLAYER STORE
// =============================================================================

// MemoryPlayers is an in-memory ledger.PlayerStore + ledger.BackupStore.
type MemoryPlayers struct {
	mu      sync.RWMutex
	players []ledger.Player
	backup  *ledger.BackupSnapshot
}

func NewMemoryPlayers() *MemoryPlayers {
	return &MemoryPlayers{}
}

func (m *MemoryPlayers) SavePlayers(_ context.Context, players []ledger.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = ledger.ClonePlayers(players)
	return nil
}

func (m *MemoryPlayers) LoadPlayers(_ context.Context) ([]ledger.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ledger.ClonePlayers(m.players), nil
}

func (m *MemoryPlayers) SaveBackup(_ context.Context, snap ledger.BackupSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := snap
	copied.Players = ledger.ClonePlayers(snap.Players)
	m.backup = &copied
	return nil
}

func (m *MemoryPlayers) LoadBackup(_ context.Context) (ledger.BackupSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.backup == nil {
		return ledger.BackupSnapshot{}, ledger.ErrNoBackup
	}
	out := *m.backup
	out.Players = ledger.ClonePlayers(m.backup.Players)
	return out, nil
}
