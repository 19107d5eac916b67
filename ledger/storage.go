/*
storage.go - Persistence interfaces for the player list

PURPOSE:
  The roster itself is in-memory; durability is an external collaborator.
  These interfaces are what the engine needs from it: a full-snapshot
  player store (last writer wins, no per-field merge) and an independent
  backup slot refreshed on a fixed period, used only for manual disaster
  recovery.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory (tests, dev)
  - store/sqlite/sqlite.go: Durable local store

SEE ALSO:
  - persist/: The debounced writer driving these interfaces
*/
package ledger

import (
	"context"
	"time"
)

// PlayerStore persists the full player list as a snapshot. Writes replace
// the whole list; there are no per-field update semantics.
type PlayerStore interface {
	SavePlayers(ctx context.Context, players []Player) error
	LoadPlayers(ctx context.Context) ([]Player, error)
}

// BackupSnapshot is the manual disaster-recovery copy, independent of the
// main persisted list.
type BackupSnapshot struct {
	Players   []Player  `json:"players"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// BackupStore holds a single backup snapshot, refreshed on a fixed period.
type BackupStore interface {
	SaveBackup(ctx context.Context, snap BackupSnapshot) error

	// LoadBackup returns ErrNoBackup when no snapshot has been taken yet.
	LoadBackup(ctx context.Context) (BackupSnapshot, error)
}
