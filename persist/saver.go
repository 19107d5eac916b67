/*
Package persist drives the durable and remote stores from the in-memory
roster.

PURPOSE:
  Ledger mutations are synchronous and in-memory; durability is async.
  The Saver debounces rapid successive edits into one persisted write,
  refreshes the disaster-recovery backup on a fixed period, and mirrors
  the snapshot to the remote store when one is configured.

DEBOUNCE SEMANTICS:
  Notify schedules a write after a short quiet period. A newer Notify
  replaces the scheduled one; only the latest snapshot is ever written.
  Reads of the roster are always consistent with the latest synchronous
  mutation regardless of pending persistence.

FAILURE MODEL:
  A failed local or remote write is logged and never fatal. The Saver
  marks itself sync-pending and retries the full snapshot on the next
  write or explicit Retry call. Last writer wins; there is no per-field
  merge.

SEE ALSO:
  - ledger/storage.go: The store interfaces being driven
  - remote/: The HTTP syncer
*/
package persist

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/teamledger/ledger"
)

const (
	// DefaultDebounce is the quiet period before a pending write lands.
	DefaultDebounce = 2 * time.Second

	// DefaultBackupInterval is how often the backup snapshot refreshes.
	DefaultBackupInterval = 5 * time.Minute

	backupVersion = "2.0"
)

// Syncer mirrors the full player snapshot to a remote store.
type Syncer interface {
	SyncPlayers(ctx context.Context, players []ledger.Player) error
}

// Saver owns the write path from roster to durable and remote stores.
type Saver struct {
	store  ledger.PlayerStore
	backup ledger.BackupStore
	remote Syncer // nil when no remote is configured
	log    *zap.Logger

	debounce       time.Duration
	backupInterval time.Duration

	mu          sync.Mutex
	pending     []ledger.Player
	timer       *time.Timer
	syncPending bool
	lastSaved   time.Time

	done chan struct{}
	once sync.Once
}

// Option configures a Saver.
type Option func(*Saver)

// WithDebounce overrides the quiet period (tests).
func WithDebounce(d time.Duration) Option {
	return func(s *Saver) { s.debounce = d }
}

// WithBackupInterval overrides the backup period (tests).
func WithBackupInterval(d time.Duration) Option {
	return func(s *Saver) { s.backupInterval = d }
}

// WithRemote attaches a remote syncer.
func WithRemote(r Syncer) Option {
	return func(s *Saver) { s.remote = r }
}

// NewSaver creates a saver and starts the periodic backup loop.
func NewSaver(store ledger.PlayerStore, backup ledger.BackupStore, log *zap.Logger, opts ...Option) *Saver {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Saver{
		store:          store,
		backup:         backup,
		log:            log,
		debounce:       DefaultDebounce,
		backupInterval: DefaultBackupInterval,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.backupLoop()
	return s
}

// Notify schedules a debounced write of the given snapshot. Supersedes
// any previously scheduled write.
func (s *Saver) Notify(players []ledger.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = ledger.ClonePlayers(players)
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.flushPending)
}

// Flush writes any pending snapshot immediately. Called on shutdown.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushPending()
}

// SyncPending reports whether a remote write is still owed.
func (s *Saver) SyncPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncPending
}

// LastSaved returns when the last successful local write happened.
func (s *Saver) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Retry re-attempts a pending remote sync with the current persisted
// snapshot. Called when connectivity is restored.
func (s *Saver) Retry(ctx context.Context) {
	s.mu.Lock()
	pending := s.syncPending
	s.mu.Unlock()
	if !pending || s.remote == nil {
		return
	}

	players, err := s.store.LoadPlayers(ctx)
	if err != nil {
		s.log.Warn("retry: load for remote sync failed", zap.Error(err))
		return
	}
	s.syncRemote(ctx, players)
}

// Close stops the backup loop and flushes any pending write.
func (s *Saver) Close() {
	s.once.Do(func() { close(s.done) })
	s.Flush()
}

func (s *Saver) flushPending() {
	s.mu.Lock()
	players := s.pending
	s.pending = nil
	s.mu.Unlock()
	if players == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.SavePlayers(ctx, players); err != nil {
		// Never fatal: the in-memory ledger keeps operating and the next
		// edit schedules another full-snapshot write.
		s.log.Error("local save failed", zap.Error(err))
	} else {
		s.mu.Lock()
		s.lastSaved = time.Now()
		s.mu.Unlock()
		s.log.Debug("players saved", zap.Int("count", len(players)))
	}

	s.syncRemote(ctx, players)
}

func (s *Saver) syncRemote(ctx context.Context, players []ledger.Player) {
	if s.remote == nil {
		return
	}
	err := s.remote.SyncPlayers(ctx, players)

	s.mu.Lock()
	s.syncPending = err != nil
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("remote sync failed, will retry", zap.Error(err))
	}
}

func (s *Saver) backupLoop() {
	ticker := time.NewTicker(s.backupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.takeBackup()
		}
	}
}

func (s *Saver) takeBackup() {
	if s.backup == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	players, err := s.store.LoadPlayers(ctx)
	if err != nil {
		s.log.Warn("backup: load players failed", zap.Error(err))
		return
	}
	snap := ledger.BackupSnapshot{
		Players:   players,
		Timestamp: time.Now().UTC(),
		Version:   backupVersion,
	}
	if err := s.backup.SaveBackup(ctx, snap); err != nil {
		s.log.Warn("backup save failed", zap.Error(err))
	}
}
