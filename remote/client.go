/*
Package remote is the HTTP client for the optional remote store.

PURPOSE:
  Mirrors the local state to a shared backend so the ledger survives the
  phone it normally lives on: full player-list upserts keyed by id, full
  history-entry inserts, and a singular settings record (the access
  password). No partial-field update semantics exist beyond upsert-by-id.

FAILURE MODEL:
  Every call is best-effort. A failure is reported to the caller (the
  Saver marks itself sync-pending and retries later) and never blocks
  local operation.
*/
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/warp/teamledger/ledger"
)

// Client talks to the remote store. Zero value is not usable; use New.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

// New creates a client for the remote store at baseURL, authenticated
// with the given API key (sent as a bearer token).
func New(baseURL, apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c, log: log}
}

// SyncPlayers upserts the full player list. Last writer wins.
func (c *Client) SyncPlayers(ctx context.Context, players []ledger.Player) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(players).
		Put("/players")
	if err != nil {
		return &ledger.PersistenceError{Op: "sync players", Err: err}
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return &ledger.PersistenceError{
			Op:  "sync players",
			Err: fmt.Errorf("remote status %d", resp.StatusCode()),
		}
	}
	c.log.Debug("players synced", zap.Int("count", len(players)))
	return nil
}

// InsertHistory mirrors one history entry to the remote store.
func (c *Client) InsertHistory(ctx context.Context, entry ledger.HistoryEntry) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(entry).
		Post("/history")
	if err != nil {
		return &ledger.PersistenceError{Op: "insert history", Err: err}
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return &ledger.PersistenceError{
			Op:  "insert history",
			Err: fmt.Errorf("remote status %d", resp.StatusCode()),
		}
	}
	return nil
}

// Settings is the singular remote settings record.
type Settings struct {
	PasswordHash string `json:"passwordHash"`
}

// SaveSettings upserts the settings record.
func (c *Client) SaveSettings(ctx context.Context, settings Settings) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(settings).
		Put("/settings")
	if err != nil {
		return &ledger.PersistenceError{Op: "save settings", Err: err}
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return &ledger.PersistenceError{
			Op:  "save settings",
			Err: fmt.Errorf("remote status %d", resp.StatusCode()),
		}
	}
	return nil
}

// FetchPlayers downloads the remote player list, used at startup when the
// local store is empty.
func (c *Client) FetchPlayers(ctx context.Context) ([]ledger.Player, error) {
	var players []ledger.Player
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&players).
		Get("/players")
	if err != nil {
		return nil, &ledger.PersistenceError{Op: "fetch players", Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, &ledger.PersistenceError{
			Op:  "fetch players",
			Err: fmt.Errorf("remote status %d", resp.StatusCode()),
		}
	}
	return players, nil
}
