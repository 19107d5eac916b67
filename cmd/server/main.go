/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the team cost ledger server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (env fallbacks for secrets)
  2. Open the SQLite store and load the persisted roster
  3. Optionally pull the remote snapshot when the local store is empty
  4. Wire roster, saver, undo engine, and HTTP handlers
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: teamledger.db)
              Use ":memory:" for an in-memory database
  -remote     Remote store base URL (empty disables remote sync)
  -log-level  zap log level (default: info)

ENVIRONMENT:
  TEAMLEDGER_REMOTE_KEY     API key for the remote store
  TEAMLEDGER_PASSWORD_HASH  bcrypt hash gating /api (empty = open)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits for
  active requests (30s timeout), flushes the pending debounced write,
  and closes the database.

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/teamledger/api"
	"github.com/warp/teamledger/ledger"
	"github.com/warp/teamledger/persist"
	"github.com/warp/teamledger/remote"
	"github.com/warp/teamledger/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "teamledger.db", "SQLite database path")
	remoteURL := flag.String("remote", "", "remote store base URL (empty disables sync)")
	logLevel := flag.String("log-level", "info", "zap log level")
	flag.Parse()

	log := newLogger(*logLevel)
	defer log.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	var remoteClient *remote.Client
	if *remoteURL != "" {
		remoteClient = remote.New(*remoteURL, os.Getenv("TEAMLEDGER_REMOTE_KEY"), log)
	}

	ctx := context.Background()
	players, err := store.LoadPlayers(ctx)
	if err != nil {
		log.Fatal("failed to load players", zap.Error(err))
	}
	if len(players) == 0 && remoteClient != nil {
		// Fresh local store: adopt the remote snapshot when one exists.
		if fetched, err := remoteClient.FetchPlayers(ctx); err != nil {
			log.Warn("initial remote fetch failed", zap.Error(err))
		} else if len(fetched) > 0 {
			players = fetched
			log.Info("adopted remote snapshot", zap.Int("players", len(players)))
		}
	}

	roster := ledger.NewRoster(players, store, log)

	saverOpts := []persist.Option{}
	if remoteClient != nil {
		saverOpts = append(saverOpts, persist.WithRemote(remoteClient))
	}
	saver := persist.NewSaver(store, store, log, saverOpts...)
	defer saver.Close()

	handler := api.NewHandler(roster, store, store, saver, remoteClient, log)
	router := api.NewRouter(handler, os.Getenv("TEAMLEDGER_PASSWORD_HASH"))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}
