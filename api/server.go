/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:       Request logging
  2. Recoverer:    Panic recovery (500 instead of crash)
  3. RequestID:    Unique ID per request for tracing
  4. CORS:         Cross-origin requests for the frontend
  5. PasswordGate: Shared-password check on /api

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
// passwordHash gates /api when non-empty.
func NewRouter(h *Handler, passwordHash string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Access-Password"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Use(PasswordGate(passwordHash))

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Post("/", h.AddPlayer)
			r.Delete("/{id}", h.RemovePlayer)
			r.Put("/{id}/field", h.SetField)
			r.Put("/{id}/status", h.SetStatus)
			r.Post("/{id}/undo-payment", h.UndoPaymentHandler)
		})

		r.Route("/weekend", func(r chi.Router) {
			r.Post("/", h.SubmitWeekend)
			r.Post("/reset", h.ResetWeekend)
			r.Post("/next", h.MoveToNextWeek)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.ListHistory)
			r.Delete("/", h.ClearHistory)
			r.Get("/stats", h.HistoryStats)
			r.Post("/prune", h.PruneHistory)
			r.Get("/{id}", h.GetHistoryEntry)
			r.Delete("/{id}", h.DeleteHistoryEntry)
		})

		r.Post("/undo", h.UndoMatch)
		r.Post("/undo/last", h.UndoLast)
		r.Post("/rebuild", h.Rebuild)

		r.Get("/validate", h.Validate)
		r.Get("/export/csv", h.ExportCSV)
		r.Post("/import/csv", h.ImportCSV)
		r.Get("/backup", h.GetBackup)
		r.Post("/backup/restore", h.RestoreBackup)
	})

	return r
}
