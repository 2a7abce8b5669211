// Package http is the presentation collaborator over the ledger service:
// a JSON API plus the CSV export endpoint. All domain rules live below it.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	applog "viaggi/internal/log"
	"viaggi/internal/middleware"
	"viaggi/internal/services"
)

type Server struct {
	http.Server
	ledger *services.Ledger
	log    *applog.Logger
}

// NewServer wires the routes and returns a ready-to-run server.
func NewServer(addr string, ledger *services.Ledger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      nil, // set below, after middleware wrapping
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger: ledger,
		log:    applog.ForComponent(applog.ComponentHTTP),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/trips", s.handleListTrips)
	mux.HandleFunc("POST /api/trips", s.handleCreateTrip)
	mux.HandleFunc("GET /api/trips/{id}", s.handleGetTrip)
	mux.HandleFunc("PUT /api/trips/{id}", s.handleUpdateTrip)
	mux.HandleFunc("DELETE /api/trips/{id}", s.handleDeleteTrip)

	mux.HandleFunc("GET /api/trips/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/trips/{id}/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/trips/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/trips/{id}/export.csv", s.handleExportCSV)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)

	mux.HandleFunc("GET /api/backup", s.handleBackup)
	mux.HandleFunc("POST /api/restore", s.handleRestore)

	s.Handler = middleware.Trace(middleware.Headers(mux))

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// Shutdown drains in-flight requests before closing.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
