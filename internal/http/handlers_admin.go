package http

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"viaggi/internal/core"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.ledger.GetSettings(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := decodeJSON(r, &settings); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.ledger.UpdateSettings(r.Context(), settings); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, settings)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Export(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="viaggi-backup.json"`)
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.ledger.Restore(r.Context(), snap); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{
		"trips":    len(snap.Trips),
		"expenses": len(snap.Expenses),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")
	rows, err := s.ledger.ExportCSVRows(r.Context(), tripID, parseFilter(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.csv"`, tripID))
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		s.log.ErrContext(r.Context(), "Failed to write CSV export", err, "trip_id", tripID)
	}
}
