package http

import (
	"net/http"

	"viaggi/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	tripID := r.PathValue("id")
	f := parseFilter(r)

	var (
		expenses []core.Expense
		err      error
	)
	// A pure date window uses the indexed range scan; everything else is
	// filtered over the materialized list.
	if f.From != "" && f.To != "" {
		expenses, err = s.ledger.ListExpensesRange(r.Context(), tripID, f.From, f.To)
		f.From, f.To = "", ""
	} else {
		expenses, err = s.ledger.ListExpenses(r.Context(), tripID)
	}
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, core.Apply(expenses, f))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var expense core.Expense
	if err := decodeJSON(r, &expense); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	expense.TripID = r.PathValue("id")
	created, err := s.ledger.CreateExpense(r.Context(), expense)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var expense core.Expense
	if err := decodeJSON(r, &expense); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	expense.ID = r.PathValue("id")
	updated, err := s.ledger.UpdateExpense(r.Context(), expense)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.Summary(r.Context(), r.PathValue("id"), parseFilter(r), parseNow(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}
