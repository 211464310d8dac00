package http

import (
	"net/http"

	"tracker/internal/core"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, budgetResponse{Amount: s.ledger.Budget()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	// The store rejects negative budgets.
	amount, err := core.ParseSignedMoney(req.Amount.String())
	if err != nil {
		s.fail(w, r, &core.ValidationError{Field: "amount", Err: err})
		return
	}
	if err := s.ledger.SetBudget(r.Context(), amount); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{Amount: amount})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Profile())
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.ledger.SaveProfile(r.Context(), req.toProfile())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
