package http

import (
	"net/http"

	"tracker/internal/core"
	"tracker/internal/query"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := query.ParseSortKey(q.Get("sort"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f := query.ExpenseFilter{
		Category: q.Get("category"),
		Keyword:  q.Get("keyword"),
	}
	if v := q.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			s.fail(w, r, &core.ValidationError{Field: "date", Err: err})
			return
		}
		f.Date = d
	}
	writeJSON(w, http.StatusOK, s.ledger.Expenses(f, key))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.ledger.Expense(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.ledger.AddExpense(r.Context(), e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req expenseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := req.toExpense()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.ledger.UpdateExpense(r.Context(), id, e)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Categories())
}
