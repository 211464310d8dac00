package http

import (
	"net/http"

	"tracker/internal/services"
)

func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	f, err := s.ledger.ExportAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	NewResponse().Attachment(f.Name, f.ContentType, f.Content).Write(w)
}

func (s *Server) handleExportSelection(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := services.ParseFormat(req.Format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f, err := s.ledger.ExportSelection(r.Context(), req.ExpenseIDs, req.LoanIDs, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if format == services.FormatSheets {
		writeJSON(w, http.StatusOK, sheetsResponse{Range: f.SheetsRange})
		return
	}
	NewResponse().Attachment(f.Name, f.ContentType, f.Content).Write(w)
}
