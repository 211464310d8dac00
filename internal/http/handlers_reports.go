package http

import "net/http"

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query())
	writeJSON(w, http.StatusOK, s.ledger.Dashboard(p.Year, p.Month))
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	p := ParseMonthParams(r.URL.Query())
	writeJSON(w, http.StatusOK, s.ledger.MonthReport(p.Year, p.Month))
}
