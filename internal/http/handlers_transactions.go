package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/report"
)

type createTransactionRequest struct {
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      string          `json:"kind"`
	Tag       string          `json:"tag"`
	Bucket    string          `json:"bucket"`
	Date      core.Date       `json:"date"`
	Recurring bool            `json:"recurring"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	tx := core.Transaction{
		Title:  strings.TrimSpace(req.Title),
		Amount: req.Amount,
		Kind:   core.Kind(req.Kind),
		Tag:    strings.TrimSpace(req.Tag),
		Bucket: core.Bucket(req.Bucket),
		Date:   req.Date,
	}

	created, err := s.transactions.Create(r.Context(), tx, req.Recurring)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.dashboard.Invalidate()
	writeJSON(w, http.StatusCreated, viewTransaction(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := report.Filter{
		Tag: strings.TrimSpace(r.URL.Query().Get("tag")),
	}
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeBadRequest(w, "invalid date filter: "+v)
			return
		}
		filter.Date = d
	}

	groups, err := s.dashboard.Grouped(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDayGroups(groups))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeBadRequest(w, "missing transaction id")
		return
	}

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.dashboard.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
