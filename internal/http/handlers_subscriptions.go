package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"richr/internal/core"
)

type createSubscriptionRequest struct {
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Tag        string          `json:"tag"`
	Bucket     string          `json:"bucket"`
	BillingDay int             `json:"billing_day"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	sub := core.Subscription{
		Title:      strings.TrimSpace(req.Title),
		Amount:     req.Amount,
		Tag:        strings.TrimSpace(req.Tag),
		Bucket:     core.Bucket(req.Bucket),
		BillingDay: req.BillingDay,
	}

	created, err := s.subscriptions.Create(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewSubscription(created))
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]subscriptionView, len(subs))
	for i, sub := range subs {
		views[i] = viewSubscription(sub)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeBadRequest(w, "missing subscription id")
		return
	}

	if err := s.subscriptions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
