package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/log"
)

type profileView struct {
	MonthlyIncome decimal.Decimal `json:"monthly_income"`
}

// handleGetProfile returns the profile and, as the app-open signal,
// kicks one materialization pass so due subscriptions turn into
// transactions before the dashboard is read.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	if s.processor != nil {
		committed, err := s.processor.Run(r.Context(), s.now())
		if err != nil {
			// The profile read still proceeds: materialization retries
			// on the next trigger and commits are independent.
			log.FromContext(r.Context()).Error("Materialization pass failed", log.FieldError, err)
		}
		if committed > 0 {
			s.dashboard.Invalidate()
		}
	}

	profile, err := s.profiles.Profile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileView{MonthlyIncome: profile.MonthlyIncome})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profileView
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.profiles.SaveProfile(r.Context(), core.Profile{MonthlyIncome: req.MonthlyIncome}); err != nil {
		writeError(w, r, err)
		return
	}

	s.dashboard.Invalidate()
	writeJSON(w, http.StatusOK, req)
}
