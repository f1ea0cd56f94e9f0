package http

import (
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/report"
)

type summaryView struct {
	Today decimal.Decimal `json:"today"`
	Month decimal.Decimal `json:"month"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Summary(r.Context(), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryView{Today: stats.Today, Month: stats.Month})
}

// handleBudget serves the bucket breakdown for ?month=YYYY-MM,
// defaulting to the current month.
func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	month := s.now().MonthKey()
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		parsed, err := core.ParseMonthKey(v)
		if err != nil {
			writeBadRequest(w, "invalid month: "+v)
			return
		}
		month = parsed
	}

	overview, err := s.dashboard.Budget(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewBudget(overview))
}

type heatmapCell struct {
	Date  core.Date       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// handleHeatmap serves daily spend totals over the trailing window.
// Only days with spend appear; the client renders the rest as empty.
func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	today := s.now()
	totals, err := s.dashboard.Heatmap(r.Context(), today)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cells := make([]heatmapCell, 0, len(totals))
	for d, total := range totals {
		cells = append(cells, heatmapCell{Date: d, Total: total})
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Date.Before(cells[j].Date) })

	from, to := report.HeatmapWindow(today)
	writeJSON(w, http.StatusOK, struct {
		From  core.Date     `json:"from"`
		To    core.Date     `json:"to"`
		Cells []heatmapCell `json:"cells"`
	}{From: from, To: to, Cells: cells})
}
