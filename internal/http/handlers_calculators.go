package http

import (
	"net/http"

	"richr/internal/finmath"
)

type sipRequest struct {
	MonthlyAmount float64 `json:"monthly_amount"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
	Years         int     `json:"years"`
}

type sipResponse struct {
	Invested    int64 `json:"invested"`
	FutureValue int64 `json:"future_value"`
	Gain        int64 `json:"gain"`
}

func (s *Server) handleSIP(w http.ResponseWriter, r *http.Request) {
	var req sipRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := finmath.SIP(req.MonthlyAmount, req.AnnualRatePct, req.Years)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sipResponse{
		Invested:    finmath.Round(result.Invested),
		FutureValue: finmath.Round(result.FutureValue),
		Gain:        finmath.Round(result.Gain),
	})
}

type loanRequest struct {
	Principal     float64 `json:"principal"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
	Years         int     `json:"years"`
}

type loanResponse struct {
	EMI          int64 `json:"emi"`
	TotalPayable int64 `json:"total_payable"`
	Interest     int64 `json:"interest"`
}

func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := finmath.LoanEMI(req.Principal, req.AnnualRatePct, req.Years)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loanResponse{
		EMI:          finmath.Round(result.EMI),
		TotalPayable: finmath.Round(result.TotalPayable),
		Interest:     finmath.Round(result.Interest),
	})
}

type lumpSumRequest struct {
	Principal     float64 `json:"principal"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
	Years         int     `json:"years"`
}

type lumpSumResponse struct {
	FutureValue int64 `json:"future_value"`
}

func (s *Server) handleLumpSum(w http.ResponseWriter, r *http.Request) {
	var req lumpSumRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	fv, err := finmath.LumpSum(req.Principal, req.AnnualRatePct, req.Years)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lumpSumResponse{FutureValue: finmath.Round(fv)})
}
