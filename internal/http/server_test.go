package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"richr/internal/core"
	"richr/internal/materialize"
	"richr/internal/services"
	"richr/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	s := NewServer(":0",
		services.NewTransactionService(st, nil),
		services.NewSubscriptionService(st),
		services.NewDashboardService(st),
		st,
		materialize.NewProcessor(st))
	s.now = func() core.Date { return core.NewDate(2024, time.July, 5) }
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s, st
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestCreateTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"title":"Weekly shop","amount":"1200","kind":"Expense","tag":"Groceries","date":"2024-07-03"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	view := decode[transactionView](t, rec)
	if view.ID == "" {
		t.Error("response missing id")
	}
	if view.Bucket != "Need" {
		t.Errorf("Bucket = %q, want Need from tag", view.Bucket)
	}
	if view.MonthKey != "2024-07" {
		t.Errorf("MonthKey = %q, want 2024-07", view.MonthKey)
	}
}

func TestCreateTransaction_Invalid(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"title":"x","amount":"0","kind":"Expense","tag":"Bills","date":"2024-07-03"}`},
		{"bad kind", `{"title":"x","amount":"10","kind":"Transfer","tag":"Bills","date":"2024-07-03"}`},
		{"missing tag", `{"title":"x","amount":"10","kind":"Expense","date":"2024-07-03"}`},
		{"unknown field", `{"title":"x","amount":"10","kind":"Expense","tag":"Bills","date":"2024-07-03","nope":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"title":"Netflix","amount":"500","kind":"Expense","tag":"Bills","date":"2024-07-03"}`)
	view := decode[transactionView](t, rec)

	if rec := doJSON(t, s, http.MethodDelete, "/api/transactions/"+view.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/api/transactions/"+view.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestListTransactions_GroupedAndFiltered(t *testing.T) {
	s, _ := newTestServer(t)

	for _, body := range []string{
		`{"title":"Shop","amount":"1200","kind":"Expense","tag":"Groceries","date":"2024-07-03"}`,
		`{"title":"Dinner","amount":"800","kind":"Expense","tag":"Food","date":"2024-07-03"}`,
		`{"title":"Salary","amount":"50000","kind":"Income","tag":"Salary","date":"2024-07-01"}`,
	} {
		if rec := doJSON(t, s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed failed: %s", rec.Body.String())
		}
	}

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", "")
	groups := decode[[]dayGroupView](t, rec)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Date != core.NewDate(2024, time.July, 3) {
		t.Errorf("first group = %s, want newest day first", groups[0].Date)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/transactions?tag=Groceries", "")
	groups = decode[[]dayGroupView](t, rec)
	if len(groups) != 1 || len(groups[0].Transactions) != 1 {
		t.Fatalf("filtered groups = %+v", groups)
	}
	if groups[0].Transactions[0].Title != "Shop" {
		t.Errorf("filtered title = %q", groups[0].Transactions[0].Title)
	}
}

func TestProfileLoadMaterializes(t *testing.T) {
	s, st := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/subscriptions",
		`{"title":"Netflix","amount":"500","tag":"Bills","billing_day":5}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subscription: %s", rec.Body.String())
	}

	if rec := doJSON(t, s, http.MethodGet, "/api/profile", ""); rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d", rec.Code)
	}

	txs, _ := st.ListTransactions(context.Background())
	if len(txs) != 1 {
		t.Fatalf("got %d transactions after profile load, want 1", len(txs))
	}
	if !txs[0].AutoGenerated || txs[0].Date != core.NewDate(2024, time.July, 5) {
		t.Errorf("materialized transaction = %+v", txs[0])
	}

	// Second load in the same period is a no-op.
	doJSON(t, s, http.MethodGet, "/api/profile", "")
	txs, _ = st.ListTransactions(context.Background())
	if len(txs) != 1 {
		t.Errorf("got %d transactions after second load, want 1", len(txs))
	}
}

func TestSaveAndGetProfile(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/profile", `{"monthly_income":"70000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/api/profile", "")
	view := decode[profileView](t, rec)
	if view.MonthlyIncome.String() != "70000" {
		t.Errorf("monthly income = %s, want 70000", view.MonthlyIncome)
	}
}

func TestBudgetEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	doJSON(t, s, http.MethodPut, "/api/profile", `{"monthly_income":"70000"}`)
	for _, body := range []string{
		`{"title":"Shop","amount":"1200","kind":"Expense","tag":"Groceries","date":"2024-07-03"}`,
		`{"title":"Dinner","amount":"800","kind":"Expense","tag":"Food","date":"2024-07-03"}`,
		`{"title":"Fund","amount":"5000","kind":"Expense","tag":"SIP","date":"2024-07-01"}`,
	} {
		doJSON(t, s, http.MethodPost, "/api/transactions", body)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard/budget?month=2024-07", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decode[budgetView](t, rec)
	if view.Need.Total.String() != "1200" || view.Want.Total.String() != "800" || view.Investment.Total.String() != "5000" {
		t.Errorf("totals = %+v", view)
	}
	if view.HealthPct.String() != "10" {
		t.Errorf("health = %s, want 10", view.HealthPct)
	}

	if rec := doJSON(t, s, http.MethodGet, "/api/dashboard/budget?month=July", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", rec.Code)
	}
}

func TestHeatmapEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/transactions",
		`{"title":"Shop","amount":"1200","kind":"Expense","tag":"Groceries","date":"2024-07-03"}`)

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard/heatmap", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	view := decode[struct {
		From  core.Date     `json:"from"`
		To    core.Date     `json:"to"`
		Cells []heatmapCell `json:"cells"`
	}](t, rec)
	if view.From != core.NewDate(2024, time.April, 1) {
		t.Errorf("window from = %s, want 2024-04-01", view.From)
	}
	if len(view.Cells) != 1 || view.Cells[0].Total.String() != "1200" {
		t.Errorf("cells = %+v", view.Cells)
	}
}

func TestCalculatorEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/calculators/sip",
		`{"monthly_amount":5000,"annual_rate_pct":12,"years":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sip status = %d, body %s", rec.Code, rec.Body.String())
	}
	sip := decode[sipResponse](t, rec)
	if sip.Invested != 300000 {
		t.Errorf("Invested = %d, want 300000", sip.Invested)
	}
	if sip.FutureValue != 412432 {
		t.Errorf("FutureValue = %d, want 412432", sip.FutureValue)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/calculators/loan",
		`{"principal":1200000,"annual_rate_pct":9,"years":20}`)
	loan := decode[loanResponse](t, rec)
	if loan.EMI != 10797 {
		t.Errorf("EMI = %d, want 10797", loan.EMI)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/calculators/lumpsum",
		`{"principal":100000,"annual_rate_pct":10,"years":2}`)
	ls := decode[lumpSumResponse](t, rec)
	if ls.FutureValue != 121000 {
		t.Errorf("FutureValue = %d, want 121000", ls.FutureValue)
	}

	if rec := doJSON(t, s, http.MethodPost, "/api/calculators/sip",
		`{"monthly_amount":5000,"annual_rate_pct":12,"years":0}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid years status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := doJSON(t, s, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}
