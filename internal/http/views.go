package http

import (
	"time"

	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/report"
	"richr/internal/services"
)

// transactionView is the wire shape of a transaction.
type transactionView struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	Tag           string          `json:"tag"`
	Bucket        string          `json:"bucket,omitempty"`
	Date          core.Date       `json:"date"`
	MonthKey      string          `json:"month_key"`
	AutoGenerated bool            `json:"auto_generated"`
	CreatedAt     time.Time       `json:"created_at"`
}

func viewTransaction(tx core.Transaction) transactionView {
	return transactionView{
		ID:            tx.ID,
		Title:         tx.Title,
		Amount:        tx.Amount,
		Kind:          string(tx.Kind),
		Tag:           tx.Tag,
		Bucket:        string(tx.Bucket),
		Date:          tx.Date,
		MonthKey:      tx.MonthKey.String(),
		AutoGenerated: tx.AutoGenerated,
		CreatedAt:     tx.CreatedAt,
	}
}

type subscriptionView struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`
	Tag        string          `json:"tag"`
	Bucket     string          `json:"bucket"`
	BillingDay int             `json:"billing_day"`
	LastPeriod string          `json:"last_period"`
	CreatedAt  time.Time       `json:"created_at"`
}

func viewSubscription(sub core.Subscription) subscriptionView {
	return subscriptionView{
		ID:         sub.ID,
		Title:      sub.Title,
		Amount:     sub.Amount,
		Tag:        sub.Tag,
		Bucket:     string(sub.Bucket),
		BillingDay: sub.BillingDay,
		LastPeriod: sub.LastPeriod.String(),
		CreatedAt:  sub.CreatedAt,
	}
}

type dayGroupView struct {
	Date         core.Date         `json:"date"`
	ExpenseTotal decimal.Decimal   `json:"expense_total"`
	Transactions []transactionView `json:"transactions"`
}

func viewDayGroups(groups []report.DayGroup) []dayGroupView {
	out := make([]dayGroupView, len(groups))
	for i, g := range groups {
		views := make([]transactionView, len(g.Transactions))
		for j, tx := range g.Transactions {
			views[j] = viewTransaction(tx)
		}
		out[i] = dayGroupView{
			Date:         g.Date,
			ExpenseTotal: g.ExpenseTotal,
			Transactions: views,
		}
	}
	return out
}

type bucketView struct {
	Total decimal.Decimal `json:"total"`
	Share decimal.Decimal `json:"share_pct"`
}

type budgetView struct {
	Month      string          `json:"month"`
	Need       bucketView      `json:"need"`
	Want       bucketView      `json:"want"`
	Investment bucketView      `json:"investment"`
	Spend      decimal.Decimal `json:"spend"`
	Income     decimal.Decimal `json:"income"`
	HealthPct  decimal.Decimal `json:"health_pct"`
}

func viewBudget(o services.BudgetOverview) budgetView {
	return budgetView{
		Month:      o.Month.String(),
		Need:       bucketView{Total: o.Totals.Need, Share: o.Shares.Need},
		Want:       bucketView{Total: o.Totals.Want, Share: o.Shares.Want},
		Investment: bucketView{Total: o.Totals.Investment, Share: o.Shares.Investment},
		Spend:      o.Totals.Sum(),
		Income:     o.Income,
		HealthPct:  o.Health,
	}
}
