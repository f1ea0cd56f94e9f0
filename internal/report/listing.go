package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"richr/internal/core"
)

// heatmapMonths is the trailing window rendered by the activity
// heatmap, in calendar months including the current one.
const heatmapMonths = 4

// DayGroup is one date's transactions plus its expense total, for the
// date-descending dashboard listing.
type DayGroup struct {
	Date         core.Date
	ExpenseTotal decimal.Decimal
	Transactions []core.Transaction
}

// Filter narrows the transaction listing. Zero values match everything.
type Filter struct {
	Tag  string
	Date core.Date
}

func (f Filter) matches(tx core.Transaction) bool {
	if f.Tag != "" && f.Tag != tx.Tag {
		// "Income" as a tag filter also matches income-kind rows,
		// which carry their own tag.
		if !(f.Tag == "Income" && tx.Kind == core.Income) {
			return false
		}
	}
	if !f.Date.IsZero() && f.Date != tx.Date {
		return false
	}
	return true
}

// GroupedByDay buckets the filtered transactions by event date, sorted
// date-descending. Only expenses count toward each group's total,
// matching the daily activity map.
func GroupedByDay(transactions []core.Transaction, filter Filter) []DayGroup {
	byDate := make(map[core.Date]*DayGroup)
	for _, tx := range transactions {
		if !filter.matches(tx) {
			continue
		}
		g, ok := byDate[tx.Date]
		if !ok {
			g = &DayGroup{Date: tx.Date}
			byDate[tx.Date] = g
		}
		g.Transactions = append(g.Transactions, tx)
		if tx.Kind == core.Expense {
			g.ExpenseTotal = g.ExpenseTotal.Add(tx.Amount)
		}
	}

	groups := make([]DayGroup, 0, len(byDate))
	for _, g := range byDate {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[j].Date.Before(groups[i].Date)
	})
	return groups
}

// SpendStats is the pair of headline numbers on the dashboard.
type SpendStats struct {
	Today decimal.Decimal
	Month decimal.Decimal
}

// Stats returns today's and the current month's expense totals.
func Stats(transactions []core.Transaction, today core.Date) SpendStats {
	var s SpendStats
	month := today.MonthKey()
	for _, tx := range transactions {
		if tx.Kind != core.Expense {
			continue
		}
		if tx.Date == today {
			s.Today = s.Today.Add(tx.Amount)
		}
		if tx.MonthKey == month {
			s.Month = s.Month.Add(tx.Amount)
		}
	}
	return s
}

// BudgetHealth is the share of monthly income already spent this
// month, in percent, clamped to 100. It is zero when no income is
// configured.
func BudgetHealth(monthlySpend, monthlyIncome decimal.Decimal) decimal.Decimal {
	if !monthlyIncome.IsPositive() {
		return decimal.Zero
	}
	pct := monthlySpend.Mul(decimal.NewFromInt(100)).DivRound(monthlyIncome, sharePlaces)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// HeatmapWindow returns the trailing heatmap range: the first day of
// the month three months back through today.
func HeatmapWindow(today core.Date) (from, to core.Date) {
	from = core.NewDate(today.Year(), today.Month(), 1).AddMonths(-(heatmapMonths - 1))
	return from, today
}

// WindowedDailyTotals is DailyExpenseTotals restricted to the heatmap
// window. Days outside the window are omitted entirely.
func WindowedDailyTotals(transactions []core.Transaction, today core.Date) (map[core.Date]decimal.Decimal, error) {
	totals, err := DailyExpenseTotals(transactions)
	if err != nil {
		return nil, err
	}
	from, to := HeatmapWindow(today)
	for d := range totals {
		if d.Before(from) || d.After(to) {
			delete(totals, d)
		}
	}
	return totals, nil
}
