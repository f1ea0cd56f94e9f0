// Package report builds the derived read models over the transaction
// collection: the daily activity map behind the spend heatmap and the
// monthly Need/Want/Investment breakdown behind the budget chart.
//
// Aggregation is a commutative sum, so none of these functions depend
// on input order. Presentation-side grouping and sorting lives in
// listing.go.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"

	"richr/internal/budget"
	"richr/internal/core"
)

// BucketTotals is the monthly expense total per budget bucket.
type BucketTotals struct {
	Need       decimal.Decimal
	Want       decimal.Decimal
	Investment decimal.Decimal
}

// BucketShares is each bucket's share of the monthly total, in percent.
type BucketShares struct {
	Need       decimal.Decimal
	Want       decimal.Decimal
	Investment decimal.Decimal
}

// sharePlaces is the rounding applied to percentage shares.
const sharePlaces = 2

// DailyExpenseTotals sums expense amounts per event date. Income
// transactions do not contribute. Days without spend are absent from
// the map rather than present with a zero value; callers must treat a
// missing key and an explicit zero identically.
//
// A transaction with an unknown kind or malformed date fails the whole
// call with core.ErrInvalidData so the host can surface a
// data-integrity warning instead of silently dropping the record.
func DailyExpenseTotals(transactions []core.Transaction) (map[core.Date]decimal.Decimal, error) {
	totals := make(map[core.Date]decimal.Decimal)
	for _, tx := range transactions {
		if err := checkRecord(tx); err != nil {
			return nil, err
		}
		if tx.Kind != core.Expense {
			continue
		}
		totals[tx.Date] = totals[tx.Date].Add(tx.Amount)
	}
	return totals, nil
}

// MonthlyBucketTotals sums expense amounts for one month, grouped by
// the bucket frozen on each transaction at creation time. Records with
// an absent or unrecognized bucket are re-classified from the tag;
// anything still unrecognized folds into Want.
func MonthlyBucketTotals(transactions []core.Transaction, month core.MonthKey) (BucketTotals, error) {
	var totals BucketTotals
	for _, tx := range transactions {
		if err := checkRecord(tx); err != nil {
			return BucketTotals{}, err
		}
		if tx.Kind != core.Expense || tx.MonthKey != month {
			continue
		}

		b := tx.Bucket
		if !b.Known() {
			b = budget.Classify(tx.Tag)
		}
		switch b {
		case core.Need:
			totals.Need = totals.Need.Add(tx.Amount)
		case core.Investment:
			totals.Investment = totals.Investment.Add(tx.Amount)
		default:
			totals.Want = totals.Want.Add(tx.Amount)
		}
	}
	return totals, nil
}

// Sum returns the combined expense total across all buckets.
func (t BucketTotals) Sum() decimal.Decimal {
	return t.Need.Add(t.Want).Add(t.Investment)
}

// Shares converts the totals into percentages of the monthly sum.
// When the sum is zero every share is zero; there is no division in
// that case.
func (t BucketTotals) Shares() BucketShares {
	sum := t.Sum()
	if sum.IsZero() {
		return BucketShares{}
	}
	hundred := decimal.NewFromInt(100)
	return BucketShares{
		Need:       t.Need.Mul(hundred).DivRound(sum, sharePlaces),
		Want:       t.Want.Mul(hundred).DivRound(sum, sharePlaces),
		Investment: t.Investment.Mul(hundred).DivRound(sum, sharePlaces),
	}
}

func checkRecord(tx core.Transaction) error {
	if err := tx.Kind.Validate(); err != nil {
		return fmt.Errorf("transaction %q has kind %q: %w", tx.ID, tx.Kind, core.ErrInvalidData)
	}
	if err := tx.Date.Validate(); err != nil {
		return fmt.Errorf("transaction %q has malformed date: %w", tx.ID, core.ErrInvalidData)
	}
	return nil
}
