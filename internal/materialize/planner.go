// Package materialize converts standing subscriptions into concrete
// dated transactions, exactly once per billing period.
//
// Planning is pure: Plan looks only at the subscription snapshots and
// the given date, and emits the effects it wants applied. Applying
// them is the Processor's job, through the store's atomic conditional
// commit, so a crash or a duplicate run between the transaction write
// and the watermark write can never double-bill a period.
package materialize

import (
	"richr/internal/budget"
	"richr/internal/core"
)

// Effect is one subscription's intended mutation pair for the current
// period: create the materialized transaction and advance the
// watermark from PrevPeriod to NewPeriod. The two halves must be
// applied as a single atomic unit, conditioned on the watermark still
// equaling PrevPeriod.
type Effect struct {
	SubscriptionID string
	PrevPeriod     core.MonthKey
	NewPeriod      core.MonthKey
	Create         core.Transaction
}

// Plan decides which subscriptions are due on the given date and
// builds their effects. Per subscription the state machine is
// Pending(period) -> Billed(period), taken at most once per period:
//
//	due = (today.day >= billingDay, clamped to the month's last day)
//	      AND (watermark != period)
//
// Subscriptions already billed this period, or not yet due, produce
// nothing.
func Plan(subscriptions []core.Subscription, today core.Date) []Effect {
	period := today.MonthKey()

	var effects []Effect
	for _, sub := range subscriptions {
		if sub.LastPeriod == period {
			continue // already billed this period
		}

		// Clamp the due day so a billing day of 31 still fires in
		// shorter months, on their last day.
		dueDate := today.ClampDay(sub.BillingDay)
		if today.Day() < dueDate.Day() {
			continue // not yet due this period
		}

		effects = append(effects, Effect{
			SubscriptionID: sub.ID,
			PrevPeriod:     sub.LastPeriod,
			NewPeriod:      period,
			Create:         transactionFor(sub, dueDate),
		})
	}
	return effects
}

// transactionFor builds the materialized transaction from the
// subscription template. The bucket freezes at creation: the template
// bucket when set, otherwise classified from the tag.
func transactionFor(sub core.Subscription, date core.Date) core.Transaction {
	bucket := sub.Bucket
	if !bucket.Known() {
		bucket = budget.Classify(sub.Tag)
	}

	tx := core.Transaction{
		Title:         sub.Title,
		Amount:        sub.Amount,
		Kind:          core.Expense,
		Tag:           sub.Tag,
		Bucket:        bucket,
		Date:          date,
		AutoGenerated: true,
	}
	tx.Normalize()
	return tx
}
