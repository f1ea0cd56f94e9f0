// Package services orchestrates store writes, event publishing and
// cached dashboard reads on behalf of the HTTP layer.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"richr/internal/amqp"
	"richr/internal/budget"
	"richr/internal/core"
	"richr/internal/store"
)

// EventPublisher is the async notification port. Publishing is best
// effort: the store is the source of truth and the mirror worker's
// pending sweep covers lost events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, op, transactionID string) error
}

// TransactionService owns the transaction write path.
type TransactionService struct {
	store     store.Store
	publisher EventPublisher
}

func NewTransactionService(st store.Store, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: st, publisher: publisher}
}

// Create records a transaction. Expenses get their bucket frozen here:
// the caller's explicit bucket wins, otherwise the tag is classified
// once and stored. Income carries no bucket.
//
// With recurring set, an expense also becomes a subscription template
// billed on the transaction's day of month. Its watermark starts at
// the transaction's own month so the materializer will not bill the
// period the user just paid by hand.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction, recurring bool) (core.Transaction, error) {
	switch tx.Kind {
	case core.Expense:
		if !tx.Bucket.Known() {
			tx.Bucket = budget.Classify(tx.Tag)
		}
	case core.Income:
		tx.Bucket = ""
	}
	tx.Normalize()

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if recurring && created.Kind == core.Expense {
		sub := core.Subscription{
			Title:      created.Title,
			Amount:     created.Amount,
			Tag:        created.Tag,
			Bucket:     created.Bucket,
			BillingDay: created.Date.Day(),
			LastPeriod: created.MonthKey,
		}
		if _, err := s.store.CreateSubscription(ctx, sub); err != nil {
			return core.Transaction{}, fmt.Errorf("create subscription from transaction: %w", err)
		}
		slog.InfoContext(ctx, "Subscription created from transaction",
			"transaction_id", created.ID,
			"billing_day", sub.BillingDay,
			"last_period", sub.LastPeriod.String())
	}

	s.publish(ctx, amqp.OpCreated, created.ID)
	return created, nil
}

// Delete removes a transaction. Records are immutable, so deletion is
// the only way to amend a mistake.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.OpDeleted, id)
	return nil
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) publish(ctx context.Context, op, id string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping event", "op", op)
		return
	}
	// The write already succeeded; a publish failure must not fail the
	// request.
	if err := s.publisher.PublishTransactionEvent(ctx, op, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"op", op,
			"transaction_id", id,
			"error", err)
	}
}
