// Package worker runs the background halves of the system: mirroring
// the transaction log to the spreadsheet and sweeping rows the event
// stream missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"richr/internal/amqp"
	"richr/internal/sheets"
	"richr/internal/store"
)

// MirrorWorker applies transaction events to the spreadsheet mirror.
type MirrorWorker struct {
	store     store.Store
	mirror    sheets.Mirror
	batchSize int
}

func NewMirrorWorker(st store.Store, mirror sheets.Mirror, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		store:     st,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleEvent processes one transaction event. The event carries only
// the id; the record itself is fetched fresh from the store.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"event_id", event.EventID,
		"op", event.Op,
		"transaction_id", event.TransactionID)

	switch event.Op {
	case amqp.OpDeleted:
		if err := w.mirror.RemoveTransaction(ctx, event.TransactionID); err != nil {
			return fmt.Errorf("remove mirrored row: %w", err)
		}
		return nil

	case amqp.OpCreated:
		tx, err := w.store.GetTransaction(ctx, event.TransactionID)
		if errors.Is(err, store.ErrNotFound) {
			// Created and deleted before we got here. The delete event
			// will clean up the sheet if the append ever happened.
			slog.WarnContext(ctx, "Transaction gone before mirroring, skipping",
				"transaction_id", event.TransactionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		return w.mirrorTransaction(ctx, tx.ID, func() error {
			return w.mirror.AppendTransaction(ctx, tx)
		})

	default:
		return fmt.Errorf("unknown event op %q", event.Op)
	}
}

// ProcessPending sweeps transactions still marked pending. This is
// the backup path for events lost between the publish and the broker.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.store.ListPendingMirror(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending mirror: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping unmirrored transactions", "count", len(ids))

	for _, id := range ids {
		tx, err := w.store.GetTransaction(ctx, id)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending transaction", "transaction_id", id, "error", err)
			if err := w.store.MarkMirrorError(ctx, id); err != nil {
				slog.ErrorContext(ctx, "Failed to mark mirror error", "transaction_id", id, "error", err)
			}
			continue
		}

		if err := w.mirrorTransaction(ctx, tx.ID, func() error {
			return w.mirror.AppendTransaction(ctx, tx)
		}); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending transaction", "transaction_id", id, "error", err)
			continue
		}
	}
	return nil
}

func (w *MirrorWorker) mirrorTransaction(ctx context.Context, id string, append func() error) error {
	if err := append(); err != nil {
		if markErr := w.store.MarkMirrorError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append transaction %s: %w", id, err)
	}
	if err := w.store.MarkMirrored(ctx, id); err != nil {
		return fmt.Errorf("mark mirrored %s: %w", id, err)
	}
	return nil
}
