// Package store defines the document-store contract the core operates
// against. The core works on snapshots and hands back intended
// mutations; implementations own all persisted state.
//
// The one non-obvious operation is CommitMaterialization: the atomic
// conditional write that makes repeated or concurrent materialization
// safe. Everything else is plain collection CRUD.
package store

import (
	"context"
	"errors"

	"richr/internal/core"
)

var (
	// ErrNotFound is returned when a document id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by CommitMaterialization when the
	// subscription's watermark no longer equals the caller's snapshot
	// value. It means another invocation already billed the period;
	// callers treat it as success elsewhere, not as a retryable
	// failure.
	ErrConflict = errors.New("materialization conflict")
)

type (
	// TransactionStore is the transaction collection. Records are
	// immutable: create and delete only.
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// SubscriptionStore is the subscription collection. The watermark
	// field is written exclusively through CommitMaterialization.
	SubscriptionStore interface {
		ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
		CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error)
		DeleteSubscription(ctx context.Context, id string) error

		// CommitMaterialization applies one subscription's effect pair
		// as a single atomic unit: create the materialized transaction
		// and advance the watermark from prev to next. The commit is
		// conditional on the stored watermark still equaling prev; on
		// a mismatch nothing is written and ErrConflict is returned.
		// next must be strictly later than prev: the watermark only
		// advances.
		CommitMaterialization(ctx context.Context, subscriptionID string, prev, next core.MonthKey, tx core.Transaction) (core.Transaction, error)
	}

	// ProfileStore is the single-document user profile.
	ProfileStore interface {
		Profile(ctx context.Context) (core.Profile, error)
		SaveProfile(ctx context.Context, p core.Profile) error
	}

	// MirrorQueue tracks which transactions still need to be mirrored
	// to the external spreadsheet.
	MirrorQueue interface {
		ListPendingMirror(ctx context.Context, limit int) ([]string, error)
		MarkMirrored(ctx context.Context, id string) error
		MarkMirrorError(ctx context.Context, id string) error
	}
)

// Store is the full document-store surface a backend provides.
type Store interface {
	TransactionStore
	SubscriptionStore
	ProfileStore
	MirrorQueue

	Close() error
}
