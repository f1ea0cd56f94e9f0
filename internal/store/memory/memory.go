// Package memory provides an in-memory store implementation, used for
// tests and for running the server without a database file.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/store"
)

// Store keeps every collection in process memory behind one mutex.
// All methods copy on the way in and out, so callers never share
// slices or structs with the store.
type Store struct {
	mu            sync.Mutex
	transactions  map[string]core.Transaction
	subscriptions map[string]core.Subscription
	profile       core.Profile
	pendingMirror map[string]struct{}
	mirrorErrors  map[string]struct{}
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions:  make(map[string]core.Transaction),
		subscriptions: make(map[string]core.Subscription),
		profile:       core.Profile{MonthlyIncome: decimal.Zero},
		pendingMirror: make(map[string]struct{}),
		mirrorErrors:  make(map[string]struct{}),
	}
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return tx, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertTransactionLocked(tx), nil
}

// insertTransactionLocked assigns id and creation time and queues the
// row for mirroring. Caller holds the mutex.
func (s *Store) insertTransactionLocked(tx core.Transaction) core.Transaction {
	tx.ID = uuid.NewString()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	s.transactions[tx.ID] = tx
	s.pendingMirror[tx.ID] = struct{}{}
	return tx
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	delete(s.transactions, id)
	delete(s.pendingMirror, id)
	delete(s.mirrorErrors, id)
	return nil
}

func (s *Store) ListSubscriptions(_ context.Context) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateSubscription(_ context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub.ID = uuid.NewString()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	s.subscriptions[sub.ID] = sub
	return sub, nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[id]; !ok {
		return fmt.Errorf("subscription %s: %w", id, store.ErrNotFound)
	}
	delete(s.subscriptions, id)
	return nil
}

func (s *Store) CommitMaterialization(_ context.Context, subscriptionID string, prev, next core.MonthKey, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !prev.IsZero() && !next.After(prev) {
		return core.Transaction{}, fmt.Errorf("watermark must advance: %s -> %s", prev, next)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[subscriptionID]
	if !ok {
		return core.Transaction{}, fmt.Errorf("subscription %s: %w", subscriptionID, store.ErrNotFound)
	}
	if sub.LastPeriod != prev {
		return core.Transaction{}, fmt.Errorf("subscription %s watermark is %q, expected %q: %w",
			subscriptionID, sub.LastPeriod, prev, store.ErrConflict)
	}

	// Both writes under one lock: the effect pair is atomic.
	sub.LastPeriod = next
	s.subscriptions[subscriptionID] = sub
	return s.insertTransactionLocked(tx), nil
}

func (s *Store) Profile(_ context.Context) (core.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func (s *Store) ListPendingMirror(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.pendingMirror))
	for id := range s.pendingMirror {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *Store) MarkMirrored(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingMirror, id)
	delete(s.mirrorErrors, id)
	return nil
}

// MarkMirrorError parks the row outside the pending sweep so a dead
// append is not retried forever, matching the sqlite backend's
// mirror_status = 'error'.
func (s *Store) MarkMirrorError(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pendingMirror, id)
	s.mirrorErrors[id] = struct{}{}
	return nil
}

func (s *Store) Close() error { return nil }
