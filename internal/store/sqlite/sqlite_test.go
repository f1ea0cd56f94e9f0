package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "richr.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTransaction() core.Transaction {
	tx := core.Transaction{
		Title:  "Netflix",
		Amount: decimal.RequireFromString("499.50"),
		Kind:   core.Expense,
		Tag:    "Bills",
		Bucket: core.Need,
		Date:   core.NewDate(2024, time.July, 5),
	}
	tx.Normalize()
	return tx
}

func testSubscription() core.Subscription {
	return core.Subscription{
		Title:      "Netflix",
		Amount:     decimal.RequireFromString("499.50"),
		Tag:        "Bills",
		Bucket:     core.Need,
		BillingDay: 5,
		LastPeriod: core.MonthKey("2024-06"),
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.CreateTransaction(ctx, testTransaction())
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("store should assign an id")
	}

	got, err := s.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Title != "Netflix" {
		t.Errorf("Title = %q", got.Title)
	}
	if !got.Amount.Equal(decimal.RequireFromString("499.50")) {
		t.Errorf("Amount = %s, want 499.50", got.Amount)
	}
	if got.Date != core.NewDate(2024, time.July, 5) {
		t.Errorf("Date = %s", got.Date)
	}
	if got.MonthKey != core.MonthKey("2024-07") || got.YearKey != "2024" {
		t.Errorf("keys = %s/%s", got.MonthKey, got.YearKey)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("persisted record invalid: %v", err)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := s.GetTransaction(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetTransaction() after delete = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.CreateSubscription(ctx, testSubscription())
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	subs, err := s.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d subscriptions, want 1", len(subs))
	}
	got := subs[0]
	if got.ID != created.ID || got.BillingDay != 5 || got.LastPeriod != core.MonthKey("2024-06") {
		t.Errorf("ListSubscriptions() = %+v", got)
	}

	if err := s.DeleteSubscription(ctx, created.ID); err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}
	if err := s.DeleteSubscription(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestCommitMaterialization(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sub, err := s.CreateSubscription(ctx, testSubscription())
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	created, err := s.CommitMaterialization(ctx, sub.ID, "2024-06", "2024-07", testTransaction())
	if err != nil {
		t.Fatalf("CommitMaterialization() error = %v", err)
	}
	if created.ID == "" {
		t.Error("committed transaction should get an id")
	}

	subs, _ := s.ListSubscriptions(ctx)
	if subs[0].LastPeriod != core.MonthKey("2024-07") {
		t.Errorf("watermark = %q, want 2024-07", subs[0].LastPeriod)
	}
}

func TestCommitMaterialization_ConflictWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sub, _ := s.CreateSubscription(ctx, testSubscription())

	if _, err := s.CommitMaterialization(ctx, sub.ID, "2024-06", "2024-07", testTransaction()); err != nil {
		t.Fatalf("first commit error = %v", err)
	}

	// Replay from the stale snapshot: conditional update misses, the
	// transaction insert must roll back with it.
	_, err := s.CommitMaterialization(ctx, sub.ID, "2024-06", "2024-07", testTransaction())
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second commit error = %v, want ErrConflict", err)
	}

	txs, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("got %d transactions after conflicting commits, want 1", len(txs))
	}
}

func TestCommitMaterialization_MissingSubscription(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CommitMaterialization(context.Background(), "no-such-id", "2024-06", "2024-07", testTransaction())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestProfilePersists(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if !p.MonthlyIncome.IsZero() {
		t.Errorf("default monthly income = %s, want 0", p.MonthlyIncome)
	}

	if err := s.SaveProfile(ctx, core.Profile{MonthlyIncome: decimal.NewFromInt(50000)}); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	p, _ = s.Profile(ctx)
	if !p.MonthlyIncome.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("monthly income = %s, want 50000", p.MonthlyIncome)
	}
}

func TestMirrorQueue(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, _ := s.CreateTransaction(ctx, testTransaction())
	b, _ := s.CreateTransaction(ctx, testTransaction())

	pending, err := s.ListPendingMirror(ctx, 10)
	if err != nil {
		t.Fatalf("ListPendingMirror() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := s.MarkMirrored(ctx, a.ID); err != nil {
		t.Fatalf("MarkMirrored() error = %v", err)
	}
	pending, _ = s.ListPendingMirror(ctx, 10)
	if len(pending) != 1 || pending[0] != b.ID {
		t.Errorf("pending after mark = %v, want [%s]", pending, b.ID)
	}

	if err := s.MarkMirrorError(ctx, b.ID); err != nil {
		t.Fatalf("MarkMirrorError() error = %v", err)
	}
	pending, _ = s.ListPendingMirror(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending after error mark = %v, want none", pending)
	}
}
