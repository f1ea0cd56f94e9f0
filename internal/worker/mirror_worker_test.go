package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"richr/internal/amqp"
	"richr/internal/core"
	"richr/internal/store/memory"
)

type fakeMirror struct {
	appended  []string
	removed   []string
	appendErr error
}

func (m *fakeMirror) AppendTransaction(_ context.Context, tx core.Transaction) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended = append(m.appended, tx.ID)
	return nil
}

func (m *fakeMirror) RemoveTransaction(_ context.Context, id string) error {
	m.removed = append(m.removed, id)
	return nil
}

func seedTransaction(t *testing.T, st *memory.Store) core.Transaction {
	t.Helper()
	tx := core.Transaction{
		Title:  "Netflix",
		Amount: decimal.NewFromInt(500),
		Kind:   core.Expense,
		Tag:    "Bills",
		Bucket: core.Need,
		Date:   core.NewDate(2024, time.July, 5),
	}
	tx.Normalize()
	created, err := st.CreateTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return created
}

func TestHandleEvent_Created(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := &fakeMirror{}
	w := NewMirrorWorker(st, mirror, 10)

	tx := seedTransaction(t, st)

	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpCreated, tx.ID)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(mirror.appended) != 1 || mirror.appended[0] != tx.ID {
		t.Errorf("appended = %v, want [%s]", mirror.appended, tx.ID)
	}

	pending, _ := st.ListPendingMirror(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending after mirror = %v, want none", pending)
	}
}

func TestHandleEvent_Deleted(t *testing.T) {
	ctx := context.Background()
	mirror := &fakeMirror{}
	w := NewMirrorWorker(memory.New(), mirror, 10)

	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpDeleted, "tx-9")); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(mirror.removed) != 1 || mirror.removed[0] != "tx-9" {
		t.Errorf("removed = %v, want [tx-9]", mirror.removed)
	}
}

func TestHandleEvent_CreatedThenGone(t *testing.T) {
	// The record was deleted before the created event arrived. Not an
	// error: the matching deleted event handles the sheet.
	w := NewMirrorWorker(memory.New(), &fakeMirror{}, 10)
	err := w.HandleEvent(context.Background(), amqp.NewTransactionEvent(amqp.OpCreated, "ghost"))
	if err != nil {
		t.Errorf("HandleEvent() error = %v, want nil", err)
	}
}

func TestHandleEvent_AppendFailureMarksError(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := &fakeMirror{appendErr: errors.New("quota exceeded")}
	w := NewMirrorWorker(st, mirror, 10)

	tx := seedTransaction(t, st)

	if err := w.HandleEvent(ctx, amqp.NewTransactionEvent(amqp.OpCreated, tx.ID)); err == nil {
		t.Fatal("HandleEvent() should propagate append failure")
	}

	// The row left the pending set so the sweep won't retry a dead
	// append forever.
	pending, _ := st.ListPendingMirror(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending after failed append = %v, want none", pending)
	}
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	mirror := &fakeMirror{}
	w := NewMirrorWorker(st, mirror, 10)

	seedTransaction(t, st)
	seedTransaction(t, st)

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if len(mirror.appended) != 2 {
		t.Fatalf("appended %d rows, want 2", len(mirror.appended))
	}

	// Second sweep finds nothing.
	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("second ProcessPending() error = %v", err)
	}
	if len(mirror.appended) != 2 {
		t.Errorf("second sweep appended again: %v", mirror.appended)
	}
}
