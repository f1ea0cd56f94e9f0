// Package sqlite persists the document collections in a local SQLite
// file via modernc.org/sqlite, keeping the deployment a single
// dependency-free binary.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"richr/internal/core"
	"richr/internal/store"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and runs
// pending migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Single writer. SQLite serializes writes anyway and a pool of
	// one avoids SQLITE_BUSY under concurrent commits.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const transactionColumns = "id, title, amount, kind, tag, bucket, tx_date, month_key, year_key, auto_generated, created_at"

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY tx_date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return tx, err
}

func (s *Store) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx.ID = uuid.NewString()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	if err := insertTransaction(ctx, s.db, tx); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// execer lets the insert run in either the pool or an open sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, e execer, tx core.Transaction) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO transactions (id, title, amount, kind, tag, bucket, tx_date, month_key, year_key, auto_generated, mirror_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`,
		tx.ID, tx.Title, tx.Amount.String(), string(tx.Kind), tx.Tag, string(tx.Bucket),
		tx.Date.String(), tx.MonthKey.String(), tx.YearKey, tx.AutoGenerated,
		tx.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return nil
}

const subscriptionColumns = "id, title, amount, tag, bucket, billing_day, last_period, created_at"

func (s *Store) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscriptions ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return out, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}

	sub.ID = uuid.NewString()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, title, amount, tag, bucket, billing_day, last_period, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Title, sub.Amount.String(), sub.Tag, string(sub.Bucket),
		sub.BillingDay, sub.LastPeriod.String(), sub.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) CommitMaterialization(ctx context.Context, subscriptionID string, prev, next core.MonthKey, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if !prev.IsZero() && !next.After(prev) {
		return core.Transaction{}, fmt.Errorf("watermark must advance: %s -> %s", prev, next)
	}

	tx.ID = uuid.NewString()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin commit: %w", err)
	}
	defer dbTx.Rollback()

	// The conditional half: advance the watermark only if it still
	// matches the caller's snapshot. Zero rows means another
	// invocation billed the period first.
	res, err := dbTx.ExecContext(ctx,
		"UPDATE subscriptions SET last_period = ? WHERE id = ? AND last_period = ?",
		next.String(), subscriptionID, prev.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("advance watermark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("advance watermark: %w", err)
	}
	if n == 0 {
		// Probe through the open transaction: the pool has a single
		// connection and a pool query here would wait on it forever.
		var exists bool
		if err := dbTx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = ?)", subscriptionID).Scan(&exists); err != nil {
			return core.Transaction{}, fmt.Errorf("check subscription: %w", err)
		}
		if !exists {
			return core.Transaction{}, fmt.Errorf("subscription %s: %w", subscriptionID, store.ErrNotFound)
		}
		return core.Transaction{}, fmt.Errorf("subscription %s watermark moved past %q: %w",
			subscriptionID, prev, store.ErrConflict)
	}

	if err := insertTransaction(ctx, dbTx, tx); err != nil {
		return core.Transaction{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit materialization: %w", err)
	}
	return tx, nil
}

func (s *Store) Profile(ctx context.Context) (core.Profile, error) {
	var income string
	err := s.db.QueryRowContext(ctx,
		"SELECT monthly_income FROM profile WHERE id = 1").Scan(&income)
	if err != nil {
		return core.Profile{}, fmt.Errorf("read profile: %w", err)
	}

	amount, err := decimal.NewFromString(income)
	if err != nil {
		return core.Profile{}, fmt.Errorf("parse monthly income %q: %w", income, err)
	}
	return core.Profile{MonthlyIncome: amount}, nil
}

func (s *Store) SaveProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE profile SET monthly_income = ? WHERE id = 1", p.MonthlyIncome.String())
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Store) ListPendingMirror(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM transactions WHERE mirror_status = 'pending' ORDER BY created_at LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending mirror id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending mirror: %w", err)
	}
	return ids, nil
}

func (s *Store) MarkMirrored(ctx context.Context, id string) error {
	return s.setMirrorStatus(ctx, id, "mirrored")
}

func (s *Store) MarkMirrorError(ctx context.Context, id string) error {
	return s.setMirrorStatus(ctx, id, "error")
}

func (s *Store) setMirrorStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET mirror_status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("set mirror status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		tx                  core.Transaction
		amount, kind        string
		bucket, date        string
		monthKey, createdAt string
	)
	err := row.Scan(&tx.ID, &tx.Title, &amount, &kind, &tx.Tag, &bucket,
		&date, &monthKey, &tx.YearKey, &tx.AutoGenerated, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	tx.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	tx.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	tx.Kind = core.Kind(kind)
	tx.Bucket = core.Bucket(bucket)
	tx.MonthKey = core.MonthKey(monthKey)
	return tx, nil
}

func scanSubscription(row scanner) (core.Subscription, error) {
	var (
		sub                   core.Subscription
		amount, bucket        string
		lastPeriod, createdAt string
	)
	err := row.Scan(&sub.ID, &sub.Title, &amount, &sub.Tag, &bucket,
		&sub.BillingDay, &lastPeriod, &createdAt)
	if err != nil {
		return core.Subscription{}, err
	}

	sub.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	sub.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	sub.Bucket = core.Bucket(bucket)
	sub.LastPeriod = core.MonthKey(lastPeriod)
	return sub, nil
}
