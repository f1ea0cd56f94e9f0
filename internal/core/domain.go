package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	Need       Bucket = "Need"
	Want       Bucket = "Want"
	Investment Bucket = "Investment"
)

type (
	// Kind tells income apart from expense records.
	Kind string

	// Bucket is the budget-allocation category of an expense:
	// Need, Want or Investment.
	Bucket string

	// Transaction is a single dated income or expense event. Records
	// are immutable once created: the lifecycle is create and delete,
	// never edit. Bucket is assigned at creation time and stays frozen
	// afterwards; it may be empty on income rows and on legacy data,
	// in which case readers fall back to classifying the tag.
	Transaction struct {
		ID            string
		Title         string
		Amount        decimal.Decimal
		Kind          Kind
		Tag           string
		Bucket        Bucket
		Date          Date
		MonthKey      MonthKey // always consistent with Date
		YearKey       string   // always consistent with Date
		AutoGenerated bool     // true for materializer-created rows
		CreatedAt     time.Time
	}

	// Subscription is a standing monthly obligation: the template for
	// the transactions the materializer emits. LastPeriod is the
	// idempotency watermark, the latest month key already billed; it
	// only ever advances forward and is mutated exclusively through
	// the store's materialization commit.
	Subscription struct {
		ID         string
		Title      string
		Amount     decimal.Decimal
		Tag        string
		Bucket     Bucket
		BillingDay int // 1-31, day of month the obligation is due
		LastPeriod MonthKey
		CreatedAt  time.Time
	}

	// Profile holds the user's financial context. MonthlyIncome is the
	// denominator for budget health.
	Profile struct {
		MonthlyIncome decimal.Decimal
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrInvalidBillingDay = errors.New("invalid billing day")
	ErrEmptyTitle        = errors.New("empty title")
	ErrEmptyTag          = errors.New("empty tag")

	// ErrInvalidData marks malformed records reported by the
	// aggregator. They are surfaced, not silently dropped.
	ErrInvalidData = errors.New("invalid data")

	// ErrInvalidArgument marks calculator inputs outside the valid
	// domain.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Validate reports whether k is a known transaction kind.
func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Known reports whether b is one of the three defined buckets. The
// empty bucket is not known; readers treat it as "classify the tag".
func (b Bucket) Known() bool {
	switch b {
	case Need, Want, Investment:
		return true
	default:
		return false
	}
}

// Normalize fills the denormalized aggregation keys from Date. Call it
// before persisting a transaction built by hand.
func (t *Transaction) Normalize() {
	t.MonthKey = t.Date.MonthKey()
	t.YearKey = t.Date.YearKey()
}

// Validate checks the transaction invariants, including that the
// denormalized keys agree with the event date.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Tag) == "" {
		return ErrEmptyTag
	}
	if t.Bucket != "" && !t.Bucket.Known() {
		return errors.New("unknown bucket: " + string(t.Bucket))
	}
	if t.MonthKey != t.Date.MonthKey() || t.YearKey != t.Date.YearKey() {
		return errors.New("aggregation keys inconsistent with date")
	}
	return nil
}

// Validate checks the subscription template invariants.
func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(s.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !s.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(s.Tag) == "" {
		return ErrEmptyTag
	}
	if s.BillingDay < 1 || s.BillingDay > 31 {
		return ErrInvalidBillingDay
	}
	if s.Bucket != "" && !s.Bucket.Known() {
		return errors.New("unknown bucket: " + string(s.Bucket))
	}
	if err := s.LastPeriod.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if p.MonthlyIncome.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
