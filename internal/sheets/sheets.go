// Package sheets mirrors the transaction log into a Google
// Spreadsheet, the user-facing export surface. The store stays the
// source of truth; the sheet is an eventually consistent copy fed by
// the mirror worker.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"richr/internal/core"
)

// Mirror is the outbound port the mirror worker writes through.
type Mirror interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
	RemoveTransaction(ctx context.Context, id string) error
}

// transactionRow encodes a transaction as one spreadsheet row:
// ID, Date, Title, Amount, Kind, Tag, Bucket, AutoGenerated.
func transactionRow(tx core.Transaction) []any {
	amount, _ := tx.Amount.Float64()
	return []any{
		tx.ID,
		tx.Date.String(),
		tx.Title,
		amount,
		string(tx.Kind),
		tx.Tag,
		string(tx.Bucket),
		strconv.FormatBool(tx.AutoGenerated),
	}
}

// parseRow decodes a row written by transactionRow. Sheets hands
// values back as whatever type the cell settled on, so every field
// goes through a string normalization first.
func parseRow(row []any) (core.Transaction, error) {
	get := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(row[i]))
	}

	date, err := core.ParseDate(get(1))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row date: %w", err)
	}
	amount, err := decimal.NewFromString(get(3))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("row amount %q: %w", get(3), err)
	}

	tx := core.Transaction{
		ID:            get(0),
		Title:         get(2),
		Amount:        amount,
		Kind:          core.Kind(get(4)),
		Tag:           get(5),
		Bucket:        core.Bucket(get(6)),
		Date:          date,
		AutoGenerated: get(7) == "true",
	}
	tx.Normalize()
	return tx, nil
}
